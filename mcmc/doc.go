// Package mcmc drives Markov chain Monte Carlo sampling and computes the
// convergence diagnostics the estimation layer reports.
//
// What:
//
//   - Target is the narrow contract a posterior must satisfy: dimension,
//     log density and gradient on an unconstrained space.
//   - Engine runs independent chains against a Target; NUTS is the
//     bundled implementation, backed by the no-U-turn sampler of the
//     infergo probabilistic-programming library with gradients supplied
//     by the Target rather than automatic differentiation, and with the
//     integrator step adapted during warmup by infergo's depth adapter.
//   - Chain holds one chain's post-warmup draws as a draws×dim matrix.
//   - Diagnose computes per-parameter mean, Monte Carlo standard error,
//     effective sample size and the split potential-scale-reduction
//     statistic from a set of chains.
//
// Why:
//
//	The estimation layer needs the sampler behind an interface so its
//	model construction and summarization are testable with deterministic
//	stub engines. Everything downstream of sampling (pooling, order
//	statistics, R-hat, ESS) is ordinary numerics on the draw matrices and
//	lives here, independent of any engine.
//
// Determinism:
//
//	Config.Seed fixes every random stream this package owns: a seed of 0
//	selects a fixed default, and per-chain streams are derived with a
//	SplitMix64 mix so chain k of a run is reproducible in isolation.
//	ChainRNG exposes the same derivation to callers that need to jitter
//	initial points. Trajectory noise inside the underlying sampler
//	follows that library's own source and is pass-through, not a
//	reproducibility guarantee.
//
// Errors:
//
//   - ErrInvalidConfig: a Config field out of range.
//   - ErrEngine: hard sampling failure (degenerate initialization, the
//     sampler stopping early, malformed draws). No partial results.
//   - ErrShapeMismatch, ErrInsufficientDraws: diagnostics input defects.
package mcmc
