// types.go defines the sampling contracts (Target, Engine), the run
// configuration with its defaults, the Chain draw container and the
// package error taxonomy.

package mcmc

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Default run configuration. The split convention follows the common
// engine default of discarding the first half of each chain as warmup.
const (
	DefaultChains       = 4
	DefaultIterations   = 2000
	DefaultAdaptDelta   = 0.8
	DefaultMaxTreeDepth = 10
)

// Sentinel errors.
var (
	// ErrInvalidConfig reports a Config field outside its legal range.
	ErrInvalidConfig = errors.New("mcmc: invalid configuration")

	// ErrEngine is the root for hard sampling failures. A Run that returns
	// an error wrapping ErrEngine produced no usable chains.
	ErrEngine = errors.New("mcmc: engine failure")

	// ErrShapeMismatch reports chains whose draw matrices disagree in
	// length or dimension.
	ErrShapeMismatch = errors.New("mcmc: chain shape mismatch")

	// ErrInsufficientDraws reports too few draws per chain for split
	// diagnostics.
	ErrInsufficientDraws = errors.New("mcmc: too few draws for diagnostics")
)

// Target is the posterior contract an Engine samples from. Coordinates
// live on an unconstrained space; any transform to natural parameters is
// the Target's own business. Implementations must be safe for concurrent
// use: independent chains evaluate the same Target from separate
// goroutines.
type Target interface {
	// Dim reports the dimensionality of the parameter space.
	Dim() int

	// LogDensity returns the unnormalized log posterior at x. It must not
	// retain or mutate x.
	LogDensity(x []float64) float64

	// Gradient returns d LogDensity / dx at x as a freshly allocated
	// slice of length Dim.
	Gradient(x []float64) []float64
}

// Engine runs independent MCMC chains against a target. init supplies
// one starting point per chain, each of length t.Dim(); the engine never
// invents starting points. The returned slice has exactly cfg.Chains
// entries in chain order, each holding the post-warmup draws. An engine
// reports hard failures by wrapping ErrEngine and returns no partial
// chain set alongside an error. Cancellation honors ctx on a best-effort
// basis between iterations.
type Engine interface {
	Run(ctx context.Context, t Target, init [][]float64, cfg Config) ([]Chain, error)
}

// Config is the pass-through sampling configuration. The zero value of
// any field selects its documented default, so Config{} is a valid,
// fully defaulted configuration and callers override only what they
// mean to change.
type Config struct {
	// Chains is the number of independent chains. Default 4.
	Chains int

	// Iterations is the total per-chain iteration count, warmup included.
	// Default 2000.
	Iterations int

	// Warmup is the number of leading iterations discarded from each
	// chain. 0 selects the default split, Iterations/2. Kept draws per
	// chain are Iterations-Warmup and must be positive.
	Warmup int

	// AdaptDelta is the target acceptance statistic in (0,1), default
	// 0.8. It steers the warmup step-size adaptation: a higher target
	// asks for a more careful integrator, hence a smaller step.
	AdaptDelta float64

	// MaxTreeDepth bounds trajectory doubling in tree-based samplers.
	// Default 10.
	MaxTreeDepth int

	// StepSize fixes the integrator step for the whole run when
	// positive, opting out of warmup adaptation; 0 adapts the step
	// during warmup starting from an AdaptDelta-derived value.
	StepSize float64

	// Seed fixes the random streams owned by this package; 0 selects a
	// fixed default so runs are reproducible unless deliberately varied.
	Seed uint64
}

// DefaultConfig returns the fully resolved default configuration.
func DefaultConfig() Config {
	return Config{}.Resolved()
}

// Resolved returns the configuration with every zero field replaced by
// its documented default. Engines resolve on entry; callers that need to
// know the effective chain count or seed ahead of a run resolve the same
// way.
func (c Config) Resolved() Config {
	if c.Chains == 0 {
		c.Chains = DefaultChains
	}
	if c.Iterations == 0 {
		c.Iterations = DefaultIterations
	}
	if c.Warmup == 0 {
		c.Warmup = c.Iterations / 2
	}
	if c.AdaptDelta == 0 {
		c.AdaptDelta = DefaultAdaptDelta
	}
	if c.MaxTreeDepth == 0 {
		c.MaxTreeDepth = DefaultMaxTreeDepth
	}
	if c.Seed == 0 {
		c.Seed = defaultSeed
	}

	return c
}

// Validate checks a resolved configuration. Engines call it after
// Resolved, so only deliberate overrides can fail.
func (c Config) Validate() error {
	switch {
	case c.Chains < 1:
		return fmt.Errorf("%w: chains %d, need >= 1", ErrInvalidConfig, c.Chains)
	case c.Iterations < 1:
		return fmt.Errorf("%w: iterations %d, need >= 1", ErrInvalidConfig, c.Iterations)
	case c.Warmup < 0:
		return fmt.Errorf("%w: warmup %d, need >= 0", ErrInvalidConfig, c.Warmup)
	case c.Warmup >= c.Iterations:
		return fmt.Errorf("%w: warmup %d consumes all %d iterations", ErrInvalidConfig, c.Warmup, c.Iterations)
	case c.AdaptDelta <= 0 || c.AdaptDelta >= 1:
		return fmt.Errorf("%w: adapt delta %v, need in (0,1)", ErrInvalidConfig, c.AdaptDelta)
	case c.MaxTreeDepth < 1:
		return fmt.Errorf("%w: max tree depth %d, need >= 1", ErrInvalidConfig, c.MaxTreeDepth)
	case c.StepSize < 0:
		return fmt.Errorf("%w: step size %v, need >= 0", ErrInvalidConfig, c.StepSize)
	}

	return nil
}

// Kept reports the post-warmup draw count per chain for a resolved
// configuration.
func (c Config) Kept() int {
	return c.Iterations - c.Warmup
}

// Chain holds one chain's kept draws: a draws×dim matrix with one row
// per iteration, detached from the engine that produced it.
type Chain struct {
	Draws *mat.Dense
}

// Len reports the number of kept draws.
func (c Chain) Len() int {
	if c.Draws == nil {
		return 0
	}
	r, _ := c.Draws.Dims()

	return r
}

// Dim reports the parameter dimension.
func (c Chain) Dim() int {
	if c.Draws == nil {
		return 0
	}
	_, d := c.Draws.Dims()

	return d
}

// Param returns a copy of parameter j's draw sequence.
func (c Chain) Param(j int) []float64 {
	return mat.Col(nil, j, c.Draws)
}

// Pool concatenates parameter j's draws across chains, chain order
// preserved. The result is freshly allocated.
func Pool(chains []Chain, j int) []float64 {
	total := 0
	for _, c := range chains {
		total += c.Len()
	}

	out := make([]float64, 0, total)
	for _, c := range chains {
		out = append(out, c.Param(j)...)
	}

	return out
}

// Diagnostics summarizes one parameter's convergence across chains.
type Diagnostics struct {
	// Mean is the grand mean over all kept draws.
	Mean float64

	// MCSE is the Monte Carlo standard error of Mean, sd/sqrt(ESS).
	MCSE float64

	// ESS is the effective sample size after autocorrelation discounting.
	ESS float64

	// Rhat is the split potential-scale-reduction statistic; values near
	// 1 indicate convergence, values above about 1.1 indicate trouble.
	Rhat float64
}
