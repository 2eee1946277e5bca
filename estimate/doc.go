// Package estimate fits Rogers-Castro migration schedules to observed
// age-specific data by Bayesian MCMC and summarizes the posterior.
//
// What:
//
//   - Spec selects which of the four model families are estimated;
//     families left out are absent from the model entirely, and the
//     baseline c is always a free parameter.
//   - Data carries exactly one observation modality: migrant counts with
//     population at risk (Poisson likelihood) or observed rates (Normal
//     likelihood, noise fixed or estimated).
//   - Estimate validates the inputs, builds the posterior with
//     weakly-informative priors and positivity constraints, runs the
//     configured mcmc.Engine and returns a detached Result.
//   - Result holds the natural-scale draws plus three tables: parameter
//     medians with credible bounds, per-parameter convergence
//     diagnostics, and the fitted curve with its credible band at every
//     observed age. WriteJSON renders the tables for external tooling.
//   - InitialValues exposes the starting point used for chain
//     initialization.
//
// Why:
//
//	The calculation path in package schedule answers "what curve do
//	these parameters draw"; this package answers the inverse question,
//	"what parameters are consistent with these observations", with full
//	posterior uncertainty rather than a single best fit.
//
// Messages:
//
//	The selected likelihood is always announced as an informational
//	notice. Convergence trouble (split R-hat above 1.1, low effective
//	sample size) becomes warning notices on an intact Result, never an
//	error: the caller inspects the diagnostics and decides whether to
//	rerun with more iterations or a higher adapt-delta target. Notices
//	mirror into the configured slog.Logger.
//
// Errors:
//
//   - ErrConfiguration (with ErrDataModality, ErrDataLength,
//     ErrDataValue, ErrCredibleLevel): contradictory or malformed
//     inputs, surfaced synchronously before any sampling.
//   - mcmc.ErrInvalidConfig: a pass-through sampling knob out of range.
//   - mcmc.ErrEngine: hard sampling failure; no partial Result is
//     synthesized.
package estimate
