// Package schedule evaluates Rogers-Castro model migration schedules:
// parametric age profiles of migration rates built from up to four
// additive components plus a baseline intensity.
//
// What:
//
//   - Parse validates a partially specified name→value mapping against the
//     13-parameter Rogers-Castro vocabulary and resolves it into a Params
//     value with one optional component per family.
//   - Params.Evaluate computes the schedule m(x) over an age sequence:
//
//     m(x) = c
//     + a1·exp(alpha1·x)                                  (pre-working age)
//     + a2·exp(−alpha2·(x−mu2) − exp(−lambda2·(x−mu2)))   (working age)
//     + a3·exp(−alpha3·(x−mu3) − exp(−lambda3·(x−mu3)))   (retirement)
//     + a4·exp(lambda4·x)                                 (post-retirement)
//
//   - Calculate is the one-call convenience: Parse + Evaluate.
//   - Components splits a schedule into its per-family series; Peaks
//     reports the analytic peak age/intensity of the two hump components.
//
// Why:
//
//   - Demographic estimation: smooth observed age-specific migration data.
//   - Projection inputs: generate full schedules from a handful of
//     parameters, including partial models (any subset of families).
//   - The estimate package embeds the same functional form inside a
//     Bayesian model; this package is its deterministic core.
//
// Families:
//
//	A family is active iff ALL of its parameters are present in the input
//	mapping; supplying a proper subset is a validation error. Inactive
//	families contribute exactly zero — they are omitted, not zeroed, so no
//	undefined shape parameter is ever evaluated. The baseline c is always
//	required; a mapping holding only c is legal and yields a constant
//	schedule.
//
// Numeric policy:
//
//	Double precision throughout; deterministic; no clamping. Parameter
//	choices with large-magnitude exponents overflow to +Inf per IEEE-754
//	and the infinity propagates to the caller, which keeps pathological
//	inputs visible instead of silently saturated. NaN/±Inf parameter
//	VALUES are rejected at Parse time.
//
// Errors:
//
//   - ErrValidation: root sentinel for every malformed parameter set.
//   - ErrMissingBaseline, ErrPartialFamily, ErrUnknownParam, ErrNonFinite:
//     specific causes, each matching ErrValidation via errors.Is.
//   - ErrLengthMismatch: EvaluateInto destination of the wrong length.
//
// All evaluation entry points are pure functions: no state, no locks,
// safe for concurrent use from any goroutine.
package schedule
