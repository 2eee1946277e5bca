// Package rcbayes models age-specific migration with Rogers-Castro
// schedules — evaluate the classic multi-exponential curve directly, or
// fit its parameters to observed data with Bayesian MCMC.
//
// 🚀 What is rcbayes?
//
//	A computational core for age-schedule demography that brings together:
//		• Parameter validation: 13-name vocabulary, all-or-none families
//		• Curve evaluation: pure, deterministic, per-family decomposition
//		• Bayesian estimation: Poisson (counts) or Normal (rates) likelihoods
//		• MCMC driving: parallel chains behind a narrow Engine interface
//		• Diagnostics: split R-hat, effective sample size, credible bands
//
// ✨ Why choose rcbayes?
//
//   - Honest uncertainty – full posteriors, not single best-fit points
//   - Rock-solid inputs – staged validation before any computation runs
//   - Detached results – tables own their memory, no engine state leaks
//   - Extensible – swap the bundled NUTS engine for your own sampler
//
// Under the hood, everything is organized under three subpackages:
//
//	schedule/ — parameter vocabulary, validation, curve evaluation, peaks
//	mcmc/     — sampling contracts, the bundled NUTS engine, diagnostics
//	estimate/ — model construction, estimation pipeline, posterior tables
//
// Quick ASCII example:
//
//	rate
//	 │      ▄▄
//	 │     █  █            ▂▂
//	 │▂   █    ██▄▄      ▄█  █▄
//	 │ ▀▀█         ▀▀▀▀▀▀      ▀▀▀
//	 └──────────────────────────── age
//	  0     20        50   67
//
//	a working-age hump, a retirement hump, and the constant baseline.
//
// Dive into the subpackage docs for the full contracts and into
// examples/ for runnable demos of both the calculation and the
// estimation path.
//
//	go get github.com/cran/rcbayes
package rcbayes
