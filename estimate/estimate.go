// estimate.go holds the public estimation entry point: resolve inputs,
// build the model, run the engine, summarize, report.

package estimate

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cran/rcbayes/mcmc"
)

// rhatThreshold is the split R-hat above which a warning notice is
// raised. Diagnostic, not a gate: the result is returned in full.
const rhatThreshold = 1.1

// essPerChainFloor is the per-chain effective sample size below which a
// warning notice is raised.
const essPerChainFloor = 100

// Estimate fits the Rogers-Castro families selected by spec to the
// observations in data and returns the detached posterior result.
//
// The data modality picks the likelihood: migrant counts with population
// at risk run the Poisson model, observed rates run the Normal model
// with noise fixed at data.Sigma or estimated when it is 0. The
// selection is announced as an informational notice and logged.
//
// Sampling goes through opts.Engine, the bundled NUTS engine by default,
// with the pass-through opts.Config. Convergence trouble never fails the
// call: high R-hat or low effective sample size become warning notices
// on an intact result, so the caller can inspect the diagnostics and
// rerun with more iterations or a higher adapt-delta target. Hard engine
// failures abort with an error wrapping mcmc.ErrEngine and no partial
// result.
//
// ctx bounds the sampling phase; cancellation is honored between
// iterations.
func Estimate(ctx context.Context, spec Spec, data Data, opts Options) (*Result, error) {
	opts = opts.resolved()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	like, err := data.resolve()
	if err != nil {
		return nil, err
	}

	data = data.clone()
	post := newPosterior(spec, data, like)
	cfg := opts.Config

	notices := []Notice{likelihoodNotice(like, data)}
	logNotice(opts.Logger, notices[0])

	chains, err := opts.Engine.Run(ctx, post, initialPoints(post.layout, cfg), cfg)
	if err != nil {
		return nil, err
	}

	res, err := summarize(post, toNatural(chains), opts)
	if err != nil {
		return nil, err
	}
	res.Likelihood = like

	warnings := convergenceWarnings(res.Convergence, cfg.Chains)
	for _, w := range warnings {
		logNotice(opts.Logger, w)
	}
	res.Notices = append(notices, warnings...)

	return res, nil
}

// likelihoodNotice announces the selected observation model.
func likelihoodNotice(like Likelihood, data Data) Notice {
	var msg string
	switch like {
	case LikelihoodPoisson:
		msg = fmt.Sprintf("Poisson likelihood selected: %d ages with migrant counts and population at risk",
			len(data.Ages))
	case LikelihoodNormal:
		if data.Sigma > 0 {
			msg = fmt.Sprintf("Normal likelihood selected: %d ages with observed rates, sigma fixed at %g",
				len(data.Ages), data.Sigma)
		} else {
			msg = fmt.Sprintf("Normal likelihood selected: %d ages with observed rates, sigma estimated",
				len(data.Ages))
		}
	}

	return Notice{Level: LevelInfo, Code: NoticeLikelihood, Message: msg}
}

// convergenceWarnings grades the diagnostic table against the usual
// thresholds. NaN diagnostics, from degenerate draws, warn as well.
func convergenceWarnings(rows []ConvergenceRow, chains int) []Notice {
	essFloor := float64(essPerChainFloor * chains)

	var out []Notice
	for _, row := range rows {
		if row.Rhat > rhatThreshold || math.IsNaN(row.Rhat) {
			out = append(out, Notice{
				Level: LevelWarning,
				Code:  NoticeRhat,
				Message: fmt.Sprintf("split R-hat for %s is %.3f (threshold %.2f); consider more iterations or a higher adapt-delta",
					row.Name, row.Rhat, rhatThreshold),
			})
		}
		if row.ESS < essFloor || math.IsNaN(row.ESS) {
			out = append(out, Notice{
				Level: LevelWarning,
				Code:  NoticeESS,
				Message: fmt.Sprintf("effective sample size for %s is %.0f (floor %.0f); draws are heavily autocorrelated",
					row.Name, row.ESS, essFloor),
			})
		}
	}

	return out
}

// logNotice mirrors a notice into the logger at its level.
func logNotice(l *slog.Logger, n Notice) {
	switch n.Level {
	case LevelWarning:
		l.Warn(n.Message, "code", n.Code)
	default:
		l.Info(n.Message, "code", n.Code)
	}
}

// toNatural maps log-scale draws onto the natural parameter scale.
func toNatural(chains []mcmc.Chain) []mcmc.Chain {
	out := make([]mcmc.Chain, len(chains))
	for i, c := range chains {
		var nat mat.Dense
		nat.Apply(func(_, _ int, v float64) float64 { return math.Exp(v) }, c.Draws)
		out[i] = mcmc.Chain{Draws: &nat}
	}

	return out
}
