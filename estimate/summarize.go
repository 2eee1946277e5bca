// summarize.go turns natural-scale draw matrices into the three result
// tables: the parameter summary, the convergence diagnostics and the
// per-age fitted curve with its credible band.

package estimate

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cran/rcbayes/mcmc"
	"github.com/cran/rcbayes/schedule"
)

// summarize builds the detached Result from post-warmup chains. The
// chains are read-only from here on; every table owns its own memory.
func summarize(post *posterior, chains []mcmc.Chain, opts Options) (*Result, error) {
	diags, err := mcmc.Diagnose(chains)
	if err != nil {
		return nil, err
	}

	names := post.names()
	lower := (1 - opts.Level) / 2
	upper := 1 - lower

	res := &Result{
		Names:       names,
		Chains:      chains,
		Summary:     make([]ParamSummary, len(names)),
		Convergence: make([]ConvergenceRow, len(names)),
	}
	for j, name := range names {
		qs := mcmc.Quantiles(mcmc.Pool(chains, j), lower, 0.5, upper)
		res.Summary[j] = ParamSummary{Name: name, Median: qs[1], Lower: qs[0], Upper: qs[2]}
		res.Convergence[j] = ConvergenceRow{
			Name:   name,
			Mean:   diags[j].Mean,
			SEMean: diags[j].MCSE,
			ESS:    diags[j].ESS,
			Rhat:   diags[j].Rhat,
		}
	}

	res.Fit = fitTable(post, chains, lower, upper)

	return res, nil
}

// fitTable recomputes the schedule at every observed age under every
// posterior draw and extracts the median curve with its credible band.
// Ages are independent of each other, so the order-statistics pass fans
// out across them; the draw parameter sets are materialized once and
// shared read-only.
//
// Complexity: O(draws · ages) evaluations plus an O(draws log draws)
// sort per age.
func fitTable(post *posterior, chains []mcmc.Chain, lower, upper float64) []FitPoint {
	total := 0
	for _, c := range chains {
		total += c.Len()
	}

	params := make([]schedule.Params, 0, total)
	for _, c := range chains {
		for r := 0; r < c.Len(); r++ {
			params = append(params, post.paramsFromDraw(c.Draws.RawRowView(r)))
		}
	}

	ages := post.data.Ages
	observed := post.observedRates()
	fit := make([]FitPoint, len(ages))

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range ages {
		i := i
		g.Go(func() error {
			vals := make([]float64, len(params))
			for d, p := range params {
				vals[d] = p.At(ages[i])
			}
			qs := mcmc.Quantiles(vals, lower, 0.5, upper)

			resid := observed[i] - qs[1]
			fit[i] = FitPoint{
				Age:      ages[i],
				Observed: observed[i],
				Median:   qs[1],
				Lower:    qs[0],
				Upper:    qs[2],
				SqErr:    resid * resid,
			}

			return nil
		})
	}
	// Workers only compute; the group exists for the fan-out and limit.
	_ = g.Wait()

	return fit
}

// observedRates renders the data as rates for the fit table: counts over
// population on the Poisson path, the rates themselves on the Normal
// path.
func (p *posterior) observedRates() []float64 {
	if p.like == LikelihoodNormal {
		return p.data.Rates
	}

	out := make([]float64, len(p.data.Migrants))
	for i, y := range p.data.Migrants {
		out[i] = y / p.data.Pop[i]
	}

	return out
}
