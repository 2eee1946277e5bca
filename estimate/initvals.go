// initvals.go supplies the deterministic starting values for sampling.
// Chains start from one shared point in typical-schedule territory,
// jittered per chain on the log scale so they are overdispersed but
// reproducible from the run seed.

package estimate

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cran/rcbayes/mcmc"
	"github.com/cran/rcbayes/schedule"
)

// initialByName holds the natural-scale starting value of every
// parameter the model can free. The values sit in the typical range of
// national schedules, well inside the priors' mass.
var initialByName = map[string]float64{
	schedule.NameA1: 0.1, schedule.NameAlpha1: 0.1,
	schedule.NameA2: 0.2, schedule.NameAlpha2: 0.1, schedule.NameMu2: 20, schedule.NameLambda2: 0.4,
	schedule.NameA3: 0.05, schedule.NameAlpha3: 0.25, schedule.NameMu3: 65, schedule.NameLambda3: 0.5,
	schedule.NameA4: 0.01, schedule.NameLambda4: 0.01,
	schedule.NameC: 0.01,
	nameSigma:      0.1,
}

// initJitterSigma spreads chain starts on the log scale.
const initJitterSigma = 0.2

// InitialValues returns the natural-scale starting point Estimate uses
// for the free parameters of spec, keyed by parameter name, for callers
// warm-starting their own engine. The noise sigma of a rates model is
// initialized internally and is not part of the mapping. The mapping is
// fresh on every call and safe to mutate.
func InitialValues(spec Spec) map[string]float64 {
	out := make(map[string]float64)
	for _, pm := range buildLayout(spec, false) {
		out[pm.name] = initialByName[pm.name]
	}

	return out
}

// initialPoints derives one jittered log-scale starting point per chain.
func initialPoints(layout []param, cfg mcmc.Config) [][]float64 {
	base := make([]float64, len(layout))
	for j, pm := range layout {
		base[j] = math.Log(initialByName[pm.name])
	}

	points := make([][]float64, cfg.Chains)
	for i := range points {
		jitter := distuv.Normal{Mu: 0, Sigma: initJitterSigma, Src: mcmc.ChainRNG(cfg.Seed, i)}
		zi := make([]float64, len(base))
		for j, v := range base {
			zi[j] = v + jitter.Rand()
		}
		points[i] = zi
	}

	return points
}
