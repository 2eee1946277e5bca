// model.go builds the probabilistic model behind estimate: the
// free-parameter layout implied by a Spec, positivity transforms,
// weakly-informative priors, and the Poisson or Normal likelihood with
// hand-derived gradients. The sampler works on an unconstrained log
// scale; everything visible outside this file is on the natural scale.

package estimate

import (
	"math"

	"bitbucket.org/dtolpin/infergo/dist"

	"github.com/cran/rcbayes/schedule"
)

// paramKind selects the prior of one free parameter. Every parameter is
// positive-constrained via theta = exp(z); priors apply on the natural
// scale, with the log-Jacobian of the transform added to the density.
type paramKind int

const (
	// kindIntensity covers a1..a4 and c: half-Normal(0, 0.1).
	kindIntensity paramKind = iota

	// kindShape covers alpha_k and lambda_k: half-Normal(0, 0.5).
	kindShape

	// kindAgeCenter covers mu2 and mu3: Normal(loc, 10), positive.
	kindAgeCenter

	// kindNoise covers the estimated sigma: half-Normal(0, 1).
	kindNoise
)

// Prior scales and hump-center locations. Weakly informative: wide
// enough to cover published schedules, tight enough to keep the sampler
// away from degenerate ridges.
const (
	priorIntensitySigma = 0.1
	priorShapeSigma     = 0.5
	priorCenterSigma    = 10.0
	priorNoiseSigma     = 1.0

	priorCenterLabor  = 20.0
	priorCenterRetire = 65.0
)

// nameSigma is the one free parameter outside the schedule vocabulary:
// the Normal observation noise, present only when not fixed by the data.
const nameSigma = "sigma"

// param is one free parameter of the model.
type param struct {
	name string
	kind paramKind
	loc  float64 // prior location, kindAgeCenter only
}

// paramOf classifies a vocabulary name into its prior.
func paramOf(name string) param {
	pm := param{name: name}
	switch name {
	case schedule.NameA1, schedule.NameA2, schedule.NameA3, schedule.NameA4, schedule.NameC:
		pm.kind = kindIntensity
	case schedule.NameMu2:
		pm.kind = kindAgeCenter
		pm.loc = priorCenterLabor
	case schedule.NameMu3:
		pm.kind = kindAgeCenter
		pm.loc = priorCenterRetire
	default:
		pm.kind = kindShape
	}

	return pm
}

// buildLayout lists the free parameters of a spec in the canonical
// schedule.ParamNames order: active families first, then the baseline,
// then sigma when the Normal noise is estimated. Omitted families get
// no slots at all.
func buildLayout(s Spec, estimateSigma bool) []param {
	names := schedule.ParamNames(s.PreWorking, s.Working, s.Retirement, s.PostRetirement)

	ps := make([]param, 0, len(names)+1)
	for _, n := range names {
		ps = append(ps, paramOf(n))
	}
	if estimateSigma {
		ps = append(ps, param{name: nameSigma, kind: kindNoise})
	}

	return ps
}

// slots maps parameter names to draw-vector indices; -1 marks absence.
type slots struct {
	a1, alpha1               int
	a2, alpha2, mu2, lambda2 int
	a3, alpha3, mu3, lambda3 int
	a4, lambda4              int
	c, sigma                 int
}

func slotsOf(layout []param) slots {
	ix := slots{
		a1: -1, alpha1: -1,
		a2: -1, alpha2: -1, mu2: -1, lambda2: -1,
		a3: -1, alpha3: -1, mu3: -1, lambda3: -1,
		a4: -1, lambda4: -1,
		c: -1, sigma: -1,
	}
	for j, pm := range layout {
		switch pm.name {
		case schedule.NameA1:
			ix.a1 = j
		case schedule.NameAlpha1:
			ix.alpha1 = j
		case schedule.NameA2:
			ix.a2 = j
		case schedule.NameAlpha2:
			ix.alpha2 = j
		case schedule.NameMu2:
			ix.mu2 = j
		case schedule.NameLambda2:
			ix.lambda2 = j
		case schedule.NameA3:
			ix.a3 = j
		case schedule.NameAlpha3:
			ix.alpha3 = j
		case schedule.NameMu3:
			ix.mu3 = j
		case schedule.NameLambda3:
			ix.lambda3 = j
		case schedule.NameA4:
			ix.a4 = j
		case schedule.NameLambda4:
			ix.lambda4 = j
		case schedule.NameC:
			ix.c = j
		case nameSigma:
			ix.sigma = j
		}
	}

	return ix
}

// posterior implements mcmc.Target for the selected families and data.
// It is stateless across calls and safe for concurrent chains.
type posterior struct {
	like       Likelihood
	data       Data
	layout     []param
	ix         slots
	sigmaFixed float64
}

// newPosterior assembles the model for validated data.
func newPosterior(spec Spec, data Data, like Likelihood) *posterior {
	estSigma := like == LikelihoodNormal && data.Sigma == 0
	layout := buildLayout(spec, estSigma)

	return &posterior{
		like:       like,
		data:       data,
		layout:     layout,
		ix:         slotsOf(layout),
		sigmaFixed: data.Sigma,
	}
}

// names lists the free parameters in draw-column order.
func (p *posterior) names() []string {
	out := make([]string, len(p.layout))
	for j, pm := range p.layout {
		out[j] = pm.name
	}

	return out
}

// Dim implements mcmc.Target.
func (p *posterior) Dim() int { return len(p.layout) }

// LogDensity implements mcmc.Target. Points whose transform, schedule or
// gradient degenerate numerically report zero posterior mass.
func (p *posterior) LogDensity(z []float64) float64 {
	lp, _, ok := p.evaluate(z)
	if !ok {
		return math.Inf(-1)
	}

	return lp
}

// Gradient implements mcmc.Target. At rejected points the gradient is
// zero so the sampler backs off instead of chasing infinities.
func (p *posterior) Gradient(z []float64) []float64 {
	_, grad, ok := p.evaluate(z)
	if !ok {
		return make([]float64, len(p.layout))
	}

	return grad
}

// evaluate computes the log posterior and its gradient on the sampling
// scale in one pass. The third return is false when the point must be
// rejected outright.
func (p *posterior) evaluate(z []float64) (float64, []float64, bool) {
	n := len(p.layout)
	theta := make([]float64, n)
	for j, zj := range z {
		theta[j] = math.Exp(zj)
		if math.IsInf(theta[j], 1) {
			return 0, nil, false
		}
	}

	ix := p.ix
	sigma := p.sigmaFixed
	if ix.sigma >= 0 {
		sigma = theta[ix.sigma]
	}
	if p.like == LikelihoodNormal && sigma <= 0 {
		return 0, nil, false
	}

	gradTheta := make([]float64, n)
	ll := 0.0
	for i, x := range p.data.Ages {
		// Family terms and the schedule value. A term that underflowed to
		// zero carries zero partials, so it is skipped below.
		var f1, f2, f3, f4, t2, e2, t3, e3 float64
		m := theta[ix.c]
		if ix.a1 >= 0 {
			f1 = theta[ix.a1] * math.Exp(theta[ix.alpha1]*x)
			m += f1
		}
		if ix.a2 >= 0 {
			t2 = x - theta[ix.mu2]
			e2 = math.Exp(-theta[ix.lambda2] * t2)
			f2 = theta[ix.a2] * math.Exp(-theta[ix.alpha2]*t2-e2)
			m += f2
		}
		if ix.a3 >= 0 {
			t3 = x - theta[ix.mu3]
			e3 = math.Exp(-theta[ix.lambda3] * t3)
			f3 = theta[ix.a3] * math.Exp(-theta[ix.alpha3]*t3-e3)
			m += f3
		}
		if ix.a4 >= 0 {
			f4 = theta[ix.a4] * math.Exp(theta[ix.lambda4]*x)
			m += f4
		}
		if m <= 0 || math.IsInf(m, 0) || math.IsNaN(m) {
			return 0, nil, false
		}

		// Observation term and its derivative in m.
		var dm float64
		switch p.like {
		case LikelihoodPoisson:
			y, pop := p.data.Migrants[i], p.data.Pop[i]
			lg, _ := math.Lgamma(y + 1)
			ll += y*math.Log(pop*m) - pop*m - lg
			dm = y/m - pop
		case LikelihoodNormal:
			r := p.data.Rates[i] - m
			ll += dist.Normal.Logp(m, sigma, p.data.Rates[i])
			dm = r / (sigma * sigma)
			if ix.sigma >= 0 {
				gradTheta[ix.sigma] += r*r/(sigma*sigma*sigma) - 1/sigma
			}
		}

		// Chain rule: accumulate d ll / d theta through d m / d theta.
		gradTheta[ix.c] += dm
		if f1 > 0 {
			gradTheta[ix.a1] += dm * f1 / theta[ix.a1]
			gradTheta[ix.alpha1] += dm * x * f1
		}
		if f2 > 0 {
			gradTheta[ix.a2] += dm * f2 / theta[ix.a2]
			gradTheta[ix.alpha2] -= dm * t2 * f2
			gradTheta[ix.lambda2] += dm * f2 * t2 * e2
			gradTheta[ix.mu2] += dm * f2 * (theta[ix.alpha2] - theta[ix.lambda2]*e2)
		}
		if f3 > 0 {
			gradTheta[ix.a3] += dm * f3 / theta[ix.a3]
			gradTheta[ix.alpha3] -= dm * t3 * f3
			gradTheta[ix.lambda3] += dm * f3 * t3 * e3
			gradTheta[ix.mu3] += dm * f3 * (theta[ix.alpha3] - theta[ix.lambda3]*e3)
		}
		if f4 > 0 {
			gradTheta[ix.a4] += dm * f4 / theta[ix.a4]
			gradTheta[ix.lambda4] += dm * x * f4
		}
	}

	// Priors on the natural scale, plus the log-Jacobian of theta=exp(z).
	lp := ll
	for j, pm := range p.layout {
		th := theta[j]
		switch pm.kind {
		case kindIntensity:
			lp += dist.Normal.Logp(0, priorIntensitySigma, th)
			gradTheta[j] -= th / (priorIntensitySigma * priorIntensitySigma)
		case kindShape:
			lp += dist.Normal.Logp(0, priorShapeSigma, th)
			gradTheta[j] -= th / (priorShapeSigma * priorShapeSigma)
		case kindAgeCenter:
			lp += dist.Normal.Logp(pm.loc, priorCenterSigma, th)
			gradTheta[j] -= (th - pm.loc) / (priorCenterSigma * priorCenterSigma)
		case kindNoise:
			lp += dist.Normal.Logp(0, priorNoiseSigma, th)
			gradTheta[j] -= th / (priorNoiseSigma * priorNoiseSigma)
		}
		lp += z[j]
	}
	if math.IsNaN(lp) || math.IsInf(lp, 0) {
		return 0, nil, false
	}

	// Transform to the sampling scale: d/dz = (d/dtheta)*theta, plus 1
	// from the Jacobian term.
	grad := make([]float64, n)
	for j := range grad {
		grad[j] = gradTheta[j]*theta[j] + 1
		if math.IsNaN(grad[j]) || math.IsInf(grad[j], 0) {
			return 0, nil, false
		}
	}

	return lp, grad, true
}

// paramsFromDraw rebuilds a schedule from one natural-scale draw row.
func (p *posterior) paramsFromDraw(draw []float64) schedule.Params {
	ix := p.ix
	out := schedule.Params{C: draw[ix.c]}
	if ix.a1 >= 0 {
		out.PreWorking = &schedule.PreWorking{A1: draw[ix.a1], Alpha1: draw[ix.alpha1]}
	}
	if ix.a2 >= 0 {
		out.Working = &schedule.Working{
			A2:      draw[ix.a2],
			Alpha2:  draw[ix.alpha2],
			Mu2:     draw[ix.mu2],
			Lambda2: draw[ix.lambda2],
		}
	}
	if ix.a3 >= 0 {
		out.Retirement = &schedule.Retirement{
			A3:      draw[ix.a3],
			Alpha3:  draw[ix.alpha3],
			Mu3:     draw[ix.mu3],
			Lambda3: draw[ix.lambda3],
		}
	}
	if ix.a4 >= 0 {
		out.PostRetirement = &schedule.PostRetirement{A4: draw[ix.a4], Lambda4: draw[ix.lambda4]}
	}

	return out
}
