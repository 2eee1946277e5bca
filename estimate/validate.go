// validate.go resolves the data modality and checks every observation
// before any model is built. All failures here wrap ErrConfiguration and
// happen synchronously, with no sampling attempted.

package estimate

import (
	"fmt"
	"math"
)

// resolve determines the likelihood implied by the populated data fields
// and checks each observation against its contract.
func (d Data) resolve() (Likelihood, error) {
	counts := d.Migrants != nil || d.Pop != nil
	rates := d.Rates != nil

	// Stage 1 - modality: exactly one path, fully populated.
	switch {
	case counts && rates:
		return 0, fmt.Errorf("%w: both supplied", ErrDataModality)
	case !counts && !rates:
		return 0, fmt.Errorf("%w: neither supplied", ErrDataModality)
	case counts && (d.Migrants == nil || d.Pop == nil):
		return 0, fmt.Errorf("%w: counts need both migrants and population", ErrDataModality)
	case counts && d.Sigma != 0:
		return 0, fmt.Errorf("%w: sigma applies to the rates path only", ErrDataModality)
	}

	// Stage 2 - ages: non-empty and finite. The evaluator tolerates
	// non-finite ages, a likelihood cannot.
	if len(d.Ages) == 0 {
		return 0, fmt.Errorf("%w: no ages", ErrDataLength)
	}
	for i, x := range d.Ages {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("%w: age[%d] is not finite", ErrDataValue, i)
		}
	}

	// Stage 3 - per-modality content.
	if counts {
		if len(d.Migrants) != len(d.Ages) || len(d.Pop) != len(d.Ages) {
			return 0, fmt.Errorf("%w: ages %d, migrants %d, pop %d",
				ErrDataLength, len(d.Ages), len(d.Migrants), len(d.Pop))
		}
		for i, y := range d.Migrants {
			if math.IsNaN(y) || math.IsInf(y, 0) || y < 0 || y != math.Trunc(y) {
				return 0, fmt.Errorf("%w: migrants[%d] = %v, need a whole non-negative count",
					ErrDataValue, i, y)
			}
		}
		for i, p := range d.Pop {
			if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
				return 0, fmt.Errorf("%w: pop[%d] = %v, need > 0", ErrDataValue, i, p)
			}
		}

		return LikelihoodPoisson, nil
	}

	if len(d.Rates) != len(d.Ages) {
		return 0, fmt.Errorf("%w: ages %d, rates %d", ErrDataLength, len(d.Ages), len(d.Rates))
	}
	for i, r := range d.Rates {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return 0, fmt.Errorf("%w: rates[%d] is not finite", ErrDataValue, i)
		}
	}
	if math.IsNaN(d.Sigma) || math.IsInf(d.Sigma, 0) || d.Sigma < 0 {
		return 0, fmt.Errorf("%w: sigma = %v, need >= 0", ErrDataValue, d.Sigma)
	}

	return LikelihoodNormal, nil
}

// clone detaches the data from the caller's buffers.
func (d Data) clone() Data {
	cp := func(s []float64) []float64 {
		if s == nil {
			return nil
		}

		return append([]float64(nil), s...)
	}

	return Data{
		Ages:     cp(d.Ages),
		Migrants: cp(d.Migrants),
		Pop:      cp(d.Pop),
		Rates:    cp(d.Rates),
		Sigma:    d.Sigma,
	}
}
