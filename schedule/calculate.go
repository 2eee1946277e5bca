// calculate.go evaluates resolved parameter sets: the full schedule, the
// per-family decomposition, and the Parse+Evaluate convenience wrapper.

package schedule

import (
	"fmt"
	"math"
)

// hump is the double-exponential component shared by the working-age and
// retirement families: a·exp(−alpha·(x−mu) − exp(−lambda·(x−mu))).
func hump(a, alpha, mu, lambda, x float64) float64 {
	t := x - mu

	return a * math.Exp(-alpha*t-math.Exp(-lambda*t))
}

// At evaluates the schedule at a single age. Inactive families contribute
// nothing; a Params with no families returns the constant baseline.
func (p Params) At(x float64) float64 {
	m := p.C
	if f := p.PreWorking; f != nil {
		m += f.A1 * math.Exp(f.Alpha1*x)
	}
	if f := p.Working; f != nil {
		m += hump(f.A2, f.Alpha2, f.Mu2, f.Lambda2, x)
	}
	if f := p.Retirement; f != nil {
		m += hump(f.A3, f.Alpha3, f.Mu3, f.Lambda3, x)
	}
	if f := p.PostRetirement; f != nil {
		m += f.A4 * math.Exp(f.Lambda4*x)
	}

	return m
}

// Evaluate computes the schedule over ages and returns a freshly
// allocated slice of the same length. Ages may be any finite or
// non-finite float64 values, in any order, with repeats; output order
// mirrors input order.
//
// Complexity: O(n) time, O(n) extra space.
func (p Params) Evaluate(ages []float64) []float64 {
	out := make([]float64, len(ages))
	for i, x := range ages {
		out[i] = p.At(x)
	}

	return out
}

// EvaluateInto computes the schedule over ages into dst, for callers that
// reuse buffers across many evaluations (the estimate summarizer walks
// thousands of posterior draws this way). dst must have the same length
// as ages; otherwise ErrLengthMismatch is returned and dst is untouched.
func (p Params) EvaluateInto(dst, ages []float64) error {
	if len(dst) != len(ages) {
		return fmt.Errorf("%w: dst has %d entries, ages has %d", ErrLengthMismatch, len(dst), len(ages))
	}
	for i, x := range ages {
		dst[i] = p.At(x)
	}

	return nil
}

// Calculate validates params and evaluates the resulting schedule over
// ages in one call. It is exactly Parse followed by Evaluate; use those
// separately to amortize validation across repeated evaluations.
func Calculate(ages []float64, params map[string]float64) ([]float64, error) {
	p, err := Parse(params)
	if err != nil {
		return nil, err
	}

	return p.Evaluate(ages), nil
}

// Components holds the per-family decomposition of a schedule over an age
// sequence. Baseline carries the constant c at every age; slices of
// inactive families are nil; Total is the element-wise sum of every part
// and equals Evaluate over the same ages.
type Components struct {
	Ages           []float64
	Baseline       []float64
	PreWorking     []float64
	Working        []float64
	Retirement     []float64
	PostRetirement []float64
	Total          []float64
}

// Components evaluates each active family separately. The returned value
// owns all of its slices, including a copy of ages.
//
// Complexity: O(n·k) for n ages and k active families.
func (p Params) Components(ages []float64) Components {
	n := len(ages)
	out := Components{
		Ages:     append([]float64(nil), ages...),
		Baseline: make([]float64, n),
		Total:    make([]float64, n),
	}
	if p.PreWorking != nil {
		out.PreWorking = make([]float64, n)
	}
	if p.Working != nil {
		out.Working = make([]float64, n)
	}
	if p.Retirement != nil {
		out.Retirement = make([]float64, n)
	}
	if p.PostRetirement != nil {
		out.PostRetirement = make([]float64, n)
	}

	for i, x := range ages {
		out.Baseline[i] = p.C
		total := p.C
		if f := p.PreWorking; f != nil {
			v := f.A1 * math.Exp(f.Alpha1*x)
			out.PreWorking[i] = v
			total += v
		}
		if f := p.Working; f != nil {
			v := hump(f.A2, f.Alpha2, f.Mu2, f.Lambda2, x)
			out.Working[i] = v
			total += v
		}
		if f := p.Retirement; f != nil {
			v := hump(f.A3, f.Alpha3, f.Mu3, f.Lambda3, x)
			out.Retirement[i] = v
			total += v
		}
		if f := p.PostRetirement; f != nil {
			v := f.A4 * math.Exp(f.Lambda4*x)
			out.PostRetirement[i] = v
			total += v
		}
		out.Total[i] = total
	}

	return out
}
