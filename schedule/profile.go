// profile.go derives shape descriptors of a schedule. The two hump
// families have a closed-form interior maximum, which demographers read
// as the labor-force and retirement peak ages.

package schedule

import "math"

// Peak locates the maximum of one hump component: the age at which that
// component alone is largest, and the component's value there. Rate is
// the family term only, not the full schedule, so overlapping families
// and the baseline do not blur the descriptor.
type Peak struct {
	Age  float64
	Rate float64
}

// humpPeak solves d/dt(−alpha·t − exp(−lambda·t)) = 0, giving
// t = ln(lambda/alpha)/lambda relative to mu. The stationary point is the
// unique maximum whenever alpha and lambda are both positive.
func humpPeak(a, alpha, mu, lambda float64) (Peak, bool) {
	if alpha <= 0 || lambda <= 0 {
		return Peak{}, false
	}
	age := mu + math.Log(lambda/alpha)/lambda

	return Peak{Age: age, Rate: hump(a, alpha, mu, lambda, age)}, true
}

// LaborPeak returns the peak of the working-age component. The second
// return is false when the family is inactive or its shape parameters are
// not both positive, in which case the component has no interior maximum.
func (p Params) LaborPeak() (Peak, bool) {
	f := p.Working
	if f == nil {
		return Peak{}, false
	}

	return humpPeak(f.A2, f.Alpha2, f.Mu2, f.Lambda2)
}

// RetirementPeak returns the peak of the retirement component, under the
// same rules as LaborPeak.
func (p Params) RetirementPeak() (Peak, bool) {
	f := p.Retirement
	if f == nil {
		return Peak{}, false
	}

	return humpPeak(f.A3, f.Alpha3, f.Mu3, f.Lambda3)
}
