// validate.go resolves raw name→value mappings into Params. All input
// checking for the package lives here; evaluation code downstream assumes
// a Params produced by Parse is internally consistent.

package schedule

import "math"

// vocab maps every legal parameter name to its family label.
var vocab = func() map[string]string {
	m := map[string]string{NameC: labelBaseline}
	for _, f := range families {
		for _, n := range f.names {
			m[n] = f.label
		}
	}

	return m
}()

// canonicalOrder lists the full vocabulary in model order, baseline first.
// Validation walks it so error messages are deterministic regardless of
// map iteration order.
var canonicalOrder = func() []string {
	out := make([]string, 0, len(vocab))
	out = append(out, NameC)
	for _, f := range families {
		out = append(out, f.names...)
	}

	return out
}()

// Parse resolves a name→value mapping into a Params value.
//
// Contract:
//   - every key belongs to the 13-parameter vocabulary;
//   - every value is finite;
//   - the baseline c is present;
//   - each family is all-or-none: either every one of its parameters is
//     present (the family is active) or none is (the family is inactive).
//
// A mapping holding only c is legal and yields a constant schedule. On
// the first violation Parse returns a zero Params and a *ValidationError
// wrapping the matching sentinel (ErrUnknownParam, ErrNonFinite,
// ErrMissingBaseline or ErrPartialFamily), all of which also match
// ErrValidation.
func Parse(in map[string]float64) (Params, error) {
	// Stage 1 - vocabulary: reject unrecognized names, all at once.
	var unknown []string
	for name := range in {
		if _, ok := vocab[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return Params{}, newValidationError(ErrUnknownParam, "", unknown)
	}

	// Stage 2 - finiteness: NaN and ±Inf never enter a schedule.
	for _, name := range canonicalOrder {
		v, ok := in[name]
		if !ok {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Params{}, newValidationError(ErrNonFinite, vocab[name], []string{name})
		}
	}

	// Stage 3 - baseline: c is the one unconditionally required parameter.
	c, ok := in[NameC]
	if !ok {
		return Params{}, newValidationError(ErrMissingBaseline, labelBaseline, []string{NameC})
	}

	// Stage 4 - family completeness: all-or-none per family.
	for _, f := range families {
		var missing []string
		for _, n := range f.names {
			if _, present := in[n]; !present {
				missing = append(missing, n)
			}
		}
		if len(missing) != 0 && len(missing) != len(f.names) {
			return Params{}, newValidationError(ErrPartialFamily, f.label, missing)
		}
	}

	// Stage 5 - assembly: complete families become pointers, absent ones
	// stay nil.
	p := Params{C: c}
	if _, active := in[NameA1]; active {
		p.PreWorking = &PreWorking{A1: in[NameA1], Alpha1: in[NameAlpha1]}
	}
	if _, active := in[NameA2]; active {
		p.Working = &Working{
			A2:      in[NameA2],
			Alpha2:  in[NameAlpha2],
			Mu2:     in[NameMu2],
			Lambda2: in[NameLambda2],
		}
	}
	if _, active := in[NameA3]; active {
		p.Retirement = &Retirement{
			A3:      in[NameA3],
			Alpha3:  in[NameAlpha3],
			Mu3:     in[NameMu3],
			Lambda3: in[NameLambda3],
		}
	}
	if _, active := in[NameA4]; active {
		p.PostRetirement = &PostRetirement{A4: in[NameA4], Lambda4: in[NameLambda4]}
	}

	return p, nil
}
