// presets.go ships ready-made parameter mappings for demos, tests and
// quick starts. The values are illustrative schedules in the shape ranges
// reported for national migration data, not estimates for any particular
// population; fit real data with the estimate package instead.

package schedule

// StandardParams returns an illustrative labor-dominant parameter set:
// a working-age hump peaking in the early twenties over a small constant
// baseline. The mapping is fresh on every call and safe to mutate.
func StandardParams() map[string]float64 {
	return map[string]float64{
		NameA2:      0.06,
		NameAlpha2:  0.1,
		NameMu2:     20,
		NameLambda2: 0.4,
		NameC:       0.003,
	}
}

// StandardRetirementParams returns StandardParams with an added
// retirement hump around age 67, the two-peak profile typical of
// destinations that attract both labor and retirement migration.
func StandardRetirementParams() map[string]float64 {
	out := StandardParams()
	out[NameA3] = 0.02
	out[NameAlpha3] = 0.25
	out[NameMu3] = 67
	out[NameLambda3] = 0.6

	return out
}
