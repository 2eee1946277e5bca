// types.go holds the Rogers-Castro parameter vocabulary, the resolved
// Params type and the validation error taxonomy.

package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Parameter names accepted by Parse. The vocabulary is fixed: 12 family
// parameters plus the baseline c. The estimation layer keys its free
// parameters by the same constants.
const (
	NameA1      = "a1"
	NameAlpha1  = "alpha1"
	NameA2      = "a2"
	NameAlpha2  = "alpha2"
	NameMu2     = "mu2"
	NameLambda2 = "lambda2"
	NameA3      = "a3"
	NameAlpha3  = "alpha3"
	NameMu3     = "mu3"
	NameLambda3 = "lambda3"
	NameA4      = "a4"
	NameLambda4 = "lambda4"
	NameC       = "c"
)

// Family labels used in error messages and component reports.
const (
	labelBaseline       = "baseline"
	labelPreWorking     = "pre-working age"
	labelWorking        = "working age"
	labelRetirement     = "retirement"
	labelPostRetirement = "post-retirement"
)

// families lists each optional family with its full parameter set, in
// canonical model order. Parse walks this table; a family is active iff
// every listed name is present.
var families = []struct {
	label string
	names []string
}{
	{labelPreWorking, []string{NameA1, NameAlpha1}},
	{labelWorking, []string{NameA2, NameAlpha2, NameMu2, NameLambda2}},
	{labelRetirement, []string{NameA3, NameAlpha3, NameMu3, NameLambda3}},
	{labelPostRetirement, []string{NameA4, NameLambda4}},
}

// Names returns the full 13-name vocabulary in canonical model order:
// family parameters first, baseline last. The slice is fresh on every
// call and safe to mutate.
func Names() []string {
	return ParamNames(true, true, true, true)
}

// ParamNames lists the parameter names belonging to the selected
// families, in canonical model order with the baseline last. The
// estimation layer orders its free parameters and draw columns the same
// way.
func ParamNames(preWorking, working, retirement, postRetirement bool) []string {
	selected := []bool{preWorking, working, retirement, postRetirement}

	out := make([]string, 0, len(vocab))
	for i, f := range families {
		if selected[i] {
			out = append(out, f.names...)
		}
	}

	return append(out, NameC)
}

// PreWorking holds the childhood component a1·exp(alpha1·x).
type PreWorking struct {
	A1     float64
	Alpha1 float64
}

// Working holds the labor-force component
// a2·exp(−alpha2·(x−mu2) − exp(−lambda2·(x−mu2))).
type Working struct {
	A2      float64
	Alpha2  float64
	Mu2     float64
	Lambda2 float64
}

// Retirement holds the retirement component
// a3·exp(−alpha3·(x−mu3) − exp(−lambda3·(x−mu3))).
type Retirement struct {
	A3      float64
	Alpha3  float64
	Mu3     float64
	Lambda3 float64
}

// PostRetirement holds the old-age component a4·exp(lambda4·x).
type PostRetirement struct {
	A4      float64
	Lambda4 float64
}

// Params is a fully resolved Rogers-Castro parameter set. A nil family
// pointer means the family is inactive and contributes zero to the
// schedule; there is no per-family "missing value" state beyond that.
//
// Params values are normally obtained from Parse, which guarantees that
// every active family is complete. Literal construction is legal and is
// what the estimate package does when it rebuilds schedules from
// posterior draws.
type Params struct {
	// C is the baseline migration intensity, added at every age.
	C float64

	PreWorking     *PreWorking
	Working        *Working
	Retirement     *Retirement
	PostRetirement *PostRetirement
}

// ActiveFamilies returns the labels of the families present in p, in
// canonical model order. An empty slice means the schedule is the
// constant baseline.
func (p Params) ActiveFamilies() []string {
	out := make([]string, 0, len(families))
	if p.PreWorking != nil {
		out = append(out, labelPreWorking)
	}
	if p.Working != nil {
		out = append(out, labelWorking)
	}
	if p.Retirement != nil {
		out = append(out, labelRetirement)
	}
	if p.PostRetirement != nil {
		out = append(out, labelPostRetirement)
	}

	return out
}

// Validation sentinels. ErrValidation is the root: every specific cause
// wraps it, so errors.Is(err, ErrValidation) matches any Parse failure.
var (
	// ErrValidation is the root sentinel for malformed parameter sets.
	ErrValidation = errors.New("schedule: invalid parameter set")

	// ErrMissingBaseline reports an input mapping without the required c.
	ErrMissingBaseline = fmt.Errorf("%w: baseline c is required", ErrValidation)

	// ErrPartialFamily reports a family with some but not all parameters set.
	ErrPartialFamily = fmt.Errorf("%w: family partially specified", ErrValidation)

	// ErrUnknownParam reports a name outside the 13-parameter vocabulary.
	ErrUnknownParam = fmt.Errorf("%w: unknown parameter name", ErrValidation)

	// ErrNonFinite reports a parameter value that is NaN or ±Inf.
	ErrNonFinite = fmt.Errorf("%w: parameter value is not finite", ErrValidation)
)

// ErrLengthMismatch reports an EvaluateInto destination whose length does
// not match the age slice.
var ErrLengthMismatch = errors.New("schedule: destination length mismatch")

// ValidationError describes one concrete defect of an input mapping:
// which family (or the baseline) is affected and which parameter names
// are implicated. It wraps the matching sentinel, so callers can route on
// errors.Is(err, ErrPartialFamily) etc. without inspecting fields.
type ValidationError struct {
	// Family is the label of the affected family, or "baseline" for
	// baseline and vocabulary defects.
	Family string

	// Names lists the implicated parameter names: the missing members of a
	// partial family, the unrecognized keys, or the non-finite entries.
	Names []string

	err error
}

// Error renders the defect with its sorted name list. The family label is
// omitted for vocabulary defects, where the offending names belong to no
// family at all.
func (e *ValidationError) Error() string {
	joined := strings.Join(e.Names, ", ")
	switch {
	case e.Family == "":
		return fmt.Sprintf("%v (%s)", e.err, joined)
	case len(e.Names) == 0:
		return fmt.Sprintf("%v (%s)", e.err, e.Family)
	default:
		return fmt.Sprintf("%v (%s: %s)", e.err, e.Family, joined)
	}
}

// Unwrap exposes the underlying sentinel for errors.Is / errors.As.
func (e *ValidationError) Unwrap() error { return e.err }

// newValidationError sorts names for deterministic messages and binds the
// sentinel.
func newValidationError(sentinel error, family string, names []string) *ValidationError {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	return &ValidationError{Family: family, Names: sorted, err: sentinel}
}
