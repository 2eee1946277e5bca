// types.go defines the estimation inputs (Spec, Data, Options), the
// detached PosteriorResult tables, the notice stream and the error
// taxonomy.

package estimate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cran/rcbayes/mcmc"
)

// Likelihood identifies which observation model the data selected.
type Likelihood int

const (
	// LikelihoodPoisson models migrant counts against population at risk.
	LikelihoodPoisson Likelihood = iota + 1

	// LikelihoodNormal models observed rates with Gaussian noise.
	LikelihoodNormal
)

// String names the likelihood the way notices and logs render it.
func (l Likelihood) String() string {
	switch l {
	case LikelihoodPoisson:
		return "poisson"
	case LikelihoodNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// MarshalText makes the likelihood render as its name in JSON exports.
func (l Likelihood) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Configuration sentinels. ErrConfiguration is the root: every specific
// cause wraps it.
var (
	// ErrConfiguration is the root sentinel for contradictory or malformed
	// estimation inputs. No sampling is attempted after it.
	ErrConfiguration = errors.New("estimate: invalid configuration")

	// ErrDataModality reports data that selects neither or both of the
	// counts and rates paths.
	ErrDataModality = fmt.Errorf("%w: exactly one of counts or rates data", ErrConfiguration)

	// ErrDataLength reports observation slices whose lengths disagree with
	// the age sequence.
	ErrDataLength = fmt.Errorf("%w: data length mismatch", ErrConfiguration)

	// ErrDataValue reports an observation outside its legal range.
	ErrDataValue = fmt.Errorf("%w: data value out of range", ErrConfiguration)

	// ErrCredibleLevel reports an Options.Level outside (0,1).
	ErrCredibleLevel = fmt.Errorf("%w: credible level outside (0,1)", ErrConfiguration)
)

// Spec selects which model families are estimated. Families left false
// are omitted from the model entirely, not fixed at zero: their
// parameters get no priors and no draws. The baseline c is always
// estimated, so the zero Spec is legal and fits a constant schedule.
type Spec struct {
	PreWorking     bool
	Working        bool
	Retirement     bool
	PostRetirement bool
}

// Data carries the observations. Exactly one modality must be populated:
//
//   - counts: Migrants and Pop together, both parallel to Ages. Migrant
//     entries are whole non-negative numbers, population entries are
//     strictly positive. Selects the Poisson likelihood.
//   - rates: Rates parallel to Ages. Selects the Normal likelihood, with
//     observation noise either fixed at Sigma (when positive) or
//     estimated as a model parameter (when Sigma is 0).
//
// Ages must be finite and non-empty. Estimate copies all slices before
// sampling, so callers may reuse their buffers immediately.
type Data struct {
	Ages     []float64
	Migrants []float64
	Pop      []float64
	Rates    []float64
	Sigma    float64
}

// Options bundles the estimation knobs beyond model and data. The zero
// value selects every default, so Options{} is ready to use.
type Options struct {
	// Config is the pass-through sampling configuration; zero fields take
	// the mcmc defaults (4 chains, 2000 iterations, half warmup).
	Config mcmc.Config

	// Engine runs the chains; nil selects the bundled NUTS engine.
	Engine mcmc.Engine

	// Level is the credible mass of every reported interval, default
	// 0.95.
	Level float64

	// Logger receives the informational and warning messages that also
	// land in Result.Notices; nil selects slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the fully resolved default options, minus the
// Engine and Logger instances which stay nil until Estimate fills them.
func DefaultOptions() Options {
	return Options{Config: mcmc.DefaultConfig(), Level: defaultLevel}
}

const defaultLevel = 0.95

// resolved fills every unset option.
func (o Options) resolved() Options {
	o.Config = o.Config.Resolved()
	if o.Engine == nil {
		o.Engine = &mcmc.NUTS{}
	}
	if o.Level == 0 {
		o.Level = defaultLevel
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	return o
}

// validate checks the resolved options. Sampling configuration defects
// keep their mcmc sentinel identity.
func (o Options) validate() error {
	if o.Level <= 0 || o.Level >= 1 {
		return fmt.Errorf("%w: %v", ErrCredibleLevel, o.Level)
	}

	return o.Config.Validate()
}

// NoticeLevel grades a Notice.
type NoticeLevel string

const (
	LevelInfo    NoticeLevel = "info"
	LevelWarning NoticeLevel = "warning"
)

// Notice codes, stable for programmatic filtering.
const (
	// NoticeLikelihood announces which observation model the data
	// selected.
	NoticeLikelihood = "likelihood"

	// NoticeRhat warns about a potential-scale-reduction statistic above
	// the convergence threshold.
	NoticeRhat = "rhat"

	// NoticeESS warns about a low effective sample size.
	NoticeESS = "effective_sample_size"
)

// Notice is one user-visible message of a run: informational selections
// and non-fatal convergence warnings. Notices never abort a call; they
// ride along in the Result and mirror into the configured logger.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}

// ParamSummary is one row of the posterior parameter table: median and
// the credible bounds at the configured level, on the natural scale.
type ParamSummary struct {
	Name   string  `json:"variable"`
	Median float64 `json:"median"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

// ConvergenceRow is one row of the convergence table: grand mean, Monte
// Carlo standard error of the mean, effective sample size and split
// R-hat.
type ConvergenceRow struct {
	Name   string  `json:"variable"`
	Mean   float64 `json:"mean"`
	SEMean float64 `json:"se_mean"`
	ESS    float64 `json:"n_eff"`
	Rhat   float64 `json:"r_hat"`
}

// FitPoint is one row of the fitted-curve table: the observed rate at an
// age, the posterior median curve with its credible band, and the squared
// residual of the median against the observation. On the counts path the
// observed rate is migrants over population.
type FitPoint struct {
	Age      float64 `json:"age"`
	Observed float64 `json:"data"`
	Median   float64 `json:"median"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	SqErr    float64 `json:"squared_err"`
}

// Result is the detached outcome of one estimation call: draw matrices on
// the natural parameter scale plus the three summary tables. It holds no
// reference back to the engine; everything is plain data owned by the
// caller.
//
// Chains are excluded from JSON exports; WriteJSON serializes the tables
// and notices only.
type Result struct {
	// Likelihood records which observation model ran.
	Likelihood Likelihood `json:"likelihood"`

	// Names lists the free parameters in draw-column order.
	Names []string `json:"parameters"`

	// Chains holds the post-warmup draws, one matrix per chain, columns
	// ordered as Names, values on the natural (constrained) scale.
	Chains []mcmc.Chain `json:"-"`

	// Summary is the parameter table (median and credible bounds).
	Summary []ParamSummary `json:"pars"`

	// Fit is the per-age fitted curve with its credible band.
	Fit []FitPoint `json:"fit"`

	// Convergence is the per-parameter diagnostic table.
	Convergence []ConvergenceRow `json:"convergence"`

	// Notices carries the informational and warning messages of the run.
	Notices []Notice `json:"notices"`
}
