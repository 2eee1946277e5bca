package estimate_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cran/rcbayes/estimate"
	"github.com/cran/rcbayes/mcmc"
	"github.com/cran/rcbayes/schedule"
)

// stubEngine is the deterministic Engine for summarizer tests: every
// chain draws iid log-scale values around the first initial point, as a
// perfectly converged run would, optionally displaced per chain to
// provoke convergence warnings.
type stubEngine struct {
	shift []float64 // per-chain mean shift on the sampling scale
	err   error
	calls int
}

func (s *stubEngine) Run(_ context.Context, t mcmc.Target, init [][]float64, cfg mcmc.Config) ([]mcmc.Chain, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}

	cfg = cfg.Resolved()
	dim := t.Dim()
	chains := make([]mcmc.Chain, cfg.Chains)
	for c := range chains {
		noise := distuv.Normal{Mu: 0, Sigma: 0.05, Src: mcmc.ChainRNG(cfg.Seed, 1000+c)}
		draws := mat.NewDense(cfg.Kept(), dim, nil)
		for r := 0; r < cfg.Kept(); r++ {
			for j := 0; j < dim; j++ {
				v := init[0][j] + noise.Rand()
				if c < len(s.shift) {
					v += s.shift[c]
				}
				draws.Set(r, j, v)
			}
		}
		chains[c] = mcmc.Chain{Draws: draws}
	}

	return chains, nil
}

// quietOptions wires the stub engine and silences the logger.
func quietOptions(eng mcmc.Engine) estimate.Options {
	return estimate.Options{
		Engine: eng,
		Config: mcmc.Config{Chains: 4, Iterations: 1000, Seed: 5},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// countsData builds a plausible Poisson data set over child and labor ages.
func countsData() estimate.Data {
	return estimate.Data{
		Ages:     []float64{0, 5, 10, 15, 20, 25, 30, 40, 50, 60},
		Migrants: []float64{8, 5, 4, 20, 55, 48, 30, 12, 7, 5},
		Pop:      []float64{1000, 1100, 1050, 980, 900, 950, 1000, 1200, 1100, 900},
	}
}

func TestEstimate_ConfigurationErrors(t *testing.T) {
	ctx := context.Background()
	eng := &stubEngine{}
	opts := quietOptions(eng)
	ages := []float64{0, 1, 2}

	_, err := estimate.Estimate(ctx, estimate.Spec{}, estimate.Data{
		Ages: ages, Migrants: []float64{1, 2, 3}, Pop: []float64{9, 9, 9}, Rates: []float64{0.1, 0.2, 0.3},
	}, opts)
	require.ErrorIs(t, err, estimate.ErrDataModality, "both modalities")

	_, err = estimate.Estimate(ctx, estimate.Spec{}, estimate.Data{Ages: ages}, opts)
	require.ErrorIs(t, err, estimate.ErrDataModality, "neither modality")

	bad := opts
	bad.Level = 1.5
	_, err = estimate.Estimate(ctx, estimate.Spec{}, countsData(), bad)
	require.ErrorIs(t, err, estimate.ErrCredibleLevel)

	bad = opts
	bad.Config.Chains = -1
	_, err = estimate.Estimate(ctx, estimate.Spec{}, countsData(), bad)
	require.ErrorIs(t, err, mcmc.ErrInvalidConfig)

	assert.Zero(t, eng.calls, "configuration defects must fail before sampling")
}

func TestEstimate_PoissonPath(t *testing.T) {
	spec := estimate.Spec{Working: true}
	data := countsData()

	res, err := estimate.Estimate(context.Background(), spec, data, quietOptions(&stubEngine{}))
	require.NoError(t, err)

	assert.Equal(t, estimate.LikelihoodPoisson, res.Likelihood)
	assert.Equal(t, []string{"a2", "alpha2", "mu2", "lambda2", "c"}, res.Names)

	require.NotEmpty(t, res.Notices)
	first := res.Notices[0]
	assert.Equal(t, estimate.LevelInfo, first.Level)
	assert.Equal(t, estimate.NoticeLikelihood, first.Code)
	assert.Contains(t, first.Message, "Poisson")
	assert.Len(t, res.Notices, 1, "well-mixed stub draws raise no warnings")

	require.Len(t, res.Summary, len(res.Names))
	require.Len(t, res.Convergence, len(res.Names))
	require.Len(t, res.Fit, len(data.Ages))
	require.Len(t, res.Chains, 4)

	for _, row := range res.Summary {
		assert.LessOrEqual(t, row.Lower, row.Median, "summary containment: %s", row.Name)
		assert.LessOrEqual(t, row.Median, row.Upper, "summary containment: %s", row.Name)
		assert.Greater(t, row.Lower, 0.0, "draws land on the natural scale, all positive")
	}

	// Stub chains hover around the initial point, so medians land near the
	// initial values on the natural scale.
	init := estimate.InitialValues(spec)
	for _, row := range res.Summary {
		want, ok := init[row.Name]
		require.True(t, ok)
		assert.InDelta(t, 0.0, math.Log(row.Median/want), 1.0, "median near start: %s", row.Name)
	}

	for i, pt := range res.Fit {
		assert.Equal(t, data.Ages[i], pt.Age)
		assert.InDelta(t, data.Migrants[i]/data.Pop[i], pt.Observed, 1e-15, "counts render as rates")
		assert.LessOrEqual(t, pt.Lower, pt.Median, "fit containment at age %v", pt.Age)
		assert.LessOrEqual(t, pt.Median, pt.Upper, "fit containment at age %v", pt.Age)
		assert.InDelta(t, (pt.Observed-pt.Median)*(pt.Observed-pt.Median), pt.SqErr, 1e-15)
	}
}

func TestEstimate_NormalPath(t *testing.T) {
	ctx := context.Background()
	data := estimate.Data{
		Ages:  []float64{0, 10, 20, 30, 40, 50},
		Rates: []float64{0.008, 0.005, 0.055, 0.030, 0.012, 0.007},
	}

	res, err := estimate.Estimate(ctx, estimate.Spec{Working: true}, data, quietOptions(&stubEngine{}))
	require.NoError(t, err)
	assert.Equal(t, estimate.LikelihoodNormal, res.Likelihood)
	assert.Contains(t, res.Names, "sigma", "unset sigma is estimated")
	assert.Contains(t, res.Notices[0].Message, "sigma estimated")

	data.Sigma = 0.01
	res, err = estimate.Estimate(ctx, estimate.Spec{Working: true}, data, quietOptions(&stubEngine{}))
	require.NoError(t, err)
	assert.NotContains(t, res.Names, "sigma", "fixed sigma is not sampled")
	assert.Contains(t, res.Notices[0].Message, "sigma fixed at 0.01")
}

func TestEstimate_BaselineOnly(t *testing.T) {
	res, err := estimate.Estimate(context.Background(), estimate.Spec{}, countsData(), quietOptions(&stubEngine{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, res.Names, "the zero Spec fits a constant schedule")
	require.Len(t, res.Fit, len(countsData().Ages))
}

func TestEstimate_ConvergenceWarnings(t *testing.T) {
	// Chain 0 sits three log-units away from the rest: split R-hat blows
	// up and the warning notices ride along on an intact result.
	eng := &stubEngine{shift: []float64{3, 0, 0, 0}}

	res, err := estimate.Estimate(context.Background(), estimate.Spec{Working: true}, countsData(), quietOptions(eng))
	require.NoError(t, err, "convergence trouble never fails the call")
	require.NotNil(t, res)
	require.Len(t, res.Summary, len(res.Names), "tables stay intact")

	var rhat, ess int
	for _, n := range res.Notices {
		switch n.Code {
		case estimate.NoticeRhat:
			rhat++
			assert.Equal(t, estimate.LevelWarning, n.Level)
		case estimate.NoticeESS:
			ess++
		}
	}
	assert.Greater(t, rhat, 0, "displaced chain must raise R-hat warnings")
	assert.Greater(t, ess, 0, "displaced chain must depress ESS")
}

func TestEstimate_EngineFailure(t *testing.T) {
	eng := &stubEngine{err: mcmc.ErrEngine}

	res, err := estimate.Estimate(context.Background(), estimate.Spec{Working: true}, countsData(), quietOptions(eng))
	require.ErrorIs(t, err, mcmc.ErrEngine)
	assert.Nil(t, res, "no partial result on engine failure")
}

func TestInitialValues(t *testing.T) {
	got := estimate.InitialValues(estimate.Spec{Working: true, Retirement: true})

	assert.Len(t, got, 9)
	for _, name := range []string{"a2", "alpha2", "mu2", "lambda2", "a3", "alpha3", "mu3", "lambda3", "c"} {
		v, ok := got[name]
		require.True(t, ok, name)
		assert.Greater(t, v, 0.0, name)
	}
	_, ok := got["a1"]
	assert.False(t, ok, "inactive families get no starting values")
	_, ok = got["sigma"]
	assert.False(t, ok, "noise initialization is internal")
}

func TestResult_WriteJSON(t *testing.T) {
	res, err := estimate.Estimate(context.Background(), estimate.Spec{Working: true}, countsData(), quietOptions(&stubEngine{}))
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, res.WriteJSON(&sb))

	doc := sb.String()
	assert.Contains(t, doc, `"likelihood": "poisson"`)
	assert.Contains(t, doc, `"pars"`)
	assert.Contains(t, doc, `"fit"`)
	assert.Contains(t, doc, `"convergence"`)
	assert.Contains(t, doc, `"squared_err"`)
	assert.NotContains(t, doc, "Draws", "draw matrices stay out of the export")
}

func TestEstimate_NUTSSmoke(t *testing.T) {
	if testing.Short() {
		t.Skip("sampling smoke test")
	}

	// Rates generated from a known schedule; the bundled engine only has
	// to produce a structurally sound posterior here, not a tight fit.
	ages := []float64{0, 5, 10, 15, 20, 25, 30, 35, 40, 50, 60}
	rates, err := schedule.Calculate(ages, schedule.StandardParams())
	require.NoError(t, err)

	data := estimate.Data{Ages: ages, Rates: rates, Sigma: 0.005}
	opts := estimate.Options{
		Config: mcmc.Config{Chains: 2, Iterations: 400, Seed: 3},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	res, err := estimate.Estimate(context.Background(), estimate.Spec{Working: true}, data, opts)
	require.NoError(t, err)
	require.Equal(t, []string{"a2", "alpha2", "mu2", "lambda2", "c"}, res.Names)

	for _, row := range res.Summary {
		require.False(t, math.IsNaN(row.Median) || math.IsInf(row.Median, 0))
		assert.LessOrEqual(t, row.Lower, row.Median)
		assert.LessOrEqual(t, row.Median, row.Upper)
		assert.Greater(t, row.Lower, 0.0)
	}
	for _, pt := range res.Fit {
		assert.LessOrEqual(t, pt.Lower, pt.Median)
		assert.LessOrEqual(t, pt.Median, pt.Upper)
	}
}

func TestEstimate_RegisterScaleCounts(t *testing.T) {
	if testing.Short() {
		t.Skip("sampling smoke test")
	}

	// Register-scale populations make the likelihood extremely sharp
	// relative to the starting point. Without warmup step adaptation
	// every chain freezes where it started on such data: zero draw
	// variance, NaN diagnostics, and a posterior median for c stuck at
	// its initial value instead of the truth underneath the counts.
	truth, err := schedule.Parse(schedule.StandardParams())
	require.NoError(t, err)

	ages := []float64{0, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 60, 65}
	const pop = 50_000.0
	data := estimate.Data{Ages: ages, Migrants: make([]float64, len(ages)), Pop: make([]float64, len(ages))}
	for i, x := range ages {
		data.Pop[i] = pop
		data.Migrants[i] = math.Round(pop * truth.At(x))
	}

	opts := estimate.Options{
		Config: mcmc.Config{Chains: 2, Iterations: 1000, Seed: 9},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	res, err := estimate.Estimate(context.Background(), estimate.Spec{Working: true}, data, opts)
	require.NoError(t, err)

	for i, c := range res.Chains {
		for j, name := range res.Names {
			assert.Greater(t, stat.Variance(c.Param(j), nil), 0.0,
				"chain %d froze on %s", i, name)
		}
	}
	for _, row := range res.Convergence {
		assert.False(t, math.IsNaN(row.Rhat), "frozen chains leave NaN R-hat: %s", row.Name)
		assert.False(t, math.IsNaN(row.ESS), "frozen chains leave NaN ESS: %s", row.Name)
	}

	// The baseline starts at 0.01 and the counts were generated at
	// 0.003; a sampler that actually moves must pull it well below the
	// start.
	for _, row := range res.Summary {
		if row.Name == "c" {
			assert.Less(t, row.Median, 0.009, "baseline must move toward the data")
		}
	}
}
