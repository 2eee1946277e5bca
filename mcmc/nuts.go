// nuts.go bundles the default Engine: the no-U-turn sampler from the
// infergo probabilistic-programming library, one sampler instance per
// chain, chains run in parallel. Gradients come from the Target itself,
// so no source-transformation tooling is involved.

package mcmc

import (
	"context"
	"fmt"
	"math"

	"bitbucket.org/dtolpin/infergo/infer"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Warmup adaptation knobs, following the conventions of infergo's own
// depth-adapter examples: a slow dual-averaging rate and roughly twenty
// adaptation blocks per warmup phase.
const (
	adaptRate      = 0.01
	adaptMinBlock  = 10
	adaptBlockFrac = 20
)

// elementalTarget adapts a Target to the sampling library's elemental
// model contract: Observe evaluates the log density and caches the
// gradient for the framework to fetch immediately afterwards. One
// adapter per chain; the gradient cache is chain-local state.
type elementalTarget struct {
	target Target
	grad   []float64
}

// Observe returns the log density at x and refreshes the gradient cache.
func (m *elementalTarget) Observe(x []float64) float64 {
	m.grad = m.target.Gradient(x)

	return m.target.LogDensity(x)
}

// Gradient returns the gradient at the point of the last Observe call.
func (m *elementalTarget) Gradient() []float64 {
	return m.grad
}

// NUTS is the bundled Engine. The zero value is ready to use; all run
// parameters arrive through Config.
//
// The warmup phase adapts the integrator step with the sampling
// library's depth adapter: Config.AdaptDelta sets the target trajectory
// depth (a higher acceptance target asks for deeper trees, hence a
// smaller step) and the warmup draws feed the dual-averaging update
// before being discarded. A positive Config.StepSize opts out of
// adaptation and fixes the step for the whole run; there divergence
// surfaces as rejected transitions that depress the effective sample
// size in Diagnose, not as a separate engine report.
type NUTS struct{}

// Run samples cfg.Chains independent chains from t, starting chain i at
// init[i]. Initial points must have finite log density; a degenerate
// start is an ErrEngine failure before any sampling happens. Chains run
// concurrently and the first failure cancels the rest.
func (e *NUTS) Run(ctx context.Context, t Target, init [][]float64, cfg Config) ([]Chain, error) {
	cfg = cfg.Resolved()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dim := t.Dim()
	if dim < 1 {
		return nil, fmt.Errorf("%w: target dimension %d", ErrEngine, dim)
	}
	if len(init) != cfg.Chains {
		return nil, fmt.Errorf("%w: %d initial points for %d chains", ErrEngine, len(init), cfg.Chains)
	}
	for i, x0 := range init {
		if len(x0) != dim {
			return nil, fmt.Errorf("%w: chain %d initial point has %d coordinates, want %d",
				ErrEngine, i, len(x0), dim)
		}
		if lp := t.LogDensity(x0); math.IsNaN(lp) || math.IsInf(lp, 0) {
			return nil, fmt.Errorf("%w: chain %d has non-finite log density at initialization",
				ErrEngine, i)
		}
	}

	eps := cfg.StepSize
	if eps == 0 {
		eps = initialStepSize(cfg.AdaptDelta, dim)
	}

	chains := make([]Chain, cfg.Chains)
	g, gctx := errgroup.WithContext(ctx)
	for i := range chains {
		i := i
		g.Go(func() error {
			draws, err := sampleChain(gctx, t, init[i], cfg, eps)
			if err != nil {
				return fmt.Errorf("chain %d: %w", i, err)
			}
			chains[i] = Chain{Draws: draws}

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return chains, nil
}

// sampleChain runs one chain to completion: the warmup phase adapts the
// step (or is discarded plainly on a fixed-step run), then the
// cfg.Kept() retained draws are copied row by row into a fresh matrix so
// the result is fully detached from the sampler.
func sampleChain(ctx context.Context, t Target, x0 []float64, cfg Config, eps float64) (*mat.Dense, error) {
	sampler := &infer.NUTS{Eps: eps, MaxDepth: cfg.MaxTreeDepth}
	samples := make(chan []float64)

	// The sampler advances x in place; keep the caller's slice intact.
	x := append([]float64(nil), x0...)
	sampler.Sample(&elementalTarget{target: t}, x, samples)

	// Cancellation watchdog: Stop drains the draw stream, which unblocks
	// any pending receive below, including the adapter's.
	watch := make(chan struct{})
	defer close(watch)
	go func() {
		select {
		case <-ctx.Done():
			sampler.Stop()
		case <-watch:
		}
	}()

	if cfg.StepSize == 0 && cfg.Warmup > 0 {
		adapter := &infer.DepthAdapter{
			DualAveraging: infer.DualAveraging{Rate: adaptRate},
			Depth:         targetDepth(cfg.AdaptDelta, cfg.MaxTreeDepth),
			NAdpt:         adaptBlock(cfg.Warmup),
			// A negative gradient floor disables early termination, so
			// the adapter consumes exactly the warmup draws and the kept
			// phase starts at a known iteration.
			MinGrad: -1,
		}
		adapter.Adapt(sampler, samples, cfg.Warmup)
	} else {
		for n := 0; n < cfg.Warmup; n++ {
			if _, ok := <-samples; !ok {
				return nil, stoppedErr(ctx, n, cfg)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		sampler.Stop()

		return nil, err
	}

	dim := t.Dim()
	draws := mat.NewDense(cfg.Kept(), dim, nil)
	for n := 0; n < cfg.Kept(); n++ {
		draw, ok := <-samples
		if !ok {
			return nil, stoppedErr(ctx, cfg.Warmup+n, cfg)
		}
		if len(draw) != dim {
			sampler.Stop()

			return nil, fmt.Errorf("%w: draw has %d coordinates, want %d",
				ErrEngine, len(draw), dim)
		}
		draws.SetRow(n, draw)
	}
	sampler.Stop()

	return draws, nil
}

// stoppedErr classifies a prematurely closed draw stream: cancellation
// when the watchdog fired, a hard engine failure otherwise (the sampler
// recovers its own panics by closing the stream).
func stoppedErr(ctx context.Context, n int, cfg Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return fmt.Errorf("%w: sampler stopped after %d of %d iterations",
		ErrEngine, n, cfg.Iterations)
}

// initialStepSize seeds the warmup adaptation (or fixes the run when
// adaptation is off): higher acceptance targets start smaller, shrunk
// further with dimension where integrator error accumulates.
func initialStepSize(adaptDelta float64, dim int) float64 {
	return (1 - adaptDelta) / (4 * math.Sqrt(float64(dim)))
}

// targetDepth maps the acceptance target onto the trajectory-depth
// scale the adapter optimizes. The anchor reproduces the adapter's own
// default depth of 5 at the default target of 0.8; the result never
// exceeds the configured doubling bound.
func targetDepth(adaptDelta float64, maxDepth int) float64 {
	return math.Min(1+5*adaptDelta, float64(maxDepth))
}

// adaptBlock sizes the dual-averaging update block so a warmup phase
// spans about adaptBlockFrac updates.
func adaptBlock(warmup int) int {
	if n := warmup / adaptBlockFrac; n > adaptMinBlock {
		return n
	}

	return adaptMinBlock
}
