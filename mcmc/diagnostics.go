// diagnostics.go computes convergence statistics from chain draws: the
// split potential-scale-reduction statistic, autocorrelation-discounted
// effective sample size, and the Monte Carlo standard error of the mean.
// Everything here is plain numerics on the Chain matrices, independent of
// whichever engine produced them.

package mcmc

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Quantiles returns the empirical quantiles of draws at the cumulative
// probabilities ps, in the order given. draws is copied and sorted
// internally, so the input is never mutated and need not be ordered.
//
// Complexity: O(n log n) for the sort, O(len(ps)) lookups after.
func Quantiles(draws []float64, ps ...float64) []float64 {
	sorted := append([]float64(nil), draws...)
	sort.Float64s(sorted)

	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = stat.Quantile(p, stat.Empirical, sorted, nil)
	}

	return out
}

// Diagnose computes per-parameter Diagnostics across a set of chains.
//
// Each chain is split in half, so even a single chain yields a
// between-sequence comparison; with m chains of n draws the statistics
// run over 2m sequences of n/2 draws (the middle draw of an odd-length
// chain is dropped). Rhat near 1 indicates the sequences agree; ESS
// discounts the pooled draw count by the estimated autocorrelation time.
//
// Degenerate inputs with zero variance yield NaN Rhat/ESS/MCSE rather
// than an error: the mean is still well defined and callers decide how
// loudly to warn.
//
// Complexity: O(dim · seqs · n · L) where L is the truncation lag of the
// autocorrelation sum, usually far below n.
func Diagnose(chains []Chain) ([]Diagnostics, error) {
	if len(chains) == 0 {
		return nil, fmt.Errorf("%w: no chains", ErrShapeMismatch)
	}
	n, d := chains[0].Len(), chains[0].Dim()
	for i, c := range chains[1:] {
		if c.Len() != n || c.Dim() != d {
			return nil, fmt.Errorf("%w: chain %d is %dx%d, chain 0 is %dx%d",
				ErrShapeMismatch, i+1, c.Len(), c.Dim(), n, d)
		}
	}
	if d < 1 {
		return nil, fmt.Errorf("%w: zero parameter dimension", ErrShapeMismatch)
	}
	if n < 4 {
		return nil, fmt.Errorf("%w: %d draws per chain, need >= 4", ErrInsufficientDraws, n)
	}

	out := make([]Diagnostics, d)
	for j := 0; j < d; j++ {
		out[j] = diagnoseParam(splitSequences(chains, j))
	}

	return out, nil
}

// splitSequences extracts parameter j from every chain and halves each
// draw sequence, first half and last half, dropping the middle draw when
// the length is odd.
func splitSequences(chains []Chain, j int) [][]float64 {
	n := chains[0].Len()
	half := n / 2

	seqs := make([][]float64, 0, 2*len(chains))
	for _, c := range chains {
		col := c.Param(j)
		seqs = append(seqs, col[:half], col[n-half:])
	}

	return seqs
}

// diagnoseParam runs the scalar diagnostics over split sequences of equal
// length.
func diagnoseParam(seqs [][]float64) Diagnostics {
	m := len(seqs)
	n := len(seqs[0])

	means := make([]float64, m)
	variances := make([]float64, m)
	for k, s := range seqs {
		means[k], variances[k] = stat.MeanVariance(s, nil)
	}

	// w: within-sequence variance. b: variance of the sequence means,
	// which already carries the 1/n scaling of the classical B statistic.
	w := stat.Mean(variances, nil)
	b := stat.Variance(means, nil)
	varPlus := float64(n-1)/float64(n)*w + b

	diag := Diagnostics{Mean: stat.Mean(means, nil)}
	if w <= 0 || varPlus <= 0 {
		diag.Rhat = math.NaN()
		diag.ESS = math.NaN()
		diag.MCSE = math.NaN()

		return diag
	}

	diag.Rhat = math.Sqrt(varPlus / w)

	total := float64(m * n)
	tau := correlationTime(seqs, means, w, varPlus)
	// Superefficient estimates from antithetic noise are capped the way
	// the reference samplers cap them.
	tau = math.Max(tau, 1/math.Log10(math.Max(total, 10)))

	diag.ESS = total / tau
	diag.MCSE = math.Sqrt(varPlus / diag.ESS)

	return diag
}

// correlationTime estimates the integrated autocorrelation time with
// Geyer's initial monotone positive-pair truncation: consecutive
// autocorrelation pairs are summed while positive, forced non-increasing,
// and the sum stops at the first non-positive pair.
func correlationTime(seqs [][]float64, means []float64, w, varPlus float64) float64 {
	n := len(seqs[0])

	sumPairs := 0.0
	prev := math.Inf(1)
	for k := 0; 2*k+1 < n; k++ {
		rhoEven := 1 - (w-meanAutocov(seqs, means, 2*k))/varPlus
		rhoOdd := 1 - (w-meanAutocov(seqs, means, 2*k+1))/varPlus

		pair := rhoEven + rhoOdd
		if pair <= 0 {
			break
		}
		if pair > prev {
			pair = prev
		}
		sumPairs += pair
		prev = pair
	}

	// The lag-zero pair opens with rho=1 exactly, so the full sum
	// 1 + 2*sum(rho_t, t>=1) telescopes to 2*sumPairs - 1.
	return 2*sumPairs - 1
}

// meanAutocov averages the lag-t autocovariance across sequences, each
// scaled with the n-1 divisor so the lag-0 value equals the sequence
// sample variance.
func meanAutocov(seqs [][]float64, means []float64, t int) float64 {
	total := 0.0
	for k, s := range seqs {
		mu := means[k]
		acc := 0.0
		for i := 0; i+t < len(s); i++ {
			acc += (s[i] - mu) * (s[i+t] - mu)
		}
		total += acc / float64(len(s)-1)
	}

	return total / float64(len(seqs))
}
