package inference

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// KruskalWallis is the rank-based analogue of one-way ANOVA. H is corrected for ties
// and referred to a chi-square distribution with k-1 degrees of freedom.
type KruskalWallis struct{}

// Name returns the test name
func (KruskalWallis) Name() string { return "Kruskal-Wallis" }

// Test computes the tie-corrected H statistic and its p-value
func (KruskalWallis) Test(groups [][]float64) (TestResult, error) {
	k := len(groups)
	if k < 2 {
		return undefined(), fmt.Errorf("%w: Kruskal-Wallis needs at least 2 groups, got %d", ErrTooFewSamples, k)
	}
	for _, g := range groups {
		if len(g) == 0 {
			return undefined(), fmt.Errorf("%w: Kruskal-Wallis got an empty group", ErrTooFewSamples)
		}
	}

	pooled := make([]float64, 0, totalSize(groups))
	for _, g := range groups {
		pooled = append(pooled, g...)
	}
	ranks, tieSum := averageRanks(pooled)

	n := float64(len(pooled))
	correction := 1 - tieSum/(n*n*n-n)
	if correction <= 0 {
		return undefined(), fmt.Errorf("%w: all numbers are identical", ErrUndefinedStatistic)
	}

	h := 0.0
	offset := 0
	for _, g := range groups {
		rankSum := 0.0
		for i := range g {
			rankSum += ranks[offset+i]
		}
		offset += len(g)
		h += rankSum * rankSum / float64(len(g))
	}
	h = 12/(n*(n+1))*h - 3*(n+1)
	h /= correction

	dof := float64(k - 1)
	chi := distuv.ChiSquared{K: dof}
	return TestResult{Statistic: h, PValue: clampProbability(chi.Survival(h)), DoF: dof}, nil
}

// averageRanks assigns 1-based ranks, averaging ties, and returns Σ(t³-t) over tie groups
func averageRanks(values []float64) ([]float64, float64) {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, len(values))
	tieSum := 0.0
	for i := 0; i < len(idx); {
		j := i + 1
		for j < len(idx) && values[idx[j]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j+1) / 2 // mean of ranks i+1..j
		for t := i; t < j; t++ {
			ranks[idx[t]] = avg
		}
		if t := float64(j - i); t > 1 {
			tieSum += t*t*t - t
		}
		i = j
	}
	return ranks, tieSum
}
