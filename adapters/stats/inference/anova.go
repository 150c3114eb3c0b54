package inference

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// OneWayANOVA compares group means assuming normal, equal-variance populations
type OneWayANOVA struct{}

// Name returns the test name
func (OneWayANOVA) Name() string { return "ANOVA" }

// Test computes the F statistic and its upper-tail p-value
func (OneWayANOVA) Test(groups [][]float64) (TestResult, error) {
	k := len(groups)
	n := totalSize(groups)
	if k < 2 {
		return undefined(), fmt.Errorf("%w: ANOVA needs at least 2 groups, got %d", ErrTooFewSamples, k)
	}
	if n <= k {
		return undefined(), fmt.Errorf("%w: ANOVA needs more observations (%d) than groups (%d)", ErrTooFewSamples, n, k)
	}

	grand := 0.0
	for _, g := range groups {
		for _, x := range g {
			grand += x
		}
	}
	grand /= float64(n)

	var ssb, ssw float64
	for _, g := range groups {
		if len(g) == 0 {
			return undefined(), fmt.Errorf("%w: ANOVA got an empty group", ErrTooFewSamples)
		}
		mean := stat.Mean(g, nil)
		ssb += float64(len(g)) * (mean - grand) * (mean - grand)
		for _, x := range g {
			ssw += (x - mean) * (x - mean)
		}
	}

	dfb := float64(k - 1)
	dfw := float64(n - k)
	msb := ssb / dfb
	msw := ssw / dfw

	if msw == 0 {
		if msb == 0 {
			return undefined(), fmt.Errorf("%w: every observation is identical", ErrUndefinedStatistic)
		}
		// Groups are internally constant but differ from each other.
		return TestResult{Statistic: math.Inf(1), PValue: 0, DoF: dfb}, nil
	}

	f := msb / msw
	dist := distuv.F{D1: dfb, D2: dfw}
	return TestResult{Statistic: f, PValue: clampProbability(dist.Survival(f)), DoF: dfb}, nil
}

func undefined() TestResult {
	return TestResult{Statistic: math.NaN(), PValue: math.NaN()}
}
