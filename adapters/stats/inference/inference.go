// Package inference implements the hypothesis tests the analysis engine selects between:
// a normality test, one-way ANOVA, Kruskal-Wallis, chi-square independence and Pearson
// correlation. P-values come from gonum's distributions.
package inference

import (
	"errors"
	"math"
)

// ErrTooFewSamples is returned when a test's minimum sample size is not met
var ErrTooFewSamples = errors.New("too few samples for test")

// ErrUndefinedStatistic is returned when the statistic cannot be computed from the data
var ErrUndefinedStatistic = errors.New("test statistic is undefined")

// TestResult is the outcome of a single hypothesis test
type TestResult struct {
	Statistic float64
	PValue    float64
	DoF       float64
}

// GroupTest compares two or more independent samples
type GroupTest interface {
	Name() string
	Test(groups [][]float64) (TestResult, error)
}

// clampProbability keeps rounding noise from pushing a p-value outside [0,1]
func clampProbability(p float64) float64 {
	if math.IsNaN(p) {
		return p
	}
	return math.Max(0, math.Min(1, p))
}

func totalSize(groups [][]float64) int {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	return n
}
