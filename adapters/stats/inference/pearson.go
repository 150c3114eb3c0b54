package inference

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Pearson returns the linear correlation of x and y over rows where both are present.
// Fewer than two complete rows or a zero-variance side yields NaN.
func Pearson(x, y []float64) float64 {
	xs, ys := completePairs(x, y)
	if len(xs) < 2 || isConstant(xs) || isConstant(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	return math.Max(-1, math.Min(1, r))
}

// HasVariance reports whether the non-missing values of x are not all equal
func HasVariance(x []float64) bool {
	xs, _ := completePairs(x, x)
	return len(xs) >= 2 && !isConstant(xs)
}

func completePairs(x, y []float64) ([]float64, []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

func isConstant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}
