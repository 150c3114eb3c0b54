package inference

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MinNormalitySamples is the smallest sample the skewness component accepts
const MinNormalitySamples = 8

// NormalityTest is D'Agostino and Pearson's omnibus K² test. The null hypothesis is
// that the sample comes from a normal distribution. It combines a skewness z-score and
// a kurtosis z-score; K² is chi-square distributed with 2 degrees of freedom.
//
// A constant sample has undefined moments and yields a NaN p-value with no error.
func NormalityTest(sample []float64) (TestResult, error) {
	n := len(sample)
	if n < MinNormalitySamples {
		return TestResult{Statistic: math.NaN(), PValue: math.NaN()},
			fmt.Errorf("%w: normality test needs %d, got %d", ErrTooFewSamples, MinNormalitySamples, n)
	}

	m2, m3, m4 := centralMoments(sample)
	if m2 == 0 {
		return TestResult{Statistic: math.NaN(), PValue: math.NaN(), DoF: 2}, nil
	}

	zs := skewZ(m3/math.Pow(m2, 1.5), float64(n))
	zk := kurtosisZ(m4/(m2*m2), float64(n))
	k2 := zs*zs + zk*zk

	chi := distuv.ChiSquared{K: 2}
	return TestResult{Statistic: k2, PValue: clampProbability(chi.Survival(k2)), DoF: 2}, nil
}

// centralMoments returns the biased second, third and fourth central moments
func centralMoments(sample []float64) (m2, m3, m4 float64) {
	mean := stat.Mean(sample, nil)
	return stat.MomentAbout(2, sample, mean, nil),
		stat.MomentAbout(3, sample, mean, nil),
		stat.MomentAbout(4, sample, mean, nil)
}

// skewZ transforms the sample skewness b1 into an approximately standard normal score
func skewZ(b1, n float64) float64 {
	y := b1 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	return delta * math.Asinh(y/alpha)
}

// kurtosisZ transforms the Pearson kurtosis b2 (normal = 3) using Anscombe and Glynn
func kurtosisZ(b2, n float64) float64 {
	e := 3 * (n - 1) / (n + 1)
	varb2 := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	x := (b2 - e) / math.Sqrt(varb2)

	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))

	term1 := 1 - 2/(9*a)
	denom := 1 + x*math.Sqrt(2/(a-4))
	if denom == 0 {
		return math.NaN()
	}
	term2 := math.Copysign(math.Cbrt((1-2/a)/math.Abs(denom)), denom)
	return (term1 - term2) / math.Sqrt(2/(9*a))
}
