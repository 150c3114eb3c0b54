package profiling

import (
	"math"

	"github.com/montanaflynn/stats"

	"goeda/domain/dataset"
)

// ProfileNumeric computes the mean and the shape statistics of a numeric column.
// Missing and unparseable cells are ignored.
func ProfileNumeric(ds *dataset.Dataset, column string) (NumericProfile, error) {
	values, err := ds.Numeric(column)
	if err != nil {
		return NumericProfile{}, err
	}
	data := present(values)

	profile := NumericProfile{
		Column:   column,
		Count:    len(data),
		Mean:     math.NaN(),
		Skewness: math.NaN(),
		Kurtosis: math.NaN(),
	}
	if len(data) == 0 {
		return profile, nil
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return profile, nil
	}
	// Population deviation: the moment ratios below are the biased g1/g2.
	stdDev, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return profile, nil
	}

	profile.Mean = mean
	profile.Skewness = calculateSkewness(data, mean, stdDev)
	profile.Kurtosis = calculateKurtosis(data, mean, stdDev)
	return profile, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 {
		return math.NaN()
	}
	if stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	return skewness * math.Sqrt(n*(n-1)) / (n-2)
}

// calculateKurtosis computes bias-corrected sample excess kurtosis
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 {
		return math.NaN()
	}
	if stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumFourthDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumFourthDeviations += deviation * deviation * deviation * deviation
	}

	excess := sumFourthDeviations/n - 3
	return (n - 1) / ((n - 2) * (n - 3)) * ((n+1)*excess + 6)
}

// linearQuantile interpolates between closest ranks of sorted data, the default
// quantile method of most dataframe libraries
func linearQuantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := math.Floor(pos)
	hi := math.Ceil(pos)
	if lo == hi {
		return sorted[int(lo)]
	}
	return sorted[int(lo)] + (pos-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

func present(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
