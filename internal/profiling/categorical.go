package profiling

import (
	"math"
	"sort"

	"goeda/domain/dataset"
)

// ProfileCategorical builds the frequency table of a column, most frequent first.
// Equal counts keep first-seen order. Percentages are of all rows, rounded to two
// decimals.
func ProfileCategorical(ds *dataset.Dataset, column string) (CategoricalProfile, error) {
	cells, err := ds.Column(column)
	if err != nil {
		return CategoricalProfile{}, err
	}

	profile := CategoricalProfile{Column: column}
	counts := valueCounts(cells)
	for _, c := range cells {
		if dataset.IsMissing(c) {
			profile.Missing++
		}
	}

	profile.Values = make([]ValueCount, len(counts))
	for i, vc := range counts {
		vc.Percentage = roundTo(float64(vc.Count)/float64(len(cells))*100, 2)
		profile.Values[i] = vc
	}
	return profile, nil
}

// valueCounts tallies non-missing cells, sorted by descending count
func valueCounts(cells []string) []ValueCount {
	index := make(map[string]int)
	var counts []ValueCount
	for _, c := range cells {
		if dataset.IsMissing(c) {
			continue
		}
		i, ok := index[c]
		if !ok {
			i = len(counts)
			index[c] = i
			counts = append(counts, ValueCount{Value: c})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(a, b int) bool { return counts[a].Count > counts[b].Count })
	return counts
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
