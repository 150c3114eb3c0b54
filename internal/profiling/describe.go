package profiling

import (
	"math"
	"sort"

	"github.com/go-gota/gota/series"
	"github.com/montanaflynn/stats"

	ingest "goeda/internal/dataset"
)

// Describe summarizes every column of the frame. Columns detected as numbers get
// count, mean, std, min, quartiles and max; the rest get count, unique, top and freq.
func Describe(frame *ingest.Frame) ([]ColumnSummary, error) {
	types := frame.Types()
	names := frame.Data.Names()
	out := make([]ColumnSummary, 0, len(names))

	for _, name := range names {
		var (
			summary ColumnSummary
			err     error
		)
		switch types[name] {
		case series.Int, series.Float:
			summary, err = describeNumeric(frame, name)
		default:
			summary, err = describeOther(frame, name)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}

func describeNumeric(frame *ingest.Frame, name string) (ColumnSummary, error) {
	values, err := frame.Data.Numeric(name)
	if err != nil {
		return ColumnSummary{}, err
	}
	data := present(values)
	summary := ColumnSummary{
		Column:  name,
		Numeric: true,
		Count:   len(data),
		Mean:    math.NaN(),
		Std:     math.NaN(),
		Min:     math.NaN(),
		Q25:     math.NaN(),
		Median:  math.NaN(),
		Q75:     math.NaN(),
		Max:     math.NaN(),
	}
	if len(data) == 0 {
		return summary, nil
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	summary.Mean, _ = stats.Mean(data)
	if len(data) > 1 {
		summary.Std, _ = stats.StandardDeviationSample(data)
	}
	summary.Min = sorted[0]
	summary.Max = sorted[len(sorted)-1]
	summary.Q25 = linearQuantile(sorted, 0.25)
	summary.Median = linearQuantile(sorted, 0.5)
	summary.Q75 = linearQuantile(sorted, 0.75)
	return summary, nil
}

func describeOther(frame *ingest.Frame, name string) (ColumnSummary, error) {
	cells, err := frame.Data.Column(name)
	if err != nil {
		return ColumnSummary{}, err
	}
	counts := valueCounts(cells)
	summary := ColumnSummary{
		Column: name,
		Unique: len(counts),
		Mean:   math.NaN(),
		Std:    math.NaN(),
		Min:    math.NaN(),
		Q25:    math.NaN(),
		Median: math.NaN(),
		Q75:    math.NaN(),
		Max:    math.NaN(),
	}
	for _, vc := range counts {
		summary.Count += vc.Count
	}
	if len(counts) > 0 {
		summary.Top = counts[0].Value
		summary.Freq = counts[0].Count
	}
	return summary, nil
}
