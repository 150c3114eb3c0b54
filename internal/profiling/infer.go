package profiling

import (
	"github.com/go-gota/gota/series"

	"goeda/domain/dataset"
	ingest "goeda/internal/dataset"
)

// InferColumnTypes proposes a semantic type per column from the detected
// dataframe types: numbers are Numeric, text where every present cell is a
// timestamp is Datetime, everything else is Categorical. A column with no present
// value counts as Numeric. Ordinal is never inferred; it needs a declared order.
func InferColumnTypes(frame *ingest.Frame) dataset.TypeMap {
	types := frame.Types()
	out := make(dataset.TypeMap, len(types))

	for _, name := range frame.Data.Names() {
		cells, _ := frame.Data.Column(name)
		switch {
		case presentCount(cells) == 0:
			out.Set(name, dataset.TypeNumeric)
		case types[name] == series.Int || types[name] == series.Float:
			out.Set(name, dataset.TypeNumeric)
		case types[name] == series.String && allTimestamps(cells):
			out.Set(name, dataset.TypeDatetime)
		default:
			out.Set(name, dataset.TypeCategorical)
		}
	}
	return out
}

func presentCount(cells []string) int {
	n := 0
	for _, c := range cells {
		if !dataset.IsMissing(c) {
			n++
		}
	}
	return n
}

func allTimestamps(cells []string) bool {
	for _, c := range cells {
		if dataset.IsMissing(c) {
			continue
		}
		if _, ok := ParseTimestamp(c); !ok {
			return false
		}
	}
	return true
}
