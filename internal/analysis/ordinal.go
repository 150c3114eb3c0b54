package analysis

import (
	"math"

	"goeda/domain/core"
	"goeda/domain/dataset"
)

// OrdinalEncoder replaces ordinal categories with their user-declared ranks.
// It never infers an order from the data.
//
// A value with no declared rank is treated as missing (NaN) and listed in
// Encoding.Unmapped. With Strict set, the first such value fails the encoding
// with core.ErrMissingOrdinalMapping instead.
type OrdinalEncoder struct {
	Strict bool
}

// Encoding is the numeric view of an ordinal column
type Encoding struct {
	Values   []float64
	Missing  int      // cells that ended up NaN, empty cells included
	Unmapped []string // distinct unmapped raw values, first-seen order
}

// Encode maps raw cells of column through order
func (e OrdinalEncoder) Encode(column string, raw []string, order dataset.OrdinalOrder) (Encoding, error) {
	lookup := order.Lookup()
	enc := Encoding{Values: make([]float64, len(raw))}
	seen := make(map[string]bool)

	for i, cell := range raw {
		if dataset.IsMissing(cell) {
			enc.Values[i] = math.NaN()
			enc.Missing++
			continue
		}
		rank, ok := lookup[cell]
		if !ok {
			if e.Strict {
				return Encoding{}, core.NewMissingOrdinalError(column, cell)
			}
			enc.Values[i] = math.NaN()
			enc.Missing++
			if !seen[cell] {
				seen[cell] = true
				enc.Unmapped = append(enc.Unmapped, cell)
			}
			continue
		}
		enc.Values[i] = float64(rank)
	}
	return enc, nil
}
