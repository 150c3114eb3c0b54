package analysis

import (
	"math"
	"sort"

	"goeda/adapters/stats/inference"
	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/domain/stats"
	"goeda/internal"
)

// DefaultStrongCorrelationThreshold is the |r| a pair must exceed to be reported as strong
const DefaultStrongCorrelationThreshold = 0.6

// CorrelationEngine computes a Pearson matrix over numeric and ordinal columns and
// ranks the strongly correlated pairs.
type CorrelationEngine struct {
	threshold float64
	encoder   OrdinalEncoder
	logger    *internal.Logger
}

// NewCorrelationEngine creates an engine; a threshold <= 0 selects the default
func NewCorrelationEngine(threshold float64, encoder OrdinalEncoder, logger *internal.Logger) *CorrelationEngine {
	if threshold <= 0 || math.IsNaN(threshold) {
		threshold = DefaultStrongCorrelationThreshold
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &CorrelationEngine{threshold: threshold, encoder: encoder, logger: logger}
}

// Threshold returns the strong-pair threshold in use
func (e *CorrelationEngine) Threshold() float64 { return e.threshold }

// Compute correlates the listed columns. Columns with an entry in orders are ordinal
// encoded first, the rest are parsed as numbers. Duplicate names are collapsed.
// Fewer than two distinct columns is refused with core.ErrInsufficientColumns.
func (e *CorrelationEngine) Compute(ds *dataset.Dataset, columns []string, orders map[string]dataset.OrdinalOrder) (*stats.CorrelationResult, error) {
	cols := dedupe(columns)
	if len(cols) < 2 {
		return nil, core.ErrInsufficientColumns
	}
	for _, c := range cols {
		if !ds.Has(c) {
			return nil, core.NewUnknownColumnError(c)
		}
	}

	result := &stats.CorrelationResult{Threshold: e.threshold}
	views := make([][]float64, len(cols))
	for i, c := range cols {
		order, ordinal := orders[c]
		if !ordinal {
			views[i], _ = ds.Numeric(c)
			continue
		}

		raw, _ := ds.Column(c)
		diag := stats.EncodingDiagnostics{Column: c}
		enc, err := e.encoder.Encode(c, raw, order)
		if err != nil {
			// A rejected column stays in the matrix as all-NaN so the rest still correlate.
			diag.Rejected = true
			diag.Error = err.Error()
			views[i] = nanColumn(len(raw))
			e.logger.Warn("ordinal column %s rejected: %v", c, err)
		} else {
			views[i] = enc.Values
			diag.Missing = enc.Missing
			diag.Unmapped = enc.Unmapped
			if len(enc.Unmapped) > 0 {
				e.logger.Debug("ordinal column %s: %d unmapped value(s) treated as missing", c, len(enc.Unmapped))
			}
		}
		result.Encodings = append(result.Encodings, diag)
	}

	result.Matrix = correlationMatrix(cols, views)
	result.StrongPairs = StrongPairs(result.Matrix, e.threshold)
	return result, nil
}

// correlationMatrix fills a symmetric matrix; the diagonal is 1 for columns with variance
func correlationMatrix(cols []string, views [][]float64) stats.CorrelationMatrix {
	n := len(cols)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		if inference.HasVariance(views[i]) {
			values[i][i] = 1
		} else {
			values[i][i] = math.NaN()
		}
		for j := i + 1; j < n; j++ {
			r := inference.Pearson(views[i], views[j])
			values[i][j] = r
			values[j][i] = r
		}
	}
	return stats.CorrelationMatrix{Columns: append([]string(nil), cols...), Values: values}
}

// StrongPairs lists pairs i<j with |r| > threshold, strongest first. Equal strengths
// keep enumeration order. It depends only on the matrix and threshold.
func StrongPairs(m stats.CorrelationMatrix, threshold float64) []stats.StrongPair {
	pairs := []stats.StrongPair{}
	for i := range m.Columns {
		for j := i + 1; j < len(m.Columns); j++ {
			r := m.Values[i][j]
			if math.Abs(r) > threshold {
				pairs = append(pairs, stats.StrongPair{ColumnA: m.Columns[i], ColumnB: m.Columns[j], Coefficient: r})
			}
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return math.Abs(pairs[a].Coefficient) > math.Abs(pairs[b].Coefficient)
	})
	return pairs
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func nanColumn(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
