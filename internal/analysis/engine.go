// Package analysis is the statistical decision engine: it chooses and runs the
// relationship tests between column pairs of a dataset.
package analysis

import (
	"fmt"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/domain/stats"
	"goeda/internal"
)

// Options configures an Engine
type Options struct {
	// StrongThreshold is the |r| a pair must exceed; <= 0 means DefaultStrongCorrelationThreshold.
	StrongThreshold float64
	// StrictOrdinal rejects ordinal columns containing values without a declared rank.
	StrictOrdinal bool
	Logger        *internal.Logger
}

// Engine exposes the three relationship analyses. It holds no per-call state, so
// one Engine may serve concurrent callers.
type Engine struct {
	groups      *GroupComparisonSelector
	correlation *CorrelationEngine
	contingency *ContingencyAnalyzer
	logger      *internal.Logger
}

// NewEngine wires the selector, correlation engine and contingency analyzer
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	encoder := OrdinalEncoder{Strict: opts.StrictOrdinal}
	return &Engine{
		groups:      NewGroupComparisonSelector(encoder, logger),
		correlation: NewCorrelationEngine(opts.StrongThreshold, encoder, logger),
		contingency: NewContingencyAnalyzer(logger),
		logger:      logger,
	}
}

// StrongThreshold returns the strong-correlation threshold in use
func (e *Engine) StrongThreshold() float64 {
	return e.correlation.Threshold()
}

// CompareGroups tests every (Categorical, Numeric|Ordinal) pair of the type map,
// in dataset column order. Pair-level failures are carried in each result's Err.
func (e *Engine) CompareGroups(ds *dataset.Dataset, types dataset.TypeMap) ([]stats.GroupTestResult, error) {
	if err := checkTypeMap(ds, types); err != nil {
		return nil, err
	}

	categorical := types.ColumnsOfType(ds, dataset.TypeCategorical)
	numeric := types.ColumnsOfType(ds, dataset.TypeNumeric, dataset.TypeOrdinal)

	results := make([]stats.GroupTestResult, 0, len(categorical)*len(numeric))
	for _, cat := range categorical {
		for _, num := range numeric {
			res := e.groups.Compare(ds, cat, num, types[num])
			if res.Err != nil {
				e.logger.Info("group comparison %s - %s skipped: %v", cat, num, res.Err)
			}
			results = append(results, res)
		}
	}
	return results, nil
}

// ComputeCorrelations builds the correlation matrix of columns, encoding any column
// present in orders, and ranks the strong pairs.
func (e *Engine) ComputeCorrelations(ds *dataset.Dataset, columns []string, orders map[string]dataset.OrdinalOrder) (*stats.CorrelationResult, error) {
	for name, order := range orders {
		if err := order.Validate(); err != nil {
			return nil, fmt.Errorf("ordinal column %q: %w", name, err)
		}
	}
	return e.correlation.Compute(ds, columns, orders)
}

// TestCategoricalIndependence runs chi-square tests over every pair of the given columns
func (e *Engine) TestCategoricalIndependence(ds *dataset.Dataset, columns []string) ([]stats.ContingencyResult, error) {
	return e.contingency.Analyze(ds, columns)
}

// CorrelatableColumns lists Numeric then Ordinal columns, each in dataset order,
// the way the relationship report assembles them.
func CorrelatableColumns(ds *dataset.Dataset, types dataset.TypeMap) []string {
	cols := types.ColumnsOfType(ds, dataset.TypeNumeric)
	return append(cols, types.ColumnsOfType(ds, dataset.TypeOrdinal)...)
}

func checkTypeMap(ds *dataset.Dataset, types dataset.TypeMap) error {
	if err := types.Validate(); err != nil {
		return err
	}
	for name := range types {
		if !ds.Has(name) {
			return core.NewUnknownColumnError(name)
		}
	}
	return nil
}
