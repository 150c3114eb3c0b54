package analysis

import (
	"errors"
	"math"

	"goeda/adapters/stats/inference"
	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/domain/stats"
	"goeda/internal"
)

// ContingencyAnalyzer runs a chi-square independence test for every pair of
// categorical columns.
type ContingencyAnalyzer struct {
	logger *internal.Logger
}

// NewContingencyAnalyzer creates an analyzer; a nil logger discards output
func NewContingencyAnalyzer(logger *internal.Logger) *ContingencyAnalyzer {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &ContingencyAnalyzer{logger: logger}
}

// Analyze tests each pair (i<j) of columns in the order given. A single-category
// column gives an undefined result carrying core.ErrDegenerateInput.
func (a *ContingencyAnalyzer) Analyze(ds *dataset.Dataset, columns []string) ([]stats.ContingencyResult, error) {
	cols := dedupe(columns)
	for _, c := range cols {
		if !ds.Has(c) {
			return nil, core.NewUnknownColumnError(c)
		}
	}
	if len(cols) < 2 {
		return nil, core.ErrInsufficientColumns
	}

	results := make([]stats.ContingencyResult, 0, len(cols)*(len(cols)-1)/2)
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			results = append(results, a.testPair(ds, cols[i], cols[j]))
		}
	}
	return results, nil
}

func (a *ContingencyAnalyzer) testPair(ds *dataset.Dataset, colA, colB string) stats.ContingencyResult {
	result := stats.ContingencyResult{
		ColumnA:   colA,
		ColumnB:   colB,
		Statistic: math.NaN(),
		PValue:    math.NaN(),
	}

	cellsA, _ := ds.Column(colA)
	cellsB, _ := ds.Column(colB)
	table, err := inference.CrossTabulate(cellsA, cellsB, dataset.IsMissing)
	if err != nil {
		result.Err = err
		return result
	}
	result.Rows = len(table.RowLabels)
	result.Cols = len(table.ColLabels)

	res, err := inference.ChiSquareIndependence(table)
	if err != nil {
		if errors.Is(err, inference.ErrUndefinedStatistic) {
			err = core.NewDegenerateError(err.Error())
		}
		a.logger.Debug("chi-square %s x %s skipped: %v", colA, colB, err)
		result.Err = err
		return result
	}

	result.Statistic = res.Statistic
	result.PValue = res.PValue
	result.DoF = int(res.DoF)
	return result
}
