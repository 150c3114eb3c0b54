package inference

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ContingencyTable holds joint counts of two categorical variables.
// Row and column labels are in first-seen order.
type ContingencyTable struct {
	RowLabels []string
	ColLabels []string
	Counts    [][]int
}

// CrossTabulate counts joint occurrences of two aligned label sequences.
// Pairs where either label is missing (per the isMissing predicate) are skipped.
func CrossTabulate(a, b []string, isMissing func(string) bool) (ContingencyTable, error) {
	if len(a) != len(b) {
		return ContingencyTable{}, fmt.Errorf("cross tabulation needs aligned columns, got %d and %d", len(a), len(b))
	}

	rowIdx := map[string]int{}
	colIdx := map[string]int{}
	var table ContingencyTable
	type cell struct{ r, c int }
	var cells []cell

	for i := range a {
		if isMissing != nil && (isMissing(a[i]) || isMissing(b[i])) {
			continue
		}
		r, ok := rowIdx[a[i]]
		if !ok {
			r = len(table.RowLabels)
			rowIdx[a[i]] = r
			table.RowLabels = append(table.RowLabels, a[i])
		}
		c, ok := colIdx[b[i]]
		if !ok {
			c = len(table.ColLabels)
			colIdx[b[i]] = c
			table.ColLabels = append(table.ColLabels, b[i])
		}
		cells = append(cells, cell{r, c})
	}

	table.Counts = make([][]int, len(table.RowLabels))
	for r := range table.Counts {
		table.Counts[r] = make([]int, len(table.ColLabels))
	}
	for _, c := range cells {
		table.Counts[c.r][c.c]++
	}
	return table, nil
}

// Total returns the number of observations in the table
func (t ContingencyTable) Total() int {
	total := 0
	for _, row := range t.Counts {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// ChiSquareIndependence tests whether rows and columns of the table are independent.
// With one degree of freedom Yates' continuity correction is applied. A table with
// fewer than two rows or columns has no degrees of freedom and is undefined.
func ChiSquareIndependence(table ContingencyTable) (TestResult, error) {
	rows := len(table.Counts)
	if rows < 2 || len(table.Counts[0]) < 2 {
		cols := 0
		if rows > 0 {
			cols = len(table.Counts[0])
		}
		return undefined(), fmt.Errorf("%w: %dx%d contingency table has no degrees of freedom", ErrUndefinedStatistic, rows, cols)
	}
	cols := len(table.Counts[0])

	rowTotals := make([]float64, rows)
	colTotals := make([]float64, cols)
	total := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := float64(table.Counts[i][j])
			rowTotals[i] += v
			colTotals[j] += v
			total += v
		}
	}

	dof := (rows - 1) * (cols - 1)
	observed := make([]float64, 0, rows*cols)
	expected := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			e := rowTotals[i] * colTotals[j] / total
			if e == 0 {
				return undefined(), fmt.Errorf("%w: zero expected frequency at (%d,%d)", ErrUndefinedStatistic, i, j)
			}
			o := float64(table.Counts[i][j])
			if dof == 1 {
				// Yates: move each observation half a count towards its expectation
				diff := e - o
				o += math.Copysign(math.Min(0.5, math.Abs(diff)), diff)
			}
			observed = append(observed, o)
			expected = append(expected, e)
		}
	}
	chiSq := stat.ChiSquare(observed, expected)

	chi := distuv.ChiSquared{K: float64(dof)}
	return TestResult{Statistic: chiSq, PValue: clampProbability(chi.Survival(chiSq)), DoF: float64(dof)}, nil
}
