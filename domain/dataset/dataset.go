package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"goeda/domain/core"
)

// Dataset is a table of named columns of raw cells, rows aligned by position.
// Analyses read it and never mutate it.
type Dataset struct {
	names   []string
	index   map[string]int
	columns [][]string
	rows    int
}

// New builds a dataset from column-major data. All columns must have equal length
// and names must be unique and non-empty.
func New(names []string, columns [][]string) (*Dataset, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("dataset has %d names but %d columns", len(names), len(columns))
	}

	ds := &Dataset{
		names:   make([]string, len(names)),
		index:   make(map[string]int, len(names)),
		columns: make([][]string, len(columns)),
	}
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := ds.index[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		if i > 0 && len(columns[i]) != len(columns[0]) {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", name, len(columns[i]), len(columns[0]))
		}
		ds.names[i] = name
		ds.index[name] = i
		ds.columns[i] = append([]string(nil), columns[i]...)
	}
	if len(columns) > 0 {
		ds.rows = len(columns[0])
	}
	return ds, nil
}

// FromRows builds a dataset from a header and row-major records. Short rows are
// padded with empty cells.
func FromRows(header []string, rows [][]string) (*Dataset, error) {
	columns := make([][]string, len(header))
	for j := range header {
		columns[j] = make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				columns[j][i] = strings.TrimSpace(row[j])
			}
		}
	}
	return New(header, columns)
}

// Names returns the column names in header order
func (d *Dataset) Names() []string {
	return append([]string(nil), d.names...)
}

// Rows returns the number of rows
func (d *Dataset) Rows() int { return d.rows }

// Cols returns the number of columns
func (d *Dataset) Cols() int { return len(d.names) }

// Has reports whether the column exists
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns a copy of the raw cells of a column
func (d *Dataset) Column(name string) ([]string, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, core.NewUnknownColumnError(name)
	}
	return append([]string(nil), d.columns[i]...), nil
}

// Numeric parses a column as float64, missing or unparseable cells become NaN
func (d *Dataset) Numeric(name string) ([]float64, error) {
	cells, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(cells))
	for i, c := range cells {
		if v, ok := ParseNumber(c); ok {
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

// Fingerprint hashes the header and every cell
func (d *Dataset) Fingerprint() core.Hash {
	return core.ComputeTableHash(d.names, d.columns)
}

// missingTokens are matched exactly after trimming spaces; "Na" or "NONE" stay values
var missingTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {}, "-NaN": {}, "-nan": {},
	"1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {},
	"n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a raw cell denotes a missing value
func IsMissing(cell string) bool {
	_, ok := missingTokens[strings.TrimSpace(cell)]
	return ok
}

// ParseNumber parses a numeric cell, accepting "," as a thousands separator
func ParseNumber(cell string) (float64, bool) {
	if IsMissing(cell) {
		return 0, false
	}
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
