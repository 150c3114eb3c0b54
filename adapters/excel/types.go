package excel

import (
	"goeda/domain/dataset"
)

// Format identifies a supported tabular file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ExcelData represents a table read from a workbook sheet or CSV file
type ExcelData struct {
	Headers []string   // Column headers
	Rows    [][]string // Data rows, positional against Headers
	Sheet   string     // Sheet the rows came from; empty for CSV
}

// Dataset converts the raw table into the immutable analysis dataset
func (d *ExcelData) Dataset() (*dataset.Dataset, error) {
	return dataset.FromRows(d.Headers, d.Rows)
}

// Records returns header and rows as one record matrix
func (d *ExcelData) Records() [][]string {
	records := make([][]string, 0, len(d.Rows)+1)
	records = append(records, d.Headers)
	return append(records, d.Rows...)
}
