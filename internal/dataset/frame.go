// Package dataset loads tabular files into analysis datasets and keeps a typed
// dataframe view of them for type detection and profiling.
package dataset

import (
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	domainDataset "goeda/domain/dataset"
	"goeda/internal/errors"
)

// nanToken is what every missing cell is normalized to before type detection
const nanToken = "NaN"

// Frame pairs the raw-cell dataset with a dataframe whose column types were
// detected from the data
type Frame struct {
	Data   *domainDataset.Dataset
	Source string
	df     dataframe.DataFrame
}

// NewFrame builds the typed view of ds. Numeric-looking columns have their
// thousands separators stripped so they detect as numbers.
func NewFrame(ds *domainDataset.Dataset, source string) (*Frame, error) {
	names := ds.Names()
	records := make([][]string, ds.Rows()+1)
	records[0] = names
	for i := 1; i <= ds.Rows(); i++ {
		records[i] = make([]string, len(names))
	}

	for j, name := range names {
		cells, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		numeric := looksNumeric(cells)
		for i, cell := range cells {
			records[i+1][j] = normalizeCell(cell, numeric)
		}
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues([]string{nanToken}),
	)
	if df.Err != nil {
		return nil, errors.Wrap(errors.InvalidInput(df.Err.Error()), "failed to build dataframe")
	}
	return &Frame{Data: ds, Source: source, df: df}, nil
}

// Types returns the detected element type of each column
func (f *Frame) Types() map[string]series.Type {
	out := make(map[string]series.Type, f.df.Ncol())
	names := f.df.Names()
	for i, t := range f.df.Types() {
		out[names[i]] = t
	}
	return out
}

// Series returns the typed column
func (f *Frame) Series(name string) (series.Series, error) {
	if !f.Data.Has(name) {
		return series.Series{}, errors.Wrap(errors.InvalidInput("no such column"), name)
	}
	return f.df.Col(name), nil
}

// Dims returns rows and columns
func (f *Frame) Dims() (int, int) {
	return f.df.Dims()
}

func looksNumeric(cells []string) bool {
	seen := false
	for _, c := range cells {
		if domainDataset.IsMissing(c) {
			continue
		}
		if _, ok := domainDataset.ParseNumber(c); !ok {
			return false
		}
		seen = true
	}
	return seen
}

func normalizeCell(cell string, numeric bool) string {
	if domainDataset.IsMissing(cell) {
		return nanToken
	}
	if numeric {
		v, _ := domainDataset.ParseNumber(cell)
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return cell
}
