package dataset

import (
	"io"
	"path/filepath"

	"goeda/adapters/excel"
	"goeda/internal"
	"goeda/internal/errors"
)

// Loader reads CSV and xlsx files into frames
type Loader struct {
	logger *internal.Logger
	sheet  string
}

// NewLoader creates a loader; a nil logger discards output
func NewLoader(logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Loader{logger: logger}
}

// WithSheet selects the workbook sheet read from xlsx files
func (l *Loader) WithSheet(sheet string) *Loader {
	l.sheet = sheet
	return l
}

// Load reads the file at path
func (l *Loader) Load(path string) (*Frame, error) {
	reader, err := excel.NewDataReader(path, l.logger)
	if err != nil {
		return nil, err
	}
	data, err := reader.WithSheet(l.sheet).ReadData()
	if err != nil {
		return nil, err
	}
	return l.build(data, filepath.Base(path))
}

// LoadReader reads a stream whose format is taken from name's extension
func (l *Loader) LoadReader(src io.Reader, name string) (*Frame, error) {
	format, err := excel.FormatFromPath(name)
	if err != nil {
		return nil, err
	}
	data, err := excel.ReadFrom(src, format, l.sheet, l.logger)
	if err != nil {
		return nil, err
	}
	return l.build(data, name)
}

func (l *Loader) build(data *excel.ExcelData, source string) (*Frame, error) {
	ds, err := data.Dataset()
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "malformed table")
	}
	frame, err := NewFrame(ds, source)
	if err != nil {
		return nil, err
	}
	l.logger.Info("loaded %s: %d rows, %d columns (%s)", source, ds.Rows(), ds.Cols(), ds.Fingerprint().Short())
	return frame, nil
}
