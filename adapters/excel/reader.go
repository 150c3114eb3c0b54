package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"goeda/internal"
	"goeda/internal/errors"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType Format
	sheet    string
	logger   *internal.Logger
}

// FormatFromPath picks the reader format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", errors.UnsupportedFormat(ext)
	}
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, logger *internal.Logger) (*DataReader, error) {
	fileType, err := FormatFromPath(filePath)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logger}, nil
}

// WithSheet selects a workbook sheet; the first sheet is used by default
func (r *DataReader) WithSheet(sheet string) *DataReader {
	r.sheet = sheet
	return r
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.logger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	file, err := os.Open(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.NotFound(r.filePath), "%s file not found", strings.ToUpper(string(r.fileType)))
		}
		return nil, errors.Wrapf(err, "failed to open %s", r.filePath)
	}
	defer file.Close()

	return ReadFrom(file, r.fileType, r.sheet, r.logger)
}

// ReadFrom reads a table of the given format from an arbitrary stream, such as an
// HTTP upload
func ReadFrom(src io.Reader, format Format, sheet string, logger *internal.Logger) (*ExcelData, error) {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	switch format {
	case FormatCSV:
		return readCSVData(src, logger)
	case FormatXLSX:
		return readExcelData(src, sheet, logger)
	default:
		return nil, errors.UnsupportedFormat(string(format))
	}
}

// readExcelData reads one sheet of a workbook
func readExcelData(src io.Reader, sheet string, logger *internal.Logger) (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to open Excel file")
	}
	defer f.Close()
	logger.Debug("[DataReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.InvalidInput("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), fmt.Sprintf("failed to read sheet %q", sheet))
	}
	logger.Debug("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	data, err := processRows(rows, "Excel", logger)
	if err != nil {
		return nil, err
	}
	data.Sheet = sheet
	return data, nil
}

// readCSVData reads CSV data into structured format
func readCSVData(src io.Reader, logger *internal.Logger) (*ExcelData, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to read CSV file")
	}
	logger.Debug("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return processRows(rows, "CSV", logger)
}

// processRows splits the header from the data rows. Trailing empty rows, common
// in spreadsheets, are dropped.
func processRows(rows [][]string, kind string, logger *internal.Logger) (*ExcelData, error) {
	for len(rows) > 0 && isBlankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	if len(rows) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s file must have at least a header row and one data row", kind))
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) > len(headers) {
			row = row[:len(headers)]
		}
		dataRows = append(dataRows, row)
	}

	logger.Debug("[DataReader] %s file processed (%d columns, %d rows)", kind, len(headers), len(dataRows))

	return &ExcelData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
