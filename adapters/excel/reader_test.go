package excel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"goeda/internal/errors"
)

func TestReadData_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte("region, amount\nnorth,10\nsouth, 12\neast\n\n"), 0o644))

	reader, err := NewDataReader(path, nil)
	require.NoError(t, err)
	data, err := reader.ReadData()
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "amount"}, data.Headers)
	require.Len(t, data.Rows, 3)
	assert.Equal(t, []string{"south", "12"}, data.Rows[1])

	ds, err := data.Dataset()
	require.NoError(t, err)
	amounts, err := ds.Column("amount")
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "12", ""}, amounts)
}

func TestReadData_XLSXFirstSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"grade", "score"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"low", 1.5}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"high", 9}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	reader, err := NewDataReader(path, nil)
	require.NoError(t, err)
	data, err := reader.ReadData()
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", data.Sheet)
	assert.Equal(t, []string{"grade", "score"}, data.Headers)
	assert.Equal(t, [][]string{{"low", "1.5"}, {"high", "9"}}, data.Rows)
}

func TestReadData_Errors(t *testing.T) {
	_, err := NewDataReader("data.parquet", nil)
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(err))

	reader, err := NewDataReader(filepath.Join(t.TempDir(), "absent.csv"), nil)
	require.NoError(t, err)
	_, err = reader.ReadData()
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	_, err = ReadFrom(strings.NewReader("only,header\n"), FormatCSV, "", nil)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("A.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = FormatFromPath("report.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
}
