package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainDataset "goeda/domain/dataset"
	"goeda/internal/errors"
)

func TestNewFrame_DetectsTypes(t *testing.T) {
	ds, err := domainDataset.FromRows(
		[]string{"id", "price", "city", "flag"},
		[][]string{
			{"1", "1,200.5", "Oslo", "true"},
			{"2", "", "Bergen", "false"},
			{"3", "980", "n/a", "true"},
		},
	)
	require.NoError(t, err)

	frame, err := NewFrame(ds, "mem")
	require.NoError(t, err)

	types := frame.Types()
	assert.Equal(t, series.Int, types["id"])
	assert.Equal(t, series.Float, types["price"])
	assert.Equal(t, series.String, types["city"])
	assert.Equal(t, series.Bool, types["flag"])

	price, err := frame.Series("price")
	require.NoError(t, err)
	assert.Equal(t, 1200.5, price.Float()[0])
	assert.True(t, price.IsNaN()[1])

	rows, cols := frame.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 4, cols)

	_, err = frame.Series("missing")
	assert.Error(t, err)
}

func TestLoader_LoadAndLoadReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,age\nann,31\nbob,45\n"), 0o644))

	frame, err := NewLoader(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "people.csv", frame.Source)
	assert.Equal(t, []string{"name", "age"}, frame.Data.Names())

	frame, err = NewLoader(nil).LoadReader(strings.NewReader("a,b\n1,2\n"), "upload.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, frame.Data.Rows())

	_, err = NewLoader(nil).LoadReader(strings.NewReader("a,a\n1,2\n"), "dup.csv")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = NewLoader(nil).LoadReader(strings.NewReader(""), "x.json")
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(err))
}
