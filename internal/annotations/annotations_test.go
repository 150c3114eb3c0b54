package annotations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/internal/errors"
)

const yamlDoc = `
columns:
  - name: region
    type: categorical
  - name: revenue
    type: numeric
  - name: size
    type: ordinal
    order: [S, M, L]
  - name: grade
    type: ordinal
    ranks:
      - {value: low, rank: 1}
      - {value: high, rank: 5}
`

const tomlDoc = `
[[columns]]
name = "region"
type = "nominal"

[[columns]]
name = "size"
type = "ordinal"
order = ["S", "M", "L"]
`

func TestParse_YAML(t *testing.T) {
	types, err := Parse([]byte(yamlDoc), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, dataset.TypeCategorical, types["region"].Type)
	assert.Equal(t, dataset.TypeNumeric, types["revenue"].Type)
	assert.Equal(t, dataset.NewOrdinalOrder("S", "M", "L"), types["size"].Order)
	assert.Equal(t, 5, types["grade"].Order.Lookup()["high"])
}

func TestParse_TOML(t *testing.T) {
	types, err := Parse([]byte(tomlDoc), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, dataset.TypeCategorical, types["region"].Type)
	assert.Equal(t, 3, types["size"].Order.Lookup()["L"])
}

func TestParse_Rejections(t *testing.T) {
	_, err := Parse([]byte("columns:\n  - name: a\n    type: ordinal\n"), FormatYAML)
	assert.ErrorIs(t, err, core.ErrInvalidTypeMap)

	_, err = Parse([]byte("columns:\n  - name: a\n    type: numeric\n  - name: a\n    type: numeric\n"), FormatYAML)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = Parse([]byte("columns: [oops"), FormatYAML)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = Parse([]byte(`{"columns":[{"name":"a","type":"fancy"}]}`), FormatJSON)
	assert.Error(t, err)
}

func TestRoundTripThroughFiles(t *testing.T) {
	ds, err := dataset.FromRows([]string{"size", "region"}, [][]string{{"S", "north"}})
	require.NoError(t, err)
	types := dataset.TypeMap{}.
		Set("region", dataset.TypeCategorical).
		SetOrdinal("size", dataset.NewOrdinalOrder("S", "M"))

	for _, name := range []string{"types.yaml", "types.toml", "types.json"} {
		t.Run(name, func(t *testing.T) {
			format, err := FormatFromPath(name)
			require.NoError(t, err)
			data, err := FromTypeMap(ds, types).Marshal(format)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(path, data, 0o644))
			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, types, loaded)
		})
	}
}

func TestOverlay(t *testing.T) {
	inferred := dataset.TypeMap{}.Set("a", dataset.TypeNumeric).Set("b", dataset.TypeCategorical)
	declared := dataset.TypeMap{}.SetOrdinal("b", dataset.NewOrdinalOrder("x", "y"))

	merged := Overlay(inferred, declared)
	assert.Equal(t, dataset.TypeNumeric, merged["a"].Type)
	assert.Equal(t, dataset.TypeOrdinal, merged["b"].Type)
	assert.Equal(t, dataset.TypeCategorical, inferred["b"].Type)
}
