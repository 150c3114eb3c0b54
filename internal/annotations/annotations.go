// Package annotations reads and writes the user's column type declarations,
// including ordinal orders, as YAML, TOML or JSON files.
package annotations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"goeda/domain/dataset"
	"goeda/internal/errors"
)

// Format of an annotations file
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// File is the on-disk shape of a type declaration
type File struct {
	Columns []Column `yaml:"columns" toml:"columns" json:"columns"`
}

// Column declares one column. Ordinal columns give either Order, ranked 1..n in
// the listed sequence, or explicit Ranks.
type Column struct {
	Name  string                `yaml:"name" toml:"name" json:"name"`
	Type  string                `yaml:"type" toml:"type" json:"type"`
	Order []string              `yaml:"order,omitempty" toml:"order,omitempty" json:"order,omitempty"`
	Ranks []dataset.OrdinalRank `yaml:"ranks,omitempty" toml:"ranks,omitempty" json:"ranks,omitempty"`
}

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.UnsupportedFormat(ext)
	}
}

// Load reads a type map from path
func Load(path string) (dataset.TypeMap, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read annotations %s", path)
	}
	return Parse(data, format)
}

// Parse decodes and validates a type map
func Parse(data []byte, format Format) (dataset.TypeMap, error) {
	var f File
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	case FormatTOML:
		_, err = toml.Decode(string(data), &f)
	case FormatJSON:
		err = json.Unmarshal(data, &f)
	default:
		return nil, errors.UnsupportedFormat(string(format))
	}
	if err != nil {
		return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "malformed %s annotations", format)
	}
	return f.TypeMap()
}

// TypeMap converts the declarations, rejecting duplicates and unknown types
func (f File) TypeMap() (dataset.TypeMap, error) {
	types := make(dataset.TypeMap, len(f.Columns))
	for _, c := range f.Columns {
		if c.Name == "" {
			return nil, errors.InvalidInput("annotation without a column name")
		}
		if _, dup := types[c.Name]; dup {
			return nil, errors.InvalidInput(fmt.Sprintf("column %q declared twice", c.Name))
		}
		t, err := dataset.ParseColumnType(c.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q", c.Name)
		}
		if t != dataset.TypeOrdinal {
			types.Set(c.Name, t)
			continue
		}
		order := c.Ranks
		if len(order) == 0 {
			order = dataset.NewOrdinalOrder(c.Order...)
		}
		types.SetOrdinal(c.Name, order)
	}
	if err := types.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid annotations")
	}
	return types, nil
}

// FromTypeMap lists the declarations of types in the dataset's column order
func FromTypeMap(ds *dataset.Dataset, types dataset.TypeMap) File {
	var f File
	for _, name := range ds.Names() {
		spec, ok := types[name]
		if !ok {
			continue
		}
		c := Column{Name: name, Type: strings.ToLower(string(spec.Type))}
		if spec.Type == dataset.TypeOrdinal {
			c.Ranks = spec.Order.Sorted()
		}
		f.Columns = append(f.Columns, c)
	}
	return f
}

// Encode writes f in the given format
func (f File) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(f)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	}
	return errors.UnsupportedFormat(string(format))
}

// Marshal is Encode into a byte slice
func (f File) Marshal(format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Encode(&buf, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Overlay returns inferred with every declared column replaced by its declaration.
// Declared columns the dataset lacks are kept so the analysis can reject them.
func Overlay(inferred, declared dataset.TypeMap) dataset.TypeMap {
	out := make(dataset.TypeMap, len(inferred)+len(declared))
	for name, spec := range inferred {
		out[name] = spec
	}
	for name, spec := range declared {
		out[name] = spec
	}
	return out
}
