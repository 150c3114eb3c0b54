package dataset

import (
	"fmt"
	"sort"
	"strings"

	"goeda/domain/core"
)

// ColumnType is the semantic type a user declares for a column
type ColumnType string

const (
	TypeNumeric     ColumnType = "Numeric"
	TypeCategorical ColumnType = "Categorical"
	TypeOrdinal     ColumnType = "Ordinal"
	TypeDatetime    ColumnType = "Datetime"
)

// ParseColumnType accepts the canonical names case-insensitively
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numeric":
		return TypeNumeric, nil
	case "categorical", "nominal":
		return TypeCategorical, nil
	case "ordinal":
		return TypeOrdinal, nil
	case "datetime":
		return TypeDatetime, nil
	}
	return "", fmt.Errorf("%w: unknown column type %q", core.ErrInvalidTypeMap, s)
}

// IsCorrelatable reports whether the column can enter a correlation matrix
func (t ColumnType) IsCorrelatable() bool {
	return t == TypeNumeric || t == TypeOrdinal
}

// OrdinalRank pairs a raw category with its declared rank
type OrdinalRank struct {
	Value string `json:"value" yaml:"value" toml:"value"`
	Rank  int    `json:"rank" yaml:"rank" toml:"rank"`
}

// OrdinalOrder is the user-declared ranking of an ordinal column's values.
// Duplicate ranks are accepted; a duplicated value keeps its last rank.
type OrdinalOrder []OrdinalRank

// NewOrdinalOrder ranks values 1..n in the order given
func NewOrdinalOrder(values ...string) OrdinalOrder {
	order := make(OrdinalOrder, len(values))
	for i, v := range values {
		order[i] = OrdinalRank{Value: v, Rank: i + 1}
	}
	return order
}

// Lookup builds the value → rank map
func (o OrdinalOrder) Lookup() map[string]int {
	m := make(map[string]int, len(o))
	for _, r := range o {
		m[r.Value] = r.Rank
	}
	return m
}

// Sorted returns a copy ordered by rank; equal ranks keep declaration order
func (o OrdinalOrder) Sorted() OrdinalOrder {
	out := make(OrdinalOrder, len(o))
	copy(out, o)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// Validate checks that every rank is a positive integer
func (o OrdinalOrder) Validate() error {
	if len(o) == 0 {
		return fmt.Errorf("%w: ordinal order is empty", core.ErrInvalidTypeMap)
	}
	for _, r := range o {
		if r.Rank < 1 {
			return fmt.Errorf("%w: rank %d for %q must be positive", core.ErrInvalidTypeMap, r.Rank, r.Value)
		}
	}
	return nil
}

// ColumnSpec is one TypeMap entry
type ColumnSpec struct {
	Type  ColumnType   `json:"type"`
	Order OrdinalOrder `json:"order,omitempty"`
}

// TypeMap maps column names to their declared semantic type
type TypeMap map[string]ColumnSpec

// Set declares a non-ordinal column type
func (m TypeMap) Set(column string, t ColumnType) TypeMap {
	m[column] = ColumnSpec{Type: t}
	return m
}

// SetOrdinal declares an ordinal column with its order
func (m TypeMap) SetOrdinal(column string, order OrdinalOrder) TypeMap {
	m[column] = ColumnSpec{Type: TypeOrdinal, Order: order}
	return m
}

// Validate enforces that Ordinal implies an accompanying valid order
func (m TypeMap) Validate() error {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := m[name]
		switch spec.Type {
		case TypeNumeric, TypeCategorical, TypeDatetime:
		case TypeOrdinal:
			if err := spec.Order.Validate(); err != nil {
				return fmt.Errorf("column %q: %w", name, err)
			}
		default:
			return fmt.Errorf("%w: column %q has unknown type %q", core.ErrInvalidTypeMap, name, spec.Type)
		}
	}
	return nil
}

// OrdinalOrders extracts the orders of every Ordinal column
func (m TypeMap) OrdinalOrders() map[string]OrdinalOrder {
	orders := make(map[string]OrdinalOrder)
	for name, spec := range m {
		if spec.Type == TypeOrdinal {
			orders[name] = spec.Order
		}
	}
	return orders
}

// ColumnsOfType lists the columns of the given types in the dataset's column order.
// Columns absent from the dataset are ignored.
func (m TypeMap) ColumnsOfType(ds *Dataset, types ...ColumnType) []string {
	var out []string
	for _, name := range ds.Names() {
		spec, ok := m[name]
		if !ok {
			continue
		}
		for _, t := range types {
			if spec.Type == t {
				out = append(out, name)
				break
			}
		}
	}
	return out
}
