package profiling

import (
	"encoding/json"
	"math"
	"time"

	"goeda/domain/dataset"
)

// ColumnSummary is one column of a describe() table. Numeric columns fill the
// moment and quantile fields; the others fill Unique, Top and Freq. Fields that do
// not apply hold NaN or zero values.
type ColumnSummary struct {
	Column  string
	Numeric bool
	Count   int
	Mean    float64
	Std     float64
	Min     float64
	Q25     float64
	Median  float64
	Q75     float64
	Max     float64
	Unique  int
	Top     string
	Freq    int
}

// MarshalJSON emits only the fields that apply to the column kind
func (s ColumnSummary) MarshalJSON() ([]byte, error) {
	if s.Numeric {
		return json.Marshal(struct {
			Column string   `json:"column"`
			Count  int      `json:"count"`
			Mean   *float64 `json:"mean"`
			Std    *float64 `json:"std"`
			Min    *float64 `json:"min"`
			Q25    *float64 `json:"25%"`
			Median *float64 `json:"50%"`
			Q75    *float64 `json:"75%"`
			Max    *float64 `json:"max"`
		}{s.Column, s.Count, jsonFloat(s.Mean), jsonFloat(s.Std), jsonFloat(s.Min),
			jsonFloat(s.Q25), jsonFloat(s.Median), jsonFloat(s.Q75), jsonFloat(s.Max)})
	}
	return json.Marshal(struct {
		Column string `json:"column"`
		Count  int    `json:"count"`
		Unique int    `json:"unique"`
		Top    string `json:"top,omitempty"`
		Freq   int    `json:"freq"`
	}{s.Column, s.Count, s.Unique, s.Top, s.Freq})
}

// NumericProfile describes the shape of a numeric column's distribution
type NumericProfile struct {
	Column   string  `json:"column"`
	Count    int     `json:"count"`
	Mean     float64 `json:"-"`
	Skewness float64 `json:"-"` // bias-corrected G1
	Kurtosis float64 `json:"-"` // bias-corrected excess kurtosis G2
}

func (p NumericProfile) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Column   string   `json:"column"`
		Count    int      `json:"count"`
		Mean     *float64 `json:"mean"`
		Skewness *float64 `json:"skewness"`
		Kurtosis *float64 `json:"kurtosis"`
	}{p.Column, p.Count, jsonFloat(p.Mean), jsonFloat(p.Skewness), jsonFloat(p.Kurtosis)})
}

// ValueCount is one row of a frequency table
type ValueCount struct {
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"` // share of all rows, missing included
}

// CategoricalProfile is the frequency table of a categorical column
type CategoricalProfile struct {
	Column  string       `json:"column"`
	Missing int          `json:"missing"`
	Values  []ValueCount `json:"values"`
}

// DatetimeProfile spans the parsed timestamps of a column
type DatetimeProfile struct {
	Column   string        `json:"column"`
	Earliest time.Time     `json:"earliest"`
	Latest   time.Time     `json:"latest"`
	Range    time.Duration `json:"range_ns"`
	Parsed   int           `json:"parsed"`
	Invalid  []string      `json:"invalid,omitempty"` // distinct unparseable values
	Err      error         `json:"-"`
}

// DatasetProfile bundles every per-column profile of a dataset
type DatasetProfile struct {
	Types       dataset.TypeMap      `json:"types"`
	Summary     []ColumnSummary      `json:"summary"`
	Numeric     []NumericProfile     `json:"numeric"`
	Categorical []CategoricalProfile `json:"categorical"`
	Datetime    []DatetimeProfile    `json:"datetime"`
}

func jsonFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
