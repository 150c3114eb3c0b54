package stats

import (
	"encoding/json"
	"math"
)

// TestKind names the group comparison test that was applied
type TestKind string

const (
	TestANOVA         TestKind = "ANOVA"
	TestKruskalWallis TestKind = "Kruskal-Wallis"
)

// MetricKind names the summary metric reported with a group comparison
type MetricKind string

const (
	MetricMeanOfMeans     MetricKind = "mean_of_means"
	MetricMedianOfMedians MetricKind = "median_of_medians"
)

// GroupNormality records the normality check of one partition
type GroupNormality struct {
	Group   string  `json:"group"`
	N       int     `json:"n"`
	PValue  float64 `json:"p_value"`
	Skipped bool    `json:"skipped,omitempty"` // too few observations to test
}

// GroupTestResult is one (categorical, numeric) comparison.
// Err is set when the pair could not be tested; the batch still continues.
type GroupTestResult struct {
	CategoricalColumn string           `json:"categorical_column"`
	NumericColumn     string           `json:"numeric_column"`
	Test              TestKind         `json:"test,omitempty"`
	Statistic         float64          `json:"statistic"`
	PValue            float64          `json:"p_value"`
	Metric            float64          `json:"metric"`
	MetricKind        MetricKind       `json:"metric_kind,omitempty"`
	Groups            []GroupNormality `json:"groups,omitempty"`
	Err               error            `json:"-"`
}

// Normal reports whether every partition passed the normality check
func (r GroupTestResult) Normal() bool {
	return r.Test == TestANOVA
}

// SkippedGroups lists partitions too small for the normality test
func (r GroupTestResult) SkippedGroups() []string {
	var out []string
	for _, g := range r.Groups {
		if g.Skipped {
			out = append(out, g.Group)
		}
	}
	return out
}

// MarshalJSON adds the error text and maps NaN to null
func (r GroupTestResult) MarshalJSON() ([]byte, error) {
	type alias GroupTestResult
	groups := make([]groupNormalityJSON, len(r.Groups))
	for i, g := range r.Groups {
		groups[i] = groupNormalityJSON{Group: g.Group, N: g.N, PValue: jsonFloat(g.PValue), Skipped: g.Skipped}
	}
	return json.Marshal(struct {
		alias
		Statistic *float64             `json:"statistic"`
		PValue    *float64             `json:"p_value"`
		Metric    *float64             `json:"metric"`
		Groups    []groupNormalityJSON `json:"groups,omitempty"`
		Error     string               `json:"error,omitempty"`
	}{
		alias:     alias(r),
		Statistic: jsonFloat(r.Statistic),
		PValue:    jsonFloat(r.PValue),
		Metric:    jsonFloat(r.Metric),
		Groups:    groups,
		Error:     errString(r.Err),
	})
}

type groupNormalityJSON struct {
	Group   string   `json:"group"`
	N       int      `json:"n"`
	PValue  *float64 `json:"p_value"`
	Skipped bool     `json:"skipped,omitempty"`
}

// StrongPair is a column pair whose |r| exceeds the strength threshold
type StrongPair struct {
	ColumnA     string  `json:"column_a"`
	ColumnB     string  `json:"column_b"`
	Coefficient float64 `json:"coefficient"`
}

// CorrelationMatrix is square and symmetric; NaN marks undefined coefficients
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64
}

// At returns the coefficient between two columns by index
func (m CorrelationMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// Lookup returns the coefficient between two named columns
func (m CorrelationMatrix) Lookup(a, b string) (float64, bool) {
	ia, ib := m.indexOf(a), m.indexOf(b)
	if ia < 0 || ib < 0 {
		return math.NaN(), false
	}
	return m.Values[ia][ib], true
}

func (m CorrelationMatrix) indexOf(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// MarshalJSON emits NaN coefficients as null
func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]*float64, len(row))
		for j, v := range row {
			values[i][j] = jsonFloat(v)
		}
	}
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}{m.Columns, values})
}

// EncodingDiagnostics reports how an ordinal column was encoded
type EncodingDiagnostics struct {
	Column   string   `json:"column"`
	Missing  int      `json:"missing"`
	Unmapped []string `json:"unmapped,omitempty"` // distinct raw values with no declared rank
	Rejected bool     `json:"rejected,omitempty"` // strict encoding refused the column
	Error    string   `json:"error,omitempty"`
}

// CorrelationResult bundles the full matrix and the ranked strong pairs
type CorrelationResult struct {
	Matrix      CorrelationMatrix     `json:"matrix"`
	StrongPairs []StrongPair          `json:"strong_pairs"`
	Threshold   float64               `json:"threshold"`
	Encodings   []EncodingDiagnostics `json:"encodings,omitempty"`
}

// ContingencyResult is the chi-square independence test of one categorical pair
type ContingencyResult struct {
	ColumnA   string  `json:"column_a"`
	ColumnB   string  `json:"column_b"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	DoF       int     `json:"dof"`
	Rows      int     `json:"rows"`
	Cols      int     `json:"cols"`
	Err       error   `json:"-"`
}

// Defined reports whether the test produced a p-value
func (r ContingencyResult) Defined() bool {
	return r.Err == nil && !math.IsNaN(r.PValue)
}

// MarshalJSON adds the error text and maps NaN to null
func (r ContingencyResult) MarshalJSON() ([]byte, error) {
	type alias ContingencyResult
	return json.Marshal(struct {
		alias
		Statistic *float64 `json:"statistic"`
		PValue    *float64 `json:"p_value"`
		Error     string   `json:"error,omitempty"`
	}{
		alias:     alias(r),
		Statistic: jsonFloat(r.Statistic),
		PValue:    jsonFloat(r.PValue),
		Error:     errString(r.Err),
	})
}

func jsonFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
