package analysis

import (
	"encoding/json"
	"math"
	"math/rand"
	"strconv"
	"testing"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func formatAll(values []float64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return out
}

func normalQuantiles(n int, mu, sigma float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mu + sigma*distuv.UnitNormal.Quantile((float64(i)+0.5)/float64(n))
	}
	return out
}

func exponentialQuantiles(n int, scale float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = -scale * math.Log(1-(float64(i)+0.5)/float64(n))
	}
	return out
}

// groupedDataset stacks each group under its label in a two-column dataset
func groupedDataset(t *testing.T, groups map[string][]float64, order []string) *dataset.Dataset {
	t.Helper()
	var labels, values []string
	for _, name := range order {
		for _, v := range formatAll(groups[name]) {
			labels = append(labels, name)
			values = append(values, v)
		}
	}
	ds, err := dataset.New([]string{"group", "value"}, [][]string{labels, values})
	require.NoError(t, err)
	return ds
}

func TestCompareGroups_NormalGroupsUseANOVA(t *testing.T) {
	ds := groupedDataset(t, map[string][]float64{
		"control":   normalQuantiles(60, 10, 2),
		"treatment": normalQuantiles(60, 14, 2),
	}, []string{"control", "treatment"})
	types := dataset.TypeMap{}.Set("group", dataset.TypeCategorical).Set("value", dataset.TypeNumeric)

	results, err := NewEngine(Options{}).CompareGroups(ds, types)
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	require.NoError(t, res.Err)
	assert.Equal(t, stats.TestANOVA, res.Test)
	assert.True(t, res.Normal())
	assert.Equal(t, stats.MetricMeanOfMeans, res.MetricKind)
	assert.InDelta(t, 12.0, res.Metric, 1e-9)
	assert.Less(t, res.PValue, 1e-6)
	for _, g := range res.Groups {
		assert.False(t, g.Skipped)
		assert.GreaterOrEqual(t, g.PValue, NormalityAlpha)
	}
}

func TestCompareGroups_SkewedGroupsUseKruskalWallis(t *testing.T) {
	ds := groupedDataset(t, map[string][]float64{
		"a": exponentialQuantiles(60, 1),
		"b": exponentialQuantiles(60, 3),
	}, []string{"a", "b"})
	types := dataset.TypeMap{}.Set("group", dataset.TypeCategorical).Set("value", dataset.TypeNumeric)

	results, err := NewEngine(Options{}).CompareGroups(ds, types)
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	require.NoError(t, res.Err)
	assert.Equal(t, stats.TestKruskalWallis, res.Test)
	assert.Equal(t, stats.MetricMedianOfMedians, res.MetricKind)
	assert.GreaterOrEqual(t, res.PValue, 0.0)
	assert.LessOrEqual(t, res.PValue, 1.0)
	assert.Less(t, res.PValue, 0.05)
}

// Groups smaller than MinNormalitySamples are skipped by the normality check and
// force Kruskal-Wallis; the pair is still tested.
func TestCompareGroups_SmallGroupsForceKruskalWallis(t *testing.T) {
	ds, err := dataset.New([]string{"A", "B"}, [][]string{
		{"x", "y", "x", "y", "x"},
		{"1", "2", "1", "2", "1"},
	})
	require.NoError(t, err)
	types := dataset.TypeMap{}.Set("A", dataset.TypeCategorical).Set("B", dataset.TypeNumeric)

	results, err := NewEngine(Options{}).CompareGroups(ds, types)
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	require.NoError(t, res.Err)
	assert.Equal(t, "A", res.CategoricalColumn)
	assert.Equal(t, "B", res.NumericColumn)
	assert.Equal(t, stats.TestKruskalWallis, res.Test)
	assert.Equal(t, []string{"x", "y"}, res.SkippedGroups())
	assert.InDelta(t, 4.0, res.Statistic, 1e-9)
	assert.InDelta(t, 0.0455, res.PValue, 1e-3)
	assert.InDelta(t, 1.5, res.Metric, 1e-9)
}

func TestAllNormal_AlphaBoundary(t *testing.T) {
	check := func(p float64) []stats.GroupNormality {
		return []stats.GroupNormality{{Group: "a", N: 20, PValue: 0.5}, {Group: "b", N: 20, PValue: p}}
	}

	assert.True(t, allNormal(check(NormalityAlpha)), "p equal to alpha counts as normal")
	assert.False(t, allNormal(check(math.Nextafter(NormalityAlpha, 0))), "p just below alpha is not normal")
	assert.False(t, allNormal(check(math.NaN())), "undefined p-value is not normal")
	assert.False(t, allNormal([]stats.GroupNormality{{Group: "a", N: 5, PValue: math.NaN(), Skipped: true}}))
	assert.True(t, allNormal(check(1)))
}

func TestCompareGroups_PairOrderAndPerPairErrors(t *testing.T) {
	ds, err := dataset.New([]string{"n1", "c1", "n2", "c2"}, [][]string{
		{"1", "2", "3", "4"},
		{"a", "b", "a", "b"},
		{"5", "5", "5", "5"},
		{"k", "k", "k", "k"},
	})
	require.NoError(t, err)
	types := dataset.TypeMap{}.
		Set("n1", dataset.TypeNumeric).
		Set("c1", dataset.TypeCategorical).
		Set("n2", dataset.TypeNumeric).
		Set("c2", dataset.TypeCategorical)

	results, err := NewEngine(Options{}).CompareGroups(ds, types)
	require.NoError(t, err)
	require.Len(t, results, 4)

	var pairs [][2]string
	for _, r := range results {
		pairs = append(pairs, [2]string{r.CategoricalColumn, r.NumericColumn})
	}
	assert.Equal(t, [][2]string{{"c1", "n1"}, {"c1", "n2"}, {"c2", "n1"}, {"c2", "n2"}}, pairs)

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, core.ErrDegenerateInput)
	assert.ErrorIs(t, results[2].Err, core.ErrInsufficientGroups)
	assert.True(t, math.IsNaN(results[2].PValue))
}

func TestCompareGroups_TypeMapErrors(t *testing.T) {
	ds, err := dataset.New([]string{"c", "n"}, [][]string{{"a", "b"}, {"1", "2"}})
	require.NoError(t, err)
	engine := NewEngine(Options{})

	_, err = engine.CompareGroups(ds, dataset.TypeMap{}.Set("missing", dataset.TypeNumeric))
	assert.ErrorIs(t, err, core.ErrUnknownColumn)

	_, err = engine.CompareGroups(ds, dataset.TypeMap{}.Set("c", dataset.TypeOrdinal))
	assert.ErrorIs(t, err, core.ErrInvalidTypeMap)

	results, err := engine.CompareGroups(ds, dataset.TypeMap{}.Set("n", dataset.TypeNumeric))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCompareGroups_OrdinalNumericSide(t *testing.T) {
	var labels, grades []string
	for i := 0; i < 12; i++ {
		labels = append(labels, "low", "high")
		grades = append(grades, "bronze", "gold")
	}
	ds, err := dataset.New([]string{"tier", "grade"}, [][]string{labels, grades})
	require.NoError(t, err)
	types := dataset.TypeMap{}.
		Set("tier", dataset.TypeCategorical).
		SetOrdinal("grade", dataset.NewOrdinalOrder("bronze", "silver", "gold"))

	results, err := NewEngine(Options{}).CompareGroups(ds, types)
	require.NoError(t, err)
	require.Len(t, results, 1)
	// Constant groups fail normality; Kruskal-Wallis still separates them.
	assert.Equal(t, stats.TestKruskalWallis, results[0].Test)
	require.NoError(t, results[0].Err)
	assert.Less(t, results[0].PValue, 0.001)
	assert.InDelta(t, 2.0, results[0].Metric, 1e-9)
}

func TestComputeCorrelations_PerfectLinear(t *testing.T) {
	ds, err := dataset.New([]string{"A", "B", "C"}, [][]string{
		{"1", "2", "3", "4", "5", "6"},
		{"2", "4", "6", "8", "10", "12"},
		{"7", "7", "7", "7", "7", "7"},
	})
	require.NoError(t, err)

	res, err := NewEngine(Options{}).ComputeCorrelations(ds, []string{"A", "B", "C"}, nil)
	require.NoError(t, err)

	m := res.Matrix
	assert.Equal(t, []string{"A", "B", "C"}, m.Columns)
	assert.InDelta(t, 1.0, m.At(0, 1), 1e-12)
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 1.0, m.At(1, 1))
	assert.True(t, math.IsNaN(m.At(2, 2)))
	assert.True(t, math.IsNaN(m.At(0, 2)))

	require.Len(t, res.StrongPairs, 1)
	assert.Equal(t, "A", res.StrongPairs[0].ColumnA)
	assert.Equal(t, "B", res.StrongPairs[0].ColumnB)
	assert.Equal(t, DefaultStrongCorrelationThreshold, res.Threshold)
}

func TestComputeCorrelations_Symmetric(t *testing.T) {
	ds, err := dataset.New([]string{"x", "y", "z"}, [][]string{
		{"1", "4", "2", "8", "5", "7"},
		{"3", "1", "4", "1", "5", "9"},
		{"2", "7", "1", "8", "2", "8"},
	})
	require.NoError(t, err)

	res, err := NewEngine(Options{}).ComputeCorrelations(ds, []string{"x", "y", "z"}, nil)
	require.NoError(t, err)
	for i := range res.Matrix.Columns {
		assert.Equal(t, 1.0, res.Matrix.At(i, i))
		for j := range res.Matrix.Columns {
			assert.Equal(t, res.Matrix.At(i, j), res.Matrix.At(j, i))
			assert.LessOrEqual(t, math.Abs(res.Matrix.At(i, j)), 1.0)
		}
	}
}

func TestComputeCorrelations_ColumnErrors(t *testing.T) {
	ds, err := dataset.New([]string{"a", "b"}, [][]string{{"1", "2"}, {"3", "4"}})
	require.NoError(t, err)
	engine := NewEngine(Options{})

	_, err = engine.ComputeCorrelations(ds, []string{"a"}, nil)
	assert.ErrorIs(t, err, core.ErrInsufficientColumns)

	_, err = engine.ComputeCorrelations(ds, []string{"a", "a"}, nil)
	assert.ErrorIs(t, err, core.ErrInsufficientColumns)

	_, err = engine.ComputeCorrelations(ds, []string{"a", "nope"}, nil)
	assert.ErrorIs(t, err, core.ErrUnknownColumn)
}

func TestComputeCorrelations_OrdinalSelfCorrelation(t *testing.T) {
	sizes := []string{"S", "M", "L", "XL", "M", "S", "L"}
	ds, err := dataset.New([]string{"size", "size_copy"}, [][]string{sizes, sizes})
	require.NoError(t, err)
	order := dataset.NewOrdinalOrder("S", "M", "L", "XL")

	res, err := NewEngine(Options{}).ComputeCorrelations(ds, []string{"size", "size_copy"},
		map[string]dataset.OrdinalOrder{"size": order, "size_copy": order})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Matrix.At(0, 1), 1e-12)
	require.Len(t, res.Encodings, 2)
	assert.Empty(t, res.Encodings[0].Unmapped)
}

func TestComputeCorrelations_UnmappedOrdinalValues(t *testing.T) {
	ds, err := dataset.New([]string{"level", "score"}, [][]string{
		{"low", "mid", "high", "extreme", "low", "high"},
		{"1", "2", "3", "100", "1", "3"},
	})
	require.NoError(t, err)
	orders := map[string]dataset.OrdinalOrder{"level": dataset.NewOrdinalOrder("low", "mid", "high")}

	res, err := NewEngine(Options{}).ComputeCorrelations(ds, []string{"level", "score"}, orders)
	require.NoError(t, err)
	// The unmapped row is dropped pairwise, leaving a perfect relation.
	assert.InDelta(t, 1.0, res.Matrix.At(0, 1), 1e-12)
	require.Len(t, res.Encodings, 1)
	assert.Equal(t, []string{"extreme"}, res.Encodings[0].Unmapped)
	assert.Equal(t, 1, res.Encodings[0].Missing)

	strict := NewEngine(Options{StrictOrdinal: true})
	res, err = strict.ComputeCorrelations(ds, []string{"level", "score"}, orders)
	require.NoError(t, err)
	assert.True(t, res.Encodings[0].Rejected)
	assert.Contains(t, res.Encodings[0].Error, "extreme")
	assert.True(t, math.IsNaN(res.Matrix.At(0, 1)))
}

func TestOrdinalEncoder_StrictFailsFast(t *testing.T) {
	_, err := OrdinalEncoder{Strict: true}.Encode("level", []string{"low", "huge"}, dataset.NewOrdinalOrder("low", "high"))
	assert.ErrorIs(t, err, core.ErrMissingOrdinalMapping)

	enc, err := OrdinalEncoder{}.Encode("level", []string{"low", "", "high"}, dataset.NewOrdinalOrder("low", "high"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, enc.Values[0])
	assert.True(t, math.IsNaN(enc.Values[1]))
	assert.Equal(t, 2.0, enc.Values[2])
	assert.Equal(t, 1, enc.Missing)
}

func TestStrongPairs_ThresholdAndStableOrder(t *testing.T) {
	m := stats.CorrelationMatrix{
		Columns: []string{"a", "b", "c", "d"},
		Values: [][]float64{
			{1, 0.7, -0.7, 0.6},
			{0.7, 1, 0.9, math.NaN()},
			{-0.7, 0.9, 1, 0.2},
			{0.6, math.NaN(), 0.2, 1},
		},
	}

	pairs := StrongPairs(m, 0.6)
	require.Len(t, pairs, 3)
	assert.Equal(t, stats.StrongPair{ColumnA: "b", ColumnB: "c", Coefficient: 0.9}, pairs[0])
	assert.Equal(t, stats.StrongPair{ColumnA: "a", ColumnB: "b", Coefficient: 0.7}, pairs[1])
	assert.Equal(t, stats.StrongPair{ColumnA: "a", ColumnB: "c", Coefficient: -0.7}, pairs[2])

	assert.NotNil(t, StrongPairs(m, 0.95))
	assert.Empty(t, StrongPairs(m, 0.95))
}

func TestNewEngine_CustomThreshold(t *testing.T) {
	assert.Equal(t, 0.8, NewEngine(Options{StrongThreshold: 0.8}).StrongThreshold())
	assert.Equal(t, DefaultStrongCorrelationThreshold, NewEngine(Options{StrongThreshold: -1}).StrongThreshold())
}

func TestCategoricalIndependence_BalancedAndIdentical(t *testing.T) {
	var colour, shape []string
	for i := 0; i < 40; i++ {
		colour = append(colour, []string{"red", "red", "blue", "blue"}[i%4])
		shape = append(shape, []string{"round", "square"}[i%2])
	}
	ds, err := dataset.New([]string{"colour", "shape", "colour_copy"}, [][]string{colour, shape, colour})
	require.NoError(t, err)

	results, err := NewEngine(Options{}).TestCategoricalIndependence(ds, []string{"colour", "shape", "colour_copy"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	independent := results[0]
	require.NoError(t, independent.Err)
	assert.Equal(t, 1, independent.DoF)
	assert.Greater(t, independent.PValue, 0.05)

	identical := results[1]
	assert.Equal(t, "colour", identical.ColumnA)
	assert.Equal(t, "colour_copy", identical.ColumnB)
	require.NoError(t, identical.Err)
	assert.InDelta(t, 36.1, identical.Statistic, 1e-9)
	assert.Less(t, identical.PValue, 1e-8)
}

func TestCategoricalIndependence_ShuffledColumnsRarelySignificant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := make([]string, 90)
	other := make([]string, 90)
	for i := range base {
		base[i] = []string{"a", "b", "c"}[i%3]
		other[i] = []string{"x", "y"}[i%2]
	}

	significant := 0
	const trials = 50
	for trial := 0; trial < trials; trial++ {
		shuffled := append([]string(nil), other...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		ds, err := dataset.New([]string{"base", "shuffled"}, [][]string{base, shuffled})
		require.NoError(t, err)

		results, err := NewEngine(Options{}).TestCategoricalIndependence(ds, []string{"base", "shuffled"})
		require.NoError(t, err)
		require.NoError(t, results[0].Err)
		if results[0].PValue <= 0.05 {
			significant++
		}
	}
	assert.LessOrEqual(t, significant, trials/5)
}

func TestCategoricalIndependence_Errors(t *testing.T) {
	ds, err := dataset.New([]string{"a", "b"}, [][]string{{"x", "y", "x"}, {"k", "k", "k"}})
	require.NoError(t, err)
	engine := NewEngine(Options{})

	_, err = engine.TestCategoricalIndependence(ds, []string{"a"})
	assert.ErrorIs(t, err, core.ErrInsufficientColumns)

	_, err = engine.TestCategoricalIndependence(ds, []string{"a", "zzz"})
	assert.ErrorIs(t, err, core.ErrUnknownColumn)

	results, err := engine.TestCategoricalIndependence(ds, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Defined())
	assert.ErrorIs(t, results[0].Err, core.ErrDegenerateInput)
}

func TestResultsMarshalNaNAsNull(t *testing.T) {
	res := stats.GroupTestResult{
		CategoricalColumn: "c",
		NumericColumn:     "n",
		Statistic:         math.NaN(),
		PValue:            math.NaN(),
		Metric:            2,
		Err:               core.NewInsufficientGroupsError("c", 1),
	}
	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["p_value"])
	assert.Nil(t, decoded["statistic"])
	assert.Equal(t, 2.0, decoded["metric"])
	assert.Contains(t, decoded["error"], "insufficient")
}
