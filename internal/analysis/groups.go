package analysis

import (
	"errors"
	"math"

	"goeda/adapters/stats/inference"
	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/domain/stats"
	"goeda/internal"

	mstats "github.com/montanaflynn/stats"
)

// NormalityAlpha is the significance level of the per-group normality check.
// The data counts as normal only if every group's p-value is >= NormalityAlpha.
const NormalityAlpha = 0.01

// MinNormalitySamples is the smallest group the normality test can judge. Smaller
// groups are recorded as skipped and count as non-normal, forcing Kruskal-Wallis.
const MinNormalitySamples = inference.MinNormalitySamples

// GroupComparisonSelector picks ANOVA or Kruskal-Wallis for a (categorical, numeric)
// pair depending on whether every group looks normally distributed.
type GroupComparisonSelector struct {
	encoder    OrdinalEncoder
	parametric inference.GroupTest
	rankBased  inference.GroupTest
	logger     *internal.Logger
}

// NewGroupComparisonSelector creates a selector; a nil logger discards output
func NewGroupComparisonSelector(encoder OrdinalEncoder, logger *internal.Logger) *GroupComparisonSelector {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &GroupComparisonSelector{
		encoder:    encoder,
		parametric: inference.OneWayANOVA{},
		rankBased:  inference.KruskalWallis{},
		logger:     logger,
	}
}

type partition struct {
	label  string
	values []float64
}

// Compare runs the selected test for one pair. numeric describes the numeric side;
// an Ordinal spec is encoded through its order first. Data problems are reported
// in the result's Err, never as a panic.
func (s *GroupComparisonSelector) Compare(ds *dataset.Dataset, categorical, numeric string, spec dataset.ColumnSpec) stats.GroupTestResult {
	result := stats.GroupTestResult{
		CategoricalColumn: categorical,
		NumericColumn:     numeric,
		Statistic:         math.NaN(),
		PValue:            math.NaN(),
		Metric:            math.NaN(),
	}

	labels, err := ds.Column(categorical)
	if err != nil {
		result.Err = err
		return result
	}
	values, err := s.numericView(ds, numeric, spec)
	if err != nil {
		result.Err = err
		return result
	}

	parts := partitionByLabel(labels, values)
	if len(parts) < 2 {
		result.Err = core.NewInsufficientGroupsError(categorical, len(parts))
		return result
	}

	result.Groups = make([]stats.GroupNormality, len(parts))
	for i, p := range parts {
		check := stats.GroupNormality{Group: p.label, N: len(p.values), PValue: math.NaN()}
		res, err := inference.NormalityTest(p.values)
		switch {
		case errors.Is(err, inference.ErrTooFewSamples):
			check.Skipped = true
		case err == nil:
			check.PValue = res.PValue
		}
		result.Groups[i] = check
	}
	normal := allNormal(result.Groups)

	groups := make([][]float64, len(parts))
	for i, p := range parts {
		groups[i] = p.values
	}

	test := s.rankBased
	result.Test = stats.TestKruskalWallis
	result.MetricKind = stats.MetricMedianOfMedians
	result.Metric = medianOfMedians(groups)
	if normal {
		test = s.parametric
		result.Test = stats.TestANOVA
		result.MetricKind = stats.MetricMeanOfMeans
		result.Metric = meanOfMeans(groups)
	}

	s.logger.Debug("group comparison %s ~ %s: %d groups, normal=%t, test=%s", numeric, categorical, len(groups), normal, test.Name())

	res, err := test.Test(groups)
	if err != nil {
		result.Err = translateTestError(err)
		return result
	}
	result.Statistic = res.Statistic
	result.PValue = res.PValue
	return result
}

func (s *GroupComparisonSelector) numericView(ds *dataset.Dataset, column string, spec dataset.ColumnSpec) ([]float64, error) {
	if spec.Type != dataset.TypeOrdinal {
		return ds.Numeric(column)
	}
	raw, err := ds.Column(column)
	if err != nil {
		return nil, err
	}
	enc, err := s.encoder.Encode(column, raw, spec.Order)
	if err != nil {
		return nil, err
	}
	return enc.Values, nil
}

// allNormal applies the normality gate: every group must have been tested and have
// p >= NormalityAlpha. A NaN p-value fails the comparison.
func allNormal(checks []stats.GroupNormality) bool {
	for _, c := range checks {
		if c.Skipped || !(c.PValue >= NormalityAlpha) {
			return false
		}
	}
	return true
}

// partitionByLabel groups values by label in first-seen order, dropping rows with a
// missing label or value
func partitionByLabel(labels []string, values []float64) []partition {
	index := make(map[string]int)
	var parts []partition
	for i, label := range labels {
		if i >= len(values) || dataset.IsMissing(label) || math.IsNaN(values[i]) {
			continue
		}
		j, ok := index[label]
		if !ok {
			j = len(parts)
			index[label] = j
			parts = append(parts, partition{label: label})
		}
		parts[j].values = append(parts[j].values, values[i])
	}
	return parts
}

func meanOfMeans(groups [][]float64) float64 {
	means := make([]float64, 0, len(groups))
	for _, g := range groups {
		m, err := mstats.Mean(g)
		if err != nil {
			continue
		}
		means = append(means, m)
	}
	m, err := mstats.Mean(means)
	if err != nil {
		return math.NaN()
	}
	return m
}

func medianOfMedians(groups [][]float64) float64 {
	medians := make([]float64, 0, len(groups))
	for _, g := range groups {
		m, err := mstats.Median(g)
		if err != nil {
			continue
		}
		medians = append(medians, m)
	}
	m, err := mstats.Median(medians)
	if err != nil {
		return math.NaN()
	}
	return m
}

func translateTestError(err error) error {
	switch {
	case errors.Is(err, inference.ErrUndefinedStatistic):
		return core.NewDegenerateError(err.Error())
	case errors.Is(err, inference.ErrTooFewSamples):
		return errors.Join(core.ErrInsufficientData, err)
	}
	return err
}
