// Package profiling computes the descriptive side of a dataset report: type
// inference, describe() summaries and per-type column profiles.
package profiling

import (
	"goeda/domain/dataset"
	"goeda/internal"
	ingest "goeda/internal/dataset"
)

// DataProfiler orchestrates statistical profiling of a dataset
type DataProfiler struct {
	logger *internal.Logger
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler(logger *internal.Logger) *DataProfiler {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &DataProfiler{logger: logger}
}

// ProfileDataset describes the frame and profiles each column by its declared type.
// A nil type map falls back to the inferred types.
func (dp *DataProfiler) ProfileDataset(frame *ingest.Frame, types dataset.TypeMap) (*DatasetProfile, error) {
	if types == nil {
		types = InferColumnTypes(frame)
	}
	if err := types.Validate(); err != nil {
		return nil, err
	}

	summary, err := Describe(frame)
	if err != nil {
		return nil, err
	}
	profile := &DatasetProfile{Types: types, Summary: summary}
	ds := frame.Data

	for _, name := range types.ColumnsOfType(ds, dataset.TypeNumeric) {
		p, err := ProfileNumeric(ds, name)
		if err != nil {
			return nil, err
		}
		profile.Numeric = append(profile.Numeric, p)
	}
	for _, name := range types.ColumnsOfType(ds, dataset.TypeCategorical, dataset.TypeOrdinal) {
		p, err := ProfileCategorical(ds, name)
		if err != nil {
			return nil, err
		}
		profile.Categorical = append(profile.Categorical, p)
	}
	for _, name := range types.ColumnsOfType(ds, dataset.TypeDatetime) {
		p, err := ProfileDatetime(ds, name)
		if err != nil {
			return nil, err
		}
		if p.Err != nil {
			dp.logger.Warn("datetime profile %s: %v", name, p.Err)
		}
		profile.Datetime = append(profile.Datetime, p)
	}

	dp.logger.Debug("profiled %s: %d numeric, %d categorical, %d datetime",
		frame.Source, len(profile.Numeric), len(profile.Categorical), len(profile.Datetime))
	return profile, nil
}
