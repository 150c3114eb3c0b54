package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/internal"
	"goeda/internal/analysis"
	"goeda/internal/annotations"
	ingest "goeda/internal/dataset"
	"goeda/internal/errors"
	"goeda/internal/profiling"
	"goeda/internal/report"
)

// ReportOptions tunes report building
type ReportOptions struct {
	Parallel      bool  // run the report sections concurrently
	MaxConcurrent int64 // report builds allowed in flight; < 1 means 1
}

// ReportService runs profiling and every relationship analysis over a dataset
type ReportService struct {
	engine   *analysis.Engine
	profiler *profiling.DataProfiler
	logger   *internal.Logger
	parallel bool
	sem      *semaphore.Weighted
}

// NewReportService wires the analysis engine and profiler into a report builder
func NewReportService(engine *analysis.Engine, profiler *profiling.DataProfiler, logger *internal.Logger, opts ReportOptions) *ReportService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	return &ReportService{
		engine:   engine,
		profiler: profiler,
		logger:   logger,
		parallel: opts.Parallel,
		sem:      semaphore.NewWeighted(opts.MaxConcurrent),
	}
}

// ResolveTypes overlays the declared types on the inferred ones and checks the
// result against the dataset
func (s *ReportService) ResolveTypes(frame *ingest.Frame, declared dataset.TypeMap) (dataset.TypeMap, error) {
	types := annotations.Overlay(profiling.InferColumnTypes(frame), declared)
	if err := types.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid column types")
	}
	for name := range declared {
		if !frame.Data.Has(name) {
			return nil, errors.Wrap(core.NewUnknownColumnError(name), "invalid column types")
		}
	}
	return types, nil
}

// Build produces the full report. Sections that cannot run for lack of columns
// are noted in the report, never failed.
func (s *ReportService) Build(ctx context.Context, frame *ingest.Frame, declared dataset.TypeMap) (*report.Report, error) {
	types, err := s.ResolveTypes(frame, declared)
	if err != nil {
		return nil, err
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "report build cancelled")
	}
	defer s.sem.Release(1)

	ds := frame.Data
	rep := report.New(frame.Source, ds.Fingerprint(), ds.Rows(), ds.Cols())
	var corrNote, indepNote string

	tasks := []func(context.Context) error{
		func(context.Context) error {
			profile, err := s.profiler.ProfileDataset(frame, types)
			if err != nil {
				return errors.Wrap(err, "profiling failed")
			}
			rep.Profile = profile
			return nil
		},
		func(context.Context) error {
			groups, err := s.engine.CompareGroups(ds, types)
			if err != nil {
				return errors.AnalysisFailed("group comparison", err)
			}
			rep.Groups = groups
			return nil
		},
		func(context.Context) error {
			cols := analysis.CorrelatableColumns(ds, types)
			if len(cols) < 2 {
				corrNote = fmt.Sprintf("correlations skipped: %d numeric or ordinal column(s)", len(cols))
				return nil
			}
			res, err := s.engine.ComputeCorrelations(ds, cols, types.OrdinalOrders())
			if err != nil {
				return errors.AnalysisFailed("correlation", err)
			}
			rep.Correlations = res
			return nil
		},
		func(context.Context) error {
			cols := types.ColumnsOfType(ds, dataset.TypeCategorical)
			if len(cols) < 2 {
				indepNote = fmt.Sprintf("independence tests skipped: %d categorical column(s)", len(cols))
				return nil
			}
			res, err := s.engine.TestCategoricalIndependence(ds, cols)
			if err != nil {
				return errors.AnalysisFailed("independence", err)
			}
			rep.Independence = res
			return nil
		},
	}

	if err := s.run(ctx, tasks); err != nil {
		return nil, err
	}
	for _, note := range []string{corrNote, indepNote} {
		if note != "" {
			rep.AddNote(note)
		}
	}

	s.logger.Info("report %s built for %s: %d group test(s), %d independence test(s)",
		rep.ID, frame.Source, len(rep.Groups), len(rep.Independence))
	return rep, nil
}

func (s *ReportService) run(ctx context.Context, tasks []func(context.Context) error) error {
	if !s.parallel {
		for _, task := range tasks {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := task(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		g.Go(func() error { return task(gctx) })
	}
	return g.Wait()
}
