package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"goeda/app"
	"goeda/internal"
	"goeda/internal/analysis"
	"goeda/internal/config"
	ingest "goeda/internal/dataset"
	"goeda/internal/profiling"
)

// runtime holds the components shared by every command
type runtime struct {
	cfg      *config.Config
	logger   *internal.Logger
	loader   *ingest.Loader
	profiler *profiling.DataProfiler
}

var (
	cfgFile  string
	sheet    string
	logLevel string
	rt       runtime
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, warningStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "goeda",
		Short:         "Exploratory data analysis for CSV and Excel files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./goeda.yaml)")
	rootCmd.PersistentFlags().StringVar(&sheet, "sheet", "", "worksheet to read from xlsx files (default first sheet)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (ERROR, WARN, INFO, DEBUG, TRACE)")

	rootCmd.AddCommand(newInferCmd(), newDescribeCmd(), newRelationshipsCmd(), newReportCmd())
	return rootCmd
}

func setup() error {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	logger := internal.NewLogger(internal.ParseLogLevel(level))

	rt = runtime{
		cfg:      cfg,
		logger:   logger,
		loader:   ingest.NewLoader(logger).WithSheet(sheet),
		profiler: profiling.NewDataProfiler(logger),
	}
	return nil
}

// engine builds an analysis engine from config, letting command flags override it
func (r runtime) engine(threshold float64, strict bool) *analysis.Engine {
	if threshold <= 0 {
		threshold = r.cfg.Analysis.StrongThreshold
	}
	return analysis.NewEngine(analysis.Options{
		StrongThreshold: threshold,
		StrictOrdinal:   strict || r.cfg.Analysis.StrictOrdinal,
		Logger:          r.logger,
	})
}

func (r runtime) reportService(engine *analysis.Engine) *app.ReportService {
	return app.NewReportService(engine, r.profiler, r.logger, app.ReportOptions{
		Parallel:      r.cfg.Analysis.Parallel,
		MaxConcurrent: r.cfg.Analysis.MaxConcurrent,
	})
}
