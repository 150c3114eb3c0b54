package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"goeda/app"
	"goeda/internal"
	"goeda/internal/analysis"
	"goeda/internal/config"
	"goeda/internal/profiling"
	"goeda/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using system environment variables")
	}

	cfg, err := config.Load(os.Getenv("GOEDA_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
	internal.DefaultLogger = logger
	defer func() { _ = logger.Sync() }()

	engine := analysis.NewEngine(analysis.Options{
		StrongThreshold: cfg.Analysis.StrongThreshold,
		StrictOrdinal:   cfg.Analysis.StrictOrdinal,
		Logger:          logger,
	})
	reports := app.NewReportService(engine, profiling.NewDataProfiler(logger), logger, app.ReportOptions{
		Parallel:      cfg.Analysis.Parallel,
		MaxConcurrent: cfg.Analysis.MaxConcurrent,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := ui.NewServer(cfg.Server, engine, reports, logger)
	if err := server.Start(ctx); err != nil {
		logger.Error("server stopped: %v", err)
		os.Exit(1)
	}
}
