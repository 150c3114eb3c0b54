// Package ui hosts the HTTP API over the analysis engine.
package ui

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"goeda/app"
	"goeda/internal"
	"goeda/internal/analysis"
	"goeda/internal/config"
	ingest "goeda/internal/dataset"
)

// Server represents the HTTP server for the analysis API
type Server struct {
	router  *gin.Engine
	handler *AnalysisHandler
	cfg     config.ServerConfig
	logger  *internal.Logger
	http    *http.Server
}

// NewServer creates a server with every route registered
func NewServer(cfg config.ServerConfig, engine *analysis.Engine, reports *app.ReportService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	gin.SetMode(cfg.GinMode)

	s := &Server{
		router:  gin.New(),
		handler: NewAnalysisHandler(engine, reports, ingest.NewLoader(logger), logger),
		cfg:     cfg,
		logger:  logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Router exposes the gin engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api/v1")
	{
		api.POST("/infer", s.handler.HandleInfer())
		api.POST("/describe", s.handler.HandleDescribe())
		api.POST("/groups", s.handler.HandleGroups())
		api.POST("/correlations", s.handler.HandleCorrelations())
		api.POST("/independence", s.handler.HandleIndependence())
		api.POST("/report", s.handler.HandleReport())
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[Server] listening on :%s", s.cfg.Port)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("[Server] shutting down")
		return s.http.Shutdown(shutdownCtx)
	}
}
