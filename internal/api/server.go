// Package api exposes the scan pipeline over HTTP for the dashboard
// layer: JSON and CSV scan submission, anomaly export, synthetic data
// generation, and strategy/SLA lookups.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/opsexstack/debtscan/internal/config"
	"github.com/opsexstack/debtscan/internal/engine"
	"github.com/opsexstack/debtscan/internal/service"
)

// Server wraps the HTTP server implementation and lifecycle helpers.
type Server struct {
	cfg        config.ServerConfig
	genCfg     config.GeneratorConfig
	logger     *slog.Logger
	scans      *service.ScanService
	strategy   *engine.StrategyEngine
	httpServer *http.Server
	listener   net.Listener
}

// NewServer constructs an HTTP server bound to the configured address.
func NewServer(cfg config.ServerConfig, genCfg config.GeneratorConfig, scans *service.ScanService, strategy *engine.StrategyEngine, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lis, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Address, err)
	}

	s := &Server{
		cfg:      cfg,
		genCfg:   genCfg,
		logger:   logger,
		scans:    scans,
		strategy: strategy,
		listener: lis,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		router.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	router.Get("/healthz", s.handleHealth)
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/scan", s.handleScan)
		r.Post("/scan/upload", s.handleScanUpload)
		r.Post("/export/anomalies", s.handleExportAnomalies)
		r.Get("/generate", s.handleGenerate)
		r.Get("/strategies", s.handleStrategies)
		r.Get("/sla/templates", s.handleSLATemplates)
	})

	s.httpServer = &http.Server{
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s, nil
}

// Start serves incoming HTTP requests until Shutdown is invoked.
func (s *Server) Start() error {
	if s.httpServer == nil || s.listener == nil {
		return fmt.Errorf("server not initialised")
	}
	return s.httpServer.Serve(s.listener)
}

// Shutdown attempts a graceful shutdown, closing the listener outright
// when the context expires first.
func (s *Server) Shutdown(ctx context.Context) {
	if s.httpServer == nil {
		return
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.httpServer.Close()
	}
}

// Address exposes the bound listener address (useful for tests).
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// GracefulTimeout returns the configured graceful timeout duration.
func (s *Server) GracefulTimeout() time.Duration {
	return s.cfg.GracefulTimeout
}
