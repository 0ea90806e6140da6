// Package service exposes the scan pipeline as an application facade:
// it merges request options with configured defaults, records
// operational metrics, and classifies failures for the API layer.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/opsexstack/debtscan/internal/engine"
	"github.com/opsexstack/debtscan/internal/metrics"
	"github.com/opsexstack/debtscan/internal/models"
	"github.com/opsexstack/debtscan/internal/utils"
)

// ScanService drives the pipeline for the HTTP layer.
type ScanService struct {
	logger    *slog.Logger
	pipeline  *engine.Pipeline
	defaults  models.ScanOptions
	latencies *utils.LatencyTracker
}

// NewScanService constructs the scan facade. The defaults fill any
// zero-valued option a request leaves unset.
func NewScanService(logger *slog.Logger, pipeline *engine.Pipeline, defaults models.ScanOptions) *ScanService {
	if logger == nil {
		logger = slog.Default()
	}
	if pipeline == nil {
		pipeline = engine.NewPipeline(logger, nil, nil)
	}
	return &ScanService{
		logger:    logger,
		pipeline:  pipeline,
		defaults:  defaults,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// Defaults returns the configured default options.
func (s *ScanService) Defaults() models.ScanOptions {
	return s.defaults
}

// MergeOptions fills unset request options from the configured defaults.
// SLALevel and numeric fields left at zero take the default; the
// CapOutliers flag follows the default unless the request set it.
func (s *ScanService) MergeOptions(opts *models.ScanOptions) models.ScanOptions {
	merged := s.defaults
	if opts == nil {
		return merged
	}
	if opts.Contamination != 0 {
		merged.Contamination = opts.Contamination
	}
	if opts.HourlyRate != 0 {
		merged.HourlyRate = opts.HourlyRate
	}
	if opts.WastedHoursThreshold != 0 {
		merged.WastedHoursThreshold = opts.WastedHoursThreshold
	}
	if opts.ErrorRateThreshold != 0 {
		merged.ErrorRateThreshold = opts.ErrorRateThreshold
	}
	if opts.SLALevel != "" {
		merged.SLALevel = opts.SLALevel
	}
	if opts.SLALatencyMs != 0 {
		merged.SLALatencyMs = opts.SLALatencyMs
	}
	if opts.CapOutliers {
		merged.CapOutliers = true
	}
	return merged
}

// Scan runs the pipeline over its own view of the dataset and records
// operational metrics for the run.
func (s *ScanService) Scan(ctx context.Context, records []models.LogRecord, opts models.ScanOptions) (models.ScanReport, error) {
	start := time.Now()
	report, err := s.pipeline.Run(ctx, records, opts)
	duration := time.Since(start)

	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, utils.ErrInvalidDataset) || errors.Is(err, utils.ErrInvalidParams) {
			outcome = metrics.OutcomeInvalid
		}
		metrics.ObserveScan(duration, outcome, 0)
		s.logger.Warn("scan failed", slog.Any("error", err))
		return models.ScanReport{}, err
	}

	s.latencies.Observe(duration)
	metrics.ObserveScan(duration, metrics.OutcomeSuccess, report.AnomalyCount)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("scan latency", slog.Duration("p95", s.latencies.Percentile(95)), slog.Int("samples", count))
	}

	return report, nil
}

// LatencyP95 returns the current p95 scan latency.
func (s *ScanService) LatencyP95() time.Duration {
	if s.latencies == nil {
		return 0
	}
	return s.latencies.Percentile(95)
}
