package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/opsexstack/debtscan/internal/analytics"
	"github.com/opsexstack/debtscan/internal/ingest"
	"github.com/opsexstack/debtscan/internal/models"
	"github.com/opsexstack/debtscan/internal/utils"
)

// Pipeline orchestrates one scan run: validate, clean, detect, derive
// baseline and impact, compute descriptive metrics, and attach strategy
// recommendations. A Pipeline holds no per-run state; runs over
// identical inputs produce identical reports.
type Pipeline struct {
	logger   *slog.Logger
	detector *Detector
	strategy *StrategyEngine
}

// NewPipeline constructs a scan pipeline.
func NewPipeline(logger *slog.Logger, detector *Detector, strategy *StrategyEngine) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if detector == nil {
		detector = NewDetector()
	}
	if strategy == nil {
		strategy, _ = NewStrategyEngine("", logger)
	}
	return &Pipeline{logger: logger, detector: detector, strategy: strategy}
}

// Run executes the full scan over the provided dataset. Parameter and
// dataset validation failures abort before any computation; every later
// stage is total over validated input and encodes absence of signal as
// documented defaults.
func (p *Pipeline) Run(ctx context.Context, records []models.LogRecord, opts models.ScanOptions) (models.ScanReport, error) {
	if ok, msg := opts.Validate(); !ok {
		return models.ScanReport{}, fmt.Errorf("%w: %s", utils.ErrInvalidParams, msg)
	}
	if ok, msg := ingest.Validate(records); !ok {
		return models.ScanReport{}, fmt.Errorf("%w: %s", utils.ErrInvalidDataset, msg)
	}

	cleaned := ingest.Clean(records, opts.CapOutliers)
	if len(cleaned) == 0 {
		return models.ScanReport{}, fmt.Errorf("%w: no records survived cleaning", utils.ErrInvalidDataset)
	}

	annotated := p.detector.Detect(cleaned, opts.Contamination)
	baseline := Baseline(annotated)
	Annotate(annotated, baseline)

	anomalies := make([]models.AnnotatedRecord, 0, len(annotated))
	for _, rec := range annotated {
		if rec.IsAnomaly {
			anomalies = append(anomalies, rec)
		}
	}

	impact := Impact(anomalies, opts.HourlyRate)

	errorRate := analytics.ErrorRate(cleaned)
	percentiles := analytics.Percentiles(cleaned, "")
	trend := analytics.Trend(cleaned)
	compliance := analytics.SLACompliance(cleaned, opts.SLALatencyMs)
	health := analytics.HealthScore(errorRate, compliance.ComplianceRate, trend.Slope)

	report := models.ScanReport{
		ScanID:          fmt.Sprintf("scan-%d", time.Now().UnixNano()),
		CreatedAt:       time.Now().UTC(),
		TotalRequests:   len(cleaned),
		AnomalyCount:    len(anomalies),
		Baseline:        baseline,
		ErrorRate:       errorRate,
		Records:         annotated,
		Anomalies:       anomalies,
		Impact:          impact,
		EndpointMetrics: analytics.EndpointMetrics(cleaned),
		Percentiles:     percentiles,
		Trend:           trend,
		PeakHour:        analytics.PeakHour(cleaned),
		SLACompliance:   compliance,
		SLAEvaluation:   EvaluateSLA(percentiles, opts.SLALevel),
		Health:          health,
		QuickWins:       p.strategy.QuickWins(len(anomalies), impact.FinancialLoss),
	}

	meanLatency := overallMeanLatency(cleaned)
	report.MaturityAdvice = MaturityAdvice(meanLatency)

	if worst := WorstEndpoint(anomalies); worst != "" {
		endpoint, plan := p.strategy.PlanFor(worst)
		report.WorstEndpoint = endpoint
		report.Plan = plan
		report.Summary = fmt.Sprintf("detected %d silent anomalies; worst offender %s", len(anomalies), endpoint)
	} else {
		report.Summary = "no significant debt detected; systems operational"
	}

	report.Alerts = p.buildAlerts(report, opts)

	p.logger.Info("scan complete",
		slog.String("scan_id", report.ScanID),
		slog.Int("records", report.TotalRequests),
		slog.Int("anomalies", report.AnomalyCount),
		slog.Float64("baseline_ms", report.Baseline),
		slog.Float64("wasted_hours", impact.TotalWastedHours),
	)

	return report, nil
}

func (p *Pipeline) buildAlerts(report models.ScanReport, opts models.ScanOptions) []string {
	var alerts []string
	if report.Impact.TotalWastedHours > opts.WastedHoursThreshold {
		alerts = append(alerts, fmt.Sprintf(
			"High Debt Alert: %.2f hrs > %.1f hrs threshold",
			report.Impact.TotalWastedHours, opts.WastedHoursThreshold))
	}
	if report.ErrorRate > opts.ErrorRateThreshold {
		alerts = append(alerts, fmt.Sprintf(
			"High Error Rate: %.2f%% > %.1f%% threshold",
			report.ErrorRate, opts.ErrorRateThreshold))
	}
	return alerts
}

func overallMeanLatency(records []models.LogRecord) float64 {
	latencies := make([]float64, len(records))
	for i, rec := range records {
		latencies[i] = rec.LatencyMs
	}
	return analytics.Mean(latencies)
}
