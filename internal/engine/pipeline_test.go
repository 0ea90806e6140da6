package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opsexstack/debtscan/internal/ingest"
	"github.com/opsexstack/debtscan/internal/models"
	"github.com/opsexstack/debtscan/internal/utils"
)

func testOptions() models.ScanOptions {
	return models.ScanOptions{
		Contamination:        0.05,
		HourlyRate:           60,
		WastedHoursThreshold: 5,
		ErrorRateThreshold:   1,
		SLALevel:             "standard",
		SLALatencyMs:         500,
		CapOutliers:          true,
	}
}

func TestPipelineRun(t *testing.T) {
	records := ingest.NewGenerator(42).Generate(1000, 0.05)
	pipeline := NewPipeline(nil, nil, nil)

	report, err := pipeline.Run(context.Background(), records, testOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.TotalRequests != 1000 {
		t.Fatalf("expected 1000 processed records, got %d", report.TotalRequests)
	}
	if report.AnomalyCount < 30 || report.AnomalyCount > 70 {
		t.Fatalf("expected roughly 5%% anomalies, got %d", report.AnomalyCount)
	}
	if len(report.Anomalies) != report.AnomalyCount {
		t.Fatalf("anomaly list length %d does not match count %d", len(report.Anomalies), report.AnomalyCount)
	}
	// Generated healthy traffic is N(150, 50); the baseline should land near it.
	if report.Baseline < 100 || report.Baseline > 300 {
		t.Fatalf("baseline far from healthy mean: %f", report.Baseline)
	}
	if report.WorstEndpoint == "" || len(report.Plan) != 3 {
		t.Fatalf("expected a worst endpoint with a 3-step plan, got %q with %d steps",
			report.WorstEndpoint, len(report.Plan))
	}
	if report.Impact.TotalWastedHours <= 0 {
		t.Fatalf("expected positive wasted hours, got %f", report.Impact.TotalWastedHours)
	}
	if len(report.EndpointMetrics) != 5 {
		t.Fatalf("expected 5 endpoint rows, got %d", len(report.EndpointMetrics))
	}
	if report.Health.Score < 0 || report.Health.Score > 100 {
		t.Fatalf("health score out of range: %f", report.Health.Score)
	}
	if report.ScanID == "" || report.Summary == "" || report.MaturityAdvice == "" {
		t.Fatalf("report narrative incomplete: %+v", report)
	}
	if len(report.QuickWins) < 3 {
		t.Fatalf("expected standing quick wins, got %d", len(report.QuickWins))
	}
}

func TestPipelineRunDeterministicLabels(t *testing.T) {
	records := ingest.NewGenerator(42).Generate(500, 0.05)
	pipeline := NewPipeline(nil, nil, nil)

	a, err := pipeline.Run(context.Background(), records, testOptions())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	b, err := pipeline.Run(context.Background(), records, testOptions())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if a.AnomalyCount != b.AnomalyCount || a.Baseline != b.Baseline {
		t.Fatalf("runs over identical input disagree: %d/%f vs %d/%f",
			a.AnomalyCount, a.Baseline, b.AnomalyCount, b.Baseline)
	}
	for i := range a.Records {
		if a.Records[i].IsAnomaly != b.Records[i].IsAnomaly {
			t.Fatalf("label %d differs between runs", i)
		}
	}
}

func TestPipelineRunInvalidParams(t *testing.T) {
	records := ingest.NewGenerator(42).Generate(10, 0)
	pipeline := NewPipeline(nil, nil, nil)

	opts := testOptions()
	opts.Contamination = 0.5
	_, err := pipeline.Run(context.Background(), records, opts)
	if !errors.Is(err, utils.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}

	opts = testOptions()
	opts.HourlyRate = 1
	_, err = pipeline.Run(context.Background(), records, opts)
	if !errors.Is(err, utils.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for low rate, got %v", err)
	}
}

func TestPipelineRunInvalidDataset(t *testing.T) {
	pipeline := NewPipeline(nil, nil, nil)

	_, err := pipeline.Run(context.Background(), nil, testOptions())
	if !errors.Is(err, utils.ErrInvalidDataset) {
		t.Fatalf("expected ErrInvalidDataset for empty input, got %v", err)
	}

	bad := []models.LogRecord{{
		Timestamp: time.Now(),
		Endpoint:  "/api/a",
		LatencyMs: -5,
		Status:    200,
	}}
	_, err = pipeline.Run(context.Background(), bad, testOptions())
	if !errors.Is(err, utils.ErrInvalidDataset) {
		t.Fatalf("expected ErrInvalidDataset for negative latency, got %v", err)
	}
}

func TestPipelineAlerts(t *testing.T) {
	// All-debt traffic with hard 500s trips both alert thresholds.
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	var records []models.LogRecord
	for i := 0; i < 200; i++ {
		status := 200
		if i%10 == 0 {
			status = 500
		}
		records = append(records, models.LogRecord{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Endpoint:  "/api/v1/reports/generate",
			LatencyMs: 100 + float64(i%37)*400,
			Status:    status,
		})
	}

	opts := testOptions()
	opts.WastedHoursThreshold = 0
	opts.ErrorRateThreshold = 1
	opts.CapOutliers = false

	report, err := NewPipeline(nil, nil, nil).Run(context.Background(), records, opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.ErrorRate != 10 {
		t.Fatalf("expected 10%% error rate, got %f", report.ErrorRate)
	}
	if len(report.Alerts) != 2 {
		t.Fatalf("expected wasted-hours and error-rate alerts, got %v", report.Alerts)
	}
}
