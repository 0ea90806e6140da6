package engine

import (
	"testing"
	"time"

	"github.com/opsexstack/debtscan/internal/ingest"
	"github.com/opsexstack/debtscan/internal/models"
)

func syntheticDataset(t *testing.T, rows int, debtRatio float64) []models.LogRecord {
	t.Helper()
	gen := ingest.NewGenerator(42)
	return gen.Generate(rows, debtRatio)
}

func TestDetectFlagsSlowTail(t *testing.T) {
	records := syntheticDataset(t, 1000, 0.05)

	annotated := NewDetector().Detect(records, 0.05)
	if len(annotated) != len(records) {
		t.Fatalf("expected %d annotated records, got %d", len(records), len(annotated))
	}

	flagged := 0
	slowFlagged := 0
	for _, rec := range annotated {
		if rec.IsAnomaly {
			flagged++
			if rec.LatencyMs > 800 {
				slowFlagged++
			}
		}
	}

	// Contamination steers the flagged share; allow slack for score ties.
	if flagged < 30 || flagged > 70 {
		t.Fatalf("expected roughly 5%% flagged of 1000, got %d", flagged)
	}
	// The injected debt tail should dominate the flagged set.
	if slowFlagged*2 < flagged {
		t.Fatalf("expected most flagged records to be slow, got %d of %d", slowFlagged, flagged)
	}
}

func TestDetectDeterministic(t *testing.T) {
	records := syntheticDataset(t, 500, 0.05)

	a := NewDetector().Detect(records, 0.05)
	b := NewDetector().Detect(records, 0.05)
	for i := range a {
		if a[i].IsAnomaly != b[i].IsAnomaly {
			t.Fatalf("labels differ at %d across runs over the same data", i)
		}
	}
}

func TestDetectConstantLatency(t *testing.T) {
	now := time.Now()
	records := make([]models.LogRecord, 100)
	for i := range records {
		records[i] = models.LogRecord{Timestamp: now, Endpoint: "/api/a", LatencyMs: 150, Status: 200}
	}

	annotated := NewDetector().Detect(records, 0.05)
	for i, rec := range annotated {
		if rec.IsAnomaly {
			t.Fatalf("constant-latency record %d flagged as anomalous", i)
		}
	}
}

func TestDetectEmptyInput(t *testing.T) {
	annotated := NewDetector().Detect(nil, 0.05)
	if len(annotated) != 0 {
		t.Fatalf("expected no output for empty input, got %d", len(annotated))
	}
}
