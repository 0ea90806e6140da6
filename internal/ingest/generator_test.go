package ingest

import (
	"testing"
	"time"
)

func TestGenerateDeterministic(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	genA := NewGenerator(42)
	genA.now = func() time.Time { return fixed }
	genB := NewGenerator(42)
	genB.now = func() time.Time { return fixed }

	a := genA.Generate(500, 0.05)
	b := genB.Generate(500, 0.05)
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("record %d differs under same seed: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerateShape(t *testing.T) {
	gen := NewGenerator(42)
	gen.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	records := gen.Generate(1000, 0.05)

	if len(records) != 1000 {
		t.Fatalf("expected 1000 records, got %d", len(records))
	}

	known := make(map[string]bool, len(syntheticEndpoints))
	for _, ep := range syntheticEndpoints {
		known[ep] = true
	}

	for i, rec := range records {
		if !known[rec.Endpoint] {
			t.Fatalf("record %d has unknown endpoint %s", i, rec.Endpoint)
		}
		if rec.LatencyMs < MinLatencyMs {
			t.Fatalf("record %d below latency floor: %f", i, rec.LatencyMs)
		}
		if rec.Status != 200 && rec.Status != 500 {
			t.Fatalf("record %d has unexpected status %d", i, rec.Status)
		}
		if i > 0 && records[i].Timestamp.Before(records[i-1].Timestamp) {
			t.Fatalf("records not sorted ascending at %d", i)
		}
	}

	// A 5% debt ratio should leave a visible slow tail of 200s.
	slow := 0
	for _, rec := range records {
		if rec.LatencyMs > 800 && rec.Status == 200 {
			slow++
		}
	}
	if slow < 20 || slow > 90 {
		t.Fatalf("expected roughly 5%% debt records, got %d", slow)
	}
}

func TestGenerateSpacing(t *testing.T) {
	gen := NewGenerator(7)
	gen.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	records := gen.Generate(10, 0)

	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Sub(records[i-1].Timestamp) != 2*time.Second {
			t.Fatalf("expected 2s spacing at %d, got %v", i, records[i].Timestamp.Sub(records[i-1].Timestamp))
		}
	}
}

func TestGenerateZeroRows(t *testing.T) {
	if records := NewGenerator(1).Generate(0, 0.5); records != nil {
		t.Fatalf("expected nil for zero rows, got %d records", len(records))
	}
}
