package utils

import (
	"testing"
	"time"
)

func TestLatencyTrackerPercentile(t *testing.T) {
	tracker := NewLatencyTracker(100)
	if tracker.Percentile(95) != 0 {
		t.Fatal("expected zero percentile with no samples")
	}

	for i := 1; i <= 100; i++ {
		tracker.Observe(time.Duration(i) * time.Millisecond)
	}
	if got := tracker.Percentile(0); got != time.Millisecond {
		t.Fatalf("expected min sample, got %v", got)
	}
	if got := tracker.Percentile(100); got != 100*time.Millisecond {
		t.Fatalf("expected max sample, got %v", got)
	}
	p95 := tracker.Percentile(95)
	if p95 < 90*time.Millisecond || p95 > 100*time.Millisecond {
		t.Fatalf("p95 out of range: %v", p95)
	}
}

func TestLatencyTrackerEviction(t *testing.T) {
	tracker := NewLatencyTracker(10)
	for i := 1; i <= 25; i++ {
		tracker.Observe(time.Duration(i) * time.Millisecond)
	}
	if tracker.Count() != 10 {
		t.Fatalf("expected 10 retained samples, got %d", tracker.Count())
	}
	if got := tracker.Percentile(0); got != 16*time.Millisecond {
		t.Fatalf("expected oldest samples evicted, min %v", got)
	}
}
