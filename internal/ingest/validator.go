// Package ingest brings raw latency logs into the pipeline: structural
// validation, cleaning, CSV load/export, and synthetic log generation.
package ingest

import (
	"fmt"

	"github.com/opsexstack/debtscan/internal/models"
)

// Validate checks a dataset for structural and range correctness before
// it enters the pipeline. Checks run in order and short-circuit on the
// first failure. The result is advisory: the caller decides whether to
// proceed.
func Validate(records []models.LogRecord) (bool, string) {
	if len(records) == 0 {
		return false, "empty dataset provided"
	}

	for _, rec := range records {
		if !rec.HasLatency() {
			return false, "Latency_ms must be numeric"
		}
	}
	for _, rec := range records {
		if rec.LatencyMs < 0 {
			return false, "latency cannot be negative"
		}
	}
	for _, rec := range records {
		if rec.Status < 100 || rec.Status > 599 {
			return false, "invalid HTTP status codes (must be 100-599)"
		}
	}
	for _, rec := range records {
		if rec.Endpoint == "" {
			return false, "missing endpoint names"
		}
	}
	for _, rec := range records {
		if rec.Timestamp.IsZero() {
			return false, "invalid timestamp format (try YYYY-MM-DD HH:MM:SS)"
		}
	}

	return true, fmt.Sprintf("valid dataset: %d records", len(records))
}
