package ingest

import (
	"math"
	"sort"

	"github.com/opsexstack/debtscan/internal/models"
)

// MinLatencyMs floors cleaned latencies; near-zero values are not
// physically meaningful for a served request.
const MinLatencyMs = 10

// Clean normalises a validated dataset: drops records missing latency,
// status, or endpoint; caps latency at the dataset's 99th percentile
// when capOutliers is set; floors latency at MinLatencyMs. The input
// slice is never modified.
func Clean(records []models.LogRecord, capOutliers bool) []models.LogRecord {
	cleaned := make([]models.LogRecord, 0, len(records))
	for _, rec := range records {
		if !rec.HasLatency() || rec.Status == 0 || rec.Endpoint == "" {
			continue
		}
		cleaned = append(cleaned, rec)
	}

	if capOutliers && len(cleaned) > 0 {
		ceiling := capCeiling(cleaned)
		for i := range cleaned {
			if cleaned[i].LatencyMs > ceiling {
				cleaned[i].LatencyMs = ceiling
			}
		}
	}

	for i := range cleaned {
		if cleaned[i].LatencyMs < MinLatencyMs {
			cleaned[i].LatencyMs = MinLatencyMs
		}
	}

	return cleaned
}

// capCeiling is the 99th-percentile latency at the upper closest rank.
// Using a rank (rather than interpolating) makes the cap idempotent:
// re-cleaning already-capped data leaves every latency unchanged.
func capCeiling(records []models.LogRecord) float64 {
	latencies := make([]float64, len(records))
	for i, rec := range records {
		latencies[i] = rec.LatencyMs
	}
	sort.Float64s(latencies)
	idx := int(math.Ceil(0.99 * float64(len(latencies)-1)))
	return latencies[idx]
}
