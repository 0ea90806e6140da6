package engine

import (
	"github.com/opsexstack/debtscan/internal/analytics"
	"github.com/opsexstack/debtscan/internal/models"
)

// Baseline derives the reference healthy latency for a run: the mean
// latency over records the detector left unflagged. When the model
// flags everything (so no normal subset exists), the 25th percentile of
// all latencies stands in, keeping the baseline defined for waste math.
func Baseline(annotated []models.AnnotatedRecord) float64 {
	normal := make([]float64, 0, len(annotated))
	all := make([]float64, 0, len(annotated))
	for _, rec := range annotated {
		all = append(all, rec.LatencyMs)
		if !rec.IsAnomaly {
			normal = append(normal, rec.LatencyMs)
		}
	}
	if len(normal) == 0 {
		return analytics.Quantile(all, 0.25)
	}
	return analytics.Mean(normal)
}
