package engine

import (
	"math"

	"github.com/opsexstack/debtscan/internal/analytics"
	"github.com/opsexstack/debtscan/internal/models"
)

const msPerHour = 1000 * 60 * 60

// Annotate fills in wasted time and severity for every anomalous record
// in place: wasted = max(0, latency - baseline), severity = percentage
// excess over baseline clipped to [0,100].
func Annotate(annotated []models.AnnotatedRecord, baseline float64) {
	for i := range annotated {
		if !annotated[i].IsAnomaly {
			continue
		}
		annotated[i].WastedMs = math.Max(0, annotated[i].LatencyMs-baseline)
		annotated[i].SeverityScore = analytics.Severity(annotated[i].LatencyMs, baseline)
	}
}

// Impact converts anomalous latency above baseline into wasted
// engineering time and financial loss, with a per-endpoint ROI table.
// Empty input yields zeroed aggregates and an empty ROI map.
func Impact(anomalies []models.AnnotatedRecord, hourlyRate float64) models.ImpactSummary {
	summary := models.ImpactSummary{ROI: make(map[string]models.EndpointROI)}

	totalWastedMs := 0.0
	wastedByEndpoint := make(map[string]float64)
	countByEndpoint := make(map[string]int)
	for _, rec := range anomalies {
		totalWastedMs += rec.WastedMs
		wastedByEndpoint[rec.Endpoint] += rec.WastedMs
		countByEndpoint[rec.Endpoint]++
	}

	summary.TotalWastedHours = totalWastedMs / msPerHour
	summary.FinancialLoss = summary.TotalWastedHours * hourlyRate

	for endpoint, wastedMs := range wastedByEndpoint {
		wastedHours := wastedMs / msPerHour
		summary.ROI[endpoint] = models.EndpointROI{
			WastedHours:      round2(wastedHours),
			PotentialSavings: round2(wastedHours * hourlyRate),
			AnomalyCount:     countByEndpoint[endpoint],
		}
	}
	return summary
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
