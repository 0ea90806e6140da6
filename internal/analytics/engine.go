// Package analytics computes the descriptive statistics a scan report is
// built from: per-endpoint aggregates, latency percentiles, hourly trend,
// peak hour, SLA compliance, and the composite health score. Every
// function is pure over its dataset argument.
package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/opsexstack/debtscan/internal/models"
	"github.com/opsexstack/debtscan/internal/utils"
)

// Scoring constants. These are contractual: the dashboard's expected
// outputs were produced with exactly these coefficients.
const (
	errorRatePenalty     = 2.0
	trendSlopePenalty    = 0.5
	trendSlopeBreak      = 5.0
	healthGoodFloor      = 60.0
	healthExcellentFloor = 80.0
)

// EndpointMetrics groups records by endpoint and aggregates latency and
// 5xx statistics. Rows are sorted by endpoint for stable output.
func EndpointMetrics(records []models.LogRecord) []models.EndpointMetrics {
	byEndpoint := make(map[string][]models.LogRecord)
	for _, rec := range records {
		byEndpoint[rec.Endpoint] = append(byEndpoint[rec.Endpoint], rec)
	}

	endpoints := make([]string, 0, len(byEndpoint))
	for ep := range byEndpoint {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	out := make([]models.EndpointMetrics, 0, len(endpoints))
	for _, ep := range endpoints {
		group := byEndpoint[ep]
		latencies := make([]float64, 0, len(group))
		errorCount := 0
		for _, rec := range group {
			latencies = append(latencies, rec.LatencyMs)
			if rec.IsServerError() {
				errorCount++
			}
		}
		minL, maxL := latencies[0], latencies[0]
		for _, v := range latencies[1:] {
			if v < minL {
				minL = v
			}
			if v > maxL {
				maxL = v
			}
		}
		total := len(group)
		out = append(out, models.EndpointMetrics{
			Endpoint:      ep,
			MeanLatency:   round2(Mean(latencies)),
			MedianLatency: round2(Quantile(latencies, 0.5)),
			StdDev:        round2(StdDev(latencies)),
			MinLatency:    round2(minL),
			MaxLatency:    round2(maxL),
			TotalRequests: total,
			ErrorCount:    errorCount,
			ErrorRate:     round2(float64(errorCount) / float64(total) * 100),
		})
	}
	return out
}

// ErrorRate returns the overall 5xx rate as a percentage.
func ErrorRate(records []models.LogRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	errors := 0
	for _, rec := range records {
		if rec.IsServerError() {
			errors++
		}
	}
	return round2(float64(errors) / float64(len(records)) * 100)
}

// Percentiles computes the SLA-relevant latency percentiles, optionally
// filtered to a single endpoint (empty string means the whole dataset).
func Percentiles(records []models.LogRecord, endpoint string) map[string]float64 {
	latencies := make([]float64, 0, len(records))
	for _, rec := range records {
		if endpoint != "" && rec.Endpoint != endpoint {
			continue
		}
		latencies = append(latencies, rec.LatencyMs)
	}
	return map[string]float64{
		"P50": round2(Quantile(latencies, 0.50)),
		"P75": round2(Quantile(latencies, 0.75)),
		"P95": round2(Quantile(latencies, 0.95)),
		"P99": round2(Quantile(latencies, 0.99)),
	}
}

// Trend floors timestamps to the hour, averages latency per bucket, and
// fits a least-squares line across buckets in time order. Slope is in
// ms per hour bucket; fewer than two buckets yields "insufficient data".
func Trend(records []models.LogRecord) models.TrendResult {
	if len(records) < 2 {
		return models.TrendResult{Trend: models.TrendInsufficient, Slope: 0}
	}

	buckets := make(map[int64][]float64)
	for _, rec := range records {
		hour := utils.FloorHour(rec.Timestamp).Unix()
		buckets[hour] = append(buckets[hour], rec.LatencyMs)
	}
	if len(buckets) < 2 {
		return models.TrendResult{Trend: models.TrendInsufficient, Slope: 0}
	}

	hours := make([]int64, 0, len(buckets))
	for h := range buckets {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i] < hours[j] })

	means := make([]float64, 0, len(hours))
	for _, h := range hours {
		means = append(means, Mean(buckets[h]))
	}

	slope := linearSlope(means)

	trend := models.TrendStable
	if slope > trendSlopeBreak {
		trend = models.TrendDegrading
	} else if slope < -trendSlopeBreak {
		trend = models.TrendImproving
	}

	direction := "better"
	if slope > 0 {
		direction = "worse"
	}

	return models.TrendResult{
		Trend:     trend,
		Slope:     round2(slope),
		Direction: direction,
	}
}

// PeakHour groups records by hour of day (collapsing across days) and
// returns the hour with the highest mean latency.
func PeakHour(records []models.LogRecord) models.PeakHour {
	if len(records) == 0 {
		return models.PeakHour{}
	}

	buckets := make(map[int][]float64)
	for _, rec := range records {
		buckets[rec.Timestamp.Hour()] = append(buckets[rec.Timestamp.Hour()], rec.LatencyMs)
	}

	peak := -1
	peakMean := math.Inf(-1)
	for hour, latencies := range buckets {
		mean := Mean(latencies)
		// Tie-break on the earlier hour for deterministic output.
		if mean > peakMean || (mean == peakMean && hour < peak) {
			peak = hour
			peakMean = mean
		}
	}

	return models.PeakHour{
		Hour:        fmt.Sprintf("%02d:00", peak),
		MeanLatency: round2(peakMean),
		Requests:    len(buckets[peak]),
	}
}

// SLACompliance reports how many records met the latency threshold.
func SLACompliance(records []models.LogRecord, thresholdMs float64) models.SLACompliance {
	if len(records) == 0 {
		return models.SLACompliance{ThresholdMs: thresholdMs}
	}
	compliant := 0
	for _, rec := range records {
		if rec.LatencyMs <= thresholdMs {
			compliant++
		}
	}
	return models.SLACompliance{
		ThresholdMs:       thresholdMs,
		ComplianceRate:    round2(float64(compliant) / float64(len(records)) * 100),
		NonCompliantCount: len(records) - compliant,
	}
}

// HealthScore combines error rate, SLA compliance, and trend slope into
// the composite 0-100 score with equal thirds.
func HealthScore(errorRate, complianceRate, trendSlope float64) models.HealthScore {
	errorScore := math.Max(0, 100-errorRate*errorRatePenalty)
	complianceScore := complianceRate
	trendScore := math.Max(0, 100-math.Abs(trendSlope)*trendSlopePenalty)

	overall := round1((errorScore + complianceScore + trendScore) / 3)

	status := models.HealthPoor
	switch {
	case overall >= healthExcellentFloor:
		status = models.HealthExcellent
	case overall >= healthGoodFloor:
		status = models.HealthGood
	}

	return models.HealthScore{
		Score:           overall,
		Status:          status,
		ErrorScore:      round1(errorScore),
		ComplianceScore: round1(complianceScore),
		TrendScore:      round1(trendScore),
	}
}

// Severity scores an anomalous latency against the baseline on a 0-100
// scale: percentage excess over baseline, clipped.
func Severity(latencyMs, baseline float64) float64 {
	score := (latencyMs - baseline) / math.Max(baseline, 1) * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return round1(score)
}
