package models

import "time"

// LogRecord is one row of the ingested request-latency dataset.
type LogRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Endpoint  string    `json:"endpoint"`
	LatencyMs float64   `json:"latency_ms"`
	Status    int       `json:"status"`
}

// HasLatency reports whether the latency field carries a usable value.
// CSV rows with a blank latency cell parse to NaN.
func (r LogRecord) HasLatency() bool {
	return r.LatencyMs == r.LatencyMs
}

// IsServerError reports whether the record carries a 5xx status.
func (r LogRecord) IsServerError() bool {
	return r.Status >= 500
}

// AnnotatedRecord is a LogRecord plus the fields derived by a scan run.
// WastedMs and SeverityScore are only meaningful when IsAnomaly is set.
type AnnotatedRecord struct {
	LogRecord
	IsAnomaly     bool    `json:"is_anomaly"`
	WastedMs      float64 `json:"wasted_ms"`
	SeverityScore float64 `json:"severity_score"`
}

// ScanOptions carries the per-run tuning inputs to the pipeline. All
// fields are validated before any computation starts.
type ScanOptions struct {
	Contamination        float64 `json:"contamination" yaml:"contamination"`
	HourlyRate           float64 `json:"hourly_rate" yaml:"hourlyRate"`
	WastedHoursThreshold float64 `json:"wasted_hours_threshold" yaml:"wastedHoursThreshold"`
	ErrorRateThreshold   float64 `json:"error_rate_threshold" yaml:"errorRateThreshold"`
	SLALevel             string  `json:"sla_level" yaml:"slaLevel"`
	SLALatencyMs         float64 `json:"sla_latency_ms" yaml:"slaLatencyMs"`
	CapOutliers          bool    `json:"cap_outliers" yaml:"capOutliers"`
}

// Bounds for tuning parameters.
const (
	MinContamination = 0.01
	MaxContamination = 0.15
	MinHourlyRate    = 10
)

// Validate checks the tuning parameters and returns a human-readable
// rejection message on failure.
func (o ScanOptions) Validate() (bool, string) {
	if o.Contamination < MinContamination || o.Contamination > MaxContamination {
		return false, "contamination must be between 0.01 and 0.15"
	}
	if o.HourlyRate < MinHourlyRate {
		return false, "hourly rate must be at least 10"
	}
	if o.WastedHoursThreshold < 0 {
		return false, "wasted hours threshold must be positive"
	}
	if o.ErrorRateThreshold < 0 || o.ErrorRateThreshold > 100 {
		return false, "error rate threshold must be between 0 and 100"
	}
	return true, "valid parameters"
}
