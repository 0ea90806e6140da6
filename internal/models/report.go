package models

import "time"

// EndpointMetrics aggregates latency and error statistics for one endpoint.
type EndpointMetrics struct {
	Endpoint      string  `json:"endpoint"`
	MeanLatency   float64 `json:"mean_latency"`
	MedianLatency float64 `json:"median_latency"`
	StdDev        float64 `json:"std_dev"`
	MinLatency    float64 `json:"min_latency"`
	MaxLatency    float64 `json:"max_latency"`
	TotalRequests int     `json:"total_requests"`
	ErrorCount    int     `json:"error_count"`
	ErrorRate     float64 `json:"error_rate"`
}

// TrendResult describes the hourly latency trend across the dataset.
type TrendResult struct {
	Trend     string  `json:"trend"`
	Slope     float64 `json:"slope"`
	Direction string  `json:"direction,omitempty"`
}

// Trend classifications.
const (
	TrendDegrading    = "degrading"
	TrendImproving    = "improving"
	TrendStable       = "stable"
	TrendInsufficient = "insufficient data"
)

// PeakHour identifies the hour of day with the worst mean latency.
type PeakHour struct {
	Hour        string  `json:"peak_hour"`
	MeanLatency float64 `json:"peak_latency"`
	Requests    int     `json:"peak_requests"`
}

// SLACompliance reports the share of requests under a latency threshold.
type SLACompliance struct {
	ThresholdMs       float64 `json:"sla_threshold_ms"`
	ComplianceRate    float64 `json:"compliance_rate"`
	NonCompliantCount int     `json:"non_compliant_count"`
}

// SLAEvaluation compares measured percentiles against a named template.
type SLAEvaluation struct {
	Level        string `json:"sla_level"`
	Description  string `json:"sla_description"`
	P50Compliant bool   `json:"p50_compliant"`
	P95Compliant bool   `json:"p95_compliant"`
	P99Compliant bool   `json:"p99_compliant"`
	AllCompliant bool   `json:"all_compliant"`
}

// HealthScore is the composite 0-100 system health metric.
type HealthScore struct {
	Score           float64 `json:"health_score"`
	Status          string  `json:"health_status"`
	ErrorScore      float64 `json:"error_score"`
	ComplianceScore float64 `json:"compliance_score"`
	TrendScore      float64 `json:"trend_score"`
}

// Health status labels.
const (
	HealthExcellent = "Excellent"
	HealthGood      = "Good"
	HealthPoor      = "Poor"
)

// EndpointROI estimates the payoff of fixing one endpoint's anomalies.
type EndpointROI struct {
	WastedHours      float64 `json:"wasted_hours"`
	PotentialSavings float64 `json:"potential_savings"`
	AnomalyCount     int     `json:"anomaly_count"`
}

// ImpactSummary aggregates the cost of all detected anomalies.
type ImpactSummary struct {
	TotalWastedHours float64                `json:"total_wasted_hours"`
	FinancialLoss    float64                `json:"financial_loss"`
	ROI              map[string]EndpointROI `json:"roi_by_endpoint"`
}

// ScanReport is the full output of one pipeline run, shaped for direct
// consumption by the dashboard layer.
type ScanReport struct {
	ScanID        string    `json:"scan_id"`
	CreatedAt     time.Time `json:"created_at"`
	TotalRequests int       `json:"total_requests"`
	AnomalyCount  int       `json:"anomaly_count"`
	Baseline      float64   `json:"baseline_latency_ms"`
	ErrorRate     float64   `json:"error_rate"`
	Summary       string    `json:"summary"`

	Records   []AnnotatedRecord `json:"records,omitempty"`
	Anomalies []AnnotatedRecord `json:"anomalies"`

	Impact          ImpactSummary      `json:"impact"`
	EndpointMetrics []EndpointMetrics  `json:"endpoint_metrics"`
	Percentiles     map[string]float64 `json:"percentiles"`
	Trend           TrendResult        `json:"trend"`
	PeakHour        PeakHour           `json:"peak_hour"`
	SLACompliance   SLACompliance      `json:"sla_compliance"`
	SLAEvaluation   SLAEvaluation      `json:"sla_evaluation"`
	Health          HealthScore        `json:"health"`

	WorstEndpoint  string   `json:"worst_endpoint"`
	Plan           []string `json:"refactoring_plan"`
	QuickWins      []string `json:"quick_wins"`
	MaturityAdvice string   `json:"maturity_advice"`
	Alerts         []string `json:"alerts,omitempty"`
}
