package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels completed scans.
	OutcomeSuccess = "success"
	// OutcomeInvalid labels scans rejected by validation.
	OutcomeInvalid = "invalid"
	// OutcomeError labels scans that failed for other reasons.
	OutcomeError = "error"
)

var (
	scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "debtscan",
			Name:      "scans_total",
			Help:      "Total number of scans handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	scanDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "debtscan",
			Name:      "scan_seconds",
			Help:      "Scan latency in seconds.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	anomaliesDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "debtscan",
			Name:      "anomalies_detected_total",
			Help:      "Total number of anomalous records flagged across scans.",
		},
	)
)

// Register attaches debtscan collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		scansTotal,
		scanDurationSeconds,
		anomaliesDetected,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveScan records a scan duration, outcome, and flagged-anomaly count.
func ObserveScan(duration time.Duration, outcome string, anomalies int) {
	switch outcome {
	case OutcomeInvalid, OutcomeError:
	default:
		outcome = OutcomeSuccess
	}
	scansTotal.WithLabelValues(outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	scanDurationSeconds.Observe(duration.Seconds())
	if anomalies > 0 {
		anomaliesDetected.Add(float64(anomalies))
	}
}
