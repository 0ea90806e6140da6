package ingest

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/opsexstack/debtscan/internal/models"
)

// Synthetic traffic shape: five endpoints with a fixed request mix,
// healthy latency around 150ms, injected debt around 1500ms but still
// returning 200. A small share of healthy traffic hard-fails with 500.
var (
	syntheticEndpoints = []string{
		"/api/v1/auth/login",
		"/api/v1/transactions/process",
		"/api/v1/reports/generate",
		"/api/v1/user/profile",
		"/api/v1/search/query",
	}
	endpointWeights = []float64{0.3, 0.2, 0.1, 0.2, 0.2}
)

const (
	healthyLatencyMean = 150
	healthyLatencyStd  = 50
	debtLatencyMean    = 1500
	debtLatencyStd     = 300
	hardErrorRate      = 0.01
)

// Generator produces deterministic synthetic request logs with a
// configurable share of silent debt.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator creates a generator with a fixed seed. The same seed and
// arguments always produce the same latencies, endpoints, and statuses.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Generate returns rows of synthetic logs with debtRatio of requests
// slowed to debt latency while still returning 200. Records are ordered
// by ascending timestamp, spaced two seconds apart.
func (g *Generator) Generate(rows int, debtRatio float64) []models.LogRecord {
	if rows <= 0 {
		return nil
	}

	base := g.now()
	records := make([]models.LogRecord, 0, rows)
	for i := 0; i < rows; i++ {
		ts := base.Add(-time.Duration(i) * 2 * time.Second)
		endpoint := g.pickEndpoint()

		var latency float64
		status := 200
		if g.rng.Float64() < debtRatio {
			// Silent debt: slow but successful.
			latency = g.rng.NormFloat64()*debtLatencyStd + debtLatencyMean
		} else {
			latency = g.rng.NormFloat64()*healthyLatencyStd + healthyLatencyMean
			if g.rng.Float64() < hardErrorRate {
				status = 500
			}
		}

		records = append(records, models.LogRecord{
			Timestamp: ts,
			Endpoint:  endpoint,
			LatencyMs: math.Max(MinLatencyMs, math.Trunc(latency)),
			Status:    status,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records
}

func (g *Generator) pickEndpoint() string {
	r := g.rng.Float64()
	acc := 0.0
	for i, w := range endpointWeights {
		acc += w
		if r < acc {
			return syntheticEndpoints[i]
		}
	}
	return syntheticEndpoints[len(syntheticEndpoints)-1]
}
