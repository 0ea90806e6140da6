// Package engine holds the analytical core of the debt scanner: the
// latency anomaly detector, baseline and impact calculators, the
// refactoring strategy engine, and the pipeline that orchestrates them.
package engine

import (
	"math"
	"math/rand"

	"github.com/opsexstack/debtscan/internal/analytics"
	"github.com/opsexstack/debtscan/internal/models"
)

// RandomSeed fixes the forest construction so repeated scans over the
// same dataset label the same records.
const RandomSeed = 42

const (
	defaultTrees     = 100
	defaultSubsample = 256
	eulerMascheroni  = 0.5772156649
)

// Detector labels latency outliers with an isolation forest fitted per
// call. Latency is the only feature: the scan is a pure univariate
// outlier model with no temporal or endpoint awareness.
type Detector struct {
	trees     int
	subsample int
	seed      int64
}

// NewDetector returns a detector with the standard ensemble size and
// fixed seed.
func NewDetector() *Detector {
	return &Detector{trees: defaultTrees, subsample: defaultSubsample, seed: RandomSeed}
}

// Detect fits the forest and labels every record. The contamination
// fraction sets the score cutoff at the (1-contamination) quantile, so
// roughly that share of records is flagged. Datasets with fewer than
// two distinct latency values are degenerate for an isolation model;
// they are labeled all-normal rather than failing.
func (d *Detector) Detect(records []models.LogRecord, contamination float64) []models.AnnotatedRecord {
	annotated := make([]models.AnnotatedRecord, len(records))
	for i, rec := range records {
		annotated[i] = models.AnnotatedRecord{LogRecord: rec}
	}
	if len(records) == 0 || !hasDistinctLatencies(records) {
		return annotated
	}

	values := make([]float64, len(records))
	for i, rec := range records {
		values[i] = rec.LatencyMs
	}

	rng := rand.New(rand.NewSource(d.seed))
	forest := d.fit(values, rng)

	scores := make([]float64, len(values))
	for i, v := range values {
		scores[i] = forest.score(v)
	}

	cutoff := analytics.Quantile(scores, 1-contamination)
	for i := range annotated {
		annotated[i].IsAnomaly = scores[i] > cutoff
	}
	return annotated
}

func hasDistinctLatencies(records []models.LogRecord) bool {
	first := records[0].LatencyMs
	for _, rec := range records[1:] {
		if rec.LatencyMs != first {
			return true
		}
	}
	return false
}

type forest struct {
	trees []*isoNode
	// cNorm is c(subsample size), the average BST path length used to
	// normalise depths into the 2^(-E[h]/c(n)) anomaly score.
	cNorm float64
}

type isoNode struct {
	split float64
	left  *isoNode
	right *isoNode
	size  int
}

func (d *Detector) fit(values []float64, rng *rand.Rand) *forest {
	sample := d.subsample
	if sample > len(values) {
		sample = len(values)
	}
	heightLimit := int(math.Ceil(math.Log2(float64(sample))))

	f := &forest{cNorm: avgPathLength(sample)}
	for t := 0; t < d.trees; t++ {
		subset := make([]float64, sample)
		for i := range subset {
			subset[i] = values[rng.Intn(len(values))]
		}
		f.trees = append(f.trees, buildTree(subset, 0, heightLimit, rng))
	}
	return f
}

func buildTree(values []float64, depth, limit int, rng *rand.Rand) *isoNode {
	if depth >= limit || len(values) <= 1 {
		return &isoNode{size: len(values)}
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return &isoNode{size: len(values)}
	}

	split := min + rng.Float64()*(max-min)
	var left, right []float64
	for _, v := range values {
		if v < split {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}

	return &isoNode{
		split: split,
		left:  buildTree(left, depth+1, limit, rng),
		right: buildTree(right, depth+1, limit, rng),
	}
}

// pathLength walks one tree and returns the isolation depth for v,
// extended by the expected subtree depth at the terminating node.
func (n *isoNode) pathLength(v float64, depth int) float64 {
	if n.left == nil && n.right == nil {
		return float64(depth) + avgPathLength(n.size)
	}
	if v < n.split {
		return n.left.pathLength(v, depth+1)
	}
	return n.right.pathLength(v, depth+1)
}

func (f *forest) score(v float64) float64 {
	total := 0.0
	for _, tree := range f.trees {
		total += tree.pathLength(v, 0)
	}
	mean := total / float64(len(f.trees))
	return math.Pow(2, -mean/f.cNorm)
}

// avgPathLength is c(n): the average path length of an unsuccessful
// search in a binary search tree over n points.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	h := math.Log(float64(n-1)) + eulerMascheroni
	return 2*h - 2*float64(n-1)/float64(n)
}
