// Package anomaly implements the two outlier detectors the fraud engine
// combines: an isolation forest and a small reconstruction autoencoder.
package anomaly

import (
	"math"
	"math/rand"

	"github.com/bryanwahyu/inventory-analytics/internal/analytics/stat"
)

const (
	isoTrees     = 100
	isoSubsample = 256
)

type isoNode struct {
	feature   int
	threshold float64
	left      *isoNode
	right     *isoNode
	size      int // external node only
}

// IsolationForest scores points by how quickly random axis-aligned splits
// isolate them. Scores live in (0,1]; higher means more isolated.
type IsolationForest struct {
	trees       []*isoNode
	subsample   int
	scoreCutoff float64 // training-score percentile; above it = anomaly
}

// FitIsolationForest trains on row-major data and fixes the anomaly cutoff
// at the (1-contamination) percentile of the training scores, so the top
// contamination fraction of the training set flags as anomalous.
func FitIsolationForest(x [][]float64, contamination float64, seed int64) *IsolationForest {
	n := len(x)
	psi := isoSubsample
	if psi > n {
		psi = n
	}
	rng := rand.New(rand.NewSource(seed))
	f := &IsolationForest{subsample: psi}
	heightLimit := int(math.Ceil(math.Log2(math.Max(2, float64(psi)))))
	for t := 0; t < isoTrees; t++ {
		sample := make([][]float64, psi)
		for i := range sample {
			sample[i] = x[rng.Intn(n)]
		}
		f.trees = append(f.trees, buildIsoTree(sample, 0, heightLimit, rng))
	}

	scores := make([]float64, n)
	for i, row := range x {
		scores[i] = f.Score(row)
	}
	f.scoreCutoff = stat.Percentile(scores, (1-contamination)*100)
	return f
}

func buildIsoTree(rows [][]float64, depth, limit int, rng *rand.Rand) *isoNode {
	if depth >= limit || len(rows) <= 1 {
		return &isoNode{feature: -1, size: len(rows)}
	}
	dim := len(rows[0])
	feature := rng.Intn(dim)
	lo, hi := rows[0][feature], rows[0][feature]
	for _, r := range rows[1:] {
		if r[feature] < lo {
			lo = r[feature]
		}
		if r[feature] > hi {
			hi = r[feature]
		}
	}
	if lo == hi {
		return &isoNode{feature: -1, size: len(rows)}
	}
	thr := lo + rng.Float64()*(hi-lo)
	var left, right [][]float64
	for _, r := range rows {
		if r[feature] < thr {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return &isoNode{
		feature:   feature,
		threshold: thr,
		left:      buildIsoTree(left, depth+1, limit, rng),
		right:     buildIsoTree(right, depth+1, limit, rng),
	}
}

// pathLength walks one tree, adding the average-depth adjustment c(size) at
// external nodes that still hold multiple points.
func pathLength(n *isoNode, row []float64, depth float64) float64 {
	if n.feature < 0 {
		if n.size > 1 {
			return depth + avgPathLength(float64(n.size))
		}
		return depth
	}
	if row[n.feature] < n.threshold {
		return pathLength(n.left, row, depth+1)
	}
	return pathLength(n.right, row, depth+1)
}

// avgPathLength is c(n), the expected path length of an unsuccessful BST
// search over n points.
func avgPathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	const euler = 0.5772156649
	return 2*(math.Log(n-1)+euler) - 2*(n-1)/n
}

// Score returns the anomaly score s(x) = 2^(-E[h(x)]/c(psi)).
func (f *IsolationForest) Score(row []float64) float64 {
	var total float64
	for _, t := range f.trees {
		total += pathLength(t, row, 0)
	}
	mean := total / float64(len(f.trees))
	return math.Pow(2, -mean/avgPathLength(float64(f.subsample)))
}

// Decision mirrors the usual decision-function sign convention: negative
// values are anomalous.
func (f *IsolationForest) Decision(row []float64) float64 {
	return f.scoreCutoff - f.Score(row)
}

// IsAnomaly reports whether the row's score exceeds the training cutoff.
func (f *IsolationForest) IsAnomaly(row []float64) bool {
	return f.Score(row) > f.scoreCutoff
}
