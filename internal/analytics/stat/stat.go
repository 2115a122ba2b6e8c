// Package stat holds the shared numeric primitives used by every analytics
// engine: moments, percentiles, quantile banding, standardization, seeded
// splits, and evaluation metrics.
package stat

import (
	"math"
	"math/rand"
	"sort"
)

// Seed used everywhere a model needs reproducible randomness.
const Seed = 42

// Sum returns the sum of xs.
func Sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return Sum(xs) / float64(len(xs))
}

// Std returns the sample standard deviation (ddof=1), 0 when n < 2.
func Std(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// Max returns the maximum of xs, 0 for an empty slice.
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// Percentile returns the p-th percentile (0..100) using linear interpolation
// between closest ranks.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// QuantileBands assigns each value a band in 1..q by empirical quantiles,
// band 1 holding the lowest values. Duplicate quantile edges are dropped, so
// fewer than q effective bands are possible; a constant input collapses to a
// single band. Returns the assignments and the effective band count.
func QuantileBands(xs []float64, q int) ([]int, int) {
	n := len(xs)
	bands := make([]int, n)
	if n == 0 || q < 1 {
		return bands, 0
	}
	edges := make([]float64, 0, q-1)
	for i := 1; i < q; i++ {
		e := Percentile(xs, float64(i)/float64(q)*100)
		if len(edges) == 0 || e > edges[len(edges)-1] {
			edges = append(edges, e)
		}
	}
	for i, x := range xs {
		band := 1
		for _, e := range edges {
			if x > e {
				band++
			}
		}
		bands[i] = band
	}
	return bands, len(edges) + 1
}

// Standardizer scales columns to zero mean and unit variance. Fit once over
// the historical set and reuse for every later single-record transform.
type Standardizer struct {
	Means []float64
	Stds  []float64
}

// FitStandardizer computes per-column statistics of a row-major matrix.
func FitStandardizer(m [][]float64) *Standardizer {
	if len(m) == 0 {
		return &Standardizer{}
	}
	cols := len(m[0])
	s := &Standardizer{
		Means: make([]float64, cols),
		Stds:  make([]float64, cols),
	}
	col := make([]float64, len(m))
	for j := 0; j < cols; j++ {
		for i := range m {
			col[i] = m[i][j]
		}
		s.Means[j] = Mean(col)
		s.Stds[j] = Std(col)
	}
	return s
}

// Transform scales one row. Zero-variance columns map to 0.
func (s *Standardizer) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, x := range row {
		if j >= len(s.Means) || s.Stds[j] == 0 {
			out[j] = 0
			continue
		}
		out[j] = (x - s.Means[j]) / s.Stds[j]
	}
	return out
}

// TransformAll scales every row of a matrix.
func (s *Standardizer) TransformAll(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = s.Transform(row)
	}
	return out
}

// TrainTestSplit shuffles 0..n-1 with the given seed and splits the indices
// so that testFrac of them land in the held-out set (at least one test index
// when n > 1).
func TrainTestSplit(n int, testFrac float64, seed int64) (train, test []int) {
	idx := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(math.Round(float64(n) * testFrac))
	if nTest < 1 && n > 1 {
		nTest = 1
	}
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}
	return idx[nTest:], idx[:nTest]
}

// AUC computes the area under the ROC curve from scores and binary labels
// using the Mann-Whitney rank statistic, averaging ranks over tied scores.
// Returns 0.5 when only one class is present.
func AUC(scores []float64, labels []int) float64 {
	type pair struct {
		s float64
		y int
	}
	ps := make([]pair, len(scores))
	for i := range scores {
		ps[i] = pair{scores[i], labels[i]}
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].s < ps[j].s })

	var pos, neg, posRankSum float64
	i := 0
	for i < len(ps) {
		j := i
		for j < len(ps) && ps[j].s == ps[i].s {
			j++
		}
		avgRank := float64(i+j+1) / 2 // 1-based ranks i+1 .. j
		for k := i; k < j; k++ {
			if ps[k].y == 1 {
				pos++
				posRankSum += avgRank
			} else {
				neg++
			}
		}
		i = j
	}
	if pos == 0 || neg == 0 {
		return 0.5
	}
	return (posRankSum - pos*(pos+1)/2) / (pos * neg)
}

// PrecisionRecall evaluates binary predictions against labels. Precision is
// 0 when nothing was predicted positive, recall 0 when no positives exist.
func PrecisionRecall(pred, labels []int) (precision, recall float64) {
	var tp, fp, fn float64
	for i := range pred {
		switch {
		case pred[i] == 1 && labels[i] == 1:
			tp++
		case pred[i] == 1 && labels[i] == 0:
			fp++
		case pred[i] == 0 && labels[i] == 1:
			fn++
		}
	}
	if tp+fp > 0 {
		precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		recall = tp / (tp + fn)
	}
	return precision, recall
}

// RMSE is the root mean squared error between predictions and targets.
func RMSE(pred, target []float64) float64 {
	if len(pred) == 0 {
		return 0
	}
	var ss float64
	for i := range pred {
		d := pred[i] - target[i]
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(pred)))
}

// Round2 rounds to two decimal places, the precision used in money outputs.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
