// Package tree implements CART decision trees and the two ensembles built on
// them: a bagged random-forest classifier and a gradient-boosted regressor.
package tree

import (
	"math/rand"
	"sort"
)

type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	leaf      bool
	value     float64 // class-1 fraction for classification, mean for regression
}

type criterion int

const (
	gini criterion = iota
	variance
)

type params struct {
	criterion   criterion
	maxDepth    int
	minSamples  int
	maxFeatures int // 0 means all
}

// grow builds a tree on the rows selected by idx. importances accumulates
// sample-weighted impurity decrease per feature.
func grow(x [][]float64, y []float64, idx []int, depth int, p params, rng *rand.Rand, importances []float64) *node {
	imp := impurity(y, idx, p.criterion)
	if depth >= p.maxDepth || len(idx) < p.minSamples || imp == 0 {
		return &node{leaf: true, value: meanAt(y, idx)}
	}

	feat, thr, gain, leftIdx, rightIdx := bestSplit(x, y, idx, imp, p, rng)
	if feat < 0 {
		return &node{leaf: true, value: meanAt(y, idx)}
	}
	if importances != nil {
		importances[feat] += gain * float64(len(idx))
	}
	return &node{
		feature:   feat,
		threshold: thr,
		left:      grow(x, y, leftIdx, depth+1, p, rng, importances),
		right:     grow(x, y, rightIdx, depth+1, p, rng, importances),
	}
}

// bestSplit scans candidate features (a random subset when maxFeatures is
// set) and thresholds at midpoints between distinct sorted values.
func bestSplit(x [][]float64, y []float64, idx []int, parentImp float64, p params, rng *rand.Rand) (feat int, thr, gain float64, left, right []int) {
	nFeatures := len(x[0])
	candidates := make([]int, nFeatures)
	for i := range candidates {
		candidates[i] = i
	}
	if p.maxFeatures > 0 && p.maxFeatures < nFeatures {
		rng.Shuffle(nFeatures, func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		candidates = candidates[:p.maxFeatures]
	}

	feat = -1
	bestGain := 0.0
	sorted := make([]int, len(idx))
	for _, f := range candidates {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return x[sorted[a]][f] < x[sorted[b]][f] })
		for cut := 1; cut < len(sorted); cut++ {
			lo, hi := x[sorted[cut-1]][f], x[sorted[cut]][f]
			if lo == hi {
				continue
			}
			l, r := sorted[:cut], sorted[cut:]
			g := parentImp - (float64(len(l))*impurity(y, l, p.criterion)+
				float64(len(r))*impurity(y, r, p.criterion))/float64(len(idx))
			if g > bestGain {
				bestGain = g
				feat = f
				thr = (lo + hi) / 2
				left = append([]int(nil), l...)
				right = append([]int(nil), r...)
			}
		}
	}
	return feat, thr, bestGain, left, right
}

func impurity(y []float64, idx []int, c criterion) float64 {
	if len(idx) == 0 {
		return 0
	}
	switch c {
	case gini:
		var pos float64
		for _, i := range idx {
			pos += y[i]
		}
		p := pos / float64(len(idx))
		return 2 * p * (1 - p)
	default: // variance
		m := meanAt(y, idx)
		var ss float64
		for _, i := range idx {
			d := y[i] - m
			ss += d * d
		}
		return ss / float64(len(idx))
	}
}

func meanAt(y []float64, idx []int) float64 {
	var s float64
	for _, i := range idx {
		s += y[i]
	}
	return s / float64(len(idx))
}

func (n *node) predict(row []float64) float64 {
	for !n.leaf {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}
