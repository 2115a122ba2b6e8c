package tree

import (
	"math"
	"math/rand"
)

// ForestClassifier is a bagged ensemble of CART trees for a binary target.
// Probabilities are the mean of per-tree leaf class fractions.
type ForestClassifier struct {
	trees       []*node
	importances []float64
}

// ForestConfig mirrors the ensemble hyperparameters the analytics contracts
// fix: 100 trees, sqrt-feature subsampling, shared seed.
type ForestConfig struct {
	Trees    int
	MaxDepth int
	Seed     int64
}

// DefaultForestConfig returns the configuration every engine trains with.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{Trees: 100, MaxDepth: 10, Seed: 42}
}

// FitForest trains on row-major features and binary labels (0/1).
func FitForest(x [][]float64, y []float64, cfg ForestConfig) *ForestClassifier {
	n := len(x)
	nFeatures := len(x[0])
	rng := rand.New(rand.NewSource(cfg.Seed))
	f := &ForestClassifier{
		trees:       make([]*node, cfg.Trees),
		importances: make([]float64, nFeatures),
	}
	p := params{
		criterion:   gini,
		maxDepth:    cfg.MaxDepth,
		minSamples:  2,
		maxFeatures: int(math.Max(1, math.Floor(math.Sqrt(float64(nFeatures))))),
	}
	for t := 0; t < cfg.Trees; t++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n) // bootstrap sample
		}
		f.trees[t] = grow(x, y, idx, 0, p, rng, f.importances)
	}
	// normalize accumulated impurity decreases to sum to 1
	var total float64
	for _, v := range f.importances {
		total += v
	}
	if total > 0 {
		for i := range f.importances {
			f.importances[i] /= total
		}
	}
	return f
}

// PredictProba returns the class-1 probability for one row.
func (f *ForestClassifier) PredictProba(row []float64) float64 {
	var s float64
	for _, t := range f.trees {
		s += t.predict(row)
	}
	return s / float64(len(f.trees))
}

// Predict returns the 0/1 class at the 0.5 threshold.
func (f *ForestClassifier) Predict(row []float64) int {
	if f.PredictProba(row) >= 0.5 {
		return 1
	}
	return 0
}

// FeatureImportances returns normalized impurity-decrease importances,
// indexed like the training columns.
func (f *ForestClassifier) FeatureImportances() []float64 {
	return f.importances
}
