package tree

import "math/rand"

// BoostedRegressor is a gradient-boosted ensemble of variance-split CART
// trees fit to residuals, used for stock-level regression.
type BoostedRegressor struct {
	base         float64
	learningRate float64
	trees        []*node
}

// BoostConfig fixes the regression hyperparameters: 200 estimators,
// learning rate 0.05, depth 5.
type BoostConfig struct {
	Estimators   int
	LearningRate float64
	MaxDepth     int
	Seed         int64
}

// DefaultBoostConfig returns the configuration the supplier engine uses.
func DefaultBoostConfig() BoostConfig {
	return BoostConfig{Estimators: 200, LearningRate: 0.05, MaxDepth: 5, Seed: 42}
}

// FitBoosted trains a gradient-boosted regressor on squared loss: each stage
// fits a tree to the current residuals and shrinks it by the learning rate.
func FitBoosted(x [][]float64, y []float64, cfg BoostConfig) *BoostedRegressor {
	n := len(x)
	rng := rand.New(rand.NewSource(cfg.Seed))
	var base float64
	for _, v := range y {
		base += v
	}
	base /= float64(n)

	b := &BoostedRegressor{base: base, learningRate: cfg.LearningRate}
	pred := make([]float64, n)
	for i := range pred {
		pred[i] = base
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	residual := make([]float64, n)
	p := params{criterion: variance, maxDepth: cfg.MaxDepth, minSamples: 2}
	for t := 0; t < cfg.Estimators; t++ {
		for i := range residual {
			residual[i] = y[i] - pred[i]
		}
		tr := grow(x, residual, idx, 0, p, rng, nil)
		b.trees = append(b.trees, tr)
		for i := range pred {
			pred[i] += cfg.LearningRate * tr.predict(x[i])
		}
	}
	return b
}

// Predict returns the boosted estimate for one row.
func (b *BoostedRegressor) Predict(row []float64) float64 {
	out := b.base
	for _, t := range b.trees {
		out += b.learningRate * t.predict(row)
	}
	return out
}
