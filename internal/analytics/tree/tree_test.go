package tree

import (
	"math"
	"testing"
)

// separable binary data: x > 0.5 is class 1
func separable() (x [][]float64, y []float64) {
	vals := []float64{0.0, 0.1, 0.2, 0.3, 0.7, 0.8, 0.9, 1.0}
	for _, v := range vals {
		x = append(x, []float64{v, 0}) // second feature is noise-free constant
		label := 0.0
		if v > 0.5 {
			label = 1
		}
		y = append(y, label)
	}
	return x, y
}

func TestForestSeparable(t *testing.T) {
	x, y := separable()
	cfg := DefaultForestConfig()
	cfg.Trees = 25 // enough for a clean split, keeps the test quick
	f := FitForest(x, y, cfg)

	for i, row := range x {
		if got := f.Predict(row); got != int(y[i]) {
			t.Errorf("row %v predicted %d, want %v", row, got, y[i])
		}
	}
	// half the trees only see the constant feature and fall back to the
	// bootstrap class fraction, so probabilities sit well inside (0,1)
	if p := f.PredictProba([]float64{0.05, 0}); p >= 0.5 {
		t.Errorf("low point proba = %v, want < 0.5", p)
	}
	if p := f.PredictProba([]float64{0.95, 0}); p <= 0.5 {
		t.Errorf("high point proba = %v, want > 0.5", p)
	}
}

func TestForestImportances(t *testing.T) {
	x, y := separable()
	f := FitForest(x, y, DefaultForestConfig())
	imp := f.FeatureImportances()
	if len(imp) != 2 {
		t.Fatalf("importances length = %d, want 2", len(imp))
	}
	var total float64
	for _, v := range imp {
		if v < 0 {
			t.Errorf("negative importance %v", v)
		}
		total += v
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("importances sum = %v, want 1", total)
	}
	// only the first feature carries signal
	if imp[0] < imp[1] {
		t.Errorf("informative feature importance %v < constant feature %v", imp[0], imp[1])
	}
}

func TestForestDeterministic(t *testing.T) {
	x, y := separable()
	a := FitForest(x, y, DefaultForestConfig())
	b := FitForest(x, y, DefaultForestConfig())
	for _, row := range x {
		if a.PredictProba(row) != b.PredictProba(row) {
			t.Fatal("same seed should give identical forests")
		}
	}
}

func TestBoostedRegressorFitsLinear(t *testing.T) {
	var x [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		v := float64(i)
		x = append(x, []float64{v})
		y = append(y, 3*v+7)
	}
	b := FitBoosted(x, y, DefaultBoostConfig())

	for i, row := range x {
		got := b.Predict(row)
		if math.Abs(got-y[i]) > 3 {
			t.Errorf("predict(%v) = %v, want about %v", row, got, y[i])
		}
	}
}

func TestBoostedRegressorConstantTarget(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}
	y := []float64{5, 5, 5}
	b := FitBoosted(x, y, DefaultBoostConfig())
	if got := b.Predict([]float64{2}); math.Abs(got-5) > 1e-9 {
		t.Errorf("constant target predict = %v, want 5", got)
	}
}
