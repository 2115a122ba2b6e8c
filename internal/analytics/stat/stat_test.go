package stat

import (
	"math"
	"testing"
)

func almost(t *testing.T, got, want, tol float64, name string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestMeanStd(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	almost(t, Mean(xs), 5, 1e-12, "Mean")
	// sample std (n-1 in the denominator)
	almost(t, Std(xs), math.Sqrt(32.0/7.0), 1e-12, "Std")

	if Std([]float64{3}) != 0 {
		t.Error("Std of a single value should be 0")
	}
	if Mean(nil) != 0 {
		t.Error("Mean of empty slice should be 0")
	}
}

func TestPercentileInterpolation(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	almost(t, Percentile(xs, 0), 1, 1e-12, "p0")
	almost(t, Percentile(xs, 100), 4, 1e-12, "p100")
	almost(t, Percentile(xs, 50), 2.5, 1e-12, "p50")
	almost(t, Percentile(xs, 25), 1.75, 1e-12, "p25")
	almost(t, Percentile([]float64{7}, 95), 7, 1e-12, "single value")
}

func TestQuantileBands(t *testing.T) {
	xs := []float64{10, 20, 30, 40, 50}
	bands, n := QuantileBands(xs, 5)
	if n != 5 {
		t.Fatalf("effective bands = %d, want 5", n)
	}
	for i := 1; i < len(bands); i++ {
		if bands[i] <= bands[i-1] {
			t.Errorf("bands not ascending with values: %v", bands)
		}
	}
	if bands[0] != 1 || bands[4] != 5 {
		t.Errorf("extreme bands = %d,%d, want 1,5", bands[0], bands[4])
	}
}

func TestQuantileBandsConstantInput(t *testing.T) {
	bands, n := QuantileBands([]float64{5, 5, 5, 5}, 5)
	if n != 1 {
		t.Fatalf("constant input should collapse to one band, got %d", n)
	}
	for _, b := range bands {
		if b != 1 {
			t.Errorf("constant input band = %d, want 1", b)
		}
	}
}

func TestStandardizer(t *testing.T) {
	m := [][]float64{{1, 10}, {2, 10}, {3, 10}}
	s := FitStandardizer(m)
	row := s.Transform([]float64{2, 10})
	almost(t, row[0], 0, 1e-12, "centered column")
	// zero-variance column maps to 0, not NaN
	almost(t, row[1], 0, 1e-12, "constant column")

	scaled := s.TransformAll(m)
	if scaled[0][0] >= scaled[2][0] {
		t.Error("standardization should preserve order")
	}
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	tr1, te1 := TrainTestSplit(10, 0.2, Seed)
	tr2, te2 := TrainTestSplit(10, 0.2, Seed)
	if len(te1) != 2 || len(tr1) != 8 {
		t.Fatalf("split sizes = %d/%d, want 8/2", len(tr1), len(te1))
	}
	for i := range te1 {
		if te1[i] != te2[i] {
			t.Fatal("same seed should give the same test indices")
		}
	}
	for i := range tr1 {
		if tr1[i] != tr2[i] {
			t.Fatal("same seed should give the same train indices")
		}
	}

	// tiny input still holds out one row
	tr, te := TrainTestSplit(2, 0.2, Seed)
	if len(te) != 1 || len(tr) != 1 {
		t.Errorf("n=2 split = %d/%d, want 1/1", len(tr), len(te))
	}
}

func TestAUC(t *testing.T) {
	// perfectly separated scores
	almost(t, AUC([]float64{0.1, 0.2, 0.8, 0.9}, []int{0, 0, 1, 1}), 1, 1e-12, "perfect AUC")
	// inverted scores
	almost(t, AUC([]float64{0.9, 0.8, 0.2, 0.1}, []int{0, 0, 1, 1}), 0, 1e-12, "inverted AUC")
	// one class only
	almost(t, AUC([]float64{0.5, 0.6}, []int{1, 1}), 0.5, 1e-12, "single class AUC")
	// all-tied scores give 0.5
	almost(t, AUC([]float64{0.5, 0.5, 0.5, 0.5}, []int{0, 1, 0, 1}), 0.5, 1e-12, "tied AUC")
}

func TestPrecisionRecall(t *testing.T) {
	p, r := PrecisionRecall([]int{1, 1, 0, 0}, []int{1, 0, 1, 0})
	almost(t, p, 0.5, 1e-12, "precision")
	almost(t, r, 0.5, 1e-12, "recall")

	p, r = PrecisionRecall([]int{0, 0}, []int{0, 1})
	if p != 0 {
		t.Error("no positive predictions should give precision 0")
	}
	if r != 0 {
		t.Error("missed positives should give recall 0")
	}
}

func TestRMSE(t *testing.T) {
	almost(t, RMSE([]float64{1, 2}, []float64{1, 2}), 0, 1e-12, "exact fit")
	almost(t, RMSE([]float64{0, 0}, []float64{3, 4}), math.Sqrt(12.5), 1e-12, "rmse")
}

func TestRound2(t *testing.T) {
	almost(t, Round2(3.14159), 3.14, 1e-12, "round down")
	almost(t, Round2(1.239), 1.24, 1e-12, "round up")
}
