package anomaly

import (
	"math/rand"

	"github.com/bryanwahyu/inventory-analytics/internal/analytics/stat"
)

const (
	aeEpochs       = 50
	aeLearningRate = 0.01
)

// Autoencoder compresses a feature vector through a bottleneck and
// reconstructs it; the per-sample reconstruction error is the anomaly
// signal. ReLU encoder, linear decoder, trained by per-sample SGD on
// squared loss.
type Autoencoder struct {
	inDim, hidDim  int
	w1             [][]float64 // hidDim x inDim
	b1             []float64
	w2             [][]float64 // inDim x hidDim
	b2             []float64
	ErrorThreshold float64 // 95th percentile of training reconstruction MSE
}

// FitAutoencoder trains on standardized rows and fixes ErrorThreshold at the
// 95th percentile of the training population's reconstruction errors.
func FitAutoencoder(x [][]float64, hidden int, seed int64) *Autoencoder {
	inDim := len(x[0])
	rng := rand.New(rand.NewSource(seed))
	a := &Autoencoder{
		inDim:  inDim,
		hidDim: hidden,
		w1:     randomMatrix(hidden, inDim, rng),
		b1:     make([]float64, hidden),
		w2:     randomMatrix(inDim, hidden, rng),
		b2:     make([]float64, inDim),
	}

	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}
	for epoch := 0; epoch < aeEpochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, i := range order {
			a.step(x[i])
		}
	}

	errs := make([]float64, len(x))
	for i, row := range x {
		errs[i] = a.ReconstructionError(row)
	}
	a.ErrorThreshold = stat.Percentile(errs, 95)
	return a
}

func randomMatrix(rows, cols int, rng *rand.Rand) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = (rng.Float64() - 0.5) * 0.5
		}
	}
	return m
}

// step runs one forward/backward pass on a single sample.
func (a *Autoencoder) step(row []float64) {
	hPre, h, out := a.forward(row)

	// output layer gradient: d(mse)/d(out_k) = 2*(out_k - row_k)/inDim
	dOut := make([]float64, a.inDim)
	for k := range dOut {
		dOut[k] = 2 * (out[k] - row[k]) / float64(a.inDim)
	}

	// hidden gradient through linear decoder, gated by ReLU
	dHid := make([]float64, a.hidDim)
	for j := 0; j < a.hidDim; j++ {
		if hPre[j] <= 0 {
			continue
		}
		for k := 0; k < a.inDim; k++ {
			dHid[j] += dOut[k] * a.w2[k][j]
		}
	}

	for k := 0; k < a.inDim; k++ {
		for j := 0; j < a.hidDim; j++ {
			a.w2[k][j] -= aeLearningRate * dOut[k] * h[j]
		}
		a.b2[k] -= aeLearningRate * dOut[k]
	}
	for j := 0; j < a.hidDim; j++ {
		for k := 0; k < a.inDim; k++ {
			a.w1[j][k] -= aeLearningRate * dHid[j] * row[k]
		}
		a.b1[j] -= aeLearningRate * dHid[j]
	}
}

func (a *Autoencoder) forward(row []float64) (hPre, h, out []float64) {
	hPre = make([]float64, a.hidDim)
	h = make([]float64, a.hidDim)
	for j := 0; j < a.hidDim; j++ {
		s := a.b1[j]
		for k := 0; k < a.inDim; k++ {
			s += a.w1[j][k] * row[k]
		}
		hPre[j] = s
		if s > 0 {
			h[j] = s
		}
	}
	out = make([]float64, a.inDim)
	for k := 0; k < a.inDim; k++ {
		s := a.b2[k]
		for j := 0; j < a.hidDim; j++ {
			s += a.w2[k][j] * h[j]
		}
		out[k] = s
	}
	return hPre, h, out
}

// ReconstructionError returns the mean squared error between a row and its
// reconstruction.
func (a *Autoencoder) ReconstructionError(row []float64) float64 {
	_, _, out := a.forward(row)
	var mse float64
	for k := range row {
		d := out[k] - row[k]
		mse += d * d
	}
	return mse / float64(len(row))
}

// IsAnomaly reports whether the row reconstructs worse than the training
// threshold.
func (a *Autoencoder) IsAnomaly(row []float64) bool {
	return a.ReconstructionError(row) > a.ErrorThreshold
}
