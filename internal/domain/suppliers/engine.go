// Package suppliers derives per-supplier performance metrics and trains the
// two predictive models behind the supplier report: a stock-level regressor
// and a performance-tier classifier.
package suppliers

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"

	"github.com/bryanwahyu/inventory-analytics/internal/analytics/stat"
	"github.com/bryanwahyu/inventory-analytics/internal/analytics/tree"
	"github.com/bryanwahyu/inventory-analytics/internal/domain/records"
)

// TierNames orders the equal-frequency performance tiers.
var TierNames = []string{"Low", "Medium", "High"}

// Metrics is the per-supplier aggregate.
type Metrics struct {
	AvgPrice         float64 `json:"avg_price"`
	PriceStd         float64 `json:"price_std"`
	AvgStock         float64 `json:"avg_stock"`
	StockStd         float64 `json:"stock_std"`
	AvgSupplyFreq    float64 `json:"avg_supply_freq"`
	ProductCount     int     `json:"product_count"`
	TotalValue       float64 `json:"total_value"`
	SupplyEfficiency float64 `json:"supply_efficiency"`
	EfficiencyScore  float64 `json:"efficiency_score"`
	Performance      string  `json:"performance_label"`
}

// Analysis is the full supplier report.
type Analysis struct {
	SupplierMetrics         map[string]Metrics `json:"supplier_metrics"`
	StockRMSE               float64            `json:"stock_rmse"`
	PerformanceDistribution map[string]int     `json:"performance_distribution"`
	ModelAccuracy           float64            `json:"model_accuracy"`
}

// Fitted carries the trained models out of Analyze as a value object, so a
// prediction call can only exist downstream of a fit. The zero value answers
// every call with ErrNotTrained.
type Fitted struct {
	stock   *tree.BoostedRegressor
	tier    *softmax
	scaler  *stat.Standardizer
	trained bool
}

// Analyze aggregates supplier rows, labels performance tiers, and trains
// both models: a gradient-boosted stock regressor evaluated by held-out
// RMSE, and a softmax 3-class tier classifier evaluated by held-out
// accuracy.
func Analyze(rows []records.SupplierRow) (*Analysis, *Fitted, error) {
	if len(rows) == 0 {
		return nil, nil, records.ErrNoRecords
	}

	names, metrics := aggregate(rows)
	labelTiers(names, metrics)

	analysis := &Analysis{
		SupplierMetrics:         metrics,
		PerformanceDistribution: make(map[string]int, len(TierNames)),
	}
	for _, m := range metrics {
		analysis.PerformanceDistribution[m.Performance]++
	}

	fitted := &Fitted{trained: true}
	if err := trainStockModel(rows, analysis, fitted); err != nil {
		return nil, nil, fmt.Errorf("stock model: %w", err)
	}
	if err := trainTierModel(names, metrics, analysis, fitted); err != nil {
		return nil, nil, fmt.Errorf("tier model: %w", err)
	}
	return analysis, fitted, nil
}

// aggregate groups rows per supplier. A zero supply frequency coerces the
// efficiency ratio to 0 with a warning instead of failing the run.
func aggregate(rows []records.SupplierRow) ([]string, map[string]Metrics) {
	grouped := make(map[string][]records.SupplierRow)
	for _, r := range rows {
		grouped[r.SupplierName] = append(grouped[r.SupplierName], r)
	}
	names := make([]string, 0, len(grouped))
	for n := range grouped {
		names = append(names, n)
	}
	sort.Strings(names)

	metrics := make(map[string]Metrics, len(grouped))
	for _, name := range names {
		g := grouped[name]
		prices := make([]float64, len(g))
		stocks := make([]float64, len(g))
		freqs := make([]float64, len(g))
		effs := make([]float64, len(g))
		var totalValue float64
		for i, r := range g {
			prices[i] = r.Price
			stocks[i] = r.Stock
			freqs[i] = r.SupplyFrequency
			totalValue += r.Price * r.Stock
			if r.SupplyFrequency == 0 {
				log.Printf("suppliers: %s sku %s has zero supply frequency, efficiency coerced to 0", name, r.SKU)
			} else {
				effs[i] = r.Stock / r.SupplyFrequency
			}
		}
		m := Metrics{
			AvgPrice:         stat.Mean(prices),
			PriceStd:         stat.Std(prices),
			AvgStock:         stat.Mean(stocks),
			StockStd:         stat.Std(stocks),
			AvgSupplyFreq:    stat.Mean(freqs),
			ProductCount:     len(g),
			TotalValue:       totalValue,
			SupplyEfficiency: stat.Mean(effs),
		}
		m.EfficiencyScore = m.SupplyEfficiency * float64(m.ProductCount)
		metrics[name] = m
	}
	return names, metrics
}

// labelTiers buckets efficiency scores into 3 equal-frequency tiers.
func labelTiers(names []string, metrics map[string]Metrics) {
	scores := make([]float64, len(names))
	for i, n := range names {
		scores[i] = metrics[n].EfficiencyScore
	}
	bands, nBands := stat.QuantileBands(scores, 3)
	for i, n := range names {
		m := metrics[n]
		m.Performance = TierNames[0]
		if nBands > 0 {
			m.Performance = TierNames[(bands[i]-1)*len(TierNames)/nBands]
		}
		metrics[n] = m
	}
}

func stockVector(r records.SupplierRow) []float64 {
	return []float64{r.Price, r.SupplyFrequency, r.Price * r.Stock}
}

func trainStockModel(rows []records.SupplierRow, analysis *Analysis, fitted *Fitted) error {
	x := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		x[i] = stockVector(r)
		y[i] = r.Stock
	}
	if len(rows) < 2 {
		// one product: train on the single row, no held-out RMSE
		fitted.stock = tree.FitBoosted(x, y, tree.DefaultBoostConfig())
		return nil
	}
	trainIdx, testIdx := stat.TrainTestSplit(len(rows), 0.2, stat.Seed)
	xt := make([][]float64, len(trainIdx))
	yt := make([]float64, len(trainIdx))
	for i, idx := range trainIdx {
		xt[i], yt[i] = x[idx], y[idx]
	}
	fitted.stock = tree.FitBoosted(xt, yt, tree.DefaultBoostConfig())
	pred := make([]float64, len(testIdx))
	truth := make([]float64, len(testIdx))
	for i, idx := range testIdx {
		pred[i] = fitted.stock.Predict(x[idx])
		truth[i] = y[idx]
	}
	analysis.StockRMSE = stat.RMSE(pred, truth)
	return nil
}

// tierVector enumerates the 6 supplier-level classifier features.
func tierVector(m Metrics) []float64 {
	return []float64{
		m.AvgPrice, m.AvgStock, m.AvgSupplyFreq,
		float64(m.ProductCount), m.TotalValue, m.SupplyEfficiency,
	}
}

func trainTierModel(names []string, metrics map[string]Metrics, analysis *Analysis, fitted *Fitted) error {
	x := make([][]float64, len(names))
	y := make([]int, len(names))
	for i, n := range names {
		m := metrics[n]
		x[i] = tierVector(m)
		for c, t := range TierNames {
			if m.Performance == t {
				y[i] = c
			}
		}
	}
	fitted.scaler = stat.FitStandardizer(x)
	scaled := fitted.scaler.TransformAll(x)

	if len(names) < 2 {
		fitted.tier = fitSoftmax(scaled, y, len(TierNames), stat.Seed)
		analysis.ModelAccuracy = 1
		return nil
	}
	trainIdx, testIdx := stat.TrainTestSplit(len(names), 0.2, stat.Seed)
	xt := make([][]float64, len(trainIdx))
	yt := make([]int, len(trainIdx))
	for i, idx := range trainIdx {
		xt[i], yt[i] = scaled[idx], y[idx]
	}
	fitted.tier = fitSoftmax(xt, yt, len(TierNames), stat.Seed)

	var correct int
	for _, idx := range testIdx {
		if fitted.tier.predict(scaled[idx]) == y[idx] {
			correct++
		}
	}
	analysis.ModelAccuracy = float64(correct) / float64(len(testIdx))
	return nil
}

// PredictStock estimates a stock level from price, supply frequency and
// total value. Fails with ErrNotTrained on a zero-value Fitted.
func (f *Fitted) PredictStock(price, supplyFrequency, totalValue float64) (float64, error) {
	if f == nil || !f.trained {
		return 0, records.ErrNotTrained
	}
	return f.stock.Predict([]float64{price, supplyFrequency, totalValue}), nil
}

// ClassifyTier classifies a supplier from its 6-feature vector.
func (f *Fitted) ClassifyTier(features [6]float64) (string, error) {
	if f == nil || !f.trained {
		return "", records.ErrNotTrained
	}
	scaled := f.scaler.Transform(features[:])
	return TierNames[f.tier.predict(scaled)], nil
}

// softmax is a multinomial logistic classifier trained by seeded
// full-gradient descent. It replaces the original deep classifier with the
// simplest model meeting the 3-class contract.
type softmax struct {
	weights [][]float64 // classes x features
	biases  []float64
}

const (
	softmaxEpochs = 200
	softmaxLR     = 0.1
)

func fitSoftmax(x [][]float64, y []int, classes int, seed int64) *softmax {
	features := len(x[0])
	rng := rand.New(rand.NewSource(seed))
	s := &softmax{
		weights: make([][]float64, classes),
		biases:  make([]float64, classes),
	}
	for c := range s.weights {
		s.weights[c] = make([]float64, features)
		for j := range s.weights[c] {
			s.weights[c][j] = (rng.Float64() - 0.5) * 0.01
		}
	}
	n := float64(len(x))
	for epoch := 0; epoch < softmaxEpochs; epoch++ {
		gradW := make([][]float64, classes)
		gradB := make([]float64, classes)
		for c := range gradW {
			gradW[c] = make([]float64, features)
		}
		for i, row := range x {
			probs := s.proba(row)
			for c := 0; c < classes; c++ {
				d := probs[c]
				if c == y[i] {
					d -= 1
				}
				for j, v := range row {
					gradW[c][j] += d * v
				}
				gradB[c] += d
			}
		}
		for c := 0; c < classes; c++ {
			for j := range s.weights[c] {
				s.weights[c][j] -= softmaxLR * gradW[c][j] / n
			}
			s.biases[c] -= softmaxLR * gradB[c] / n
		}
	}
	return s
}

func (s *softmax) proba(row []float64) []float64 {
	logits := make([]float64, len(s.weights))
	maxLogit := math.Inf(-1)
	for c, w := range s.weights {
		l := s.biases[c]
		for j, v := range row {
			l += w[j] * v
		}
		logits[c] = l
		if l > maxLogit {
			maxLogit = l
		}
	}
	var sum float64
	for c, l := range logits {
		logits[c] = math.Exp(l - maxLogit)
		sum += logits[c]
	}
	for c := range logits {
		logits[c] /= sum
	}
	return logits
}

func (s *softmax) predict(row []float64) int {
	probs := s.proba(row)
	best := 0
	for c, p := range probs {
		if p > probs[best] {
			best = c
		}
	}
	return best
}
