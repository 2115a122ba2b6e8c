// Package customers derives vendor analytics from bill lines: RFM scoring,
// clustering-based segmentation, purchase-pattern mining, and churn and
// payment-behavior classification.
package customers

import (
	"fmt"
	"log"
	"sort"

	"github.com/bryanwahyu/inventory-analytics/internal/analytics/apriori"
	"github.com/bryanwahyu/inventory-analytics/internal/analytics/cluster"
	"github.com/bryanwahyu/inventory-analytics/internal/analytics/features"
	"github.com/bryanwahyu/inventory-analytics/internal/analytics/stat"
	"github.com/bryanwahyu/inventory-analytics/internal/analytics/tree"
	"github.com/bryanwahyu/inventory-analytics/internal/domain/records"
)

const (
	minItemsetSupport = 0.01
	minRuleLift       = 1.0
	minRuleConfidence = 0.5
)

// Engine computes customer analytics over one immutable snapshot of bill
// lines. One engine per request; instances are not safe for concurrent use.
type Engine struct {
	rows    []features.Row
	vendors []string                  // sorted for deterministic iteration
	byVend  map[string][]features.Row // rows grouped per vendor
}

// NewEngine enriches the lines and groups them per vendor.
func NewEngine(lines []records.BillLine) *Engine {
	e := &Engine{
		rows:   features.Enrich(lines),
		byVend: make(map[string][]features.Row),
	}
	for _, r := range e.rows {
		e.byVend[r.VendorName] = append(e.byVend[r.VendorName], r)
	}
	for v := range e.byVend {
		e.vendors = append(e.vendors, v)
	}
	sort.Strings(e.vendors)
	return e
}

// RFM scores every vendor: recency against the dataset's maximum date,
// frequency as transaction count, monetary as total spend. Each metric is
// quintile-banded (duplicate edges dropped); the recency band is inverted so
// a recent purchase scores high.
func (e *Engine) RFM() (map[string]RFMRow, error) {
	if len(e.rows) == 0 {
		return nil, records.ErrNoRecords
	}
	maxDate := e.rows[0].Date
	for _, r := range e.rows[1:] {
		if r.Date.After(maxDate) {
			maxDate = r.Date
		}
	}

	n := len(e.vendors)
	recency := make([]float64, n)
	frequency := make([]float64, n)
	monetary := make([]float64, n)
	for i, v := range e.vendors {
		rows := e.byVend[v]
		last := rows[0].Date
		for _, r := range rows {
			if r.Date.After(last) {
				last = r.Date
			}
			monetary[i] += r.TotalAmount
		}
		recency[i] = maxDate.Sub(last).Hours() / 24
		frequency[i] = float64(len(rows))
	}

	recBand, _ := stat.QuantileBands(recency, 5)
	freqBand, _ := stat.QuantileBands(frequency, 5)
	monBand, _ := stat.QuantileBands(monetary, 5)
	segBand, segN := stat.QuantileBands(monetary, 3)
	segNames := []string{"Low", "Medium", "High"}

	out := make(map[string]RFMRow, n)
	for i, v := range e.vendors {
		rScore := 6 - recBand[i] // invert: low recency = recent = high score
		fScore := freqBand[i]
		mScore := monBand[i]
		seg := segNames[0]
		if segN > 0 {
			seg = segNames[(segBand[i]-1)*len(segNames)/segN]
		}
		out[v] = RFMRow{
			Recency:        int(recency[i]),
			Frequency:      int(frequency[i]),
			Monetary:       monetary[i],
			RecencyScore:   rScore,
			FrequencyScore: fScore,
			MonetaryScore:  mScore,
			RFMScore:       fmt.Sprintf("%d%d%d", rScore, fScore, mScore),
			ValueSegment:   seg,
		}
	}
	return out, nil
}

// profile builds the typed feature vector for one vendor.
func (e *Engine) profile(vendor string) Profile {
	rows := e.byVend[vendor]
	n := len(rows)
	spend := make([]float64, n)
	qty := make([]float64, n)
	items := make([]float64, n)
	price := make([]float64, n)
	var due, weekend float64
	var p Profile
	for i, r := range rows {
		spend[i] = r.TotalAmount
		qty[i] = r.Quantity
		items[i] = r.ItemsPerTransaction
		price[i] = r.AvgItemPrice
		if r.PaymentType == records.PaymentDue {
			due++
		}
		if r.IsWeekend {
			weekend++
		}
		p.LifetimeValue = r.LifetimeValue
	}
	p.SpendSum = stat.Sum(spend)
	p.SpendMean = stat.Mean(spend)
	p.SpendStd = stat.Std(spend)
	p.QuantitySum = stat.Sum(qty)
	p.QuantityMean = stat.Mean(qty)
	p.Transactions = float64(n)
	p.DueFraction = due / float64(n)
	p.WeekendFraction = weekend / float64(n)
	p.ItemsPerTxMean = stat.Mean(items)
	p.ItemsPerTxMax = stat.Max(items)
	p.AvgItemPrice = stat.Mean(price)
	return p
}

// segmentNames enumerates the columns of the segmentation matrix, in order.
var segmentNames = []string{
	"totalAmount_sum", "totalAmount_mean", "totalAmount_std",
	"quantity_sum", "quantity_mean", "billNumber_count",
	"paymentType_due_mean", "isWeekend_mean", "itemsPerTransaction_mean",
	"lifetimeValue",
}

func segmentVector(p Profile) []float64 {
	return []float64{
		p.SpendSum, p.SpendMean, p.SpendStd,
		p.QuantitySum, p.QuantityMean, p.Transactions,
		p.DueFraction, p.WeekendFraction, p.ItemsPerTxMean,
		p.LifetimeValue,
	}
}

// Segmentation clusters vendors on their standardized profiles. k=0 searches
// [2, min(8, n-1)) maximizing silhouette; a candidate producing fewer than 2
// or at least n distinct labels scores -1; ties break toward the smallest k
// because iteration ascends and the first maximum wins. Too few vendors for
// a search degrade to a single cluster rather than fail.
func (e *Engine) Segmentation(k int) (*SegmentationResult, error) {
	if len(e.rows) == 0 {
		return nil, records.ErrNoRecords
	}
	n := len(e.vendors)
	profiles := make([]Profile, n)
	matrix := make([][]float64, n)
	for i, v := range e.vendors {
		profiles[i] = e.profile(v)
		matrix[i] = segmentVector(profiles[i])
	}
	scaled := stat.FitStandardizer(matrix).TransformAll(matrix)

	if k == 0 {
		k = e.searchClusters(scaled)
	}
	if k > n {
		k = n
	}
	labels := cluster.KMeans(scaled, k, stat.Seed)

	res := &SegmentationResult{
		Segments: make(map[string]Segment, n),
		Profiles: make(map[string]map[string]float64, k),
		K:        k,
	}
	sums := make([]map[string]float64, k)
	counts := make([]int, k)
	for i, v := range e.vendors {
		c := labels[i]
		res.Segments[v] = Segment{Profile: profiles[i], Cluster: c}
		if sums[c] == nil {
			sums[c] = make(map[string]float64, len(segmentNames))
		}
		for j, name := range segmentNames {
			sums[c][name] += matrix[i][j]
		}
		counts[c]++
	}
	for c := 0; c < k; c++ {
		profile := make(map[string]float64, len(segmentNames))
		if counts[c] > 0 {
			for name, s := range sums[c] {
				profile[name] = s / float64(counts[c])
			}
		}
		res.Profiles[fmt.Sprintf("Cluster_%d", c)] = profile
	}
	return res, nil
}

func (e *Engine) searchClusters(scaled [][]float64) int {
	n := len(scaled)
	upper := 8
	if n-1 < upper {
		upper = n - 1
	}
	if upper <= 2 {
		// not enough vendors for a search
		if n < 2 {
			return 1
		}
		return 2
	}
	bestK, bestScore := 2, -2.0
	for k := 2; k < upper; k++ {
		labels := cluster.KMeans(scaled, k, stat.Seed)
		score := -1.0
		if d := cluster.CountDistinct(labels); d >= 2 && d < n {
			score = cluster.Silhouette(scaled, labels)
		}
		if score > bestScore { // first max wins on ties
			bestK, bestScore = k, score
		}
	}
	return bestK
}

// PurchasePatterns returns day-of-week aggregates and association rules over
// per-bill baskets (support >= 0.01, lift >= 1, confidence >= 0.5).
func (e *Engine) PurchasePatterns() ([]TemporalPattern, []apriori.Rule, error) {
	if len(e.rows) == 0 {
		return nil, nil, records.ErrNoRecords
	}
	type bucket struct {
		amount, qty float64
		count       int
	}
	buckets := make(map[int]*bucket)
	baskets := make(apriori.Baskets)
	for _, r := range e.rows {
		b, ok := buckets[r.DayOfWeek]
		if !ok {
			b = &bucket{}
			buckets[r.DayOfWeek] = b
		}
		b.amount += r.TotalAmount
		b.qty += r.Quantity
		b.count++
		baskets.Add(r.BillNumber, string(r.ProductSKU))
	}
	var patterns []TemporalPattern
	for day := 0; day < 7; day++ {
		b, ok := buckets[day]
		if !ok {
			continue
		}
		patterns = append(patterns, TemporalPattern{
			DayOfWeek:    day,
			IsWeekend:    day >= 5,
			AmountMean:   stat.Round2(b.amount / float64(b.count)),
			Transactions: b.count,
			QuantityMean: stat.Round2(b.qty / float64(b.count)),
		})
	}
	itemsets := apriori.FrequentItemsets(baskets, minItemsetSupport)
	rules := apriori.Rules(itemsets, minRuleLift, minRuleConfidence)
	return patterns, rules, nil
}

// churnNames enumerates the churn feature columns, in order.
var churnNames = []string{
	"totalAmount_mean", "totalAmount_sum", "totalAmount_std",
	"quantity_mean", "quantity_sum", "billNumber_count",
	"itemsPerTransaction_mean", "itemsPerTransaction_max", "avgItemPrice_mean",
}

func churnVector(p Profile) []float64 {
	return []float64{
		p.SpendMean, p.SpendSum, p.SpendStd,
		p.QuantityMean, p.QuantitySum, p.Transactions,
		p.ItemsPerTxMean, p.ItemsPerTxMax, p.AvgItemPrice,
	}
}

// PredictChurn labels a vendor churned when its recency exceeds churnDays,
// trains a forest on an 80/20 seeded split, and reports held-out AUC,
// precision and recall plus full-population churn probabilities.
func (e *Engine) PredictChurn(churnDays int) (*ChurnResult, error) {
	if len(e.rows) == 0 {
		return nil, records.ErrNoRecords
	}
	n := len(e.vendors)
	if n < 2 {
		return nil, fmt.Errorf("churn prediction needs at least 2 vendors, got %d", n)
	}

	maxDate := e.rows[0].Date
	for _, r := range e.rows[1:] {
		if r.Date.After(maxDate) {
			maxDate = r.Date
		}
	}
	x := make([][]float64, n)
	y := make([]float64, n)
	labels := make([]int, n)
	for i, v := range e.vendors {
		x[i] = churnVector(e.profile(v))
		last := e.byVend[v][0].Date
		for _, r := range e.byVend[v] {
			if r.Date.After(last) {
				last = r.Date
			}
		}
		if maxDate.Sub(last).Hours()/24 > float64(churnDays) {
			y[i] = 1
			labels[i] = 1
		}
	}

	trainIdx, testIdx := stat.TrainTestSplit(n, 0.2, stat.Seed)
	xt := make([][]float64, len(trainIdx))
	yt := make([]float64, len(trainIdx))
	for i, idx := range trainIdx {
		xt[i], yt[i] = x[idx], y[idx]
	}
	forest := tree.FitForest(xt, yt, tree.DefaultForestConfig())

	scores := make([]float64, len(testIdx))
	pred := make([]int, len(testIdx))
	truth := make([]int, len(testIdx))
	for i, idx := range testIdx {
		scores[i] = forest.PredictProba(x[idx])
		if scores[i] >= 0.5 {
			pred[i] = 1
		}
		truth[i] = labels[idx]
	}
	if oneClass(truth) {
		log.Printf("customers: held-out churn split has a single class, AUC defaults to 0.5")
	}
	precision, recall := stat.PrecisionRecall(pred, truth)

	res := &ChurnResult{
		FeatureImportance:  importanceMap(churnNames, forest.FeatureImportances()),
		ChurnProbabilities: make(map[string]float64, n),
		Metrics: ChurnMetrics{
			AUC:       stat.AUC(scores, truth),
			Precision: precision,
			Recall:    recall,
		},
	}
	for i, v := range e.vendors {
		res.ChurnProbabilities[v] = forest.PredictProba(x[i])
	}
	return res, nil
}

// paymentNames enumerates the payment-behavior feature columns, in order.
var paymentNames = []string{
	"totalAmount_mean", "totalAmount_sum", "quantity_mean",
	"itemsPerTransaction_mean", "isWeekend_mean",
}

func paymentVector(p Profile) []float64 {
	return []float64{
		p.SpendMean, p.SpendSum, p.QuantityMean,
		p.ItemsPerTxMean, p.WeekendFraction,
	}
}

// PaymentBehavior trains the majority-Due classifier under the same split
// discipline and reports feature importances only.
func (e *Engine) PaymentBehavior() (*PaymentResult, error) {
	if len(e.rows) == 0 {
		return nil, records.ErrNoRecords
	}
	n := len(e.vendors)
	if n < 2 {
		return nil, fmt.Errorf("payment prediction needs at least 2 vendors, got %d", n)
	}
	x := make([][]float64, n)
	y := make([]float64, n)
	for i, v := range e.vendors {
		p := e.profile(v)
		x[i] = paymentVector(p)
		if p.DueFraction > 0.5 {
			y[i] = 1
		}
	}
	trainIdx, _ := stat.TrainTestSplit(n, 0.2, stat.Seed)
	xt := make([][]float64, len(trainIdx))
	yt := make([]float64, len(trainIdx))
	for i, idx := range trainIdx {
		xt[i], yt[i] = x[idx], y[idx]
	}
	forest := tree.FitForest(xt, yt, tree.DefaultForestConfig())
	return &PaymentResult{
		FeatureImportance: importanceMap(paymentNames, forest.FeatureImportances()),
	}, nil
}

// Insights bundles the full customer report: RFM, segmentation, temporal
// patterns, the strongest association rules, and payment predictors.
type Insights struct {
	RFM              map[string]RFMRow   `json:"rfm_analysis"`
	Segments         *SegmentationResult `json:"customer_segments"`
	TemporalPatterns []TemporalPattern   `json:"temporal_patterns"`
	TopAssociations  []apriori.Rule      `json:"top_associations"`
	PaymentFeatures  map[string]float64  `json:"payment_predictors"`
}

// GenerateInsights runs every customer analysis and combines the results.
// A failure in any named part fails the whole report.
func (e *Engine) GenerateInsights() (*Insights, error) {
	rfm, err := e.RFM()
	if err != nil {
		return nil, fmt.Errorf("rfm analysis: %w", err)
	}
	seg, err := e.Segmentation(0)
	if err != nil {
		return nil, fmt.Errorf("segmentation: %w", err)
	}
	patterns, rules, err := e.PurchasePatterns()
	if err != nil {
		return nil, fmt.Errorf("purchase patterns: %w", err)
	}
	payment, err := e.PaymentBehavior()
	if err != nil {
		return nil, fmt.Errorf("payment behavior: %w", err)
	}
	if len(rules) > 10 {
		rules = rules[:10]
	}
	return &Insights{
		RFM:              rfm,
		Segments:         seg,
		TemporalPatterns: patterns,
		TopAssociations:  rules,
		PaymentFeatures:  payment.FeatureImportance,
	}, nil
}

func importanceMap(names []string, values []float64) map[string]float64 {
	m := make(map[string]float64, len(names))
	for i, name := range names {
		if i < len(values) {
			m[name] = values[i]
		}
	}
	return m
}

func oneClass(labels []int) bool {
	for _, l := range labels[1:] {
		if l != labels[0] {
			return false
		}
	}
	return true
}
