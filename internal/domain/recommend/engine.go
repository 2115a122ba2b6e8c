// Package recommend produces demand forecasts and bundle recommendations:
// per-SKU monthly predictions from a least-squares trend over observed
// sales and market demand, and product bundles from association rules.
package recommend

import (
	"fmt"
	"sort"
	"time"

	"github.com/bryanwahyu/inventory-analytics/internal/analytics/apriori"
	"github.com/bryanwahyu/inventory-analytics/internal/domain/records"
)

const (
	forecastMonths   = 12
	minBundleSupport = 0.01
	minBundleLift    = 1.0
	minBundleConf    = 0.5
	trendStableSlope = 0.05 // fraction of mean volume below which a trend is flat
)

// MonthlyPrediction is a forecast point for one calendar month.
type MonthlyPrediction struct {
	Month             string  `json:"month"` // YYYY-MM
	PredictedQuantity float64 `json:"predicted_quantity"`
}

// YearlyTrend summarizes per-year volumes and the trend direction.
type YearlyTrend struct {
	Totals    map[string]float64 `json:"totals"` // year -> quantity
	Direction string             `json:"direction"`
	Slope     float64            `json:"slope"`
}

// ProductRecommendation is the full forecast for one SKU.
type ProductRecommendation struct {
	SKU                records.SKU         `json:"sku"`
	Name               string              `json:"name"`
	Category           string              `json:"category"`
	CurrentStock       float64             `json:"current_stock"`
	MonthlyPredictions []MonthlyPrediction `json:"monthly_predictions"`
	YearlyTrend        YearlyTrend         `json:"yearly_trend"`
	SuggestedOrder     float64             `json:"suggested_order"`
	Action             string              `json:"action"`
}

// Bundle is a recommended product bundle derived from an association rule.
type Bundle struct {
	Products   []string `json:"products"`
	Support    float64  `json:"support"`
	Confidence float64  `json:"confidence"`
	Lift       float64  `json:"lift"`
}

// Engine forecasts demand over one snapshot of bills, catalog, and
// market-demand rows.
type Engine struct {
	products map[records.SKU]records.Product
	history  map[records.SKU]map[string]float64 // sku -> YYYY-MM -> quantity
	baskets  apriori.Baskets
}

// NewEngine merges bill quantities and market-demand rows into per-SKU
// monthly histories.
func NewEngine(bills []records.BillLine, products []records.Product, demand []records.DemandRow) *Engine {
	e := &Engine{
		products: make(map[records.SKU]records.Product, len(products)),
		history:  make(map[records.SKU]map[string]float64),
		baskets:  make(apriori.Baskets),
	}
	for _, p := range products {
		e.products[p.SKU] = p
	}
	for _, b := range bills {
		e.add(b.ProductSKU, b.Date, b.Quantity)
		e.baskets.Add(b.BillNumber, string(b.ProductSKU))
	}
	for _, d := range demand {
		e.add(d.ProductSKU, d.Month, d.Quantity)
	}
	return e
}

func (e *Engine) add(sku records.SKU, at time.Time, qty float64) {
	m, ok := e.history[sku]
	if !ok {
		m = make(map[string]float64)
		e.history[sku] = m
	}
	m[at.Format("2006-01")] += qty
}

// trend fits quantity = intercept + slope*t over the SKU's sorted monthly
// history, t being the month index.
func trend(history map[string]float64) (months []string, intercept, slope float64) {
	for m := range history {
		months = append(months, m)
	}
	sort.Strings(months)
	n := float64(len(months))
	if n == 0 {
		return months, 0, 0
	}
	if n == 1 {
		return months, history[months[0]], 0
	}
	var sumT, sumY, sumTY, sumTT float64
	for i, m := range months {
		t, y := float64(i), history[m]
		sumT += t
		sumY += y
		sumTY += t * y
		sumTT += t * t
	}
	den := n*sumTT - sumT*sumT
	if den == 0 {
		return months, sumY / n, 0
	}
	slope = (n*sumTY - sumT*sumY) / den
	intercept = (sumY - slope*sumT) / n
	return months, intercept, slope
}

// Recommend builds the forecast for one SKU. Unknown SKUs fail with a
// not-found error.
func (e *Engine) Recommend(sku records.SKU) (*ProductRecommendation, error) {
	p, ok := e.products[sku]
	if !ok {
		return nil, fmt.Errorf("sku %s: %w", sku, records.ErrNotFound)
	}
	history := e.history[sku]
	if len(history) == 0 {
		return nil, fmt.Errorf("sku %s has no demand history: %w", sku, records.ErrNoRecords)
	}
	months, intercept, slope := trend(history)

	last, _ := time.Parse("2006-01", months[len(months)-1])
	preds := make([]MonthlyPrediction, forecastMonths)
	var predictedDemand float64
	for i := range preds {
		t := float64(len(months) + i)
		q := intercept + slope*t
		if q < 0 {
			q = 0
		}
		preds[i] = MonthlyPrediction{
			Month:             last.AddDate(0, i+1, 0).Format("2006-01"),
			PredictedQuantity: q,
		}
		if i < 3 {
			predictedDemand += q
		}
	}

	yearly := YearlyTrend{Totals: make(map[string]float64), Slope: slope}
	var mean float64
	for _, m := range months {
		yearly.Totals[m[:4]] += history[m]
		mean += history[m]
	}
	mean /= float64(len(months))
	switch {
	case mean > 0 && slope > trendStableSlope*mean:
		yearly.Direction = "increasing"
	case mean > 0 && slope < -trendStableSlope*mean:
		yearly.Direction = "decreasing"
	default:
		yearly.Direction = "stable"
	}

	rec := &ProductRecommendation{
		SKU:                sku,
		Name:               p.Name,
		Category:           p.Category,
		CurrentStock:       p.Stock,
		MonthlyPredictions: preds,
		YearlyTrend:        yearly,
	}
	// reorder suggestion: cover the next quarter's predicted demand
	if predictedDemand > p.Stock {
		rec.SuggestedOrder = predictedDemand - p.Stock
		rec.Action = "restock"
	} else if p.Stock > 2*predictedDemand && predictedDemand > 0 {
		rec.Action = "overstocked"
	} else {
		rec.Action = "ok"
	}
	return rec, nil
}

// InventoryRecommendations forecasts every cataloged SKU with history,
// sorted by SKU for stable output.
func (e *Engine) InventoryRecommendations() ([]*ProductRecommendation, error) {
	if len(e.products) == 0 {
		return nil, records.ErrNoRecords
	}
	skus := make([]records.SKU, 0, len(e.products))
	for sku := range e.products {
		skus = append(skus, sku)
	}
	sort.Slice(skus, func(i, j int) bool { return skus[i] < skus[j] })

	var out []*ProductRecommendation
	for _, sku := range skus {
		if len(e.history[sku]) == 0 {
			continue
		}
		rec, err := e.Recommend(sku)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Bundles mines association rules over the per-bill baskets and returns
// them as bundle suggestions.
func (e *Engine) Bundles() ([]Bundle, error) {
	if len(e.baskets) == 0 {
		return nil, records.ErrNoRecords
	}
	itemsets := apriori.FrequentItemsets(e.baskets, minBundleSupport)
	rules := apriori.Rules(itemsets, minBundleLift, minBundleConf)
	bundles := make([]Bundle, 0, len(rules))
	for _, r := range rules {
		products := append(append([]string(nil), r.Antecedents...), r.Consequents...)
		sort.Strings(products)
		bundles = append(bundles, Bundle{
			Products:   products,
			Support:    r.Support,
			Confidence: r.Confidence,
			Lift:       r.Lift,
		})
	}
	return bundles, nil
}
