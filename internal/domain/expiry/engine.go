// Package expiry scores products for waste risk from expiry proximity,
// stock pressure and price, and suggests discount tiers. Deterministic and
// model-free: the reference instant is injected, never read from the clock.
package expiry

import (
	"time"

	"github.com/bryanwahyu/inventory-analytics/internal/analytics/stat"
	"github.com/bryanwahyu/inventory-analytics/internal/domain/records"
)

const (
	// RiskThreshold is the score at or above which a product enters the
	// discount table.
	RiskThreshold = 60

	statusExpired = "EXPIRED - DO NOT SELL"
	statusActive  = "Active"
)

// Suggestion is the tagged discount variant: a product is either expired or
// carries a percentage. The legacy -1 sentinel only appears at the JSON
// boundary.
type Suggestion struct {
	Expired bool
	Percent float64
}

// SentinelValue renders the wire contract: -1 for expired, otherwise the
// percentage.
func (s Suggestion) SentinelValue() float64 {
	if s.Expired {
		return -1
	}
	return s.Percent
}

// suggest maps days-until-expiry onto the discount tiers.
func suggest(daysUntilExpiry int) Suggestion {
	switch {
	case daysUntilExpiry <= 0:
		return Suggestion{Expired: true}
	case daysUntilExpiry <= 1:
		return Suggestion{Percent: 70}
	case daysUntilExpiry <= 4:
		return Suggestion{Percent: 50}
	case daysUntilExpiry <= 7:
		return Suggestion{Percent: 20}
	default:
		return Suggestion{Percent: 5}
	}
}

// ScoredProduct is a product with its derived risk fields.
type ScoredProduct struct {
	records.Product
	DaysUntilExpiry int
	StockRatio      float64
	RiskScore       float64
}

// Recommendation is one row of the discount table.
type Recommendation struct {
	Name              string      `json:"name"`
	SKU               records.SKU `json:"sku"`
	Category          string      `json:"category"`
	CurrentStock      float64     `json:"current_stock"`
	DaysUntilExpiry   int         `json:"days_until_expiry"`
	RiskScore         float64     `json:"risk_score"`
	SuggestedDiscount float64     `json:"suggested_discount"`
	CurrentPrice      float64     `json:"current_price"`
	Status            string      `json:"status"`
	DiscountedPrice   *float64    `json:"discounted_price"`
}

// Summary heads the discount report.
type Summary struct {
	TotalProducts       int     `json:"total_products"`
	HighRiskProducts    int     `json:"high_risk_products"`
	TotalInventoryValue float64 `json:"total_inventory_value"`
	AtRiskValue         float64 `json:"at_risk_value"`
}

// Report is the full discount recommendation report.
type Report struct {
	Summary         Summary          `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Engine scores one product snapshot against an injected reference instant.
type Engine struct {
	Today time.Time
}

// ScoreProducts derives days-until-expiry, stock ratio, and the weighted
// risk score for every product. Each term normalizes by the dataset maximum
// of its field; a zero maximum makes the term contribute 0.
func (e Engine) ScoreProducts(products []records.Product) []ScoredProduct {
	scored := make([]ScoredProduct, len(products))
	var maxDays, maxRatio, maxPrice float64
	for i, p := range products {
		days := int(p.ExpiryDate.Sub(e.Today).Hours() / 24)
		ratio := 0.0
		if p.LowStockThreshold != 0 {
			ratio = p.Stock / p.LowStockThreshold
		}
		scored[i] = ScoredProduct{Product: p, DaysUntilExpiry: days, StockRatio: ratio}
		if float64(days) > maxDays {
			maxDays = float64(days)
		}
		if ratio > maxRatio {
			maxRatio = ratio
		}
		if p.Price > maxPrice {
			maxPrice = p.Price
		}
	}
	for i := range scored {
		var expiryTerm, stockTerm, priceTerm float64
		if maxDays != 0 {
			expiryTerm = 1 - float64(scored[i].DaysUntilExpiry)/maxDays
		}
		if maxRatio != 0 {
			stockTerm = scored[i].StockRatio / maxRatio
		}
		if maxPrice != 0 {
			priceTerm = scored[i].Price / maxPrice
		}
		scored[i].RiskScore = 100 * (0.5*expiryTerm + 0.3*stockTerm + 0.2*priceTerm)
	}
	return scored
}

// GenerateReport scores all products and assembles the discount table for
// those at or above the risk threshold.
func (e Engine) GenerateReport(products []records.Product) (*Report, error) {
	if len(products) == 0 {
		return nil, records.ErrNoRecords
	}
	scored := e.ScoreProducts(products)

	report := &Report{Recommendations: []Recommendation{}}
	report.Summary.TotalProducts = len(scored)
	for _, p := range scored {
		report.Summary.TotalInventoryValue += p.Price
		if p.RiskScore < RiskThreshold {
			continue
		}
		report.Summary.HighRiskProducts++
		report.Summary.AtRiskValue += p.Price

		s := suggest(p.DaysUntilExpiry)
		rec := Recommendation{
			Name:              p.Name,
			SKU:               p.SKU,
			Category:          p.Category,
			CurrentStock:      p.Stock,
			DaysUntilExpiry:   p.DaysUntilExpiry,
			RiskScore:         stat.Round2(p.RiskScore),
			SuggestedDiscount: s.SentinelValue(),
			CurrentPrice:      p.Price,
			Status:            statusActive,
		}
		if s.Expired {
			rec.Status = statusExpired
		} else {
			discounted := stat.Round2(p.Price * (1 - s.Percent/100))
			rec.DiscountedPrice = &discounted
		}
		report.Recommendations = append(report.Recommendations, rec)
	}
	return report, nil
}
