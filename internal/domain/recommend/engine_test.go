package recommend

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bryanwahyu/inventory-analytics/internal/domain/records"
)

func growthEngine() *Engine {
	products := []records.Product{
		{SKU: "UP", Name: "Riser", Category: "Food", Stock: 5},
		{SKU: "FLAT", Name: "Steady", Category: "Food", Stock: 100},
		{SKU: "COLD", Name: "NoSales", Category: "Food", Stock: 10},
	}
	// 12 months of strictly growing demand for UP, constant for FLAT
	var demand []records.DemandRow
	for i := 0; i < 12; i++ {
		month := time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
		demand = append(demand,
			records.DemandRow{ProductSKU: "UP", Month: month, Quantity: float64(10 + 5*i)},
			records.DemandRow{ProductSKU: "FLAT", Month: month, Quantity: 20},
		)
	}
	return NewEngine(nil, products, demand)
}

func TestRecommendForecast(t *testing.T) {
	rec, err := growthEngine().Recommend("UP")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(rec.MonthlyPredictions) != 12 {
		t.Fatalf("predictions = %d months, want 12", len(rec.MonthlyPredictions))
	}
	if rec.MonthlyPredictions[0].Month != "2025-01" {
		t.Errorf("first forecast month = %q, want 2025-01", rec.MonthlyPredictions[0].Month)
	}
	if rec.MonthlyPredictions[11].Month != "2025-12" {
		t.Errorf("last forecast month = %q, want 2025-12", rec.MonthlyPredictions[11].Month)
	}
	// history ends at 65/month and grows by 5: the forecast keeps climbing
	first := rec.MonthlyPredictions[0].PredictedQuantity
	last := rec.MonthlyPredictions[11].PredictedQuantity
	if first < 65 || last <= first {
		t.Errorf("growing history forecast = %v..%v, want increasing above 65", first, last)
	}
	if rec.YearlyTrend.Direction != "increasing" {
		t.Errorf("trend direction = %q, want increasing", rec.YearlyTrend.Direction)
	}
	if rec.YearlyTrend.Totals["2024"] != 450 { // sum of 10+15+...+65
		t.Errorf("2024 total = %v, want 450", rec.YearlyTrend.Totals["2024"])
	}
	// demand far exceeds the 5 units on hand
	if rec.Action != "restock" || rec.SuggestedOrder <= 0 {
		t.Errorf("action = %q order = %v, want restock with positive order", rec.Action, rec.SuggestedOrder)
	}
}

func TestRecommendStableTrend(t *testing.T) {
	rec, err := growthEngine().Recommend("FLAT")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.YearlyTrend.Direction != "stable" {
		t.Errorf("constant history direction = %q, want stable", rec.YearlyTrend.Direction)
	}
	// next-quarter demand ~60 against 100 on hand
	if rec.Action == "restock" {
		t.Errorf("well-stocked flat seller action = %q", rec.Action)
	}
}

func TestRecommendErrors(t *testing.T) {
	e := growthEngine()
	if _, err := e.Recommend("MISSING"); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("unknown sku error = %v, want ErrNotFound", err)
	}
	if _, err := e.Recommend("COLD"); !errors.Is(err, records.ErrNoRecords) {
		t.Errorf("no-history sku error = %v, want ErrNoRecords", err)
	}
}

func TestInventoryRecommendations(t *testing.T) {
	recs, err := growthEngine().InventoryRecommendations()
	if err != nil {
		t.Fatalf("InventoryRecommendations: %v", err)
	}
	// COLD has no history and is skipped, order is by SKU
	if len(recs) != 2 {
		t.Fatalf("recommendations = %d, want 2", len(recs))
	}
	if recs[0].SKU != "FLAT" || recs[1].SKU != "UP" {
		t.Errorf("order = %s,%s, want FLAT,UP", recs[0].SKU, recs[1].SKU)
	}
}

func TestBundles(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var bills []records.BillLine
	// A and B always bought together, C alone
	for i := 0; i < 4; i++ {
		bill := fmt.Sprintf("B%d", i)
		bills = append(bills,
			records.BillLine{BillNumber: bill, ProductSKU: "A", Date: base, Quantity: 1},
			records.BillLine{BillNumber: bill, ProductSKU: "B", Date: base, Quantity: 1},
		)
	}
	bills = append(bills, records.BillLine{BillNumber: "B9", ProductSKU: "C", Date: base, Quantity: 1})

	e := NewEngine(bills, []records.Product{{SKU: "A"}, {SKU: "B"}, {SKU: "C"}}, nil)
	bundles, err := e.Bundles()
	if err != nil {
		t.Fatalf("Bundles: %v", err)
	}
	found := false
	for _, b := range bundles {
		if len(b.Products) == 2 && b.Products[0] == "A" && b.Products[1] == "B" {
			found = true
			if b.Confidence != 1 {
				t.Errorf("A+B confidence = %v, want 1", b.Confidence)
			}
		}
	}
	if !found {
		t.Errorf("A+B bundle missing from %v", bundles)
	}
}

func TestBundlesEmpty(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	if _, err := e.Bundles(); !errors.Is(err, records.ErrNoRecords) {
		t.Errorf("empty bundles error = %v, want ErrNoRecords", err)
	}
	if _, err := e.InventoryRecommendations(); !errors.Is(err, records.ErrNoRecords) {
		t.Errorf("empty inventory error = %v, want ErrNoRecords", err)
	}
}
