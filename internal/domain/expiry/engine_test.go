package expiry

import (
	"errors"
	"testing"
	"time"

	"github.com/bryanwahyu/inventory-analytics/internal/domain/records"
)

var today = time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)

func TestSuggestTiers(t *testing.T) {
	cases := []struct {
		days    int
		expired bool
		percent float64
	}{
		{-1, true, 0},
		{0, true, 0},
		{1, false, 70},
		{4, false, 50},
		{7, false, 20},
		{8, false, 5},
		{30, false, 5},
	}
	for _, c := range cases {
		got := suggest(c.days)
		if got.Expired != c.expired || got.Percent != c.percent {
			t.Errorf("suggest(%d) = %+v, want expired=%v percent=%v", c.days, got, c.expired, c.percent)
		}
	}
}

func TestSuggestionSentinel(t *testing.T) {
	if got := (Suggestion{Expired: true}).SentinelValue(); got != -1 {
		t.Errorf("expired sentinel = %v, want -1", got)
	}
	if got := (Suggestion{Percent: 20}).SentinelValue(); got != 20 {
		t.Errorf("active sentinel = %v, want 20", got)
	}
}

func product(sku string, daysOut int, stock, threshold, price float64) records.Product {
	return records.Product{
		SKU:               records.SKU(sku),
		Name:              "P-" + sku,
		Category:          "Food",
		Price:             price,
		Stock:             stock,
		LowStockThreshold: threshold,
		ExpiryDate:        today.AddDate(0, 0, daysOut),
	}
}

func TestRiskScoreMonotonicity(t *testing.T) {
	// identical stock and price, only expiry proximity differs
	eng := Engine{Today: today}
	scored := eng.ScoreProducts([]records.Product{
		product("near", 2, 50, 10, 100),
		product("far", 60, 50, 10, 100),
	})
	if scored[0].RiskScore <= scored[1].RiskScore {
		t.Errorf("closer expiry risk %v <= farther expiry risk %v",
			scored[0].RiskScore, scored[1].RiskScore)
	}

	// identical expiry and price, only stock pressure differs
	scored = eng.ScoreProducts([]records.Product{
		product("full", 30, 100, 10, 100),
		product("low", 30, 10, 10, 100),
	})
	if scored[0].RiskScore <= scored[1].RiskScore {
		t.Errorf("higher stock ratio risk %v <= lower %v",
			scored[0].RiskScore, scored[1].RiskScore)
	}
}

func TestScoreProductsZeroMaxGuards(t *testing.T) {
	eng := Engine{Today: today}
	// everything already expired, zero thresholds, zero prices
	scored := eng.ScoreProducts([]records.Product{
		product("a", -5, 10, 0, 0),
		product("b", -2, 20, 0, 0),
	})
	for _, s := range scored {
		if s.RiskScore != s.RiskScore || s.RiskScore < 0 { // NaN check
			t.Errorf("sku %s risk = %v, want finite non-negative", s.SKU, s.RiskScore)
		}
	}
}

func TestGenerateReport(t *testing.T) {
	eng := Engine{Today: today}
	report, err := eng.GenerateReport([]records.Product{
		product("expired", -1, 80, 10, 100), // gone: sentinel row
		product("urgent", 1, 80, 10, 90),    // high risk, 70% tier
		product("safe", 90, 2, 10, 5),       // low risk, stays out
	})
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}

	if report.Summary.TotalProducts != 3 {
		t.Errorf("total products = %d, want 3", report.Summary.TotalProducts)
	}
	if report.Summary.HighRiskProducts != len(report.Recommendations) {
		t.Errorf("summary count %d != table rows %d",
			report.Summary.HighRiskProducts, len(report.Recommendations))
	}

	byStatus := make(map[records.SKU]Recommendation)
	for _, r := range report.Recommendations {
		byStatus[r.SKU] = r
		if r.SKU == "safe" {
			t.Error("low-risk product entered the discount table")
		}
	}

	exp, ok := byStatus["expired"]
	if !ok {
		t.Fatal("expired product missing from table")
	}
	if exp.SuggestedDiscount != -1 {
		t.Errorf("expired discount = %v, want -1", exp.SuggestedDiscount)
	}
	if exp.DiscountedPrice != nil {
		t.Errorf("expired discounted price = %v, want nil", *exp.DiscountedPrice)
	}
	if exp.Status != statusExpired {
		t.Errorf("expired status = %q", exp.Status)
	}

	urgent, ok := byStatus["urgent"]
	if !ok {
		t.Fatal("urgent product missing from table")
	}
	if urgent.SuggestedDiscount != 70 {
		t.Errorf("urgent discount = %v, want 70", urgent.SuggestedDiscount)
	}
	if urgent.DiscountedPrice == nil || *urgent.DiscountedPrice != 27 {
		t.Errorf("urgent discounted price = %v, want 27", urgent.DiscountedPrice)
	}
	if urgent.Status != statusActive {
		t.Errorf("urgent status = %q", urgent.Status)
	}
}

func TestGenerateReportEmpty(t *testing.T) {
	eng := Engine{Today: today}
	if _, err := eng.GenerateReport(nil); !errors.Is(err, records.ErrNoRecords) {
		t.Errorf("empty report error = %v, want ErrNoRecords", err)
	}
}

func TestGenerateReportDeterministic(t *testing.T) {
	eng := Engine{Today: today}
	products := []records.Product{
		product("a", 1, 80, 10, 100),
		product("b", 3, 40, 10, 50),
	}
	r1, err := eng.GenerateReport(products)
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	r2, err := eng.GenerateReport(products)
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if r1.Summary != r2.Summary || len(r1.Recommendations) != len(r2.Recommendations) {
		t.Error("same snapshot and reference date should reproduce the report")
	}
}
