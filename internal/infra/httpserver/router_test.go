package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bryanwahyu/inventory-analytics/internal/application"
	"github.com/bryanwahyu/inventory-analytics/internal/application/reports"
	"github.com/bryanwahyu/inventory-analytics/internal/domain/records"
	"github.com/bryanwahyu/inventory-analytics/internal/middleware"
)

type memBills struct{ rows []records.BillLine }

func (m *memBills) ListAll(ctx context.Context) ([]records.BillLine, error) { return m.rows, nil }

type memProducts struct{ rows []records.Product }

func (m *memProducts) ListAll(ctx context.Context) ([]records.Product, error) { return m.rows, nil }

type memSuppliers struct{ rows []records.SupplierRow }

func (m *memSuppliers) ListAll(ctx context.Context) ([]records.SupplierRow, error) {
	return m.rows, nil
}

type memDemand struct{ rows []records.DemandRow }

func (m *memDemand) ListAll(ctx context.Context) ([]records.DemandRow, error) { return m.rows, nil }

var testToday = time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var bills []records.BillLine
	for i := 0; i < 6; i++ {
		vendor := fmt.Sprintf("V%d", i%3+1)
		bills = append(bills, records.BillLine{
			BillNumber:  fmt.Sprintf("B%d", i),
			VendorName:  vendor,
			ProductSKU:  "SKU-1",
			Date:        base.AddDate(0, 0, 10*i),
			Quantity:    float64(i + 1),
			TotalAmount: float64(10 * (i + 1)),
			PaymentType: "Cash",
		})
	}
	products := []records.Product{
		{SKU: "SKU-1", Name: "Milk", Category: "Dairy", Price: 10, Stock: 50,
			LowStockThreshold: 10, ExpiryDate: testToday.AddDate(0, 0, 3)},
		{SKU: "SKU-2", Name: "Rice", Category: "Grain", Price: 5, Stock: 200,
			LowStockThreshold: 20, ExpiryDate: testToday.AddDate(1, 0, 0)},
	}
	suppliers := []records.SupplierRow{
		{SupplierName: "S1", SKU: "SKU-1", Price: 8, Stock: 100, SupplyFrequency: 4},
		{SupplierName: "S1", SKU: "SKU-2", Price: 4, Stock: 300, SupplyFrequency: 2},
		{SupplierName: "S2", SKU: "SKU-3", Price: 12, Stock: 50, SupplyFrequency: 1},
		{SupplierName: "S3", SKU: "SKU-4", Price: 2, Stock: 400, SupplyFrequency: 8},
	}
	var demand []records.DemandRow
	for i := 0; i < 8; i++ {
		demand = append(demand, records.DemandRow{
			ProductSKU: "SKU-1",
			Month:      time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
			Quantity:   float64(20 + i),
		})
	}

	svc := &reports.Service{
		Bills:         &memBills{rows: bills},
		Products:      &memProducts{rows: products},
		Suppliers:     &memSuppliers{rows: suppliers},
		Demand:        &memDemand{rows: demand},
		Clock:         application.FixedClock{At: testToday},
		ReferenceDate: testToday,
	}
	srv := httptest.NewServer(NewRouter(svc, map[string]middleware.HealthChecker{}))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestGetReports(t *testing.T) {
	srv := testServer(t)
	paths := []string{
		"/v1/rfm-analysis",
		"/v1/customer-segments",
		"/v1/customer-insights",
		"/v1/churn-prediction",
		"/v1/supplier-analysis",
		"/v1/discount-recommendations",
		"/v1/inventory-recommendations",
		"/v1/product-bundles",
		"/v1/fraud-report",
	}
	for _, p := range paths {
		resp := getJSON(t, srv.URL+p, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", p, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("GET %s content type = %q", p, ct)
		}
	}
}

func TestRFMPayload(t *testing.T) {
	srv := testServer(t)
	var rfm map[string]struct {
		RFMScore string `json:"rfm_score"`
	}
	resp := getJSON(t, srv.URL+"/v1/rfm-analysis", &rfm)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(rfm) != 3 {
		t.Fatalf("rfm covers %d vendors, want 3", len(rfm))
	}
	for v, row := range rfm {
		if len(row.RFMScore) != 3 {
			t.Errorf("vendor %s rfm score = %q", v, row.RFMScore)
		}
	}
}

func TestProductRecommendationRoutes(t *testing.T) {
	srv := testServer(t)

	var rec struct {
		SKU                string `json:"sku"`
		MonthlyPredictions []any  `json:"monthly_predictions"`
	}
	resp := getJSON(t, srv.URL+"/v1/product-recommendation/SKU-1", &rec)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if rec.SKU != "SKU-1" || len(rec.MonthlyPredictions) != 12 {
		t.Errorf("recommendation = %+v", rec)
	}

	var months []struct {
		Month string `json:"month"`
	}
	resp = getJSON(t, srv.URL+"/v1/monthly-predictions/SKU-1", &months)
	if resp.StatusCode != http.StatusOK || len(months) != 12 {
		t.Errorf("monthly predictions status=%d len=%d", resp.StatusCode, len(months))
	}

	var trend struct {
		Direction string `json:"direction"`
	}
	resp = getJSON(t, srv.URL+"/v1/yearly-trend/SKU-1", &trend)
	if resp.StatusCode != http.StatusOK || trend.Direction == "" {
		t.Errorf("yearly trend status=%d direction=%q", resp.StatusCode, trend.Direction)
	}
}

func TestUnknownSKUMapsTo404(t *testing.T) {
	srv := testServer(t)
	resp := getJSON(t, srv.URL+"/v1/product-recommendation/NOPE", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown sku status = %d, want 404", resp.StatusCode)
	}
}

func TestFraudDetectionPost(t *testing.T) {
	srv := testServer(t)

	body, _ := json.Marshal(map[string]any{
		"product_sku": "SKU-1", "quantity": 2, "total_amount": 20,
	})
	resp, err := http.Post(srv.URL+"/v1/fraud-detection", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var det struct {
		IsoPrediction int `json:"iso_prediction"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&det); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if det.IsoPrediction != 1 && det.IsoPrediction != -1 {
		t.Errorf("iso prediction = %d", det.IsoPrediction)
	}

	// unknown SKU maps to 404
	body, _ = json.Marshal(map[string]any{"product_sku": "NOPE", "quantity": 1, "total_amount": 5})
	resp2, err := http.Post(srv.URL+"/v1/fraud-detection", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("unknown sku status = %d, want 404", resp2.StatusCode)
	}
}

func TestSupplierModelPosts(t *testing.T) {
	srv := testServer(t)

	body, _ := json.Marshal(map[string]float64{
		"price": 8, "supply_frequency": 4, "total_value": 800,
	})
	resp, err := http.Post(srv.URL+"/v1/supplier/stock-prediction", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stock prediction status = %d, want 200", resp.StatusCode)
	}
	var stock map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&stock); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := stock["predicted_stock"]; !ok {
		t.Errorf("missing predicted_stock in %v", stock)
	}

	body, _ = json.Marshal(map[string]float64{
		"avg_price": 6, "avg_stock": 200, "avg_supply_frequency": 3,
		"product_count": 2, "total_value": 2000, "supply_efficiency": 60,
	})
	resp2, err := http.Post(srv.URL+"/v1/supplier/classification", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("classification status = %d, want 200", resp2.StatusCode)
	}
	var tier map[string]string
	if err := json.NewDecoder(resp2.Body).Decode(&tier); err != nil {
		t.Fatalf("decode: %v", err)
	}
	switch tier["performance_tier"] {
	case "Low", "Medium", "High":
	default:
		t.Errorf("tier = %q", tier["performance_tier"])
	}
}

func TestDiscountRecommendationsUseReferenceDate(t *testing.T) {
	srv := testServer(t)
	var report struct {
		Recommendations []struct {
			SKU               string  `json:"sku"`
			DaysUntilExpiry   int     `json:"days_until_expiry"`
			SuggestedDiscount float64 `json:"suggested_discount"`
		} `json:"recommendations"`
	}
	resp := getJSON(t, srv.URL+"/v1/discount-recommendations", &report)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, r := range report.Recommendations {
		if r.SKU == "SKU-1" && r.DaysUntilExpiry != 3 {
			t.Errorf("SKU-1 days until expiry = %d, want 3 from the fixed reference date", r.DaysUntilExpiry)
		}
	}
}

func TestProbesAndMetrics(t *testing.T) {
	srv := testServer(t)
	for _, p := range []string{"/health", "/ready", "/live", "/metrics"} {
		resp := getJSON(t, srv.URL+p, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", p, resp.StatusCode)
		}
	}
}

func TestAIInsightsUnconfigured(t *testing.T) {
	srv := testServer(t)
	body, _ := json.Marshal(map[string]string{"report": "rfm-analysis"})
	resp, err := http.Post(srv.URL+"/v1/ai/insights", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("unconfigured ai status = %d, want 500", resp.StatusCode)
	}
}

func TestUnknownReportName(t *testing.T) {
	srv := testServer(t)
	svcErr := getJSON(t, srv.URL+"/v1/nonexistent-report", nil)
	if svcErr.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", svcErr.StatusCode)
	}
}
