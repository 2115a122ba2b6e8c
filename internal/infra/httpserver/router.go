package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/inventory-analytics/internal/application/reports"
	domai "github.com/bryanwahyu/inventory-analytics/internal/domain/ai"
	"github.com/bryanwahyu/inventory-analytics/internal/domain/records"
	"github.com/bryanwahyu/inventory-analytics/internal/middleware"
)

type Router struct {
	svc *reports.Service
}

// NewRouter wires the analytics endpoints plus probes and metrics.
func NewRouter(svc *reports.Service, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(60, 10))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Get("/rfm-analysis", r.wrap(r.handleReport("rfm-analysis")))
		rt.Get("/customer-segments", r.wrap(r.handleReport("customer-segments")))
		rt.Get("/customer-insights", r.wrap(r.handleReport("customer-insights")))
		rt.Get("/churn-prediction", r.wrap(r.handleReport("churn-prediction")))
		rt.Get("/supplier-analysis", r.wrap(r.handleReport("supplier-analysis")))
		rt.Post("/supplier/stock-prediction", r.wrap(r.handleStockPrediction))
		rt.Post("/supplier/classification", r.wrap(r.handleClassification))
		rt.Get("/discount-recommendations", r.wrap(r.handleReport("discount-recommendations")))
		rt.Post("/fraud-detection", r.wrap(r.handleFraudDetection))
		rt.Get("/fraud-report", r.wrap(r.handleReport("fraud-report")))
		rt.Get("/inventory-recommendations", r.wrap(r.handleReport("inventory-recommendations")))
		rt.Get("/product-bundles", r.wrap(r.handleReport("product-bundles")))
		rt.Get("/product-recommendation/{sku}", r.wrap(r.handleProductRecommendation))
		rt.Get("/monthly-predictions/{sku}", r.wrap(r.handleMonthlyPredictions))
		rt.Get("/yearly-trend/{sku}", r.wrap(r.handleYearlyTrend))
		rt.Post("/ai/insights", r.wrap(r.handleAIInsights))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			middleware.IncrementReportsFailed()
			if errors.Is(err, records.ErrNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			if errors.Is(err, records.ErrNotTrained) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			if errors.Is(err, domai.ErrQuotaExceeded) {
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// handleReport serves one named GET report. ?export=true also uploads the
// payload to the artifact store and returns the URL alongside it.
func (r *Router) handleReport(name string) handlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		ctx := req.Context()
		if req.URL.Query().Get("export") == "true" {
			res, err := r.svc.ExportReport(ctx, name)
			if err != nil {
				return err
			}
			middleware.IncrementReports()
			return writeJSON(w, res)
		}
		payload, err := r.svc.RunReport(ctx, name)
		if err != nil {
			return err
		}
		middleware.IncrementReports()
		return writeJSON(w, payload)
	}
}

// POST /v1/supplier/stock-prediction
// Body: {"price": 12.5, "supply_frequency": 4, "total_value": 5000}
func (r *Router) handleStockPrediction(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Price           float64 `json:"price"`
		SupplyFrequency float64 `json:"supply_frequency"`
		TotalValue      float64 `json:"total_value"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	stock, err := r.svc.PredictSupplierStock(req.Context(), body.Price, body.SupplyFrequency, body.TotalValue)
	if err != nil {
		return err
	}
	middleware.IncrementModelsTrained()
	return writeJSON(w, map[string]float64{"predicted_stock": stock})
}

// POST /v1/supplier/classification
// Body carries the 6 supplier-level aggregates.
func (r *Router) handleClassification(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		AvgPrice         float64 `json:"avg_price"`
		AvgStock         float64 `json:"avg_stock"`
		AvgSupplyFreq    float64 `json:"avg_supply_frequency"`
		ProductCount     float64 `json:"product_count"`
		TotalValue       float64 `json:"total_value"`
		SupplyEfficiency float64 `json:"supply_efficiency"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	tier, err := r.svc.ClassifySupplier(req.Context(), [6]float64{
		body.AvgPrice, body.AvgStock, body.AvgSupplyFreq,
		body.ProductCount, body.TotalValue, body.SupplyEfficiency,
	})
	if err != nil {
		return err
	}
	middleware.IncrementModelsTrained()
	return writeJSON(w, map[string]string{"performance_tier": tier})
}

// POST /v1/fraud-detection
// Body: {"product_sku": "SKU1", "quantity": 3, "total_amount": 99.0}
func (r *Router) handleFraudDetection(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ProductSKU  string  `json:"product_sku"`
		Quantity    float64 `json:"quantity"`
		TotalAmount float64 `json:"total_amount"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.ProductSKU == "" {
		return fmt.Errorf("product_sku is required")
	}
	det, err := r.svc.DetectFraud(req.Context(), records.SKU(body.ProductSKU), body.Quantity, body.TotalAmount)
	if err != nil {
		return err
	}
	middleware.IncrementModelsTrained()
	return writeJSON(w, det)
}

func skuParam(req *http.Request) records.SKU {
	return records.SKU(chi.URLParam(req, "sku"))
}

// GET /v1/product-recommendation/{sku}
func (r *Router) handleProductRecommendation(w http.ResponseWriter, req *http.Request) error {
	rec, err := r.svc.ProductRecommendation(req.Context(), skuParam(req))
	if err != nil {
		return err
	}
	return writeJSON(w, rec)
}

// GET /v1/monthly-predictions/{sku}
func (r *Router) handleMonthlyPredictions(w http.ResponseWriter, req *http.Request) error {
	preds, err := r.svc.MonthlyPredictions(req.Context(), skuParam(req))
	if err != nil {
		return err
	}
	return writeJSON(w, preds)
}

// GET /v1/yearly-trend/{sku}
func (r *Router) handleYearlyTrend(w http.ResponseWriter, req *http.Request) error {
	trend, err := r.svc.YearlyTrend(req.Context(), skuParam(req))
	if err != nil {
		return err
	}
	return writeJSON(w, trend)
}

// POST /v1/ai/insights
// Body: {"report": "customer-insights"}
func (r *Router) handleAIInsights(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Report string `json:"report"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.Report == "" {
		return fmt.Errorf("report is required")
	}
	summary, err := r.svc.SummarizeReport(req.Context(), body.Report)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]string{"report": body.Report, "summary": summary})
}
