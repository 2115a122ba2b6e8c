// Package reports implements the analytics use-cases. Every call fetches a
// fresh snapshot from the repositories, builds a request-scoped engine, and
// returns one structured result. Trained model state never survives past
// the request that fitted it.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/inventory-analytics/internal/application"
	domai "github.com/bryanwahyu/inventory-analytics/internal/domain/ai"
	"github.com/bryanwahyu/inventory-analytics/internal/domain/customers"
	"github.com/bryanwahyu/inventory-analytics/internal/domain/expiry"
	"github.com/bryanwahyu/inventory-analytics/internal/domain/fraud"
	"github.com/bryanwahyu/inventory-analytics/internal/domain/recommend"
	"github.com/bryanwahyu/inventory-analytics/internal/domain/records"
	"github.com/bryanwahyu/inventory-analytics/internal/domain/suppliers"
)

// Service implements use-cases untuk analytics reports.
// One Service is safe for concurrent use: engines live only inside a call.
type Service struct {
	Bills     records.BillRepository
	Products  records.ProductRepository
	Suppliers records.SupplierRepository
	Demand    records.DemandRepository
	Artifacts records.ArtifactStore // optional
	AI        domai.Client          // optional
	Clock     application.Clock

	ChurnDays     int       // recency beyond this marks a vendor churned
	ReferenceDate time.Time // zero means Clock.Now()
}

const defaultChurnDays = 90

func (s *Service) churnDays() int {
	if s.ChurnDays > 0 {
		return s.ChurnDays
	}
	return defaultChurnDays
}

func (s *Service) today() time.Time {
	if !s.ReferenceDate.IsZero() {
		return s.ReferenceDate
	}
	return s.Clock.Now()
}

func (s *Service) customerEngine(ctx context.Context) (*customers.Engine, error) {
	bills, err := s.Bills.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch bills: %w", err)
	}
	return customers.NewEngine(bills), nil
}

// RFMAnalysis scores every vendor on recency, frequency and monetary value.
func (s *Service) RFMAnalysis(ctx context.Context) (map[string]customers.RFMRow, error) {
	eng, err := s.customerEngine(ctx)
	if err != nil {
		return nil, err
	}
	return eng.RFM()
}

// CustomerSegments clusters vendors; k=0 searches for the best count.
func (s *Service) CustomerSegments(ctx context.Context) (*customers.SegmentationResult, error) {
	eng, err := s.customerEngine(ctx)
	if err != nil {
		return nil, err
	}
	return eng.Segmentation(0)
}

// CustomerInsights runs the combined customer report.
func (s *Service) CustomerInsights(ctx context.Context) (*customers.Insights, error) {
	eng, err := s.customerEngine(ctx)
	if err != nil {
		return nil, err
	}
	return eng.GenerateInsights()
}

// ChurnPrediction trains and evaluates the churn classifier.
func (s *Service) ChurnPrediction(ctx context.Context) (*customers.ChurnResult, error) {
	eng, err := s.customerEngine(ctx)
	if err != nil {
		return nil, err
	}
	return eng.PredictChurn(s.churnDays())
}

// SupplierAnalysis aggregates supplier metrics and trains both supplier
// models.
func (s *Service) SupplierAnalysis(ctx context.Context) (*suppliers.Analysis, error) {
	rows, err := s.Suppliers.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch suppliers: %w", err)
	}
	analysis, _, err := suppliers.Analyze(rows)
	return analysis, err
}

// PredictSupplierStock trains the supplier models on a fresh snapshot and
// answers one stock prediction. Train-then-predict stays within the call:
// fitted models are never shared across requests.
func (s *Service) PredictSupplierStock(ctx context.Context, price, supplyFrequency, totalValue float64) (float64, error) {
	rows, err := s.Suppliers.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch suppliers: %w", err)
	}
	_, fitted, err := suppliers.Analyze(rows)
	if err != nil {
		return 0, err
	}
	return fitted.PredictStock(price, supplyFrequency, totalValue)
}

// ClassifySupplier trains the supplier models and classifies one 6-feature
// supplier vector into a performance tier.
func (s *Service) ClassifySupplier(ctx context.Context, features [6]float64) (string, error) {
	rows, err := s.Suppliers.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch suppliers: %w", err)
	}
	_, fitted, err := suppliers.Analyze(rows)
	if err != nil {
		return "", err
	}
	return fitted.ClassifyTier(features)
}

// DiscountRecommendations runs the expiry risk report against the injected
// reference date.
func (s *Service) DiscountRecommendations(ctx context.Context) (*expiry.Report, error) {
	products, err := s.Products.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	eng := expiry.Engine{Today: s.today()}
	return eng.GenerateReport(products)
}

// DetectFraud trains both anomaly detectors on the full history and checks
// one new record against the frozen models.
func (s *Service) DetectFraud(ctx context.Context, sku records.SKU, quantity, totalAmount float64) (*fraud.Detection, error) {
	detector, err := s.trainFraud(ctx)
	if err != nil {
		return nil, err
	}
	return detector.Detect(sku, quantity, totalAmount)
}

// FraudReport trains the detectors and returns all historical anomalies.
func (s *Service) FraudReport(ctx context.Context) ([]fraud.Transaction, error) {
	detector, err := s.trainFraud(ctx)
	if err != nil {
		return nil, err
	}
	return detector.Anomalies(), nil
}

func (s *Service) trainFraud(ctx context.Context) (*fraud.Detector, error) {
	products, err := s.Products.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	bills, err := s.Bills.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch bills: %w", err)
	}
	return fraud.Train(products, bills)
}

func (s *Service) recommendEngine(ctx context.Context) (*recommend.Engine, error) {
	bills, err := s.Bills.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch bills: %w", err)
	}
	products, err := s.Products.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	demand, err := s.Demand.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch market demand: %w", err)
	}
	return recommend.NewEngine(bills, products, demand), nil
}

// InventoryRecommendations forecasts demand for every SKU with history.
func (s *Service) InventoryRecommendations(ctx context.Context) ([]*recommend.ProductRecommendation, error) {
	eng, err := s.recommendEngine(ctx)
	if err != nil {
		return nil, err
	}
	return eng.InventoryRecommendations()
}

// ProductBundles mines bundle suggestions from co-purchase baskets.
func (s *Service) ProductBundles(ctx context.Context) ([]recommend.Bundle, error) {
	eng, err := s.recommendEngine(ctx)
	if err != nil {
		return nil, err
	}
	return eng.Bundles()
}

// ProductRecommendation forecasts a single SKU.
func (s *Service) ProductRecommendation(ctx context.Context, sku records.SKU) (*recommend.ProductRecommendation, error) {
	eng, err := s.recommendEngine(ctx)
	if err != nil {
		return nil, err
	}
	return eng.Recommend(sku)
}

// MonthlyPredictions forecasts the next twelve months for one SKU.
func (s *Service) MonthlyPredictions(ctx context.Context, sku records.SKU) ([]recommend.MonthlyPrediction, error) {
	rec, err := s.ProductRecommendation(ctx, sku)
	if err != nil {
		return nil, err
	}
	return rec.MonthlyPredictions, nil
}

// YearlyTrend reports per-year volumes and trend direction for one SKU.
func (s *Service) YearlyTrend(ctx context.Context, sku records.SKU) (*recommend.YearlyTrend, error) {
	rec, err := s.ProductRecommendation(ctx, sku)
	if err != nil {
		return nil, err
	}
	return &rec.YearlyTrend, nil
}

// ExportResult wraps a generated report with its uploaded artifact URL.
type ExportResult struct {
	ID          string `json:"id"`
	Report      string `json:"report"`
	ArtifactURL string `json:"artifact_url"`
	Payload     any    `json:"payload"`
}

// ExportReport generates a named report and uploads it as a JSON artifact.
func (s *Service) ExportReport(ctx context.Context, name string) (*ExportResult, error) {
	if s.Artifacts == nil {
		return nil, fmt.Errorf("artifact store not configured")
	}
	payload, err := s.RunReport(ctx, name)
	if err != nil {
		return nil, err
	}
	id := uuid.New().String()
	key := fmt.Sprintf("reports/%s/%s.json", name, id)
	url, err := s.Artifacts.UploadJSON(ctx, key, payload)
	if err != nil {
		return nil, fmt.Errorf("upload report artifact: %w", err)
	}
	return &ExportResult{ID: id, Report: name, ArtifactURL: url, Payload: payload}, nil
}

// SummarizeReport generates a named report and asks the AI client for a
// natural-language summary of its JSON.
func (s *Service) SummarizeReport(ctx context.Context, name string) (string, error) {
	if s.AI == nil {
		return "", fmt.Errorf("ai client not configured")
	}
	payload, err := s.RunReport(ctx, name)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return s.AI.Summarize(ctx, name, raw)
}

// RunReport dispatches a report by its endpoint name.
func (s *Service) RunReport(ctx context.Context, name string) (any, error) {
	switch name {
	case "rfm-analysis":
		return s.RFMAnalysis(ctx)
	case "customer-segments":
		return s.CustomerSegments(ctx)
	case "customer-insights":
		return s.CustomerInsights(ctx)
	case "churn-prediction":
		return s.ChurnPrediction(ctx)
	case "supplier-analysis":
		return s.SupplierAnalysis(ctx)
	case "discount-recommendations":
		return s.DiscountRecommendations(ctx)
	case "fraud-report":
		return s.FraudReport(ctx)
	case "inventory-recommendations":
		return s.InventoryRecommendations(ctx)
	case "product-bundles":
		return s.ProductBundles(ctx)
	default:
		log.Printf("reports: unknown report %q requested", name)
		return nil, fmt.Errorf("unknown report %q: %w", name, records.ErrNotFound)
	}
}
