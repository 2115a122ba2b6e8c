package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bryanwahyu/inventory-analytics/internal/application"
	"github.com/bryanwahyu/inventory-analytics/internal/domain/records"
)

type fixedBills []records.BillLine

func (f fixedBills) ListAll(ctx context.Context) ([]records.BillLine, error) { return f, nil }

type fixedProducts []records.Product

func (f fixedProducts) ListAll(ctx context.Context) ([]records.Product, error) { return f, nil }

type memStore struct {
	keys []string
}

func (m *memStore) UploadJSON(ctx context.Context, key string, payload any) (string, error) {
	m.keys = append(m.keys, key)
	return "http://store.local/" + key, nil
}

func testService(store records.ArtifactStore) *Service {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bills := fixedBills{
		{BillNumber: "B1", VendorName: "V1", ProductSKU: "S1", Date: base, Quantity: 1, TotalAmount: 10, PaymentType: "Cash"},
		{BillNumber: "B2", VendorName: "V2", ProductSKU: "S1", Date: base.AddDate(0, 0, 5), Quantity: 2, TotalAmount: 20, PaymentType: "Due"},
		{BillNumber: "B3", VendorName: "V3", ProductSKU: "S1", Date: base.AddDate(0, 0, 9), Quantity: 3, TotalAmount: 30, PaymentType: "Cash"},
	}
	return &Service{
		Bills:     bills,
		Products:  fixedProducts{{SKU: "S1", Name: "Thing", Price: 10, Stock: 5, LowStockThreshold: 2, ExpiryDate: base.AddDate(0, 2, 0)}},
		Artifacts: store,
		Clock:     application.FixedClock{At: base.AddDate(0, 1, 0)},
	}
}

func TestRunReportUnknownName(t *testing.T) {
	svc := testService(nil)
	_, err := svc.RunReport(context.Background(), "made-up")
	if !errors.Is(err, records.ErrNotFound) {
		t.Errorf("unknown report error = %v, want ErrNotFound", err)
	}
}

func TestRunReportRFM(t *testing.T) {
	svc := testService(nil)
	payload, err := svc.RunReport(context.Background(), "rfm-analysis")
	if err != nil {
		t.Fatalf("RunReport: %v", err)
	}
	if payload == nil {
		t.Fatal("nil payload for a valid report")
	}
}

func TestExportReport(t *testing.T) {
	store := &memStore{}
	svc := testService(store)

	res, err := svc.ExportReport(context.Background(), "discount-recommendations")
	if err != nil {
		t.Fatalf("ExportReport: %v", err)
	}
	if res.ArtifactURL == "" || res.ID == "" {
		t.Errorf("export result = %+v", res)
	}
	if len(store.keys) != 1 {
		t.Fatalf("uploaded %d artifacts, want 1", len(store.keys))
	}
	want := "reports/discount-recommendations/" + res.ID + ".json"
	if store.keys[0] != want {
		t.Errorf("artifact key = %q, want %q", store.keys[0], want)
	}
}

func TestExportReportWithoutStore(t *testing.T) {
	svc := testService(nil)
	if _, err := svc.ExportReport(context.Background(), "rfm-analysis"); err == nil {
		t.Error("export without a store should fail")
	}
}

func TestChurnDaysDefault(t *testing.T) {
	svc := testService(nil)
	if got := svc.churnDays(); got != defaultChurnDays {
		t.Errorf("churnDays() = %d, want %d", got, defaultChurnDays)
	}
	svc.ChurnDays = 30
	if got := svc.churnDays(); got != 30 {
		t.Errorf("churnDays() = %d, want 30", got)
	}
}

func TestTodayPrefersReferenceDate(t *testing.T) {
	svc := testService(nil)
	ref := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)
	svc.ReferenceDate = ref
	if got := svc.today(); !got.Equal(ref) {
		t.Errorf("today() = %v, want the reference date", got)
	}
	svc.ReferenceDate = time.Time{}
	if got := svc.today(); !got.Equal(svc.Clock.Now()) {
		t.Errorf("today() = %v, want the clock value", got)
	}
}
