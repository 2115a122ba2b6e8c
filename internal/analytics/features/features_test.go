package features

import (
	"testing"
	"time"

	"github.com/bryanwahyu/inventory-analytics/internal/domain/records"
)

func line(bill, vendor string, day time.Time, qty, total float64) records.BillLine {
	return records.BillLine{
		BillNumber:  bill,
		VendorName:  vendor,
		ProductSKU:  "SKU-1",
		Date:        day,
		Quantity:    qty,
		TotalAmount: total,
		PaymentType: "Cash",
	}
}

func TestEnrichTemporalFeatures(t *testing.T) {
	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)

	rows := Enrich([]records.BillLine{
		line("B1", "V1", monday, 2, 20),
		line("B2", "V1", saturday, 1, 5),
		line("B3", "V1", sunday, 1, 5),
	})

	if rows[0].DayOfWeek != 0 || rows[0].IsWeekend {
		t.Errorf("monday: day=%d weekend=%v, want 0,false", rows[0].DayOfWeek, rows[0].IsWeekend)
	}
	if rows[1].DayOfWeek != 5 || !rows[1].IsWeekend {
		t.Errorf("saturday: day=%d weekend=%v, want 5,true", rows[1].DayOfWeek, rows[1].IsWeekend)
	}
	if rows[2].DayOfWeek != 6 || !rows[2].IsWeekend {
		t.Errorf("sunday: day=%d weekend=%v, want 6,true", rows[2].DayOfWeek, rows[2].IsWeekend)
	}
	if rows[0].Month != 1 {
		t.Errorf("month = %d, want 1", rows[0].Month)
	}
}

func TestEnrichAggregates(t *testing.T) {
	d := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	rows := Enrich([]records.BillLine{
		line("B1", "V1", d, 2, 20),
		line("B1", "V1", d, 3, 30),
		line("B2", "V2", d, 1, 100),
	})

	// both B1 lines see the whole bill's quantity
	if rows[0].ItemsPerTransaction != 5 || rows[1].ItemsPerTransaction != 5 {
		t.Errorf("B1 items per transaction = %v,%v, want 5,5", rows[0].ItemsPerTransaction, rows[1].ItemsPerTransaction)
	}
	if rows[0].LifetimeValue != 50 {
		t.Errorf("V1 lifetime value = %v, want 50", rows[0].LifetimeValue)
	}
	if rows[2].LifetimeValue != 100 {
		t.Errorf("V2 lifetime value = %v, want 100", rows[2].LifetimeValue)
	}
	if rows[0].AvgItemPrice != 10 {
		t.Errorf("avg item price = %v, want 10", rows[0].AvgItemPrice)
	}
}

func TestEnrichZeroQuantity(t *testing.T) {
	d := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	rows := Enrich([]records.BillLine{line("B1", "V1", d, 0, 50)})
	if rows[0].AvgItemPrice != 0 {
		t.Errorf("zero quantity avg item price = %v, want 0", rows[0].AvgItemPrice)
	}
}

func TestEnrichReorderStable(t *testing.T) {
	d := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	lines := []records.BillLine{
		line("B1", "V1", d, 2, 20),
		line("B1", "V1", d, 3, 30),
		line("B2", "V2", d, 1, 100),
	}
	reversed := []records.BillLine{lines[2], lines[1], lines[0]}

	a := Enrich(lines)
	b := Enrich(reversed)

	// compare per bill number, not per position
	byBill := func(rows []Row) map[string]Row {
		m := make(map[string]Row)
		for _, r := range rows {
			m[r.BillNumber+string(r.ProductSKU)] = r
		}
		return m
	}
	ma, mb := byBill(a), byBill(b)
	for k, ra := range ma {
		rb := mb[k]
		if ra.ItemsPerTransaction != rb.ItemsPerTransaction || ra.LifetimeValue != rb.LifetimeValue {
			t.Errorf("row %s differs under reordering: %+v vs %+v", k, ra, rb)
		}
	}
}
