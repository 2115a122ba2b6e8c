// Package features derives the per-row temporal features, per-bill
// aggregates, and per-vendor rollups every customer-facing engine consumes.
package features

import (
	"log"

	"github.com/bryanwahyu/inventory-analytics/internal/domain/records"
)

// Row is a bill line enriched with derived features.
type Row struct {
	records.BillLine
	DayOfWeek           int     // 0=Monday .. 6=Sunday
	Month               int     // 1..12
	IsWeekend           bool    // day in {5,6}
	ItemsPerTransaction float64 // quantity sum over the row's bill
	AvgItemPrice        float64 // totalAmount/quantity, 0 when quantity is 0
	LifetimeValue       float64 // totalAmount sum over the row's vendor
}

// Enrich derives features for every line. All aggregates are keyed maps over
// bill number and vendor name, so results depend only on set membership and
// are stable under row reordering.
func Enrich(lines []records.BillLine) []Row {
	perBill := make(map[string]float64)
	perVendor := make(map[string]float64)
	for _, l := range lines {
		perBill[l.BillNumber] += l.Quantity
		perVendor[l.VendorName] += l.TotalAmount
	}

	rows := make([]Row, len(lines))
	for i, l := range lines {
		avg := 0.0
		if l.Quantity == 0 {
			log.Printf("features: bill %s sku %s has zero quantity, avgItemPrice coerced to 0", l.BillNumber, l.ProductSKU)
		} else {
			avg = l.TotalAmount / l.Quantity
		}
		rows[i] = Row{
			BillLine:            l,
			DayOfWeek:           mondayIndexed(l),
			Month:               int(l.Date.Month()),
			IsWeekend:           mondayIndexed(l) >= 5,
			ItemsPerTransaction: perBill[l.BillNumber],
			AvgItemPrice:        avg,
			LifetimeValue:       perVendor[l.VendorName],
		}
	}
	return rows
}

// mondayIndexed maps time.Weekday (Sunday=0) onto the 0=Monday convention
// the analytics contracts use.
func mondayIndexed(l records.BillLine) int {
	return (int(l.Date.Weekday()) + 6) % 7
}
