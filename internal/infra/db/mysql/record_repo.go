package mysql

import (
	"context"
	"database/sql"
	"strings"

	"github.com/bryanwahyu/inventory-analytics/internal/domain/records"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

type BillRepository struct {
	db *sql.DB
}

func NewBillRepository(db *sql.DB) *BillRepository {
	return &BillRepository{db: db}
}

// ListAll fetch semua bill lines, oldest first
func (r *BillRepository) ListAll(ctx context.Context) ([]records.BillLine, error) {
	const q = `
SELECT bill_number, vendor_name, product_sku, bill_date, quantity, total_amount, payment_type
FROM bill_lines
ORDER BY bill_date ASC, bill_number ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []records.BillLine
	for rows.Next() {
		var b records.BillLine
		if err := rows.Scan(
			&b.BillNumber, &b.VendorName, &b.ProductSKU, &b.Date,
			&b.Quantity, &b.TotalAmount, &b.PaymentType,
		); err != nil {
			return nil, err
		}
		b.VendorName = stringOrDash(b.VendorName)
		out = append(out, b)
	}
	return out, rows.Err()
}

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) ListAll(ctx context.Context) ([]records.Product, error) {
	const q = `
SELECT sku, name, category, price, stock, low_stock_threshold,
       manufacturing_date, expiry_date, supplier_name, supply_frequency
FROM products
ORDER BY sku ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []records.Product
	for rows.Next() {
		var p records.Product
		if err := rows.Scan(
			&p.SKU, &p.Name, &p.Category, &p.Price, &p.Stock, &p.LowStockThreshold,
			&p.ManufacturingDate, &p.ExpiryDate, &p.SupplierName, &p.SupplyFrequency,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type SupplierRepository struct {
	db *sql.DB
}

func NewSupplierRepository(db *sql.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// ListAll fetch satu row per supplied product
func (r *SupplierRepository) ListAll(ctx context.Context) ([]records.SupplierRow, error) {
	const q = `
SELECT supplier_name, sku, price, stock, supply_frequency
FROM supplier_products
ORDER BY supplier_name ASC, sku ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []records.SupplierRow
	for rows.Next() {
		var s records.SupplierRow
		if err := rows.Scan(&s.SupplierName, &s.SKU, &s.Price, &s.Stock, &s.SupplyFrequency); err != nil {
			return nil, err
		}
		s.SupplierName = stringOrDash(s.SupplierName)
		out = append(out, s)
	}
	return out, rows.Err()
}

type DemandRepository struct {
	db *sql.DB
}

func NewDemandRepository(db *sql.DB) *DemandRepository {
	return &DemandRepository{db: db}
}

func (r *DemandRepository) ListAll(ctx context.Context) ([]records.DemandRow, error) {
	const q = `
SELECT product_sku, month, quantity
FROM market_demand
ORDER BY product_sku ASC, month ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []records.DemandRow
	for rows.Next() {
		var d records.DemandRow
		if err := rows.Scan(&d.ProductSKU, &d.Month, &d.Quantity); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
