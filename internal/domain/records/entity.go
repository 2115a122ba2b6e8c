package records

import "time"

// SKU identifier type
type SKU string

// BillLine is one line of a sales bill: a single product purchased by a
// vendor on a bill. Read-only input, fetched fresh per analysis run.
type BillLine struct {
	BillNumber  string    `json:"billNumber"`
	VendorName  string    `json:"vendorName"`
	ProductSKU  SKU       `json:"productSku"`
	Date        time.Time `json:"Date"`
	Quantity    float64   `json:"quantity"`
	TotalAmount float64   `json:"totalAmount"`
	PaymentType string    `json:"paymentType"`
}

// PaymentDue is the payment type that marks an unpaid (credit) purchase.
const PaymentDue = "Due"

// Product is a catalog record.
type Product struct {
	SKU               SKU       `json:"sku"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	Price             float64   `json:"price"`
	Stock             float64   `json:"stock"`
	LowStockThreshold float64   `json:"lowStockThreshold"`
	ManufacturingDate time.Time `json:"manufacturing_date"`
	ExpiryDate        time.Time `json:"expiry_date"`
	SupplierName      string    `json:"supplierName"`
	SupplyFrequency   float64   `json:"supplyFrequency"`
}

// SupplierRow is a product-shaped row from the supplier collection, one per
// supplied product. Supplier aggregates are derived from these.
type SupplierRow struct {
	SupplierName    string  `json:"supplierName"`
	SKU             SKU     `json:"sku"`
	Price           float64 `json:"price"`
	Stock           float64 `json:"stock"`
	SupplyFrequency float64 `json:"supplyFrequency"`
}

// DemandRow is one month of observed market demand for a product.
type DemandRow struct {
	ProductSKU SKU       `json:"productSku"`
	Month      time.Time `json:"month"`
	Quantity   float64   `json:"quantity"`
}
