package retail

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is a stock purchase from a vendor.
type Purchase struct {
	Base
	InvoiceNo     string          `json:"invoice_no"`
	Vendor        ID              `json:"vendor,omitempty"`
	VendorName    string          `json:"vendor_name,omitempty"`
	Branch        ID              `json:"branch,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	CreatedByName string          `json:"created_by_name,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Items         []PurchaseItem  `json:"items"`
	CreatedAt     time.Time       `json:"created_at,omitzero"`
}

// PurchaseItem is one purchase line.
type PurchaseItem struct {
	Product      ID              `json:"product"`
	ProductName  string          `json:"product_name,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
	Quantity     int64           `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
}

// LineTotal is quantity times unit cost.
func (i PurchaseItem) LineTotal() decimal.Decimal {
	return i.UnitCost.Mul(decimal.NewFromInt(i.Quantity))
}

// Outstanding is the amount still owed to the vendor, never negative.
func (p Purchase) Outstanding() decimal.Decimal {
	due := p.TotalAmount.Sub(p.PaidAmount)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}
