package retail

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a point-of-sale invoice.
type Sale struct {
	Base
	InvoiceNo     string          `json:"invoice_no"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	Branch        ID              `json:"branch,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	CreatedBy     ID              `json:"created_by,omitempty"`
	CreatedByName string          `json:"created_by_name,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Items         []SaleItem      `json:"items"`
	CreatedAt     time.Time       `json:"created_at,omitzero"`
}

// SaleItem is one invoice line.
type SaleItem struct {
	Product      ID              `json:"product"`
	ProductName  string          `json:"product_name,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// LineTotal is quantity times unit price.
func (i SaleItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// Outstanding is the unpaid part of the invoice, never negative.
func (s Sale) Outstanding() decimal.Decimal {
	due := s.TotalAmount.Sub(s.PaidAmount)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}
