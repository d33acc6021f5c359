package retail

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item sold at a branch.
type Product struct {
	Base
	Name        string          `json:"name"`
	SKU         string          `json:"sku,omitempty"`
	Barcode     string          `json:"barcode,omitempty"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Branch      BranchRef       `json:"branch,omitzero"`
	Image       string          `json:"image,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at,omitzero"`
}

// LowStock reports whether the on-hand quantity is below threshold.
func (p Product) LowStock(threshold int64) bool {
	return p.Quantity < threshold
}
