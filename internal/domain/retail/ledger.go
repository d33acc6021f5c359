package retail

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is a single bookkeeping line. Date is kept verbatim because
// the API serves it as a plain calendar date.
type LedgerEntry struct {
	Base
	TransactionType string          `json:"transaction_type"`
	Reference       string          `json:"reference,omitempty"`
	Description     string          `json:"description,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Balance         decimal.Decimal `json:"balance"`
	Date            string          `json:"date,omitempty"`
	CreatedBy       UserRef         `json:"created_by,omitzero"`
	CreatedAt       time.Time       `json:"created_at,omitzero"`
}
