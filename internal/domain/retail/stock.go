package retail

import (
	"encoding/json"
	"time"
)

// Stock movement directions as reported by the API.
const (
	MovementIn  = "IN"
	MovementOut = "OUT"
)

// StockMovement records stock entering or leaving a branch.
type StockMovement struct {
	Base
	Product       ID        `json:"product"`
	ProductName   string    `json:"product_name,omitempty"`
	Branch        ID        `json:"branch,omitempty"`
	BranchName    string    `json:"branch_name,omitempty"`
	MovementType  string    `json:"movement_type"`
	Quantity      int64     `json:"quantity"`
	Reason        string    `json:"reason,omitempty"`
	Reference     string    `json:"reference,omitempty"`
	CreatedByName string    `json:"created_by_name,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitzero"`
}

// UnmarshalJSON accepts the movement time under either created_at or
// timestamp; older API versions only send the latter.
func (m *StockMovement) UnmarshalJSON(data []byte) error {
	type plain StockMovement
	aux := struct {
		*plain
		Timestamp time.Time `json:"timestamp"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = aux.Timestamp
	}
	return nil
}
