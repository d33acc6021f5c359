package retail

import "time"

// Vendor supplies stock through purchases.
type Vendor struct {
	Base
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}
