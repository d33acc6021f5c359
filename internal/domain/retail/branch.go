package retail

import "time"

// Branch is a physical store location.
type Branch struct {
	Base
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}
