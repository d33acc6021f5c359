package retail

import (
	"encoding/json"
	"time"
)

// AuditLog is a read-only server audit trail entry.
type AuditLog struct {
	Base
	Action    string          `json:"action"`
	ModelName string          `json:"model_name"`
	ObjectID  string          `json:"object_id,omitempty"`
	User      UserRef         `json:"user,omitzero"`
	Changes   json.RawMessage `json:"changes,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitzero"`
}
