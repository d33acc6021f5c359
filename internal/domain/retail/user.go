package retail

// User is the minimal account info kept alongside the session.
type User struct {
	Base
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}
