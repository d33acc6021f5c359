package auth

import (
	"time"

	"github.com/noman2111ni/Retail-Managment-System/internal/domain/retail"
)

// LoginInput contains the login credentials
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput contains the sign-up form
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=admin manager cashier"`
	Branch   string `json:"branch,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// LoginResult is returned by Login
type LoginResult struct {
	Credentials Credentials  `json:"-"`
	User        *retail.User `json:"user,omitempty"`
}

// Status describes the current session
type Status struct {
	LoggedIn        bool         `json:"logged_in"`
	User            *retail.User `json:"user,omitempty"`
	HasRefreshToken bool         `json:"has_refresh_token"`
	AccessExpiresAt *time.Time   `json:"access_expires_at,omitempty"`
	AccessExpired   bool         `json:"access_expired"`
}
