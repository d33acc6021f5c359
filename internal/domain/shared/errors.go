package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so wrapped
// copies created with NewDomainError still match the sentinels below.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if !errors.As(target, &de) {
		return false
	}
	return e.Code == de.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound         = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput     = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrNotAuthenticated = NewDomainError("NOT_AUTHENTICATED", "Not logged in")
	ErrReauthRequired   = NewDomainError("REAUTH_REQUIRED", "Refresh token expired, login required.")
	ErrUnknownResource  = NewDomainError("UNKNOWN_RESOURCE", "Unknown resource")
)
