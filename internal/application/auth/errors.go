package auth

import (
	"github.com/noman2111ni/Retail-Managment-System/internal/domain/shared"
)

// ReauthError is returned when the refresh token could not be exchanged.
// It matches shared.ErrReauthRequired and also unwraps to the cause.
type ReauthError struct {
	Cause error
}

func (e *ReauthError) Error() string {
	return shared.ErrReauthRequired.Message
}

func (e *ReauthError) Unwrap() []error {
	if e.Cause == nil {
		return []error{shared.ErrReauthRequired}
	}
	return []error{shared.ErrReauthRequired, e.Cause}
}
