package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is what the client can read from an access token without
// the server's signing key.
type TokenClaims struct {
	UserID    string
	TokenType string
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// InspectToken decodes the claims of a JWT without verifying its
// signature. The result is informational only; the server decides
// whether a token is valid.
func InspectToken(token string) (TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("parsing token: %w", err)
	}

	var out TokenClaims
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if v, ok := claims["user_id"]; ok {
		out.UserID = fmt.Sprint(v)
	}
	if v, ok := claims["token_type"].(string); ok {
		out.TokenType = v
	}
	return out, nil
}
