package dto

import "net/http"

// Gateway error codes. Domain errors keep their own codes
// (REAUTH_REQUIRED, INVALID_INPUT, UNKNOWN_RESOURCE, ...).
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeRequestTooLarge     = "REQUEST_TOO_LARGE"
	ErrCodeUpstream            = "UPSTREAM_ERROR"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeTimeout             = "TIMEOUT"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// statusByCode maps domain and gateway error codes to HTTP status codes
var statusByCode = map[string]int{
	"REAUTH_REQUIRED":          http.StatusUnauthorized,
	"NOT_AUTHENTICATED":        http.StatusUnauthorized,
	"INVALID_INPUT":            http.StatusBadRequest,
	"UNKNOWN_RESOURCE":         http.StatusNotFound,
	"READ_ONLY_RESOURCE":       http.StatusMethodNotAllowed,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidJSON:         http.StatusBadRequest,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeUpstreamUnavailable: http.StatusBadGateway,
	ErrCodeTimeout:             http.StatusGatewayTimeout,
	ErrCodeInternal:            http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
