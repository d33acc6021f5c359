package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// CodeTokenNotValid is the error code the API uses when the access
// credential is expired or otherwise rejected.
const CodeTokenNotValid = "token_not_valid"

const maxRawMessage = 200

// APIError is a non-2xx response from the API. Body keeps the raw payload so
// callers can surface it unchanged.
type APIError struct {
	StatusCode int
	Code       string
	Detail     string
	Fields     map[string][]string
	Body       []byte
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: body}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return e
	}

	for key, raw := range payload {
		switch key {
		case "code":
			// A model field named "code" carries a list of messages.
			if json.Unmarshal(raw, &e.Code) != nil {
				e.addField(key, raw)
			}
		case "detail", "message", "error":
			if e.Detail == "" {
				_ = json.Unmarshal(raw, &e.Detail)
			}
		case "messages":
		default:
			e.addField(key, raw)
		}
	}
	return e
}

func (e *APIError) addField(key string, raw json.RawMessage) {
	msgs := fieldMessages(raw)
	if len(msgs) == 0 {
		return
	}
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[key] = msgs
}

// fieldMessages decodes a validation entry, either ["msg", ...] or "msg".
func fieldMessages(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}

// Error returns the server's own message: detail, then field errors, then
// the raw body, then the HTTP status text.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
		}
		return strings.Join(parts, "; ")
	}
	if raw := strings.TrimSpace(string(e.Body)); raw != "" {
		if len(raw) > maxRawMessage {
			raw = raw[:maxRawMessage] + "..."
		}
		return raw
	}
	return fmt.Sprintf("request failed with status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// TokenInvalid reports whether the API rejected the access credential.
func (e *APIError) TokenInvalid() bool {
	return e.Code == CodeTokenNotValid
}

// NotFound reports a 404 response.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// TransportError is a request that never produced an HTTP response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTokenInvalid reports whether err carries the token-invalid signal.
func IsTokenInvalid(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.TokenInvalid()
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
