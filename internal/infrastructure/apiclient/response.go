package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeJSON decodes the response body into v. An empty body leaves v untouched.
func DecodeJSON(resp *Response, v any) error {
	if resp == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// DecodeList decodes a list response. The API serves either a bare JSON
// array or a paginated envelope {"count": n, "results": [...]}; any other
// shape (including null) is treated as an empty list.
func DecodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []T{}, nil
	}

	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decoding list: %w", err)
		}
		return items, nil
	case '{':
		var envelope struct {
			Results []T `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decoding list envelope: %w", err)
		}
		if envelope.Results == nil {
			return []T{}, nil
		}
		return envelope.Results, nil
	default:
		return []T{}, nil
	}
}
