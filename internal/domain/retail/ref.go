package retail

import (
	"bytes"
	"encoding/json"
	"fmt"
)

var jsonNull = []byte("null")

// BranchRef points at a branch. The API serves it either as a bare id or
// as a nested {"id", "name"} object.
type BranchRef struct {
	ID   ID
	Name string
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *BranchRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		*r = BranchRef{}
		return nil
	}
	if data[0] == '{' {
		var obj struct {
			ID   ID     `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*r = BranchRef{ID: obj.ID, Name: obj.Name}
		return nil
	}
	id, err := decodeID(data)
	if err != nil {
		return fmt.Errorf("branch reference: %w", err)
	}
	*r = BranchRef{ID: id}
	return nil
}

// MarshalJSON writes a bare id unless the name is known.
func (r BranchRef) MarshalJSON() ([]byte, error) {
	if r.Name == "" {
		return json.Marshal(r.ID)
	}
	return json.Marshal(struct {
		ID   ID     `json:"id"`
		Name string `json:"name"`
	}{r.ID, r.Name})
}

// String returns the branch name, or its id when the name was not served.
func (r BranchRef) String() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID.String()
}

// UserRef points at a user account. The API serves it as a username, a
// bare id or a nested {"id", "username"} object.
type UserRef struct {
	ID       ID
	Username string
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, jsonNull):
		*r = UserRef{}
	case data[0] == '{':
		var obj struct {
			ID       ID     `json:"id"`
			Username string `json:"username"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*r = UserRef{ID: obj.ID, Username: obj.Username}
	case data[0] == '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*r = UserRef{Username: name}
	default:
		id, err := decodeID(data)
		if err != nil {
			return fmt.Errorf("user reference: %w", err)
		}
		*r = UserRef{ID: id}
	}
	return nil
}

// MarshalJSON writes the narrowest form that keeps what was served.
func (r UserRef) MarshalJSON() ([]byte, error) {
	switch {
	case r.ID == 0:
		return json.Marshal(r.Username)
	case r.Username == "":
		return json.Marshal(r.ID)
	}
	return json.Marshal(struct {
		ID       ID     `json:"id"`
		Username string `json:"username"`
	}{r.ID, r.Username})
}

// String returns the username, or the id when only the id was served.
func (r UserRef) String() string {
	if r.Username != "" || r.ID == 0 {
		return r.Username
	}
	return r.ID.String()
}

func decodeID(data []byte) (ID, error) {
	var id ID
	if err := json.Unmarshal(data, &id); err != nil {
		return 0, err
	}
	return id, nil
}
