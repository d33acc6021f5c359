// Package retail holds the records served by the Retail Management API.
//
// Records mirror the server's JSON representation. The server is the source
// of truth: nothing here enforces relationships between records (a sale may
// reference a product id the client has never seen).
package retail

import "strconv"

// ID is a server-assigned record identifier.
type ID int64

// String returns the decimal form used in item paths.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a decimal record identifier.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(n), nil
}

// Record is implemented by every resource record.
type Record interface {
	RecordID() ID
}

// Base carries the identifier common to all records.
type Base struct {
	ID ID `json:"id"`
}

// RecordID implements Record.
func (b Base) RecordID() ID {
	return b.ID
}
