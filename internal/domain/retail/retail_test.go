package retail

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_DecodesServerRepresentation(t *testing.T) {
	body := `{"id": 4, "name": "Rice 5kg", "sku": "RC-5", "price": "12.50", "quantity": 3, "branch": 2, "is_active": true, "unknown": "ignored"}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	assert.Equal(t, ID(4), p.RecordID())
	assert.Equal(t, "Rice 5kg", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, BranchRef{ID: 2}, p.Branch)
	assert.True(t, p.LowStock(5))
	assert.False(t, p.LowStock(3))
}

func TestProduct_DecodesNestedBranch(t *testing.T) {
	body := `[{"id": 1, "name": "Tea", "price": "3.00", "quantity": 1, "branch": {"id": 2, "name": "Main", "location": "Lahore"}},
		{"id": 2, "name": "Rice", "price": "9.00", "quantity": 4, "branch": null}]`

	var items []Product
	require.NoError(t, json.Unmarshal([]byte(body), &items))

	require.Len(t, items, 2)
	assert.Equal(t, BranchRef{ID: 2, Name: "Main"}, items[0].Branch)
	assert.Equal(t, "Main", items[0].Branch.String())
	assert.Equal(t, BranchRef{}, items[1].Branch)
}

func TestBranchRef_Encoding(t *testing.T) {
	raw, err := json.Marshal(BranchRef{ID: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `2`, string(raw))

	raw, err = json.Marshal(BranchRef{ID: 2, Name: "Main"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 2, "name": "Main"}`, string(raw))

	raw, err = json.Marshal(Product{Base: Base{ID: 1}})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "branch")

	var r BranchRef
	assert.Error(t, json.Unmarshal([]byte(`"main"`), &r))
}

func TestUserRef_AcceptsEveryServedShape(t *testing.T) {
	tests := []struct {
		name string
		body string
		want UserRef
		str  string
	}{
		{"object", `{"id": 1, "username": "admin", "email": "a@example.com"}`, UserRef{ID: 1, Username: "admin"}, "admin"},
		{"username", `"admin"`, UserRef{Username: "admin"}, "admin"},
		{"id", `5`, UserRef{ID: 5}, "5"},
		{"null", `null`, UserRef{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r UserRef
			require.NoError(t, json.Unmarshal([]byte(tt.body), &r))
			assert.Equal(t, tt.want, r)
			assert.Equal(t, tt.str, r.String())
		})
	}
}

func TestAuditLog_DecodesNestedUser(t *testing.T) {
	body := `[{"id": 1, "action": "create", "model_name": "Product", "object_id": "4", "user": {"id": 1, "username": "admin"}, "timestamp": "2025-10-01T08:30:00Z"}]`

	var logs []AuditLog
	require.NoError(t, json.Unmarshal([]byte(body), &logs))

	require.Len(t, logs, 1)
	assert.Equal(t, "admin", logs[0].User.Username)

	raw, err := json.Marshal(logs[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"user":{"id":1,"username":"admin"}`)
}

func TestLedgerEntry_CreatedBy(t *testing.T) {
	var e LedgerEntry
	require.NoError(t, json.Unmarshal([]byte(`{"id": 3, "transaction_type": "sale", "amount": "10.00", "balance": "10.00", "created_by": "cashier"}`), &e))

	assert.Equal(t, "cashier", e.CreatedBy.String())
}

func TestProduct_EncodesIDAtTopLevel(t *testing.T) {
	p := Product{Base: Base{ID: 9}, Name: "Tea"}

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.EqualValues(t, 9, m["id"])
	assert.NotContains(t, m, "created_at")
}

func TestStockMovement_TimestampFallback(t *testing.T) {
	var m StockMovement
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "product": 3, "movement_type": "OUT", "quantity": 2, "timestamp": "2025-10-01T08:30:00Z"}`), &m))

	assert.Equal(t, ID(1), m.ID)
	assert.Equal(t, MovementOut, m.MovementType)
	assert.Equal(t, time.Date(2025, 10, 1, 8, 30, 0, 0, time.UTC), m.CreatedAt.UTC())
}

func TestStockMovement_PrefersCreatedAt(t *testing.T) {
	var m StockMovement
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "created_at": "2025-10-02T00:00:00Z", "timestamp": "2025-10-01T00:00:00Z"}`), &m))

	assert.Equal(t, 2, m.CreatedAt.UTC().Day())
}

func TestSale_Totals(t *testing.T) {
	s := Sale{
		TotalAmount: decimal.RequireFromString("100"),
		PaidAmount:  decimal.RequireFromString("60"),
		Items: []SaleItem{
			{Quantity: 3, UnitPrice: decimal.RequireFromString("2.50")},
		},
	}

	assert.True(t, s.Outstanding().Equal(decimal.NewFromInt(40)))
	assert.True(t, s.Items[0].LineTotal().Equal(decimal.RequireFromString("7.5")))

	s.PaidAmount = decimal.NewFromInt(120)
	assert.True(t, s.Outstanding().IsZero())
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, ID(42), id)
	assert.Equal(t, "42", id.String())

	_, err = ParseID("abc")
	assert.Error(t, err)
}
