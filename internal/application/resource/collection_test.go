package resource

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noman2111ni/Retail-Managment-System/internal/domain/retail"
)

func TestErase(t *testing.T) {
	e := newEnv(t)
	c := Erase(branchSlice(e))
	ctx := context.Background()

	assert.Equal(t, "branches", c.Name())
	assert.False(t, c.ReadOnly())

	created, err := c.Create(ctx, json.RawMessage(`{"name": "Main"}`))
	require.NoError(t, err)
	b, ok := created.(retail.Branch)
	require.True(t, ok)

	_, err = c.Update(ctx, b.ID, json.RawMessage(`{"location": "Karachi"}`))
	require.NoError(t, err)

	got, err := c.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Karachi", got.(retail.Branch).Location)

	v := c.View()
	assert.Equal(t, "branches", v.Resource)
	assert.Equal(t, 1, v.Count)
	assert.Len(t, v.Data, 1)

	require.NoError(t, c.Delete(ctx, b.ID))
	items, err := c.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	c.Clear()
	assert.Equal(t, 0, c.View().Count)
}
