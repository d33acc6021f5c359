package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noman2111ni/Retail-Managment-System/internal/domain/retail"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/tokenstore"
)

func TestSession_SetTokensPersists(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	s := NewSession(store, nil)

	assert.True(t, s.Current().Empty())

	require.NoError(t, s.SetTokens(ctx, "a1", "r1"))
	assert.Equal(t, Credentials{Access: "a1", Refresh: "r1"}, s.Current())

	v, ok, err := store.Get(ctx, KeyRefreshToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "r1", v)
}

func TestSession_RestoreFromStore(t *testing.T) {
	ctx := context.Background()
	store, err := tokenstore.NewSQLStore(":memory:", zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	first := NewSession(store, nil)
	require.NoError(t, first.SetTokens(ctx, "a1", "r1"))
	require.NoError(t, first.SetUser(ctx, retail.User{Base: retail.Base{ID: 3}, Username: "noman", Role: "admin"}))

	second := NewSession(store, nil)
	require.NoError(t, second.Restore(ctx))

	assert.Equal(t, Credentials{Access: "a1", Refresh: "r1"}, second.Current())
	u, ok := second.User()
	require.True(t, ok)
	assert.Equal(t, "noman", u.Username)
	assert.Equal(t, retail.ID(3), u.ID)
}

func TestSession_RestoreIgnoresUnreadableUser(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, KeyAccessToken, "a1"))
	require.NoError(t, store.Set(ctx, KeyUser, "{not json"))

	s := NewSession(store, nil)
	require.NoError(t, s.Restore(ctx))

	assert.Equal(t, "a1", s.Current().Access)
	_, ok := s.User()
	assert.False(t, ok)
}

func TestSession_Clear(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	s := NewSession(store, nil)
	require.NoError(t, s.SetTokens(ctx, "a1", "r1"))
	require.NoError(t, s.SetUser(ctx, retail.User{Username: "noman"}))

	require.NoError(t, s.Clear(ctx))

	assert.True(t, s.Current().Empty())
	_, ok := s.User()
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestSession_SetTokensDropsUserButRefreshKeepsIt(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	s := NewSession(store, nil)
	require.NoError(t, s.SetTokens(ctx, "a1", "r1"))
	require.NoError(t, s.SetUser(ctx, retail.User{Username: "noman"}))

	swapped, err := s.SwapAccess(ctx, "a1", "a2", "")
	require.NoError(t, err)
	require.True(t, swapped)
	_, ok := s.User()
	assert.True(t, ok)

	require.NoError(t, s.SetTokens(ctx, "b1", "rb1"))
	_, ok = s.User()
	assert.False(t, ok)
	_, stored, err := store.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.False(t, stored)
}

func TestSession_SwapAccess(t *testing.T) {
	ctx := context.Background()
	s := NewSession(tokenstore.NewMemoryStore(), nil)
	require.NoError(t, s.SetTokens(ctx, "a1", "r1"))

	swapped, err := s.SwapAccess(ctx, "a0", "a9", "")
	require.NoError(t, err)
	assert.False(t, swapped)
	assert.Equal(t, "a1", s.Current().Access)

	swapped, err = s.SwapAccess(ctx, "a1", "a2", "")
	require.NoError(t, err)
	assert.True(t, swapped)
	assert.Equal(t, Credentials{Access: "a2", Refresh: "r1"}, s.Current())

	swapped, err = s.SwapAccess(ctx, "a2", "a3", "r2")
	require.NoError(t, err)
	assert.True(t, swapped)
	assert.Equal(t, Credentials{Access: "a3", Refresh: "r2"}, s.Current())
}

func TestSession_ClearIfRefreshKeepsNewerLogin(t *testing.T) {
	ctx := context.Background()
	s := NewSession(tokenstore.NewMemoryStore(), nil)
	require.NoError(t, s.SetTokens(ctx, "a5", "r5"))

	cleared, err := s.clearIfRefresh(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, cleared)
	assert.Equal(t, "a5", s.Current().Access)

	cleared, err = s.clearIfRefresh(ctx, "r5")
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.True(t, s.Current().Empty())
}
