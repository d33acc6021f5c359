// Package auth holds the client session and the authenticated request
// wrapper that recovers from an expired access token by refreshing once.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noman2111ni/Retail-Managment-System/internal/domain/retail"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/tokenstore"
)

// Keys under which the session is persisted.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// Credentials is the access/refresh token pair.
type Credentials struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Empty reports whether no access token is held.
func (c Credentials) Empty() bool {
	return c.Access == ""
}

// Session is the single holder of the credential pair and the logged-in
// user. Every write goes to the durable store before it becomes visible.
type Session struct {
	mu    sync.RWMutex
	creds Credentials
	user  *retail.User
	store tokenstore.Store
	log   *zap.Logger
}

// NewSession creates an empty session backed by store.
func NewSession(store tokenstore.Store, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{store: store, log: log.Named("session")}
}

// Restore loads a previously persisted session.
func (s *Session) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	access, _, err := s.store.Get(ctx, KeyAccessToken)
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	refresh, _, err := s.store.Get(ctx, KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	s.creds = Credentials{Access: access, Refresh: refresh}

	s.user = nil
	raw, ok, err := s.store.Get(ctx, KeyUser)
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	if ok && raw != "" {
		var u retail.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			s.log.Warn("Ignoring unreadable stored user", zap.Error(err))
		} else {
			s.user = &u
		}
	}
	return nil
}

// SetTokens replaces both tokens for a new login. The previous user is
// dropped; it belongs to whoever held the old tokens.
func (s *Session) SetTokens(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, KeyUser); err != nil {
		return fmt.Errorf("dropping previous user: %w", err)
	}
	s.user = nil
	return s.setLocked(ctx, Credentials{Access: access, Refresh: refresh})
}

func (s *Session) setLocked(ctx context.Context, creds Credentials) error {
	if err := s.store.Set(ctx, KeyAccessToken, creds.Access); err != nil {
		return err
	}
	if err := s.store.Set(ctx, KeyRefreshToken, creds.Refresh); err != nil {
		return err
	}
	s.creds = creds
	return nil
}

// SwapAccess installs a refreshed access token only if the session still
// holds old. An empty refresh keeps the current refresh token. It reports
// whether the swap happened.
func (s *Session) SwapAccess(ctx context.Context, old, access, refresh string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.creds.Access != old {
		return false, nil
	}
	next := Credentials{Access: access, Refresh: s.creds.Refresh}
	if refresh != "" {
		next.Refresh = refresh
	}
	if err := s.setLocked(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// Clear drops the tokens and the user from memory and storage.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(ctx)
}

// clearIfRefresh clears the session only while it still holds refresh, so a
// rejected refresh never wipes a newer login.
func (s *Session) clearIfRefresh(ctx context.Context, refresh string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds.Refresh != refresh {
		return false, nil
	}
	return true, s.clearLocked(ctx)
}

func (s *Session) clearLocked(ctx context.Context) error {
	s.creds = Credentials{}
	s.user = nil
	if err := s.store.Delete(ctx, KeyAccessToken, KeyRefreshToken, KeyUser); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Current returns the present token pair; both may be empty.
func (s *Session) Current() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// SetUser records the logged-in user.
func (s *Session) SetUser(ctx context.Context, u retail.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(ctx, KeyUser, string(raw)); err != nil {
		return err
	}
	s.user = &u
	return nil
}

// User returns the logged-in user, if known.
func (s *Session) User() (retail.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return retail.User{}, false
	}
	return *s.user, true
}
