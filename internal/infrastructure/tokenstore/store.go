// Package tokenstore persists the client session (the credential pair and
// the current user) as a small key-value set, so a session survives
// process restarts.
package tokenstore

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/config"
)

// Store is a durable key-value store for session values.
type Store interface {
	// Get returns the value for key; ok is false when nothing is stored.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Backend names accepted in session.backend.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Open creates the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.SessionConfig, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	switch strings.ToLower(cfg.Backend) {
	case BackendSQLite, "":
		return NewSQLStore(cfg.Path, log)
	case BackendRedis:
		return NewRedisStore(ctx, cfg)
	case BackendMemory:
		log.Warn("Using in-memory session store; the session is lost on exit")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
