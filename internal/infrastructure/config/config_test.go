package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "retailctl", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "https://retailm.pythonanywhere.com/api/", cfg.API.BaseURL)
		assert.Equal(t, 30*time.Second, cfg.API.Timeout)
		assert.True(t, cfg.API.TrailingSlash)
		assert.Equal(t, "token/", cfg.Auth.LoginPath)
		assert.Equal(t, "token/refresh/", cfg.Auth.RefreshPath)
		assert.Equal(t, "products/", cfg.Resources.Products)
		assert.Equal(t, "ledger-entries/", cfg.Resources.LedgerEntries)
		assert.Equal(t, "stock-movements/", cfg.Resources.StockMovements)
		assert.Equal(t, "sqlite", cfg.Session.Backend)
		assert.Equal(t, "retailctl:session:", cfg.Session.RedisKeyPrefix)
		assert.Equal(t, ":8090", cfg.HTTP.Addr)
		assert.Equal(t, 45*time.Second, cfg.HTTP.WriteTimeout)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)
		assert.Equal(t, 5.0, cfg.Seed.QPS)
	})

	t.Run("loads values from environment variables with RETAIL prefix", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("RETAIL_API_BASE_URL", "http://localhost:8000/api")
		t.Setenv("RETAIL_API_TIMEOUT", "5s")
		t.Setenv("RETAIL_API_TRAILING_SLASH", "false")
		t.Setenv("RETAIL_SESSION_BACKEND", "memory")
		t.Setenv("RETAIL_LOG_LEVEL", "debug")
		t.Setenv("RETAIL_METRICS_ENABLED", "false")

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:8000/api/", cfg.API.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.API.Timeout)
		assert.False(t, cfg.API.TrailingSlash)
		assert.Equal(t, "memory", cfg.Session.Backend)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.False(t, cfg.Metrics.Enabled)
	})

	t.Run("reads an explicit TOML file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "custom.toml")
		content := `
[api]
base_url = "http://pos.local/api/"

[resources]
products = "catalog/products/"

[session]
backend = "redis"
redis_addr = "cache:6379"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "http://pos.local/api/", cfg.API.BaseURL)
		assert.Equal(t, "catalog/products/", cfg.Resources.Products)
		assert.Equal(t, "branches/", cfg.Resources.Branches)
		assert.Equal(t, "redis", cfg.Session.Backend)
		assert.Equal(t, "cache:6379", cfg.Session.RedisAddr)
	})

	t.Run("rejects unknown session backend", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("RETAIL_SESSION_BACKEND", "etcd")

		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("production requires https", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("RETAIL_APP_ENV", "production")
		t.Setenv("RETAIL_API_BASE_URL", "http://insecure.example.com/api/")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "https")
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})
}
