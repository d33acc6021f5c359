package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all client configuration
type Config struct {
	App       AppConfig
	API       APIConfig
	Auth      AuthConfig
	Resources ResourcesConfig
	Session   SessionConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Metrics   MetricsConfig
	Seed      SeedConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string `validate:"required"`
	Env  string `validate:"oneof=development testing production"`
}

// APIConfig describes the remote Retail Management API
type APIConfig struct {
	BaseURL       string        `validate:"required,url"`
	Timeout       time.Duration `validate:"gt=0"`
	UserAgent     string
	TrailingSlash bool // item paths end in "/" (Django REST style)
	TLSSkipVerify bool
}

// AuthConfig holds the authentication endpoint paths, relative to API.BaseURL
type AuthConfig struct {
	LoginPath       string `validate:"required"`
	RefreshPath     string `validate:"required"`
	RegisterPath    string `validate:"required"`
	CurrentUserPath string
}

// ResourcesConfig holds the collection path of every resource
type ResourcesConfig struct {
	Products       string `validate:"required"`
	Branches       string `validate:"required"`
	Vendors        string `validate:"required"`
	Sales          string `validate:"required"`
	Purchases      string `validate:"required"`
	LedgerEntries  string `validate:"required"`
	StockMovements string `validate:"required"`
	AuditLogs      string `validate:"required"`
}

// SessionConfig selects where the credential pair is persisted
type SessionConfig struct {
	Backend        string `validate:"oneof=sqlite redis memory"`
	Path           string // sqlite file
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds the dashboard gateway server configuration
type HTTPConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// MetricsConfig controls the Prometheus endpoint of the gateway
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// SeedConfig bounds the demo data generator
type SeedConfig struct {
	QPS   float64 `validate:"gt=0"`
	Burst int     `validate:"gte=1"`
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with RETAIL_ prefix (e.g., RETAIL_API_BASE_URL)
// 2. retailctl.toml (or the file given by path)
// 3. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("retailctl")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.retailctl")
		v.AddConfigPath("/etc/retailctl")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("RETAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		API: APIConfig{
			BaseURL:       v.GetString("api.base_url"),
			Timeout:       v.GetDuration("api.timeout"),
			UserAgent:     v.GetString("api.user_agent"),
			TrailingSlash: !v.IsSet("api.trailing_slash") || v.GetBool("api.trailing_slash"),
			TLSSkipVerify: v.GetBool("api.tls_skip_verify"),
		},
		Auth: AuthConfig{
			LoginPath:       v.GetString("auth.login_path"),
			RefreshPath:     v.GetString("auth.refresh_path"),
			RegisterPath:    v.GetString("auth.register_path"),
			CurrentUserPath: v.GetString("auth.current_user_path"),
		},
		Resources: ResourcesConfig{
			Products:       v.GetString("resources.products"),
			Branches:       v.GetString("resources.branches"),
			Vendors:        v.GetString("resources.vendors"),
			Sales:          v.GetString("resources.sales"),
			Purchases:      v.GetString("resources.purchases"),
			LedgerEntries:  v.GetString("resources.ledger_entries"),
			StockMovements: v.GetString("resources.stock_movements"),
			AuditLogs:      v.GetString("resources.audit_logs"),
		},
		Session: SessionConfig{
			Backend:        v.GetString("session.backend"),
			Path:           v.GetString("session.path"),
			RedisAddr:      v.GetString("session.redis_addr"),
			RedisPassword:  v.GetString("session.redis_password"),
			RedisDB:        v.GetInt("session.redis_db"),
			RedisKeyPrefix: v.GetString("session.redis_key_prefix"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			Addr:         v.GetString("http.addr"),
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
		},
		Metrics: MetricsConfig{
			Enabled: !v.IsSet("metrics.enabled") || v.GetBool("metrics.enabled"),
			Path:    v.GetString("metrics.path"),
		},
		Seed: SeedConfig{
			QPS:   v.GetFloat64("seed.qps"),
			Burst: v.GetInt("seed.burst"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "retailctl"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://retailm.pythonanywhere.com/api/"
	}
	if !strings.HasSuffix(cfg.API.BaseURL, "/") {
		cfg.API.BaseURL += "/"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = "retailctl/1.0"
	}
	if cfg.Auth.LoginPath == "" {
		cfg.Auth.LoginPath = "token/"
	}
	if cfg.Auth.RefreshPath == "" {
		cfg.Auth.RefreshPath = "token/refresh/"
	}
	if cfg.Auth.RegisterPath == "" {
		cfg.Auth.RegisterPath = "register/"
	}
	if cfg.Auth.CurrentUserPath == "" {
		cfg.Auth.CurrentUserPath = "../admin/api/customuser/?role__exact=admin"
	}

	r := &cfg.Resources
	for _, d := range []struct {
		field *string
		value string
	}{
		{&r.Products, "products/"},
		{&r.Branches, "branches/"},
		{&r.Vendors, "vendors/"},
		{&r.Sales, "sales/"},
		{&r.Purchases, "purchases/"},
		{&r.LedgerEntries, "ledger-entries/"},
		{&r.StockMovements, "stock-movements/"},
		{&r.AuditLogs, "audit-logs/"},
	} {
		if *d.field == "" {
			*d.field = d.value
		}
	}

	if cfg.Session.Backend == "" {
		cfg.Session.Backend = "sqlite"
	}
	if cfg.Session.Path == "" {
		cfg.Session.Path = filepath.Join(".retailctl", "session.db")
	}
	if cfg.Session.RedisAddr == "" {
		cfg.Session.RedisAddr = "localhost:6379"
	}
	if cfg.Session.RedisKeyPrefix == "" {
		cfg.Session.RedisKeyPrefix = "retailctl:session:"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8090"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// Must outlast API.Timeout so a slow upstream call can still answer.
		cfg.HTTP.WriteTimeout = cfg.API.Timeout + 15*time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Seed.QPS == 0 {
		cfg.Seed.QPS = 5
	}
	if cfg.Seed.Burst == 0 {
		cfg.Seed.Burst = 1
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}

	if c.App.Env == "production" {
		if u.Scheme != "https" {
			return fmt.Errorf("api.base_url must use https in production")
		}
		if c.API.TLSSkipVerify {
			return fmt.Errorf("api.tls_skip_verify cannot be enabled in production")
		}
		if c.Session.Backend == "memory" {
			return fmt.Errorf("session.backend=memory loses the session on exit and is not allowed in production")
		}
	}

	return nil
}
