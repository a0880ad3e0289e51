// Package config layers service configuration from defaults, an optional
// YAML file, and PULSEMARK_-prefixed environment variables.
package config

import (
	"time"

	"github.com/talentops/pulsemark/internal/appraisal"
	apperrors "github.com/talentops/pulsemark/internal/errors"
)

// Config is the full process configuration, including the engine tuning.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// DatabasePath is the SQLite file backing the share audit log.
	DatabasePath string `koanf:"database_path"`

	// RedisAddr enables Redis-backed rate limiting when non-empty. When
	// empty or unreachable the limiter falls back to in-process buckets.
	RedisAddr string `koanf:"redis_addr"`

	// RateLimitPerMinute caps requests per client per minute.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`

	// ShareCreatePerMinute caps share-link creation per client per minute,
	// tighter than the global request limit.
	ShareCreatePerMinute int `koanf:"share_create_per_minute"`

	// CacheTTLSeconds bounds how long a computed recommendation may be
	// served from cache before recomputation.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// ShareTokenSecret signs share-link tokens. Must be overridden in
	// any real deployment.
	ShareTokenSecret string `koanf:"share_token_secret"`

	// ShareTokenTTLMinutes bounds how long a share link stays valid.
	ShareTokenTTLMinutes int `koanf:"share_token_ttl_minutes"`

	// Engine is the scoring and rule-engine tuning.
	Engine appraisal.Config `koanf:"engine"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":8090",
		DatabasePath:         "./data/pulsemark.db",
		RedisAddr:            "",
		RateLimitPerMinute:   120,
		ShareCreatePerMinute: 10,
		CacheTTLSeconds:      30,
		ShareTokenSecret:     "dev-only-secret",
		ShareTokenTTLMinutes: 60 * 24 * 7,
		Engine:               appraisal.DefaultConfig(),
	}
}

// CacheTTL returns the recommendation cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// ShareTokenTTL returns the share-token lifetime as a duration.
func (c *Config) ShareTokenTTL() time.Duration {
	return time.Duration(c.ShareTokenTTLMinutes) * time.Minute
}

// Validate checks the service settings and delegates engine tuning to the
// engine's own validator.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return apperrors.NewConfigError("addr", "listen address must not be empty")
	}
	if c.RateLimitPerMinute <= 0 {
		return apperrors.NewConfigError("rate_limit_per_minute", "must be positive")
	}
	if c.ShareCreatePerMinute <= 0 {
		return apperrors.NewConfigError("share_create_per_minute", "must be positive")
	}
	if c.CacheTTLSeconds < 0 {
		return apperrors.NewConfigError("cache_ttl_seconds", "must not be negative")
	}
	if c.ShareTokenSecret == "" {
		return apperrors.NewConfigError("share_token_secret", "must not be empty")
	}
	if c.ShareTokenTTLMinutes <= 0 {
		return apperrors.NewConfigError("share_token_ttl_minutes", "must be positive")
	}
	return c.Engine.Validate()
}
