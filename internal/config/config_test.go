package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/talentops/pulsemark/internal/errors"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8090", cfg.Addr)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, 10, cfg.ShareCreatePerMinute)
	assert.Positive(t, cfg.CacheTTL())
	assert.Positive(t, cfg.ShareTokenTTL())
}

func TestLoadDefaultsWithoutOverrides(t *testing.T) {
	t.Setenv("PULSEMARK_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, New().Addr, cfg.Addr)
	assert.Equal(t, New().Engine.KRACap, cfg.Engine.KRACap)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pulsemark.yaml")
	yaml := []byte("addr: \":7000\"\nlog_level: debug\nengine:\n  kra_cap: 2.0\n")
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("PULSEMARK_CONFIG", path)
	t.Setenv("PULSEMARK_ADDR", ":7100")

	cfg, err := Load()
	require.NoError(t, err)

	// Env wins over file, file wins over defaults.
	assert.Equal(t, ":7100", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2.0, cfg.Engine.KRACap)
}

func TestLoadRejectsInvalidEngineTuning(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pulsemark.yaml")
	yaml := []byte("engine:\n  tier_cuts:\n    developing: 90\n")
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("PULSEMARK_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
	assert.True(t, apperrors.IsConfig(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"zero rate limit", func(c *Config) { c.RateLimitPerMinute = 0 }},
		{"zero share create limit", func(c *Config) { c.ShareCreatePerMinute = 0 }},
		{"negative cache ttl", func(c *Config) { c.CacheTTLSeconds = -1 }},
		{"empty share secret", func(c *Config) { c.ShareTokenSecret = "" }},
		{"zero share ttl", func(c *Config) { c.ShareTokenTTLMinutes = 0 }},
		{"broken engine tuning", func(c *Config) { c.Engine.KRACap = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.IsConfig(err))
		})
	}
}
