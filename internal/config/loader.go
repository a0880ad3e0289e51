package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New)
//  2. YAML file named by PULSEMARK_CONFIG, if set
//  3. environment variables with prefix PULSEMARK_
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("PULSEMARK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// PULSEMARK_ADDR -> addr, PULSEMARK_RATE_LIMIT_PER_MINUTE ->
	// rate_limit_per_minute. Underscores are preserved to match the
	// koanf tags; nested engine tuning comes from the YAML file.
	envProvider := env.Provider("PULSEMARK_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "pulsemark_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
