package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GAITWAY_CONFIG is set
//  3. env (prefix GAITWAY_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("GAITWAY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: GAITWAY_ADDR, GAITWAY_BACKEND_BASE_URL, ...
	// Keys keep their underscores to match the koanf tags on the struct.
	envProvider := env.Provider("GAITWAY_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "gaitway_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.BackendBaseURL == "" {
		return fmt.Errorf("%w: backend_base_url must not be empty", ErrInvalidConfig)
	}
	if u, err := url.Parse(cfg.BackendBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: backend_base_url must be an absolute URL", ErrInvalidConfig)
	}
	if cfg.BackendTimeoutSec <= 0 {
		return fmt.Errorf("%w: backend_timeout_sec must be positive", ErrInvalidConfig)
	}
	if cfg.SessionTTLMin <= 0 {
		return fmt.Errorf("%w: session_ttl_min must be positive", ErrInvalidConfig)
	}
	return nil
}
