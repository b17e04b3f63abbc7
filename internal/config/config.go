// Package config defines gateway configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file and env vars.
// - External errors are wrapped via this package's error helpers.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// BackendBaseURL is the clinical backend the gateway fronts. Resolved
	// once at startup; there is no per-request host switching.
	BackendBaseURL string `koanf:"backend_base_url"`

	// BackendTimeoutSec bounds a single upstream round trip.
	BackendTimeoutSec int `koanf:"backend_timeout_sec"`

	// SessionTTLMin is the idle time after which a session is evicted.
	SessionTTLMin int `koanf:"session_ttl_min"`

	// SessionMax bounds the number of concurrent sessions.
	SessionMax int `koanf:"session_max"`

	// RefreshQueueSize bounds the snapshot refresh queue.
	RefreshQueueSize int `koanf:"refresh_queue_size"`

	// RefreshWorkerCount sets the number of snapshot refresh workers.
	RefreshWorkerCount int `koanf:"refresh_worker_count"`

	// RedisAddr enables the snapshot cache when non-empty, e.g. "localhost:6379".
	RedisAddr string `koanf:"redis_addr"`

	// RedisPassword is the optional redis auth password.
	RedisPassword string `koanf:"redis_password"`

	// CacheTTLSec is the snapshot cache entry lifetime.
	CacheTTLSec int `koanf:"cache_ttl_sec"`

	// MaxUploadBytes caps gait CSV upload size.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":8090",
		BackendBaseURL:     "http://localhost:8000",
		BackendTimeoutSec:  30,
		SessionTTLMin:      60,
		SessionMax:         10_000,
		RefreshQueueSize:   1024,
		RefreshWorkerCount: runtime.NumCPU() * 2,
		RedisAddr:          "",
		CacheTTLSec:        300,
		MaxUploadBytes:     5 << 20,
	}
}

// BackendTimeout returns the upstream timeout as a duration.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSec) * time.Second
}

// SessionTTL returns the session idle TTL as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

// CacheTTL returns the snapshot cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}
