package config_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/kinetiq/gaitway/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8090")
				convey.So(cfg.BackendBaseURL, convey.ShouldEqual, "http://localhost:8000")
				convey.So(cfg.BackendTimeoutSec, convey.ShouldEqual, 30)
				convey.So(cfg.SessionTTLMin, convey.ShouldEqual, 60)
				convey.So(cfg.RefreshWorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GAITWAY_ADDR", ":7070")
			_ = os.Setenv("GAITWAY_BACKEND_BASE_URL", "https://clinical.example.com")
			_ = os.Setenv("GAITWAY_SESSION_TTL_MIN", "15")
			_ = os.Setenv("GAITWAY_REFRESH_QUEUE_SIZE", "64")
			_ = os.Setenv("GAITWAY_REDIS_ADDR", "localhost:6379")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.BackendBaseURL, convey.ShouldEqual, "https://clinical.example.com")
				convey.So(cfg.SessionTTLMin, convey.ShouldEqual, 15)
				convey.So(cfg.RefreshQueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "gaitway.yaml")
			yaml := "addr: \":6060\"\nbackend_base_url: \"http://backend:8000\"\ncache_ttl_sec: 120\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)

			clearConfigEnvVars()
			_ = os.Setenv("GAITWAY_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.BackendBaseURL, convey.ShouldEqual, "http://backend:8000")
				convey.So(cfg.CacheTTLSec, convey.ShouldEqual, 120)
			})
		})

		convey.Convey("When the backend URL is not absolute", func() {
			clearConfigEnvVars()
			_ = os.Setenv("GAITWAY_BACKEND_BASE_URL", "not-a-url")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail with an invalid-config error", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"GAITWAY_CONFIG",
		"GAITWAY_ADDR",
		"GAITWAY_BACKEND_BASE_URL",
		"GAITWAY_BACKEND_TIMEOUT_SEC",
		"GAITWAY_SESSION_TTL_MIN",
		"GAITWAY_SESSION_MAX",
		"GAITWAY_REFRESH_QUEUE_SIZE",
		"GAITWAY_REFRESH_WORKER_COUNT",
		"GAITWAY_REDIS_ADDR",
		"GAITWAY_CACHE_TTL_SEC",
	} {
		_ = os.Unsetenv(key)
	}
}
