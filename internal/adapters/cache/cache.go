// Package cache provides a redis-backed snapshot cache for upstream payloads.
//
// The cache is strictly an accelerator: every miss or fault degrades to a
// direct backend fetch, and a missing redis address disables it entirely.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/kinetiq/gaitway/pkg/logger"
	"github.com/kinetiq/gaitway/pkg/metrics"
)

const defaultTTL = 5 * time.Minute

// Snapshots caches JSON payloads keyed by patient and view.
type Snapshots struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// New creates a snapshot cache. An empty addr returns a disabled cache whose
// methods are all no-ops.
func New(addr, password string, ttl time.Duration, log logger.Logger) *Snapshots {
	if addr == "" {
		return &Snapshots{logger: log}
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &Snapshots{rdb: rdb, ttl: ttl, logger: log}
}

// Enabled reports whether a redis backend is configured.
func (c *Snapshots) Enabled() bool {
	return c != nil && c.rdb != nil
}

// DashboardKey builds the cache key for a patient's dashboard snapshot.
func DashboardKey(patientID string) string {
	return fmt.Sprintf("gaitway:dashboard:%s", patientID)
}

// MonthlyKey builds the cache key for a patient's monthly records.
func MonthlyKey(patientID, month string) string {
	return fmt.Sprintf("gaitway:monthly:%s:%s", patientID, month)
}

// Get unmarshals the cached payload for key into dest. Returns false on miss
// or fault.
func (c *Snapshots) Get(ctx context.Context, key string, dest any) bool {
	if !c.Enabled() {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			metrics.RecordCacheError()
			c.logger.Warn(ctx, "cache read failed", logger.String("key", key), logger.Error(err))
		} else {
			metrics.RecordCacheMiss()
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.RecordCacheError()
		c.logger.Warn(ctx, "cache payload corrupt", logger.String("key", key), logger.Error(err))
		return false
	}
	metrics.RecordCacheHit()
	return true
}

// Set stores val under key for the cache TTL. Faults are logged and dropped.
func (c *Snapshots) Set(ctx context.Context, key string, val any) {
	if !c.Enabled() {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		metrics.RecordCacheError()
		c.logger.Warn(ctx, "cache marshal failed", logger.String("key", key), logger.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		metrics.RecordCacheError()
		c.logger.Warn(ctx, "cache write failed", logger.String("key", key), logger.Error(err))
	}
}

// Invalidate drops the cached payloads for the given keys.
func (c *Snapshots) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		metrics.RecordCacheError()
		c.logger.Warn(ctx, "cache invalidate failed", logger.Error(err))
	}
}

// Close releases the redis connection.
func (c *Snapshots) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}
