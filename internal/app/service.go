// Package service provides the core gateway service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/kinetiq/gaitway/internal/adapters/backend"
	"github.com/kinetiq/gaitway/internal/adapters/cache"
	refreshqueue "github.com/kinetiq/gaitway/internal/adapters/mq/queue"
	workerpool "github.com/kinetiq/gaitway/internal/adapters/mq/worker"
	repository "github.com/kinetiq/gaitway/internal/adapters/repository"
	"github.com/kinetiq/gaitway/internal/domain/session"
	"github.com/kinetiq/gaitway/pkg/logger"
	"github.com/kinetiq/gaitway/pkg/metrics"
)

// Service implements the API dependencies for the gateway.
type Service struct {
	mu sync.RWMutex

	// Core components
	sessions  session.Store
	backend   *backend.Client
	snapshots *cache.Snapshots
	refresh   refreshqueue.Queue
	pool      *workerpool.Pool

	// Configuration
	backendBaseURL string
	backendTimeout time.Duration
	sessionTTL     time.Duration
	sessionMax     int
	queueSize      int
	workerCount    int
	redisAddr      string
	redisPassword  string
	cacheTTL       time.Duration

	// now is the clock used for trend anchoring and calendar math.
	now func() time.Time

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBackend sets the clinical backend base URL and per-request timeout.
func WithBackend(baseURL string, timeout time.Duration) Option {
	return func(s *Service) {
		if baseURL != "" {
			s.backendBaseURL = baseURL
		}
		if timeout > 0 {
			s.backendTimeout = timeout
		}
	}
}

// WithSessionTTL sets the session idle TTL.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithSessionLimit bounds the number of concurrent sessions.
func WithSessionLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sessionMax = n
		}
	}
}

// WithQueueSize sets the capacity of the snapshot refresh queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of refresh worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithCache points the snapshot cache at a redis instance. An empty addr
// leaves caching disabled.
func WithCache(addr, password string, ttl time.Duration) Option {
	return func(s *Service) {
		s.redisAddr = addr
		s.redisPassword = password
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithClock overrides the service clock. Used by tests to pin "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		backendBaseURL: "http://localhost:8000",
		backendTimeout: 30 * time.Second,
		sessionTTL:     time.Hour,
		sessionMax:     10_000,
		queueSize:      1024,
		workerCount:    runtime.NumCPU() * 2,
		cacheTTL:       5 * time.Minute,
		now:            time.Now,
		stopCh:         make(chan struct{}),
		logger:         nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting gateway service...")

	// Initialize components
	s.sessions = repository.NewMemStore(
		repository.WithTTL(s.sessionTTL),
		repository.WithMaxSessions(s.sessionMax),
	)
	s.backend = backend.New(s.backendBaseURL, s.backendTimeout, s.logger.Named("backend"))
	s.snapshots = cache.New(s.redisAddr, s.redisPassword, s.cacheTTL, s.logger.Named("cache"))
	s.refresh = refreshqueue.NewInMemoryQueue(
		refreshqueue.WithCapacity(s.queueSize),
	)
	metrics.UpdateRefreshQueueCapacity(s.queueSize)

	// Create and start the refresh worker pool. Workers fetch dashboards
	// with the job's bearer token and warm the snapshot cache.
	s.pool = workerpool.NewPool(s.workerCount, s.refresh, s.backend, s.snapshots)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "gateway service started",
		logger.String("backend", s.backendBaseURL),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("cache", s.snapshots.Enabled()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping gateway service...")

	// Stop worker pool
	if s.pool != nil {
		s.pool.Stop()
	}

	// Close refresh queue
	if q, ok := s.refresh.(*refreshqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	// Close session store
	if closer, ok := s.sessions.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	// Close snapshot cache
	if s.snapshots != nil {
		_ = s.snapshots.Close()
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "gateway service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"sessionMax":  s.sessionMax,
	}

	if s.started {
		queueLen := s.refresh.Len(ctx)
		liveSessions := s.sessions.Count(ctx)

		stats["queueLength"] = queueLen
		stats["activeSessions"] = liveSessions
		stats["cacheEnabled"] = s.snapshots.Enabled()

		// Update metrics
		metrics.UpdateRefreshQueueSize(queueLen)
		metrics.UpdateActiveSessions(liveSessions)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}
