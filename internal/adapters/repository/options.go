package repository

import "time"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithTTL sets the session idle TTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *MemStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxSessions bounds the number of concurrent sessions.
func WithMaxSessions(n int) Option {
	return func(s *MemStore) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithSweepInterval sets how often expired sessions are evicted.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *MemStore) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}
