// Package repository provides the in-memory session store.
package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kinetiq/gaitway/internal/domain/session"
	"github.com/kinetiq/gaitway/internal/domain/token"
	"github.com/kinetiq/gaitway/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultTTL           = time.Hour
	defaultMaxSessions   = 10_000
	defaultSweepInterval = time.Minute
)

// MemStore implements session.Store with a mutex-guarded map and periodic
// idle-TTL eviction.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]session.Session

	ttl           time.Duration
	maxSessions   int
	sweepInterval time.Duration

	stopCh chan struct{}
	done   chan struct{}
}

// NewMemStore creates a session store with configuration options and starts
// its eviction sweep.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		sessions:      make(map[string]session.Session),
		ttl:           defaultTTL,
		maxSessions:   defaultMaxSessions,
		sweepInterval: defaultSweepInterval,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.sweepLoop()
	return s
}

// Create mints a new session for an upstream token.
func (s *MemStore) Create(_ context.Context, bearer string, claims token.Claims) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.maxSessions {
		return session.Session{}, ErrStoreFull
	}

	now := time.Now()
	sess := session.Session{
		ID:        uuid.NewString(),
		Token:     bearer,
		Claims:    claims,
		CreatedAt: now,
		LastSeen:  now,
	}
	s.sessions[sess.ID] = sess
	metrics.RecordSessionCreated()
	metrics.UpdateActiveSessions(len(s.sessions))
	return sess, nil
}

// Get returns the session for id and refreshes its idle timer.
func (s *MemStore) Get(_ context.Context, id string) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return session.Session{}, ErrNotFound
	}
	if time.Since(sess.LastSeen) > s.ttl {
		delete(s.sessions, id)
		metrics.RecordSessionRevoked()
		metrics.UpdateActiveSessions(len(s.sessions))
		return session.Session{}, ErrNotFound
	}
	sess.LastSeen = time.Now()
	s.sessions[id] = sess
	return sess, nil
}

// Revoke destroys the session for id.
func (s *MemStore) Revoke(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; ok {
		delete(s.sessions, id)
		metrics.RecordSessionRevoked()
		metrics.UpdateActiveSessions(len(s.sessions))
	}
}

// Count returns the number of live sessions.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the eviction sweep.
func (s *MemStore) Close() error {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	<-s.done
	return nil
}

func (s *MemStore) sweepLoop() {
	defer close(s.done)
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		for i := 0; i < removed; i++ {
			metrics.RecordSessionRevoked()
		}
		metrics.UpdateActiveSessions(len(s.sessions))
	}
}
