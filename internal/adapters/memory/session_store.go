package memory

// Package memory provides an in-process session store for development and
// tests, where standing up Redis would be overkill.

import (
	"context"
	"sync"
	"time"

	redisadapter "github.com/enerdesk/backoffice/internal/adapters/redis"
	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
)

type entry struct {
	sess      domainauth.Session
	expiresAt time.Time
}

// SessionStore keeps sessions in a map guarded by a mutex. Expired entries
// are rejected on read and reaped by Sweep.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]entry
	now      func() time.Time
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]entry),
		now:      time.Now,
	}
}

func (s *SessionStore) Save(_ context.Context, sess domainauth.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = entry{sess: sess, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || s.now().After(e.expiresAt) {
		delete(s.sessions, id)
		return domainauth.Session{}, redisadapter.ErrNotFound
	}
	return e.sess, nil
}

func (s *SessionStore) Touch(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || s.now().After(e.expiresAt) {
		delete(s.sessions, id)
		return redisadapter.ErrNotFound
	}
	e.expiresAt = s.now().Add(ttl)
	s.sessions[id] = e
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Sweep drops every expired session and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper reaps expired sessions on the given interval until ctx is done.
func (s *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
