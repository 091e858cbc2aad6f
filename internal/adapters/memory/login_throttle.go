package memory

import (
	"context"
	"sync"
	"time"
)

type failureWindow struct {
	count     int
	expiresAt time.Time
}

// LoginThrottle is the in-process counterpart of the Redis throttle, for
// development and tests.
type LoginThrottle struct {
	mu       sync.Mutex
	failures map[string]failureWindow
	now      func() time.Time
}

// NewLoginThrottle creates an empty in-memory login throttle.
func NewLoginThrottle() *LoginThrottle {
	return &LoginThrottle{
		failures: make(map[string]failureWindow),
		now:      time.Now,
	}
}

func (t *LoginThrottle) Failures(_ context.Context, username string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.failures[username]
	if !ok || t.now().After(w.expiresAt) {
		delete(t.failures, username)
		return 0, nil
	}
	return w.count, nil
}

func (t *LoginThrottle) RecordFailure(_ context.Context, username string, window time.Duration) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.failures[username]
	if !ok || t.now().After(w.expiresAt) {
		w = failureWindow{expiresAt: t.now().Add(window)}
	}
	w.count++
	t.failures[username] = w
	return w.count, nil
}

func (t *LoginThrottle) Reset(_ context.Context, username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, username)
	return nil
}
