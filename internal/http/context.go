package httpx

import (
	"context"

	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across
// packages. Centralized here so middleware and handlers share the same key.
type sessionKey struct{}

// SetSessionInContext returns a child context carrying the given session.
func SetSessionInContext(ctx context.Context, sess domainauth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFromContext returns the authenticated session for the request and a
// boolean indicating presence. Handlers mounted behind RequireAuth can rely
// on presence.
func SessionFromContext(ctx context.Context) (domainauth.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(domainauth.Session)
	return sess, ok
}
