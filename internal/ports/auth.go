package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
// It is only consulted when single sign-on is enabled; the local credential
// path never touches it.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// SessionStore persists and retrieves user sessions. Save sets the idle
// expiry; Touch slides it forward without rewriting the session body.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Touch(ctx context.Context, id string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// LoginThrottle counts failed login attempts per account within a rolling
// window and answers whether the account is currently locked out.
type LoginThrottle interface {
	// Failures returns the current failure count for the account.
	Failures(ctx context.Context, username string) (int, error)

	// RecordFailure increments the failure count and returns the new total.
	// The count expires on its own after the lockout window.
	RecordFailure(ctx context.Context, username string, window time.Duration) (int, error)

	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, username string) error
}

// RoleMapper maps provider groups to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
