package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	redisadapter "github.com/enerdesk/backoffice/internal/adapters/redis"
	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
	"github.com/enerdesk/backoffice/internal/domain/model"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
	"github.com/enerdesk/backoffice/internal/ports"
)

// Default session policy, overridable through AuthServiceOptions.
const (
	DefaultMaxLoginAttempts = 5
	DefaultLockoutWindow    = 15 * time.Minute
	DefaultIdleTimeout      = time.Hour
)

// dummyHash is compared against when the username does not resolve, so a
// probe cannot distinguish unknown accounts from wrong passwords by timing.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy hash: %v", err))
	}
	return h
}()

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users    CredentialStore
	Sessions ports.SessionStore
	Throttle ports.LoginThrottle

	// Provider and Roles are only consulted for single sign-on.
	Provider ports.AuthProvider
	Roles    ports.RoleMapper

	Logger *slog.Logger

	MaxLoginAttempts int
	LockoutWindow    time.Duration
	IdleTimeout      time.Duration
}

// AuthService owns the session lifecycle: credential verification, lockout,
// session issuance with CSRF tokens, sliding validation, and logout.
type AuthService struct {
	users    CredentialStore
	sessions ports.SessionStore
	throttle ports.LoginThrottle
	provider ports.AuthProvider
	roles    ports.RoleMapper
	logger   *slog.Logger

	maxAttempts   int
	lockoutWindow time.Duration
	idleTimeout   time.Duration
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxAttempts := opts.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxLoginAttempts
	}
	lockoutWindow := opts.LockoutWindow
	if lockoutWindow <= 0 {
		lockoutWindow = DefaultLockoutWindow
	}
	idleTimeout := opts.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &AuthService{
		users:         opts.Users,
		sessions:      opts.Sessions,
		throttle:      opts.Throttle,
		provider:      opts.Provider,
		roles:         opts.Roles,
		logger:        logger,
		maxAttempts:   maxAttempts,
		lockoutWindow: lockoutWindow,
		idleTimeout:   idleTimeout,
	}
}

// IdleTimeout reports the configured session idle timeout.
func (s *AuthService) IdleTimeout() time.Duration {
	return s.idleTimeout
}

// Login verifies a username/password pair and issues a session. Lockout is
// checked before the password so a locked account reports account_locked
// even for correct credentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (domainauth.Session, error) {
	username = model.NormalizeUsername(username)
	if username == "" || password == "" {
		return domainauth.Session{}, apperrors.InvalidCredentials()
	}

	failures, err := s.throttle.Failures(ctx, username)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("check login failures: %w", err)
	}
	if failures >= s.maxAttempts {
		return domainauth.Session{}, apperrors.AccountLocked()
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
			// Burn a bcrypt comparison so the miss costs the same as a
			// wrong password.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return domainauth.Session{}, s.recordFailure(ctx, username)
		}
		return domainauth.Session{}, fmt.Errorf("load user: %w", err)
	}

	if compareErr := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); compareErr != nil {
		return domainauth.Session{}, s.recordFailure(ctx, username)
	}

	// Inactive accounts fail exactly like bad credentials; the response
	// must not reveal that the account exists.
	if user.Status != model.UserActive {
		return domainauth.Session{}, s.recordFailure(ctx, username)
	}

	if resetErr := s.throttle.Reset(ctx, username); resetErr != nil {
		s.logger.WarnContext(ctx, "failed to reset login failure count",
			"username", username, "error", resetErr)
	}

	return s.issueSession(ctx, user.ID, user.Username, user.Role)
}

func (s *AuthService) recordFailure(ctx context.Context, username string) error {
	count, err := s.throttle.RecordFailure(ctx, username, s.lockoutWindow)
	if err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}
	if count >= s.maxAttempts {
		s.logger.WarnContext(ctx, "account locked after repeated login failures",
			"username", username, "failures", count)
		return apperrors.AccountLocked()
	}
	return apperrors.InvalidCredentials()
}

func (s *AuthService) issueSession(ctx context.Context, userID, username string, role domainauth.Role) (domainauth.Session, error) {
	csrfToken, err := generateToken(32)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("generate csrf token: %w", err)
	}

	now := time.Now().UTC()
	sess := domainauth.Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		Username:   username,
		Role:       role,
		CSRFToken:  csrfToken,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if saveErr := s.sessions.Save(ctx, sess, s.idleTimeout); saveErr != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", saveErr)
	}

	s.logger.InfoContext(ctx, "session issued",
		"user_id", userID, "username", username, "role", string(role))
	return sess, nil
}

// Validate resolves a session ID and slides its idle expiry forward.
func (s *AuthService) Validate(ctx context.Context, sessionID string) (domainauth.Session, error) {
	if sessionID == "" {
		return domainauth.Session{}, apperrors.AuthRequired()
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redisadapter.ErrNotFound) {
			return domainauth.Session{}, apperrors.AuthRequired()
		}
		return domainauth.Session{}, fmt.Errorf("get session: %w", err)
	}

	if touchErr := s.sessions.Touch(ctx, sessionID, s.idleTimeout); touchErr != nil {
		if errors.Is(touchErr, redisadapter.ErrNotFound) {
			return domainauth.Session{}, apperrors.AuthRequired()
		}
		return domainauth.Session{}, fmt.Errorf("touch session: %w", touchErr)
	}

	sess.LastSeenAt = time.Now().UTC()
	return sess, nil
}

// ValidateCSRF compares a submitted token against the session's token in
// constant time.
func (s *AuthService) ValidateCSRF(sess domainauth.Session, token string) error {
	if token == "" || sess.CSRFToken == "" {
		return apperrors.CSRFRejected()
	}
	if subtle.ConstantTimeCompare([]byte(sess.CSRFToken), []byte(token)) != 1 {
		return apperrors.CSRFRejected()
	}
	return nil
}

// Logout removes a session. Logging out an already-absent session is a
// success.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// BeginSSOResult contains the redirect target and flow state for SSO login.
type BeginSSOResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginSSO initiates the single sign-on flow. It fails when no provider is
// configured (AUTH_MODE=local).
func (s *AuthService) BeginSSO(ctx context.Context, redirectURL string) (*BeginSSOResult, error) {
	if s.provider == nil {
		return nil, apperrors.Validation("Single sign-on is not enabled.")
	}
	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin sso flow: %w", err)
	}
	return &BeginSSOResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteSSO exchanges the provider callback for an identity and issues a
// session through the same path as local login. A matching local account
// supplies the user ID and role; otherwise the role comes from the group
// mapper and the username stands in as the user ID.
func (s *AuthService) CompleteSSO(ctx context.Context, in ports.ExchangeInput) (domainauth.Session, error) {
	if s.provider == nil {
		return domainauth.Session{}, apperrors.Validation("Single sign-on is not enabled.")
	}

	identity, err := s.provider.Exchange(ctx, in)
	if err != nil {
		s.logger.WarnContext(ctx, "sso exchange failed", "error", err)
		return domainauth.Session{}, apperrors.InvalidCredentials()
	}

	username := model.NormalizeUsername(identity.Username)
	userID := username
	role := domainauth.RoleViewer
	if s.roles != nil {
		role = s.roles.Map(identity.Groups)
	}

	user, lookupErr := s.users.GetByUsername(ctx, username)
	switch {
	case lookupErr == nil:
		if user.Status != model.UserActive {
			return domainauth.Session{}, apperrors.InvalidCredentials()
		}
		userID = user.ID
		role = user.Role
	case apperrors.IsCode(lookupErr, apperrors.ErrCodeNotFound):
		// No local account; the mapped role applies.
	default:
		return domainauth.Session{}, fmt.Errorf("load user: %w", lookupErr)
	}

	return s.issueSession(ctx, userID, username, role)
}

// generateToken returns n random bytes hex-encoded.
func generateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
