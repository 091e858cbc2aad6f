package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
	"github.com/enerdesk/backoffice/internal/ports"
	"github.com/enerdesk/backoffice/internal/service"
)

// stubAuth implements AuthAPI and SessionValidator with canned behavior.
type stubAuth struct {
	stubValidator
	password   string
	session    domainauth.Session
	loginErr   error
	loggedOut  []string
	ssoResult  *service.BeginSSOResult
	ssoSession domainauth.Session
}

func (s *stubAuth) Login(_ context.Context, username, password string) (domainauth.Session, error) {
	if s.loginErr != nil {
		return domainauth.Session{}, s.loginErr
	}
	if password != s.password {
		return domainauth.Session{}, apperrors.InvalidCredentials()
	}
	sess := s.session
	sess.Username = username
	return sess, nil
}

func (s *stubAuth) Logout(_ context.Context, sessionID string) error {
	s.loggedOut = append(s.loggedOut, sessionID)
	return nil
}

func (s *stubAuth) BeginSSO(context.Context, string) (*service.BeginSSOResult, error) {
	if s.ssoResult == nil {
		return nil, apperrors.Validation("Single sign-on is not enabled.")
	}
	return s.ssoResult, nil
}

func (s *stubAuth) CompleteSSO(_ context.Context, in ports.ExchangeInput) (domainauth.Session, error) {
	if in.Code == "" || in.State == "" || in.Nonce == "" {
		return domainauth.Session{}, apperrors.Validation("Sign-on state mismatch. Start over.")
	}
	return s.ssoSession, nil
}

func (s *stubAuth) IdleTimeout() time.Duration { return time.Hour }

func newStubAuth() *stubAuth {
	return &stubAuth{
		password: "trade-floor-9",
		session: domainauth.Session{
			ID:        "sess-1",
			UserID:    "u1",
			Role:      domainauth.RoleTrader,
			CSRFToken: "csrf-abc",
			CreatedAt: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
		},
	}
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func TestLoginJSONSuccessSetsSessionCookie(t *testing.T) {
	t.Parallel()

	h := &AuthHandlers{Svc: newStubAuth()}

	body := `{"username":"h.lindqvist","password":"trade-floor-9"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, "sess-1", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "h.lindqvist", data["username"])
	assert.Equal(t, "csrf-abc", data["csrf_token"])
}

func TestLoginJSONBadCredentials(t *testing.T) {
	t.Parallel()

	h := &AuthHandlers{Svc: newStubAuth()}

	body := `{"username":"h.lindqvist","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "invalid_credentials", env.Error)
	assert.Nil(t, sessionCookie(rec))
}

func TestLoginLockedAccountMapsTo423(t *testing.T) {
	t.Parallel()

	auth := newStubAuth()
	auth.loginErr = apperrors.AccountLocked()
	h := &AuthHandlers{Svc: auth}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"a","password":"b"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusLocked, rec.Code)
	assert.Equal(t, "account_locked", decodeEnvelope(t, rec).Error)
}

func TestLoginFormSuccessRedirects(t *testing.T) {
	t.Parallel()

	h := &AuthHandlers{Svc: newStubAuth()}

	form := url.Values{
		"username":     {"h.lindqvist"},
		"password":     {"trade-floor-9"},
		"redirect_uri": {"/trades"},
	}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	withBrowserDetection(http.HandlerFunc(h.Login)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/trades", rec.Header().Get("Location"))
	require.NotNil(t, sessionCookie(rec))
}

func TestLoginFormFailureRerendersForm(t *testing.T) {
	t.Parallel()

	h := &AuthHandlers{Svc: newStubAuth()}

	form := url.Values{"username": {"h.lindqvist"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	withBrowserDetection(http.HandlerFunc(h.Login)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Invalid username or password.")
}

func TestLoginFormPageRendersSSOLinkWhenEnabled(t *testing.T) {
	t.Parallel()

	h := &AuthHandlers{Svc: newStubAuth(), SSOEnabled: true}

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	rec := httptest.NewRecorder()
	h.LoginForm(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/auth/sso/login")
}

func TestLogoutIsIdempotent(t *testing.T) {
	t.Parallel()

	auth := newStubAuth()
	h := &AuthHandlers{Svc: auth}

	// Without any session cookie at all.
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	rec := httptest.NewRecorder()
	withBrowserDetection(http.HandlerFunc(h.Logout)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).Success)
	assert.Empty(t, auth.loggedOut)

	// With a cookie the server-side session is destroyed too.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-1"})
	rec = httptest.NewRecorder()
	withBrowserDetection(http.HandlerFunc(h.Logout)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"sess-1"}, auth.loggedOut)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestSessionEndpointReturnsSnapshot(t *testing.T) {
	t.Parallel()

	h := &AuthHandlers{Svc: newStubAuth()}

	sess := domainauth.Session{ID: "sess-1", UserID: "u1", Username: "h.lindqvist", Role: domainauth.RoleTrader, CSRFToken: "csrf-abc"}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req = req.WithContext(SetSessionInContext(req.Context(), sess))
	rec := httptest.NewRecorder()
	h.Session(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := decodeEnvelope(t, rec).Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u1", data["user_id"])
	assert.Equal(t, "trader", data["role"])
	// The opaque session ID stays in the cookie.
	assert.NotContains(t, data, "id")
}

func TestSSOCallbackRejectsStateMismatch(t *testing.T) {
	t.Parallel()

	auth := newStubAuth()
	auth.ssoResult = &service.BeginSSOResult{AuthURL: "https://idp.example/auth", State: "st1", Nonce: "n1"}
	h := &AuthHandlers{Svc: auth}

	req := httptest.NewRequest(http.MethodGet, "/auth/sso/callback?code=c1&state=st2", nil)
	req.AddCookie(&http.Cookie{Name: "sso_state", Value: "st1"})
	rec := httptest.NewRecorder()
	h.SSOCallback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSSOFlowIssuesSession(t *testing.T) {
	t.Parallel()

	auth := newStubAuth()
	auth.ssoResult = &service.BeginSSOResult{AuthURL: "https://idp.example/auth", State: "st1", Nonce: "n1"}
	auth.ssoSession = domainauth.Session{ID: "sso-sess", Role: domainauth.RoleAnalyst}
	h := &AuthHandlers{Svc: auth}

	req := httptest.NewRequest(http.MethodGet, "/auth/sso/login?redirect_uri=/trades", nil)
	rec := httptest.NewRecorder()
	h.BeginSSOLogin(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://idp.example/auth", rec.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/auth/sso/callback?code=c1&state=st1", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	h.SSOCallback(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/trades", rec.Header().Get("Location"))
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, "sso-sess", cookie.Value)
}
