package httpx

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
	"github.com/enerdesk/backoffice/internal/ports"
	"github.com/enerdesk/backoffice/internal/service"
)

// AuthAPI is the slice of the auth service the handlers need.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (domainauth.Session, error)
	Validate(ctx context.Context, sessionID string) (domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
	BeginSSO(ctx context.Context, redirectURL string) (*service.BeginSSOResult, error)
	CompleteSSO(ctx context.Context, in ports.ExchangeInput) (domainauth.Session, error)
	IdleTimeout() time.Duration
}

// AuthHandlers provides the login, logout, session, and SSO endpoints.
type AuthHandlers struct {
	Svc          AuthAPI
	CookieDomain string
	// SSOEnabled controls whether the login page offers the SSO link.
	SSOEnabled bool
	Logger     *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// loginPage is the minimal HTML form served to browser navigation. API
// clients authenticate against the JSON endpoint instead.
var loginPage = template.Must(template.New("login").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Sign in</title></head>
<body>
<h1>Sign in</h1>
{{if .Message}}<p role="alert">{{.Message}}</p>{{end}}
<form method="post" action="/auth/login">
  <input type="hidden" name="redirect_uri" value="{{.RedirectURI}}">
  <label>Username <input name="username" autocomplete="username" required></label>
  <label>Password <input name="password" type="password" autocomplete="current-password" required></label>
  <button type="submit">Sign in</button>
</form>
{{if .SSOEnabled}}<p><a href="/auth/sso/login?redirect_uri={{.RedirectURI}}">Sign in with single sign-on</a></p>{{end}}
</body>
</html>
`))

type loginPageData struct {
	RedirectURI string
	Message     string
	SSOEnabled  bool
}

// LoginForm serves the login page.
// GET /auth/login?redirect_uri=<path>.
func (h *AuthHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, "")
}

func (h *AuthHandlers) renderLogin(w http.ResponseWriter, r *http.Request, message string) {
	data := loginPageData{
		RedirectURI: safeRedirectPath(r.FormValue("redirect_uri")),
		Message:     message,
		SSOEnabled:  h.SSOEnabled,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if message != "" {
		w.WriteHeader(http.StatusUnauthorized)
	}
	if err := loginPage.Execute(w, data); err != nil {
		h.logger().WarnContext(r.Context(), "render login page", "error", err)
	}
}

// loginRequest is the JSON body accepted by the API login endpoint.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a username and password and issues a session cookie.
// Browser form posts are redirected on success and get the form re-rendered
// on failure; JSON callers get the envelope either way.
// POST /auth/login and POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var username, password string
	isForm := strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
	if isForm {
		if err := r.ParseForm(); err != nil {
			WriteAppError(w, apperrors.Validation("Malformed form submission."))
			return
		}
		username = r.PostFormValue("username")
		password = r.PostFormValue("password")
	} else {
		var req loginRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		username = req.Username
		password = req.Password
	}

	sess, err := h.Svc.Login(r.Context(), username, password)
	if err != nil {
		if isForm && IsBrowserRequest(r) {
			h.renderLogin(w, r, messageFor(err, apperrors.CodeOf(err)))
			return
		}
		WriteAppError(w, err)
		return
	}

	h.setSessionCookie(w, r, sess)
	if isForm && IsBrowserRequest(r) {
		http.Redirect(w, r, safeRedirectPath(r.PostFormValue("redirect_uri")), http.StatusSeeOther)
		return
	}
	WriteData(w, http.StatusOK, sessionInfo(sess))
}

// Logout destroys the server-side session and clears the cookie. Idempotent:
// an absent or already-destroyed session still answers success.
// POST /auth/logout and POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.Svc.Logout(r.Context(), cookie.Value); err != nil {
			h.logger().WarnContext(r.Context(), "logout", "error", err)
		}
	}
	h.clearCookie(w, r, SessionCookieName)

	if IsBrowserRequest(r) {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	WriteMessage(w, http.StatusOK, "Signed out.")
}

// Session returns the authenticated caller's session snapshot, including the
// CSRF token clients must echo on mutating requests.
// GET /api/auth/session.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		WriteAppError(w, apperrors.AuthRequired())
		return
	}
	WriteData(w, http.StatusOK, sessionInfo(sess))
}

// sessionInfo shapes the session for clients. The session ID stays in the
// cookie only.
func sessionInfo(sess domainauth.Session) map[string]any {
	return map[string]any{
		"user_id":      sess.UserID,
		"username":     sess.Username,
		"role":         sess.Role,
		"csrf_token":   sess.CSRFToken,
		"created_at":   sess.CreatedAt,
		"last_seen_at": sess.LastSeenAt,
	}
}

// BeginSSOLogin starts the single sign-on flow: state and nonce go into
// short-lived cookies and the browser is sent to the identity provider.
// GET /auth/sso/login?redirect_uri=<path>.
func (h *AuthHandlers) BeginSSOLogin(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Svc.BeginSSO(r.Context(), callbackURL(r))
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.setFlowCookie(w, r, "sso_state", result.State)
	h.setFlowCookie(w, r, "sso_nonce", result.Nonce)
	h.setFlowCookie(w, r, "sso_redirect", redirectURI)
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// SSOCallback completes the provider flow and issues a session.
// GET /auth/sso/callback?code=<code>&state=<state>.
func (h *AuthHandlers) SSOCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		WriteAppError(w, apperrors.Validation("Missing code or state parameter."))
		return
	}

	stateCookie, err := r.Cookie("sso_state")
	if err != nil || stateCookie.Value != state {
		WriteAppError(w, apperrors.Validation("Sign-on state mismatch. Start over."))
		return
	}
	nonceCookie, err := r.Cookie("sso_nonce")
	if err != nil {
		WriteAppError(w, apperrors.Validation("Sign-on state mismatch. Start over."))
		return
	}

	sess, err := h.Svc.CompleteSSO(r.Context(), ports.ExchangeInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.setSessionCookie(w, r, sess)
	redirectURI := "/"
	if c, err := r.Cookie("sso_redirect"); err == nil {
		redirectURI = safeRedirectPath(c.Value)
	}
	h.clearCookie(w, r, "sso_state")
	h.clearCookie(w, r, "sso_nonce")
	h.clearCookie(w, r, "sso_redirect")
	http.Redirect(w, r, redirectURI, http.StatusSeeOther)
}

// callbackURL reconstructs the absolute callback URL from the request, so the
// provider redirect returns to the same host the user came in on.
func callbackURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || isForwardedHTTPS(r) {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: "/auth/sso/callback"}
	return u.String()
}

func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, sess domainauth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   r.TLS != nil || isForwardedHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.Svc.IdleTimeout() / time.Second),
	})
}

// setFlowCookie stores a short-lived value for the SSO round-trip.
func (h *AuthHandlers) setFlowCookie(w http.ResponseWriter, r *http.Request, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   r.TLS != nil || isForwardedHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
}

// clearCookie expires a cookie, mirroring the attributes used when setting it
// so deletion works across browsers.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   r.TLS != nil || isForwardedHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}

// isForwardedHTTPS reports whether a proxy forwarded the request over HTTPS.
// X-Forwarded-Proto may hold comma-separated hops.
func isForwardedHTTPS(r *http.Request) bool {
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}
