package httpx

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
	"github.com/enerdesk/backoffice/internal/service"
)

// SessionCookieName is the cookie carrying the opaque session identifier. No
// other session state lives client-side.
const SessionCookieName = "session_id"

// SessionValidator is the slice of the auth service the middleware needs.
type SessionValidator interface {
	Validate(ctx context.Context, sessionID string) (domainauth.Session, error)
	ValidateCSRF(sess domainauth.Session, token string) error
}

// Logging returns a middleware that logs one line per request with method,
// path, status, and duration.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.wrote = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

// Recover returns the outermost middleware. A panic anywhere below is logged
// with its stack and answered with the storage-error envelope, never an HTML
// error page. If the handler already started writing, the response is left
// as-is.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())))
					if !ww.wrote {
						WriteAppError(ww, apperrors.Storage(nil))
					}
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// browserRequestKey is an unexported context key for browser detection.
type browserRequestKey struct{}

// BrowserDetection classifies each request as browser navigation or an
// AJAX/API call so auth failures can redirect in one case and answer JSON in
// the other.
func BrowserDetection() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), browserRequestKey{}, isBrowserRequest(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientOrigin resolves the originating client address and stashes it in the
// request context for the audit trail.
func ClientOrigin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := service.WithRequestOrigin(r.Context(), clientAddr(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientAddr prefers the first X-Forwarded-For hop, which the reverse proxy
// sets to the real client, and falls back to the connection's remote address.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if addr := strings.TrimSpace(first); addr != "" {
			return addr
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// IsBrowserRequest reports whether the current request is browser navigation.
func IsBrowserRequest(r *http.Request) bool {
	if v, ok := r.Context().Value(browserRequestKey{}).(bool); ok {
		return v
	}
	return isBrowserRequest(r)
}

// isBrowserRequest treats a request as browser navigation when it targets a
// non-API path and does not carry the XMLHttpRequest marker header.
func isBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	return !strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

// RequireAuth validates the session cookie and places the session in the
// request context. Browser navigation without a session is redirected to the
// login page; AJAX/API requests get a JSON 401.
func RequireAuth(auth SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessionFromRequest(r, auth)
			if err != nil {
				unauthenticated(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), sess)))
		})
	}
}

// RequireRole validates the session and additionally enforces a minimum role.
// Admin passes every check. Failures follow the same browser/AJAX split as
// RequireAuth, with 403 for an authenticated but under-privileged caller.
func RequireRole(auth SessionValidator, minimum domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessionFromRequest(r, auth)
			if err != nil {
				unauthenticated(w, r)
				return
			}
			if !sess.Role.Satisfies(minimum) {
				forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), sess)))
		})
	}
}

// sessionFromRequest resolves and validates the session cookie. Validation
// slides the idle expiry as a side effect.
func sessionFromRequest(r *http.Request, auth SessionValidator) (domainauth.Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return domainauth.Session{}, apperrors.AuthRequired()
	}
	return auth.Validate(r.Context(), cookie.Value)
}

func unauthenticated(w http.ResponseWriter, r *http.Request) {
	if IsBrowserRequest(r) {
		redirectToLogin(w, r)
		return
	}
	WriteAppError(w, apperrors.AuthRequired())
}

// accessDeniedPage is served to an authenticated browser that fails a role
// check. Redirecting to login would loop, since the caller already has a
// session.
const accessDeniedPage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Access denied</title></head>
<body>
<h1>Access denied</h1>
<p>Your account does not have permission to view this page.</p>
<p><a href="/">Back to the start page</a></p>
</body>
</html>
`

// forbidden answers a failed role check with the same browser/AJAX split as
// the rest of the auth failures.
func forbidden(w http.ResponseWriter, r *http.Request) {
	if IsBrowserRequest(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(accessDeniedPage))
		return
	}
	WriteAppError(w, apperrors.InsufficientRole())
}

// redirectToLogin sends browser navigation to the login page, preserving the
// requested path so login can return there.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/auth/login"
	if path := safeRedirectPath(r.URL.RequestURI()); path != "" && path != "/" {
		target += "?redirect_uri=" + url.QueryEscape(path)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// safeRedirectPath allows only relative paths so the login flow can never be
// used as an open redirect. Anything absolute or schemeful collapses to "/".
func safeRedirectPath(raw string) string {
	if raw == "" {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	return u.RequestURI()
}
