package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

const (
	// CSRFHeaderName is the request header carrying the session CSRF token.
	CSRFHeaderName = "X-Csrf-Token"
	// CSRFFieldName is the form or JSON field carrying the token when the
	// header is absent.
	CSRFFieldName = "csrf_token"

	// maxCSRFBodyPeek bounds how much of a JSON body is buffered while
	// looking for the csrf_token field.
	maxCSRFBodyPeek = 1 << 20
)

// CSRFProtect enforces the per-session CSRF token on every state-changing
// request. The token is bound to the server-side session rather than a
// cookie, so it must run behind RequireAuth / RequireRole. Safe methods
// (GET, HEAD, OPTIONS, TRACE) pass through untouched.
func CSRFProtect(auth SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresCSRFValidation(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				WriteAppError(w, apperrors.AuthRequired())
				return
			}
			if err := auth.ValidateCSRF(sess, extractCSRFToken(r)); err != nil {
				WriteAppError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requiresCSRFValidation reports whether the method mutates state.
func requiresCSRFValidation(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

// extractCSRFToken pulls the token from the header, a form field, or a JSON
// body field, in that order. JSON bodies are buffered and restored so the
// handler can still decode them.
func extractCSRFToken(r *http.Request) string {
	if token := r.Header.Get(CSRFHeaderName); token != "" {
		return token
	}

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"),
		strings.HasPrefix(contentType, "multipart/form-data"):
		if err := r.ParseForm(); err != nil {
			return ""
		}
		return r.PostFormValue(CSRFFieldName)

	case strings.HasPrefix(contentType, "application/json"):
		body, err := io.ReadAll(io.LimitReader(r.Body, maxCSRFBodyPeek))
		if err != nil {
			return ""
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var carrier struct {
			Token string `json:"csrf_token"`
		}
		if err := json.Unmarshal(body, &carrier); err != nil {
			return ""
		}
		return carrier.Token
	}
	return ""
}
