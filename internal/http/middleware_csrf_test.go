package httpx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
)

func csrfChain(v *stubValidator) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})
	return withBrowserDetection(RequireAuth(v)(CSRFProtect(v)(inner)))
}

func csrfSession() domainauth.Session {
	return domainauth.Session{ID: "s1", Role: domainauth.RoleTrader, CSRFToken: "tok-123"}
}

func TestCSRFHeaderTokenAccepted(t *testing.T) {
	t.Parallel()

	handler := csrfChain(validatorWith(csrfSession()))

	req := httptest.NewRequest(http.MethodPost, "/api/trading/trades", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(CSRFHeaderName, "tok-123")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFMissingTokenRejected(t *testing.T) {
	t.Parallel()

	handler := csrfChain(validatorWith(csrfSession()))

	req := httptest.NewRequest(http.MethodPost, "/api/trading/trades", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "csrf_rejected", decodeEnvelope(t, rec).Error)
}

func TestCSRFWrongTokenRejected(t *testing.T) {
	t.Parallel()

	handler := csrfChain(validatorWith(csrfSession()))

	req := httptest.NewRequest(http.MethodDelete, "/api/trading/trades/t1", nil)
	req.Header.Set(CSRFHeaderName, "tok-999")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFJSONBodyFieldAcceptedAndBodyPreserved(t *testing.T) {
	t.Parallel()

	handler := csrfChain(validatorWith(csrfSession()))

	payload := `{"name":"Marex","csrf_token":"tok-123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/masterdata/brokers", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// The middleware peeked at the body; the handler must still see it all.
	assert.JSONEq(t, payload, rec.Body.String())
}

func TestCSRFFormFieldAccepted(t *testing.T) {
	t.Parallel()

	handler := csrfChain(validatorWith(csrfSession()))

	form := url.Values{"csrf_token": {"tok-123"}, "name": {"Marex"}}
	req := httptest.NewRequest(http.MethodPost, "/api/masterdata/brokers", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFSafeMethodsExempt(t *testing.T) {
	t.Parallel()

	handler := csrfChain(validatorWith(csrfSession()))

	req := httptest.NewRequest(http.MethodGet, "/api/trading/trades", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
