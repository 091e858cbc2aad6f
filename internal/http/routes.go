package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
	"github.com/enerdesk/backoffice/internal/domain/resource"
	"github.com/enerdesk/backoffice/internal/observability/statsd"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth interface {
		AuthAPI
		SessionValidator
	}
	Resources ResourceAPI
	Users     UserAPI
	Activity  ActivityAPI
	Registry  *resource.Registry

	// DB and Redis feed the health endpoint; either may be nil.
	DB    Pinger
	Redis Pinger

	// Metrics receives request counters and timings; nil disables emission.
	Metrics statsd.Sink

	CookieDomain string
	SSOEnabled   bool
	Logger       *slog.Logger
}

// NewRouter wires the endpoints and the middleware chain. Recover sits
// outermost so any panic still answers with the JSON envelope; browser
// detection runs before auth so failures can choose redirect versus JSON.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		CookieDomain: services.CookieDomain,
		SSOEnabled:   services.SSOEnabled,
		Logger:       logger,
	}
	resourceHandlers := &ResourceHandlers{Svc: services.Resources, Registry: services.Registry}
	userHandlers := &UserHandlers{Svc: services.Users}
	activityHandlers := &ActivityHandlers{Svc: services.Activity}
	healthHandlers := &HealthHandlers{DB: services.DB, Redis: services.Redis}

	requireAuth := RequireAuth(services.Auth)
	requireAdmin := RequireRole(services.Auth, domainauth.RoleAdmin)
	requireManager := RequireRole(services.Auth, domainauth.RoleManager)
	csrf := CSRFProtect(services.Auth)

	// Authentication. Login and the SSO round-trip are necessarily open;
	// login is exempt from CSRF since the token only exists once a session
	// does. Logout destroys server-side state, so it needs a live session
	// and the token like every other mutation.
	mux.HandleFunc("GET /auth/login", authHandlers.LoginForm)
	mux.HandleFunc("POST /auth/login", authHandlers.Login)
	mux.HandleFunc("POST /api/auth/login", authHandlers.Login)
	mux.Handle("POST /auth/logout", requireAuth(csrf(http.HandlerFunc(authHandlers.Logout))))
	mux.Handle("POST /api/auth/logout", requireAuth(csrf(http.HandlerFunc(authHandlers.Logout))))
	mux.Handle("GET /api/auth/session", requireAuth(http.HandlerFunc(authHandlers.Session)))
	if services.SSOEnabled {
		mux.HandleFunc("GET /auth/sso/login", authHandlers.BeginSSOLogin)
		mux.HandleFunc("GET /auth/sso/callback", authHandlers.SSOCallback)
	}

	// Schema-driven resources. Per-schema read and write role floors are
	// enforced by the service; the middleware only guarantees a session.
	protected := func(h http.HandlerFunc) http.Handler {
		return requireAuth(csrf(h))
	}
	// Update and delete also mount on the collection path for clients that
	// address the row with an id field in the body instead of the URL.
	mux.Handle("GET /api/{area}/{resource}", protected(resourceHandlers.List))
	mux.Handle("POST /api/{area}/{resource}", protected(resourceHandlers.Create))
	mux.Handle("PUT /api/{area}/{resource}", protected(resourceHandlers.Update))
	mux.Handle("DELETE /api/{area}/{resource}", protected(resourceHandlers.Delete))
	mux.Handle("GET /api/{area}/{resource}/{id}", protected(resourceHandlers.Get))
	mux.Handle("PUT /api/{area}/{resource}/{id}", protected(resourceHandlers.Update))
	mux.Handle("DELETE /api/{area}/{resource}/{id}", protected(resourceHandlers.Delete))

	// Account administration.
	admin := func(h http.HandlerFunc) http.Handler {
		return requireAdmin(csrf(h))
	}
	mux.Handle("GET /api/admin/users", admin(userHandlers.List))
	mux.Handle("POST /api/admin/users", admin(userHandlers.Create))
	mux.Handle("GET /api/admin/users/{id}", admin(userHandlers.Get))
	mux.Handle("PUT /api/admin/users/{id}", admin(userHandlers.Update))
	mux.Handle("POST /api/admin/users/{id}/reset-password", admin(userHandlers.ResetPassword))

	// Audit trail.
	mux.Handle("GET /api/admin/activity", requireManager(http.HandlerFunc(activityHandlers.List)))

	mux.HandleFunc("GET /healthz", healthHandlers.Health)
	mux.HandleFunc("HEAD /healthz", healthHandlers.Health)

	handler := BrowserDetection()(mux)
	handler = ClientOrigin()(handler)
	handler = Metrics(services.Metrics)(handler)
	handler = Logging(logger)(handler)
	return Recover(logger)(handler)
}
