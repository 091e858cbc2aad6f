package httpx

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks a backing store's liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers answers readiness and liveness probes. Either dependency may
// be nil, in which case it is reported as skipped rather than failing.
type HealthHandlers struct {
	DB    Pinger
	Redis Pinger
}

// Health pings the database and the session store.
// GET /healthz and HEAD /healthz.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := map[string]string{
		"database": h.check(ctx, h.DB),
		"redis":    h.check(ctx, h.Redis),
	}
	for _, result := range checks {
		if result == "down" {
			status = http.StatusServiceUnavailable
		}
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}
	WriteJSON(w, status, map[string]any{"status": statusWord(status), "checks": checks})
}

func (h *HealthHandlers) check(ctx context.Context, p Pinger) string {
	if p == nil {
		return "skipped"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "ok"
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}
