package bootstrap

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/enerdesk/backoffice/config"
	"github.com/enerdesk/backoffice/internal/adapters/authroles"
	"github.com/enerdesk/backoffice/internal/adapters/memory"
	"github.com/enerdesk/backoffice/internal/adapters/oidc"
	redisadapter "github.com/enerdesk/backoffice/internal/adapters/redis"
	"github.com/enerdesk/backoffice/internal/ports"
)

const memorySweepInterval = time.Minute

// SessionBackend bundles the session store and login throttle plus an
// optional sweeper for the in-memory variant. Redis expires its own keys,
// so Sweep is nil there.
type SessionBackend struct {
	Sessions ports.SessionStore
	Throttle ports.LoginThrottle
	Sweep    func(ctx context.Context)
}

// BuildSessionBackend picks the session storage. Redis is the production
// backend; the in-memory store only exists for single-instance development
// without a Redis at hand.
func BuildSessionBackend(client redis.UniversalClient, logger *slog.Logger) SessionBackend {
	if client != nil {
		return SessionBackend{
			Sessions: redisadapter.NewSessionStoreWithPrefix(client, "session:"),
			Throttle: redisadapter.NewLoginThrottle(client),
		}
	}

	if logger != nil {
		logger.Warn("redis not configured; using in-memory sessions (single instance only)")
	}
	store := memory.NewSessionStore()
	return SessionBackend{
		Sessions: store,
		Throttle: memory.NewLoginThrottle(),
		Sweep: func(ctx context.Context) {
			store.RunSweeper(ctx, memorySweepInterval)
		},
	}
}

// BuildSSOProvider constructs the OIDC provider when single sign-on is
// configured. Returns nil when the mode is local or required settings are
// missing; password login keeps working either way.
//
//nolint:ireturn // callers only need the port, not the concrete provider.
func BuildSSOProvider(ctx context.Context, cfg config.AuthConfig, logger *slog.Logger) ports.AuthProvider {
	if cfg.Mode != config.AuthModeOIDC {
		return nil
	}

	o := cfg.OIDC
	if o.IssuerURL == "" || o.ClientID == "" || o.ClientSecret == "" {
		if logger != nil {
			logger.Warn("AUTH_MODE=oidc but required config missing; single sign-on disabled",
				"issuer_url_empty", o.IssuerURL == "",
				"client_id_empty", o.ClientID == "",
				"client_secret_empty", o.ClientSecret == "",
			)
		}
		return nil
	}

	prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		RedirectURL:  o.RedirectURL,
		Scope:        o.Scope,
		IssuerURL:    o.IssuerURL,
	})
	if err != nil {
		if logger != nil {
			logger.Warn("failed to create OIDC provider; single sign-on disabled", "error", err)
		}
		return nil
	}
	return prov
}

// BuildRoleMapper maps identity-provider groups onto application roles.
func BuildRoleMapper(cfg config.GroupsConfig) authroles.StaticRoleMapper {
	return authroles.StaticRoleMapper{
		AdminGroup:   cfg.Admin,
		ManagerGroup: cfg.Manager,
		TraderGroup:  cfg.Trader,
		AnalystGroup: cfg.Analyst,
	}
}

// dbPinger adapts *sql.DB to the health endpoint's Pinger.
type dbPinger struct {
	db *sql.DB
}

func (p dbPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// redisPinger adapts a redis client to the health endpoint's Pinger.
type redisPinger struct {
	client redis.UniversalClient
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
