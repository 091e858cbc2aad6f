package bootstrap

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/enerdesk/backoffice/config"
	"github.com/enerdesk/backoffice/internal/data"
	"github.com/enerdesk/backoffice/internal/domain/resource"
	"github.com/enerdesk/backoffice/internal/observability/statsd"
	"github.com/enerdesk/backoffice/internal/service"
)

// ServiceContainer holds the constructed services ready for router wiring.
type ServiceContainer struct {
	Auth      *service.AuthService
	Users     *service.UserService
	Resources *service.ResourceService
	Activity  *service.ActivityService
	Registry  *resource.Registry

	// Metrics is the StatsD client; disabled (but safe to use) when no
	// address is configured.
	Metrics *statsd.Client

	// SSOEnabled reports whether an OIDC provider was built, so the login
	// page knows whether to offer the single sign-on path.
	SSOEnabled bool

	// Sweep runs the in-memory session sweeper when Redis is absent.
	// Nil for the Redis backend.
	Sweep func(ctx context.Context)
}

// ServiceDeps contains shared dependencies for service construction.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildServices wires the repositories, adapters, and services.
func BuildServices(ctx context.Context, deps ServiceDeps) ServiceContainer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	userRepo := data.NewUserRepo(deps.DB)
	resourceRepo := data.NewResourceRepo(deps.DB)
	activityRepo := data.NewActivityRepo(deps.DB)
	sinkRepo := data.NewAuditSinkRepo(deps.DB)

	backend := BuildSessionBackend(deps.RedisClient, logger)
	provider := BuildSSOProvider(ctx, deps.Config.Auth, logger)
	metrics := buildMetrics(deps.Config.Statsd, logger)

	auth := service.NewAuthService(service.AuthServiceOptions{
		Users:            userRepo,
		Sessions:         backend.Sessions,
		Throttle:         backend.Throttle,
		Provider:         provider,
		Roles:            BuildRoleMapper(deps.Config.Auth.Groups),
		Logger:           logger,
		MaxLoginAttempts: deps.Config.Auth.MaxLoginAttempts,
		LockoutWindow:    deps.Config.Auth.LockoutWindow,
		IdleTimeout:      deps.Config.Auth.IdleTimeout,
	})

	dispatcher := service.NewAuditDispatchService(service.AuditDispatchServiceOptions{
		Sinks:  sinkRepo,
		Logger: logger,
	})

	activity := service.NewActivityService(service.ActivityServiceOptions{
		Store:      activityRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	resources := service.NewResourceService(service.ResourceServiceOptions{
		Store:    resourceRepo,
		Activity: activity,
		Logger:   logger,
	})

	users := service.NewUserService(service.UserServiceOptions{
		Users:  userRepo,
		Logger: logger,
	})

	return ServiceContainer{
		Auth:       auth,
		Users:      users,
		Resources:  resources,
		Activity:   activity,
		Registry:   resource.NewRegistry(resource.DefaultSchemas()),
		Metrics:    metrics,
		SSOEnabled: provider != nil,
		Sweep:      backend.Sweep,
	}
}

// buildMetrics never fails startup: a bad StatsD endpoint degrades to a
// disabled client.
func buildMetrics(cfg config.StatsdConfig, logger *slog.Logger) *statsd.Client {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Enabled,
		Address: cfg.Address,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Warn("statsd client unavailable; metrics disabled", "error", err)
		disabled, _ := statsd.NewClient(statsd.Config{Logger: logger})
		return disabled
	}
	if cfg.Enabled && cfg.Address != "" {
		logger.Info("statsd metrics enabled", "addr", cfg.Address, "prefix", cfg.Prefix)
	}
	return client
}
