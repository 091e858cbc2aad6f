package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/enerdesk/backoffice/config"
	httpx "github.com/enerdesk/backoffice/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewHTTPServer builds the router and the server around it. NewRouter
// installs the full middleware chain itself, so nothing is wrapped here.
func NewHTTPServer(cfg HTTPServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Auth:         cfg.Services.Auth,
		Resources:    cfg.Services.Resources,
		Users:        cfg.Services.Users,
		Activity:     cfg.Services.Activity,
		Registry:     cfg.Services.Registry,
		Metrics:      cfg.Services.Metrics,
		CookieDomain: appCfg.HTTP.CookieDomain,
		SSOEnabled:   cfg.Services.SSOEnabled,
		Logger:       logger,
	}
	if cfg.DB != nil {
		services.DB = dbPinger{db: cfg.DB}
	}
	if cfg.RedisClient != nil {
		services.Redis = redisPinger{client: cfg.RedisClient}
	}

	addr := appCfg.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:         addr,
		Handler:      httpx.NewRouter(services),
		ReadTimeout:  appCfg.HTTP.ReadTimeout,
		WriteTimeout: appCfg.HTTP.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
}

// RunHTTPServer serves until ctx is canceled, then drains connections within
// the shutdown timeout. The session sweeper (present only for the in-memory
// backend) runs alongside the listener.
func RunHTTPServer(ctx context.Context, server *http.Server, cfg HTTPServerConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	shutdownTimeout := 10 * time.Second
	if cfg.Config != nil && cfg.Config.HTTP.ShutdownTimeout > 0 {
		shutdownTimeout = cfg.Config.HTTP.ShutdownTimeout
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if sweep := cfg.Services.Sweep; sweep != nil {
		group.Go(func() error {
			sweep(groupCtx)
			return nil
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if cfg.Services.Metrics != nil {
			if err := cfg.Services.Metrics.Close(); err != nil {
				logger.Warn("close statsd client failed", "error", err)
			}
		}
		logger.Info("HTTP server stopped")
		return nil
	})

	return group.Wait()
}
