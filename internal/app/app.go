// Package app assembles the subscription service from configuration: the
// database pool, optional Redis throttle, outbound email client and the
// HTTP server.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/newsletter/internal/api"
	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/emailclient"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/pkg/ratelimit"
	"github.com/ignite/newsletter/internal/repository/postgres"
	"github.com/ignite/newsletter/internal/service/subscription"
)

const shutdownTimeout = 10 * time.Second

// Application is a fully wired, not yet serving, instance of the service.
type Application struct {
	log         *logger.Logger
	db          *sql.DB
	redis       *redis.Client
	emailClient emailclient.Client
	server      *api.Server
}

// Build wires every dependency and binds the listener. The database pool is
// lazy, so Build succeeds while Postgres is unreachable.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.Default()
	}

	db, err := postgres.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &Application{log: log, db: db}

	a.emailClient, err = emailclient.New(ctx, cfg.EmailClient)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("email client: %w", err)
	}

	var limiter api.RateLimiter
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		a.redis = redis.NewClient(opts)
		if cfg.Throttle.Enabled {
			limiter = ratelimit.NewLimiter(a.redis, "subscriptions", cfg.Throttle.Limit, cfg.Throttle.Window())
			log.Info("subscription throttle enabled",
				"limit", cfg.Throttle.Limit, "window", cfg.Throttle.Window().String())
		}
	} else if cfg.Throttle.Enabled {
		log.Warn("throttle enabled without redis.url, submissions are not throttled")
	}

	trusted, err := api.ParseTrustedProxies(cfg.Application.TrustedProxies)
	if err != nil {
		a.Close()
		return nil, err
	}

	metrics := api.NewMetrics()
	repo := postgres.NewSubscriptionRepo(db, cfg.Database.QueryTimeout(),
		postgres.WithInsertObserver(metrics.InsertDuration()))
	a.server, err = api.NewServer(cfg.Application.Address(), api.Deps{
		Subscriptions:  subscription.NewService(repo),
		DB:             db,
		Redis:          a.redis,
		Limiter:        limiter,
		Metrics:        metrics,
		Logger:         log,
		AllowedOrigins: cfg.Application.AllowedOrigins,
		TrustedProxies: trusted,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// Port returns the bound port, useful when the configured port was 0.
func (a *Application) Port() int { return a.server.Port() }

// EmailClient returns the outbound email client built from configuration.
func (a *Application) EmailClient() emailclient.Client { return a.emailClient }

// Run serves HTTP until ctx is cancelled, then shuts down gracefully and
// releases the pool.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Serve() }()
	a.log.Info("server started", "port", a.Port())

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			serveErr = fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; err != nil && serveErr == nil {
			serveErr = err
		}
	}

	return errors.Join(serveErr, a.Close())
}

// Close releases the database pool and Redis client.
func (a *Application) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
		a.db = nil
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
		a.redis = nil
	}
	return errors.Join(errs...)
}
