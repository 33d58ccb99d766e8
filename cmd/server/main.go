// @title        Forms API
// @version      1.0
// @description  User registration, session and bearer-token authentication, and role-gated resources.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
//
// @securityDefinitions.apikey  SessionCookie
// @in                          header
// @name                        Cookie
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	_ "github.com/formsdesk/forms-api/docs"
	"github.com/formsdesk/forms-api/internal/api"
	"github.com/formsdesk/forms-api/internal/core/ports"
	"github.com/formsdesk/forms-api/internal/infrastructure/config"
	"github.com/formsdesk/forms-api/internal/infrastructure/db/mongo"
	"github.com/formsdesk/forms-api/internal/infrastructure/db/redis"
	"github.com/formsdesk/forms-api/internal/infrastructure/db/sqlstore"
	"github.com/formsdesk/forms-api/internal/infrastructure/http/handlers"
	"github.com/formsdesk/forms-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "forms-api failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "forms-api",
	})

	users, checks, closeStore, err := openUserStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.StoreTimeout,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()
	checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e := api.NewRouter(api.Dependencies{
		Config:   cfg,
		Users:    users,
		Sessions: redis.NewSessionStore(rdb, cfg.Session.Prefix),
		Checks:   checks,
		Registry: reg,
		Log:      log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})

	return g.Wait()
}

// openUserStore connects the configured credential store and returns its
// readiness check and a close func.
func openUserStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.UserRepository, map[string]handlers.Check, func(), error) {
	checks := map[string]handlers.Check{}

	switch cfg.StoreDriver {
	case config.StoreSQLite:
		db, err := sqlstore.Open(ctx, sqlstore.Config{DSN: cfg.SQLite.DSN})
		if err != nil {
			return nil, nil, nil, err
		}
		checks["sqlite"] = func(ctx context.Context) error { return sqlstore.Ping(ctx, db) }
		log.Info().Str("dsn", cfg.SQLite.DSN).Msg("opened sqlite user store")

		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return sqlstore.NewUserRepository(db), checks, closeFn, nil

	default:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.StoreTimeout,
		})
		if err != nil {
			return nil, nil, nil, err
		}

		repo := mongo.NewUserRepository(db)
		ictx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
		if err := repo.EnsureIndexes(ictx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, nil, err
		}
		checks["mongodb"] = func(ctx context.Context) error { return mongo.Ping(ctx, db) }
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return repo, checks, closeFn, nil
	}
}
