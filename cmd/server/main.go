// Package main is the entry point for the slice API server.
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

	"slice/internal/app"
	"slice/internal/core/security"
	"slice/internal/core/types"
	"slice/internal/infrastructure/cache"
	"slice/internal/infrastructure/config"
	v1 "slice/internal/infrastructure/http/v1"
	"slice/internal/infrastructure/http/v1/handlers"
	"slice/internal/infrastructure/storage/postgres"
	"slice/pkg/logger"
)

const devSecret = "dev-only-secret-change-me"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting slice server", "env", cfg.App.Env, "port", cfg.App.Port)

	if cfg.Database.AutoMigrate {
		if err := migrateUp(ctx, cfg.Database.DSN); err != nil {
			log.Fatalw("auto-migrate failed", "error", err)
		}
	}

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
	poolCfg.ApplicationName = cfg.App.Name
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool).WithStatementTimeout(cfg.Database.StatementTimeout)

	deps, err := app.Postgres(txm)
	if err != nil {
		log.Fatalw("failed to wire repositories", "error", err)
	}
	deps.LowStockThreshold = types.NewQuantityFromFloat64(cfg.Inventory.DefaultLowStockThreshold)

	checks := map[string]handlers.Check{"database": txm.Ping}

	// --- Report cache ---
	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer func() { _ = client.Close() }()

		reportCache := cache.NewReportCache(client)
		deps.ReportCache = reportCache
		deps.ReportTTL = cfg.Redis.ReportTTL
		checks["redis"] = reportCache.Ping
		log.Infow("report cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.ReportTTL)
	}

	services := app.NewServices(deps)

	// --- Tokens ---
	secret := cfg.JWT.Secret
	if secret == "" {
		log.Warn("jwt.secret is empty, using the development secret")
		secret = devSecret
	}
	tokens, err := security.NewTokenService(security.TokenConfig{
		Secret: secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TokenTTL,
	})
	if err != nil {
		log.Fatalw("failed to init token service", "error", err)
	}

	router := v1.NewRouter(v1.RouterConfig{
		Services:    services,
		Logger:      log,
		Tokens:      tokens,
		Idempotency: postgres.NewIdempotencyStore(txm, cfg.App.IdempotencyTTL),
		Checks:      checks,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go logPoolStats(statsCtx, pool)

	go func() {
		log.Infow("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	log.Info("server stopped")
}

func migrateUp(ctx context.Context, dsn string) error {
	m, err := postgres.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up(ctx)
}

func logPoolStats(ctx context.Context, pool *postgres.Pool) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			postgres.LogPoolStats(ctx, pool)
		}
	}
}
