// Package main is the background worker: it relays the outbox to Kafka and
// cleans up expired system rows.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	appctx "slice/internal/core/context"
	"slice/internal/infrastructure/config"
	"slice/internal/infrastructure/messaging"
	"slice/internal/infrastructure/storage/postgres"
	"slice/pkg/logger"
)

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

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Info("starting slice worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
	poolCfg.ApplicationName = cfg.App.Name + "-worker"
	poolCfg.MaxConns = 5
	poolCfg.MinConns = 1
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool).WithStatementTimeout(cfg.Database.StatementTimeout)

	var handler postgres.OutboxHandler = messaging.LogHandler{}
	if cfg.Kafka.Enabled {
		publisher := messaging.NewPublisher(messaging.NewWriter(messaging.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}))
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Warnw("close kafka writer", "error", err)
			}
		}()
		handler = publisher
		log.Infow("publishing events to kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	w := &Worker{
		relay:       postgres.NewOutboxRelay(txm, cfg.Worker.BatchSize, handler),
		idempotency: postgres.NewIdempotencyStore(txm, cfg.App.IdempotencyTTL),
		cfg:         cfg.Worker,
		log:         log.WithComponent("worker"),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker drives the outbox relay and periodic cleanup.
type Worker struct {
	relay       *postgres.OutboxRelay
	idempotency *postgres.IdempotencyStore
	cfg         config.WorkerConfig
	log         *logger.Logger
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ctx = logger.WithLogger(ctx, w.log)

	poll := time.NewTicker(w.cfg.PollInterval)
	defer poll.Stop()

	cleanup := time.NewTicker(w.cfg.CleanupInterval)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
			w.drain(ctx)
		case <-cleanup.C:
			w.cleanup(ctx)
		}
	}
}

// drain relays batches until the outbox is empty.
func (w *Worker) drain(ctx context.Context) {
	ctx = appctx.WithTrace(ctx, appctx.NewTrace(appctx.OriginOutboxRelay, "", ""))

	for ctx.Err() == nil {
		n, err := w.relay.ProcessBatch(ctx)
		if err != nil {
			logger.Error(ctx, "outbox batch failed", "error", err)
			return
		}
		if n > 0 {
			logger.Debug(ctx, "outbox batch relayed", "count", n)
		}
		if n < w.cfg.BatchSize {
			break
		}
	}

	moved, err := w.relay.MoveToDLQ(ctx)
	if err != nil {
		logger.Error(ctx, "move to dead letter queue failed", "error", err)
		return
	}
	if moved > 0 {
		logger.Warn(ctx, "outbox messages moved to dead letter queue", "count", moved)
	}
}

func (w *Worker) cleanup(ctx context.Context) {
	ctx = appctx.WithTrace(ctx, appctx.NewTrace(appctx.OriginCleanup, "", ""))

	if n, err := w.idempotency.CleanupExpired(ctx); err != nil {
		logger.Error(ctx, "idempotency cleanup failed", "error", err)
	} else if n > 0 {
		logger.Info(ctx, "expired idempotency keys removed", "count", n)
	}

	if n, err := w.relay.PurgePublished(ctx, w.cfg.PublishedRetention); err != nil {
		logger.Error(ctx, "outbox purge failed", "error", err)
	} else if n > 0 {
		logger.Info(ctx, "published outbox messages purged", "count", n)
	}
}
