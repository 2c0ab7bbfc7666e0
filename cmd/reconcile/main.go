// Command reconcile recomputes the employee count of every department once and drains the
// repair queue.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spec-kit/hr-service/internal/cascade"
	"github.com/spec-kit/hr-service/internal/config"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/observability"
	"github.com/spec-kit/hr-service/internal/persistence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if !pg.Configured() {
		logger.Fatal("reconcile needs POSTGRES_DSN; in-memory stores start empty")
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	backends := persistence.NewBackends(pg, redis, cfg.Redis)
	counter := cascade.NewCounter(
		backends.Stores[domain.KindDepartment],
		backends.Stores[domain.KindEmployeeProfile],
		backends.RepairQueue,
		nil,
		logger,
	)

	processed, err := counter.RecomputeAll(ctx)
	if err != nil {
		logger.Error("reconcile finished with errors", zap.Int("departments", processed), zap.Error(err))
		return
	}
	logger.Info("reconcile finished", zap.Int("departments", processed))

	// every department was just recomputed, so queued repairs are stale
	for {
		ids, err := backends.RepairQueue.Pop(ctx, 100)
		if err != nil {
			logger.Warn("drain repair queue", zap.Error(err))
			return
		}
		if len(ids) == 0 {
			return
		}
	}
}
