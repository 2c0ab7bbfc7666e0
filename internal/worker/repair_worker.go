package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Repairer drains queued department count repairs.
type Repairer interface {
	Repair(ctx context.Context, max int) (int, error)
}

// RepairWorker periodically recomputes departments whose cascade failed.
type RepairWorker struct {
	repairer  Repairer
	interval  time.Duration
	batchSize int
	logger    *zap.Logger
}

// NewRepairWorker builds the worker.
func NewRepairWorker(repairer Repairer, interval time.Duration, batchSize int, logger *zap.Logger) *RepairWorker {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &RepairWorker{
		repairer:  repairer,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger.With(zap.String("component", "repair_worker")),
	}
}

// Run blocks until ctx is done, draining the queue on every tick.
func (w *RepairWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("repair worker started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("repair worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce drains one batch and returns how many departments were repaired.
func (w *RepairWorker) RunOnce(ctx context.Context) int {
	repaired, err := w.repairer.Repair(ctx, w.batchSize)
	if err != nil {
		w.logger.Warn("department repair incomplete", zap.Int("repaired", repaired), zap.Error(err))
	} else if repaired > 0 {
		w.logger.Info("departments repaired", zap.Int("repaired", repaired))
	}
	return repaired
}
