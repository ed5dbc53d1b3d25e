// Package pipeline runs the background jobs of the backend: the periodic
// liquid-universe classification cycle and cold-storage archival of aged OI
// samples. Jobs are loops that respect context cancellation; the Orchestrator
// supervises them as one group.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/volspike/volspike/internal/domain"
)

// classifyLockKey guards the classification cycle across replicas.
const classifyLockKey = "universe_classify"

// CycleRunner executes one classification cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (domain.CycleResult, error)
}

// UniverseJob runs the liquid-universe classification cycle on a fixed
// interval. A distributed lock keeps the cycle single-flight: if a cycle is
// still running anywhere when the next tick fires, the tick is skipped.
type UniverseJob struct {
	svc      CycleRunner
	locks    domain.LockManager
	interval time.Duration
	logger   *slog.Logger
}

// NewUniverseJob creates a UniverseJob. interval is how often a cycle runs.
func NewUniverseJob(
	svc CycleRunner,
	locks domain.LockManager,
	interval time.Duration,
	logger *slog.Logger,
) *UniverseJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &UniverseJob{
		svc:      svc,
		locks:    locks,
		interval: interval,
		logger:   logger.With(slog.String("component", "universe_job")),
	}
}

// RunOnce executes one locked classification cycle. It returns
// domain.ErrLockHeld when another cycle is already in flight.
func (j *UniverseJob) RunOnce(ctx context.Context) (domain.CycleResult, error) {
	unlock, err := j.locks.Acquire(ctx, classifyLockKey, 2*j.interval)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			return domain.CycleResult{}, err
		}
		return domain.CycleResult{}, fmt.Errorf("pipeline: acquire classify lock: %w", err)
	}
	defer unlock()

	return j.svc.RunCycle(ctx)
}

// RunLoop runs classification cycles until the context is cancelled, starting
// with an immediate cycle. Cycle failures are logged and the loop continues;
// a skipped tick due to lock contention is normal in multi-replica setups.
func (j *UniverseJob) RunLoop(ctx context.Context) error {
	j.logger.Info("universe job started", slog.Duration("interval", j.interval))

	// Run immediately on start.
	j.tick(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("universe job stopped")
			return ctx.Err()
		case <-ticker.C:
			j.tick(ctx)
		}
	}
}

func (j *UniverseJob) tick(ctx context.Context) {
	result, err := j.RunOnce(ctx)
	switch {
	case errors.Is(err, domain.ErrLockHeld):
		j.logger.Info("classification cycle skipped, lock held elsewhere")
	case errors.Is(err, context.Canceled):
	case err != nil:
		j.logger.Error("classification cycle failed", slog.String("error", err.Error()))
	case !result.Success:
		j.logger.Warn("classification cycle completed with errors",
			slog.Int("total", result.TotalSymbols),
			slog.Any("errors", result.Errors),
		)
	}
}
