package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Orchestrator supervises the background jobs: the classification loop and,
// when archival is enabled, the archiver loop.
type Orchestrator struct {
	universeJob *UniverseJob
	archiver    *Archiver // nil when archival is disabled
	logger      *slog.Logger
}

// NewOrchestrator creates an Orchestrator. archiver may be nil.
func NewOrchestrator(universeJob *UniverseJob, archiver *Archiver, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		universeJob: universeJob,
		archiver:    archiver,
		logger:      logger.With(slog.String("component", "orchestrator")),
	}
}

// Run starts all job loops as concurrent goroutines under an errgroup. Each
// loop respects ctx cancellation; cancellation yields a nil return while a
// genuine loop failure cancels the rest and propagates.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("pipeline starting")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := o.universeJob.RunLoop(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("universe job: %w", err)
	})

	if o.archiver != nil {
		g.Go(func() error {
			err := o.archiver.RunLoop(ctx)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("archiver: %w", err)
		})
	}

	err := g.Wait()
	if err != nil {
		o.logger.Error("pipeline stopped with error", slog.String("error", err.Error()))
		return err
	}

	o.logger.Info("pipeline stopped")
	return nil
}
