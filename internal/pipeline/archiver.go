package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// SampleArchiver moves aged OI samples to cold storage.
type SampleArchiver interface {
	ArchiveSamples(ctx context.Context, before time.Time) (int64, error)
}

// Archiver periodically moves OI samples older than the retention window out
// of Postgres into object storage.
type Archiver struct {
	archiver      SampleArchiver
	retentionDays int
	interval      time.Duration
	logger        *slog.Logger
}

// NewArchiver creates an Archiver that runs every interval with the given
// retention window.
func NewArchiver(archiver SampleArchiver, retentionDays int, interval time.Duration, logger *slog.Logger) *Archiver {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Archiver{
		archiver:      archiver,
		retentionDays: retentionDays,
		interval:      interval,
		logger:        logger.With(slog.String("component", "archiver")),
	}
}

// Run executes a single archive pass.
func (a *Archiver) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-time.Duration(a.retentionDays) * 24 * time.Hour)

	archived, err := a.archiver.ArchiveSamples(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("pipeline: archive samples before %v: %w", cutoff, err)
	}

	a.logger.Info("archive run complete",
		slog.Time("cutoff", cutoff),
		slog.Int64("samples_archived", archived),
	)
	return nil
}

// RunLoop runs archive passes on a fixed interval until the context is
// cancelled. The first pass runs after one full interval, not at startup.
func (a *Archiver) RunLoop(ctx context.Context) error {
	a.logger.Info("archiver started",
		slog.Duration("interval", a.interval),
		slog.Int("retention_days", a.retentionDays),
	)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("archiver stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("archive run failed", slog.String("error", err.Error()))
			}
		}
	}
}
