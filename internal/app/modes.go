package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/volspike/volspike/internal/domain"
	"github.com/volspike/volspike/internal/pipeline"
	"github.com/volspike/volspike/internal/server"
	"github.com/volspike/volspike/internal/server/handler"
	"github.com/volspike/volspike/internal/server/ws"
	"github.com/volspike/volspike/internal/service"
)

// shutdownGrace is how long in-flight HTTP requests get to finish.
const shutdownGrace = 10 * time.Second

// buildServices constructs the service layer shared by all modes.
func (a *App) buildServices(deps *Dependencies) (*service.UniverseService, *service.IngestService) {
	universeSvc := service.NewUniverseService(
		deps.SymbolStore,
		deps.Market,
		deps.SignalBus,
		service.UniverseConfig{
			EnterThreshold: a.cfg.Universe.EnterThreshold,
			ExitThreshold:  a.cfg.Universe.ExitThreshold,
			MaxReqPerMin:   a.cfg.Universe.MaxReqPerMin,
			MinIntervalSec: a.cfg.Universe.MinIntervalSec,
			MaxIntervalSec: a.cfg.Universe.MaxIntervalSec,
		},
		a.logger,
	)

	ingestSvc := service.NewIngestService(
		deps.SampleStore,
		deps.AlertStore,
		deps.SignalBus,
		deps.Notifier,
		a.logger,
	)

	return universeSvc, ingestSvc
}

// buildServer constructs the HTTP server and WebSocket hub.
func (a *App) buildServer(deps *Dependencies, universeSvc *service.UniverseService, ingestSvc *service.IngestService) (*server.Server, *ws.Hub) {
	hub := ws.NewHub(deps.SignalBus, a.logger)

	handlers := server.Handlers{
		Health:   handler.NewHealthHandler(deps.PostgresPing, deps.RedisPing, a.logger),
		Ingest:   handler.NewIngestHandler(ingestSvc, a.logger),
		Alerts:   handler.NewAlertHandler(ingestSvc, a.logger),
		Universe: handler.NewUniverseHandler(universeSvc, a.logger),
	}

	verifier := service.NewStaticTokenVerifier(a.cfg.Auth.Tokens)

	srv := server.NewServer(server.Config{
		Port:         a.cfg.Server.Port,
		CORSOrigins:  a.cfg.Server.CORSOrigins,
		IngestAPIKey: a.cfg.Ingest.APIKey,
		AlertMinTier: domain.TierPro,
	}, handlers, verifier, hub, a.logger)

	return srv, hub
}

// buildPipeline constructs the background jobs: the classification loop and,
// when archival is enabled, the archiver.
func (a *App) buildPipeline(deps *Dependencies, universeSvc *service.UniverseService) *pipeline.Orchestrator {
	universeJob := pipeline.NewUniverseJob(
		universeSvc,
		deps.LockManager,
		a.cfg.Universe.ClassifyInterval.Duration,
		a.logger,
	)

	var archiver *pipeline.Archiver
	if deps.SampleArchiver != nil {
		archiver = pipeline.NewArchiver(
			deps.SampleArchiver,
			a.cfg.Archive.RetentionDays,
			a.cfg.Archive.Interval.Duration,
			a.logger,
		)
	}

	return pipeline.NewOrchestrator(universeJob, archiver, a.logger)
}

// ServeMode runs the HTTP API and the WebSocket hub without the internal
// classification loop. Universe updates arrive via the update endpoint from
// an external job.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	universeSvc, ingestSvc := a.buildServices(deps)
	srv, hub := a.buildServer(deps, universeSvc, ingestSvc)

	return a.runGroup(ctx, srv, hub, nil)
}

// ClassifyMode runs only the background jobs: periodic classification and
// archival. No HTTP surface is exposed.
func (a *App) ClassifyMode(ctx context.Context, deps *Dependencies) error {
	universeSvc, _ := a.buildServices(deps)
	orch := a.buildPipeline(deps, universeSvc)

	return orch.Run(ctx)
}

// FullMode runs everything: HTTP API, WebSocket hub, classification loop,
// and archival.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	universeSvc, ingestSvc := a.buildServices(deps)
	srv, hub := a.buildServer(deps, universeSvc, ingestSvc)
	orch := a.buildPipeline(deps, universeSvc)

	return a.runGroup(ctx, srv, hub, orch)
}

// runGroup starts the server, hub, and optional pipeline under one errgroup
// and shuts the server down gracefully when the context is cancelled.
func (a *App) runGroup(ctx context.Context, srv *server.Server, hub *ws.Hub, orch *pipeline.Orchestrator) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := hub.Run(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("ws hub: %w", err)
	})

	if orch != nil {
		g.Go(func() error {
			return orch.Run(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
