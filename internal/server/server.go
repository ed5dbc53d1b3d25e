// Package server wires the HTTP API: public universe and health reads,
// machine-authenticated ingestion, tier-gated alert reads, and the WebSocket
// endpoint.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/volspike/volspike/internal/domain"
	"github.com/volspike/volspike/internal/server/handler"
	"github.com/volspike/volspike/internal/server/middleware"
	"github.com/volspike/volspike/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string

	// IngestAPIKey is the shared machine secret; empty disables ingestion.
	IngestAPIKey string

	// AlertMinTier is the lowest subscription tier allowed to read alerts.
	AlertMinTier domain.Tier
}

// Handlers aggregates the HTTP handlers the server registers.
type Handlers struct {
	Health   *handler.HealthHandler
	Ingest   *handler.IngestHandler
	Alerts   *handler.AlertHandler
	Universe *handler.UniverseHandler
}

// Server is the HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered. Authentication is
// applied per route: ingestion and the universe update take the machine
// secret, the alert read takes an end-user bearer token, and the universe
// snapshot and health check are public.
func NewServer(cfg Config, handlers Handlers, verifier domain.TokenVerifier, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	machine := middleware.MachineAuth(cfg.IngestAPIKey)
	user := middleware.UserAuth(verifier, cfg.AlertMinTier)

	// Public routes.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)
	mux.HandleFunc("GET /api/market/open-interest/liquid-universe", handlers.Universe.GetUniverse)

	// Machine-to-machine ingestion routes.
	mux.Handle("POST /api/market/open-interest/ingest",
		machine(http.HandlerFunc(handlers.Ingest.IngestSamples)))
	mux.Handle("POST /api/open-interest-alerts/ingest",
		machine(http.HandlerFunc(handlers.Ingest.IngestAlert)))
	mux.Handle("POST /api/market/open-interest/liquid-universe/update",
		machine(http.HandlerFunc(handlers.Universe.UpdateUniverse)))

	// End-user routes.
	mux.Handle("GET /api/open-interest-alerts",
		user(http.HandlerFunc(handlers.Alerts.ListAlerts)))

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
