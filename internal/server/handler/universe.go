package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/volspike/volspike/internal/domain"
)

// UniverseService defines the liquid-universe operations the handler needs.
type UniverseService interface {
	Snapshot(ctx context.Context) (domain.UniverseSnapshot, error)
	ApplyUpdate(ctx context.Context, desired []domain.LiquidSymbol) (domain.CycleResult, error)
}

// UniverseHandler serves the liquid-universe endpoints: the public snapshot
// and the machine-authenticated external update.
type UniverseHandler struct {
	universe UniverseService
	logger   *slog.Logger
}

// NewUniverseHandler creates a UniverseHandler.
func NewUniverseHandler(universe UniverseService, logger *slog.Logger) *UniverseHandler {
	return &UniverseHandler{
		universe: universe,
		logger:   logger,
	}
}

// GetUniverse returns the current liquid universe, members sorted by
// descending 24h volume, with the estimated polling interval.
// GET /api/market/open-interest/liquid-universe
func (h *UniverseHandler) GetUniverse(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.universe.Snapshot(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: universe snapshot failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load liquid universe")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// updateUniverseRequest is the full desired membership posted by the external
// classification job.
type updateUniverseRequest struct {
	Symbols   []domain.LiquidSymbol `json:"symbols"`
	UpdatedAt time.Time             `json:"updatedAt,omitzero"`
}

// UpdateUniverse reconciles the stored membership against an externally
// computed universe. Symbols absent from the posted list are removed.
// POST /api/market/open-interest/liquid-universe/update
func (h *UniverseHandler) UpdateUniverse(w http.ResponseWriter, r *http.Request) {
	var req updateUniverseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Symbols == nil {
		writeError(w, http.StatusBadRequest, "symbols must be an array")
		return
	}

	result, err := h.universe.ApplyUpdate(r.Context(), req.Symbols)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: universe update failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to apply universe update")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
