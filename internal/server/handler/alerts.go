package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/volspike/volspike/internal/domain"
)

// AlertReader lists persisted alerts for the read path.
type AlertReader interface {
	ListAlerts(ctx context.Context, opts domain.AlertListOpts) ([]domain.OIAlert, error)
}

// AlertHandler serves the end-user alert read endpoint.
type AlertHandler struct {
	alerts AlertReader
	logger *slog.Logger
}

// NewAlertHandler creates an AlertHandler.
func NewAlertHandler(alerts AlertReader, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{
		alerts: alerts,
		logger: logger,
	}
}

// ListAlerts returns recent alerts, newest first, optionally filtered by
// symbol and direction.
// GET /api/open-interest-alerts?limit=50&symbol=BTCUSDT&direction=UP
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	opts := parseAlertListOpts(r)
	if opts.Direction != "" && !opts.Direction.Valid() {
		writeError(w, http.StatusBadRequest, "direction must be UP or DOWN")
		return
	}

	alerts, err := h.alerts.ListAlerts(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list alerts failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
	})
}
