package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/volspike/volspike/internal/domain"
	"github.com/volspike/volspike/internal/service"
)

// IngestService defines the ingestion operations the handler requires.
type IngestService interface {
	IngestSamples(ctx context.Context, items []service.SampleItem, ts time.Time, source domain.SampleSource) (domain.BatchResult, error)
	IngestAlert(ctx context.Context, alert domain.OIAlert) (string, error)
}

// IngestHandler serves the machine-to-machine ingestion endpoints.
type IngestHandler struct {
	ingest IngestService
	logger *slog.Logger
}

// NewIngestHandler creates an IngestHandler.
func NewIngestHandler(ingest IngestService, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{
		ingest: ingest,
		logger: logger,
	}
}

// ingestSamplesRequest is the sample batch payload posted by the upstream
// poller. Timestamp and Source apply to every item.
type ingestSamplesRequest struct {
	Data      []service.SampleItem `json:"data"`
	Timestamp time.Time            `json:"timestamp,omitzero"`
	Source    domain.SampleSource  `json:"source,omitempty"`
}

// IngestSamples accepts a batch of OI samples. Items fail independently;
// the response reports inserted counts plus per-item errors.
// POST /api/market/open-interest/ingest
func (h *IngestHandler) IngestSamples(w http.ResponseWriter, r *http.Request) {
	var req ingestSamplesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Data) == 0 {
		writeError(w, http.StatusBadRequest, "data must be a non-empty array")
		return
	}

	result, err := h.ingest.IngestSamples(r.Context(), req.Data, req.Timestamp, req.Source)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: ingest samples failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to persist samples")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// IngestAlert accepts one alert payload and returns its new identifier.
// POST /api/open-interest-alerts/ingest
func (h *IngestHandler) IngestAlert(w http.ResponseWriter, r *http.Request) {
	var alert domain.OIAlert
	if err := decodeJSON(r, &alert); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.ingest.IngestAlert(r.Context(), alert)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAlert) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: ingest alert failed",
			slog.String("symbol", alert.Symbol),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to persist alert")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      id,
	})
}
