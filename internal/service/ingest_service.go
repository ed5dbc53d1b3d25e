package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/volspike/volspike/internal/domain"
	"github.com/volspike/volspike/internal/notify"
	"github.com/volspike/volspike/internal/universe"
)

// AlertStream is the durable Redis stream recent alerts are appended to, so
// late-joining clients can backfill what pub/sub already dropped.
const AlertStream = "stream:oi:alerts"

// broadcastTimeout bounds the fire-and-forget delivery work that runs after
// an ingestion write has already been acknowledged.
const broadcastTimeout = 10 * time.Second

// IngestService validates and persists OI samples and alerts, then fans
// successful writes out to the signal bus and notifiers. Delivery is
// best-effort: by the time it runs, the caller already has its response.
type IngestService struct {
	samples  domain.OISampleStore
	alerts   domain.OIAlertStore
	bus      domain.SignalBus
	notifier *notify.Notifier
	logger   *slog.Logger
}

// NewIngestService creates an IngestService with all required dependencies.
// The notifier may be nil when outbound notifications are not configured.
func NewIngestService(
	samples domain.OISampleStore,
	alerts domain.OIAlertStore,
	bus domain.SignalBus,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		samples:  samples,
		alerts:   alerts,
		bus:      bus,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "ingest")),
	}
}

// SampleItem is one entry of an ingestion batch before validation.
type SampleItem struct {
	Symbol          string   `json:"symbol"`
	OpenInterest    *float64 `json:"openInterest"`
	OpenInterestUsd *float64 `json:"openInterestUsd,omitempty"`
	MarkPrice       *float64 `json:"markPrice,omitempty"`
}

// IngestSamples validates each item of the batch independently and persists
// the valid ones. A bad item is skipped and reported without blocking its
// siblings. The shared timestamp and source apply to every item; a zero
// timestamp defaults to now and an empty source to "snapshot".
//
// The returned BatchResult has Success set only when every item passed. A
// store-level insert failure is returned as an error instead, so the caller
// can retry the whole batch.
func (s *IngestService) IngestSamples(ctx context.Context, items []SampleItem, ts time.Time, source domain.SampleSource) (domain.BatchResult, error) {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if source == "" {
		source = domain.SourceSnapshot
	}

	var result domain.BatchResult
	valid := make([]domain.OISample, 0, len(items))

	for i, item := range items {
		symbol := universe.NormalizeSymbol(item.Symbol)
		if symbol == "" {
			result.Skipped++
			result.Errors = append(result.Errors, domain.ItemError{
				Index:  i,
				Reason: "missing symbol",
			})
			continue
		}
		if item.OpenInterest == nil || math.IsNaN(*item.OpenInterest) || math.IsInf(*item.OpenInterest, 0) || *item.OpenInterest < 0 {
			result.Skipped++
			result.Errors = append(result.Errors, domain.ItemError{
				Index:  i,
				Symbol: symbol,
				Reason: "openInterest must be a non-negative number",
			})
			continue
		}

		sample := domain.OISample{
			Symbol:          symbol,
			Timestamp:       ts,
			OpenInterest:    *item.OpenInterest,
			OpenInterestUsd: item.OpenInterestUsd,
			MarkPrice:       item.MarkPrice,
			Source:          source,
		}
		if sample.OpenInterestUsd == nil && sample.MarkPrice != nil {
			usd := sample.OpenInterest * *sample.MarkPrice
			sample.OpenInterestUsd = &usd
		}
		valid = append(valid, sample)
	}

	if len(valid) > 0 {
		inserted, err := s.samples.InsertBatch(ctx, valid)
		if err != nil {
			return domain.BatchResult{}, fmt.Errorf("ingest: insert samples: %w", err)
		}
		result.Inserted = inserted

		go s.broadcastSamples(valid)
	}

	result.Success = len(result.Errors) == 0
	return result, nil
}

// IngestAlert validates and persists a single alert, returning its generated
// identifier. A direction other than UP/DOWN rejects the whole call with no
// side effects.
func (s *IngestService) IngestAlert(ctx context.Context, alert domain.OIAlert) (string, error) {
	if !alert.Direction.Valid() {
		return "", fmt.Errorf("%w: direction %q", domain.ErrInvalidAlert, alert.Direction)
	}

	alert.Symbol = universe.NormalizeSymbol(alert.Symbol)
	if alert.Symbol == "" {
		return "", fmt.Errorf("%w: missing symbol", domain.ErrInvalidAlert)
	}

	alert.ID = uuid.New().String()
	alert.CreatedAt = time.Now().UTC()
	if alert.Timestamp.IsZero() {
		alert.Timestamp = alert.CreatedAt
	}

	if err := s.alerts.Insert(ctx, alert); err != nil {
		return "", fmt.Errorf("ingest: insert alert: %w", err)
	}

	go s.broadcastAlert(alert)

	return alert.ID, nil
}

// broadcastSamples publishes the symbols of a persisted batch to the update
// channel. Runs detached from the request; failures are logged only.
func (s *IngestService) broadcastSamples(samples []domain.OISample) {
	ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]any{
		"type":      "oi_update",
		"count":     len(samples),
		"symbols":   sampleSymbols(samples),
		"source":    samples[0].Source,
		"timestamp": samples[0].Timestamp,
	})
	if err != nil {
		return
	}

	if err := s.bus.Publish(ctx, ChannelOIUpdate, payload); err != nil {
		s.logger.Warn("sample broadcast failed", slog.String("error", err.Error()))
	}
}

// broadcastAlert fans a persisted alert out to the pub/sub channel, the
// durable alert stream, and the notifier. Each leg fails independently and
// is logged only.
func (s *IngestService) broadcastAlert(alert domain.OIAlert) {
	ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
	defer cancel()

	payload, err := json.Marshal(alert)
	if err != nil {
		return
	}

	if err := s.bus.Publish(ctx, ChannelOIAlert, payload); err != nil {
		s.logger.Warn("alert broadcast failed", slog.String("error", err.Error()))
	}
	if err := s.bus.StreamAppend(ctx, AlertStream, payload); err != nil {
		s.logger.Warn("alert stream append failed", slog.String("error", err.Error()))
	}

	if s.notifier != nil {
		title := fmt.Sprintf("OI %s %s %+.2f%%", alert.Direction, alert.Symbol, alert.PctChange*100)
		message := fmt.Sprintf(
			"%s open interest moved %s over %s\nbaseline: %.2f\ncurrent: %.2f\nchange: %+.2f (%+.2f%%)",
			alert.Symbol, alert.Direction, alert.Timeframe,
			alert.Baseline, alert.Current, alert.AbsChange, alert.PctChange*100,
		)
		_ = s.notifier.Notify(ctx, notify.EventOIAlert, title, message)
	}
}

// ListAlerts returns recent alerts, newest first, after clamping the limit.
func (s *IngestService) ListAlerts(ctx context.Context, opts domain.AlertListOpts) ([]domain.OIAlert, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Limit > 200 {
		opts.Limit = 200
	}
	return s.alerts.ListRecent(ctx, opts)
}

func sampleSymbols(samples []domain.OISample) []string {
	out := make([]string, 0, len(samples))
	for _, s := range samples {
		out = append(out, s.Symbol)
	}
	return out
}
