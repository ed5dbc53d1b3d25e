// Package service implements the application use cases: liquid-universe
// classification and reconciliation, and ingestion of OI samples and alerts.
// Services depend only on the domain interfaces plus the market-data client,
// so stores and buses can be swapped in tests.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/volspike/volspike/internal/domain"
	"github.com/volspike/volspike/internal/universe"
)

// Broadcast channels used by the real-time layer.
const (
	ChannelOIAlert  = "ch:oi:alert"
	ChannelOIUpdate = "ch:oi:update"
	ChannelUniverse = "ch:oi:universe"
)

// MarketData provides exchange instrument metadata and 24h ticker statistics.
type MarketData interface {
	FetchInstruments(ctx context.Context) ([]universe.Instrument, error)
	FetchQuoteVolumes(ctx context.Context) (map[string]float64, error)
}

// UniverseConfig holds the classification and interval-estimation parameters.
type UniverseConfig struct {
	EnterThreshold float64
	ExitThreshold  float64
	MaxReqPerMin   int
	MinIntervalSec int
	MaxIntervalSec int
}

// UniverseService owns the liquid universe: it classifies membership from
// exchange data, reconciles the persistent set, and serves the public
// snapshot. All writes to the membership store go through this service.
type UniverseService struct {
	symbols domain.LiquidSymbolStore
	market  MarketData
	bus     domain.SignalBus
	cfg     UniverseConfig
	logger  *slog.Logger
}

// NewUniverseService creates a UniverseService with all required dependencies.
func NewUniverseService(
	symbols domain.LiquidSymbolStore,
	market MarketData,
	bus domain.SignalBus,
	cfg UniverseConfig,
	logger *slog.Logger,
) *UniverseService {
	return &UniverseService{
		symbols: symbols,
		market:  market,
		bus:     bus,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "universe")),
	}
}

// RunCycle executes one full classification pass: fetch exchange metadata and
// ticker stats, compute the next membership with hysteresis, and reconcile
// the store. If either upstream fetch fails the cycle aborts before touching
// the store, so the previous membership stays authoritative.
func (s *UniverseService) RunCycle(ctx context.Context) (domain.CycleResult, error) {
	start := time.Now()

	instruments, err := s.market.FetchInstruments(ctx)
	if err != nil {
		return domain.CycleResult{}, fmt.Errorf("universe: fetch instruments: %w", err)
	}

	volumes, err := s.market.FetchQuoteVolumes(ctx)
	if err != nil {
		return domain.CycleResult{}, fmt.Errorf("universe: fetch quote volumes: %w", err)
	}

	current, err := s.symbols.List(ctx)
	if err != nil {
		return domain.CycleResult{}, fmt.Errorf("universe: load membership: %w", err)
	}

	currentSet := make(map[string]bool, len(current))
	for _, m := range current {
		currentSet[m.Symbol] = true
	}

	candidates := universe.FilterUSDTPerpetuals(instruments)
	now := time.Now().UTC()
	next := universe.Classify(candidates, volumes, s.cfg.EnterThreshold, s.cfg.ExitThreshold, currentSet, now)

	desired := make([]domain.LiquidSymbol, 0, len(next))
	for sym, meta := range next {
		desired = append(desired, domain.LiquidSymbol{
			Symbol:         sym,
			QuoteVolume24h: meta.QuoteVolume24h,
			EnteredAt:      meta.EnteredAt,
			LastSeenAt:     meta.LastSeenAt,
		})
	}

	result := s.reconcile(ctx, current, desired, now)

	s.logger.InfoContext(ctx, "classification cycle complete",
		slog.Int("candidates", len(candidates)),
		slog.Int("total", result.TotalSymbols),
		slog.Int("added", result.SymbolsAdded),
		slog.Int("removed", result.SymbolsRemoved),
		slog.Duration("elapsed", time.Since(start)),
	)

	return result, nil
}

// ApplyUpdate reconciles the stored membership against an externally computed
// universe, as posted by the out-of-process classification job. The posted
// list is the complete desired membership; symbols absent from it are removed.
func (s *UniverseService) ApplyUpdate(ctx context.Context, desired []domain.LiquidSymbol) (domain.CycleResult, error) {
	current, err := s.symbols.List(ctx)
	if err != nil {
		return domain.CycleResult{}, fmt.Errorf("universe: load membership: %w", err)
	}

	now := time.Now().UTC()
	normalized := make([]domain.LiquidSymbol, 0, len(desired))
	for _, m := range desired {
		m.Symbol = universe.NormalizeSymbol(m.Symbol)
		if m.Symbol == "" {
			continue
		}
		if m.LastSeenAt.IsZero() {
			m.LastSeenAt = now
		}
		normalized = append(normalized, m)
	}

	result := s.reconcile(ctx, current, normalized, now)

	s.logger.InfoContext(ctx, "external universe update applied",
		slog.Int("total", result.TotalSymbols),
		slog.Int("added", result.SymbolsAdded),
		slog.Int("removed", result.SymbolsRemoved),
	)

	return result, nil
}

// reconcile upserts the desired membership and deletes exited symbols. Store
// failures are collected rather than aborting, so a transient error on one
// batch does not block the rest of the reconciliation.
func (s *UniverseService) reconcile(ctx context.Context, current, desired []domain.LiquidSymbol, now time.Time) domain.CycleResult {
	currentBySymbol := make(map[string]domain.LiquidSymbol, len(current))
	for _, m := range current {
		currentBySymbol[m.Symbol] = m
	}

	var added int
	upserts := make([]domain.LiquidSymbol, 0, len(desired))
	desiredSet := make(map[string]bool, len(desired))
	for _, m := range desired {
		desiredSet[m.Symbol] = true
		if prev, ok := currentBySymbol[m.Symbol]; ok {
			// Retained member: the original entry time wins.
			if m.EnteredAt.IsZero() {
				m.EnteredAt = prev.EnteredAt
			}
		} else {
			added++
			if m.EnteredAt.IsZero() {
				m.EnteredAt = now
			}
		}
		upserts = append(upserts, m)
	}

	var removals []string
	for _, m := range current {
		if !desiredSet[m.Symbol] {
			removals = append(removals, m.Symbol)
		}
	}

	var errs []string
	if len(upserts) > 0 {
		if err := s.symbols.UpsertBatch(ctx, upserts); err != nil {
			errs = append(errs, fmt.Sprintf("upsert membership: %v", err))
		}
	}
	if len(removals) > 0 {
		if err := s.symbols.DeleteBatch(ctx, removals); err != nil {
			errs = append(errs, fmt.Sprintf("delete exited symbols: %v", err))
		}
	}

	result := domain.CycleResult{
		Success:        len(errs) == 0,
		SymbolsAdded:   added,
		SymbolsRemoved: len(removals),
		TotalSymbols:   len(desired),
		Errors:         errs,
		CompletedAt:    now,
	}

	s.broadcastSummary(ctx, result)
	return result
}

// broadcastSummary publishes the cycle outcome to the universe channel so
// connected clients learn about membership changes without polling. Publish
// failures are logged only; the reconciliation already succeeded.
func (s *UniverseService) broadcastSummary(ctx context.Context, result domain.CycleResult) {
	payload, err := json.Marshal(map[string]any{
		"type":           "universe_update",
		"totalSymbols":   result.TotalSymbols,
		"symbolsAdded":   result.SymbolsAdded,
		"symbolsRemoved": result.SymbolsRemoved,
		"updatedAt":      result.CompletedAt,
	})
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, ChannelUniverse, payload); err != nil {
		s.logger.WarnContext(ctx, "universe broadcast failed",
			slog.String("error", err.Error()),
		)
	}
}

// Snapshot returns the public view of the liquid universe: members sorted by
// descending 24h volume, each annotated with the polling interval implied by
// the current universe size.
func (s *UniverseService) Snapshot(ctx context.Context) (domain.UniverseSnapshot, error) {
	members, err := s.symbols.List(ctx)
	if err != nil {
		return domain.UniverseSnapshot{}, fmt.Errorf("universe: load membership: %w", err)
	}

	interval := universe.EstimateInterval(len(members), s.cfg.MaxReqPerMin, s.cfg.MinIntervalSec, s.cfg.MaxIntervalSec)

	out := make([]domain.UniverseMember, 0, len(members))
	var updatedAt time.Time
	for _, m := range members {
		out = append(out, domain.UniverseMember{
			LiquidSymbol:             m,
			EstimatedPollIntervalSec: interval,
		})
		if m.LastSeenAt.After(updatedAt) {
			updatedAt = m.LastSeenAt
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].QuoteVolume24h > out[j].QuoteVolume24h
	})

	return domain.UniverseSnapshot{
		UpdatedAt:      updatedAt,
		EnterThreshold: s.cfg.EnterThreshold,
		ExitThreshold:  s.cfg.ExitThreshold,
		Symbols:        out,
		TotalSymbols:   len(out),
	}, nil
}
