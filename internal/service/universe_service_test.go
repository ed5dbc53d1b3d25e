package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volspike/volspike/internal/domain"
	"github.com/volspike/volspike/internal/universe"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func usdtPerp(symbol string) universe.Instrument {
	return universe.Instrument{
		Symbol:       symbol,
		ContractType: "PERPETUAL",
		QuoteAsset:   "USDT",
		Status:       "TRADING",
	}
}

func testUniverseConfig() UniverseConfig {
	return UniverseConfig{
		EnterThreshold: 4_000_000,
		ExitThreshold:  2_000_000,
		MaxReqPerMin:   2000,
		MinIntervalSec: 5,
		MaxIntervalSec: 20,
	}
}

func TestUniverseService_RunCycle_Hysteresis(t *testing.T) {
	store := newFakeSymbolStore(domain.LiquidSymbol{
		Symbol:         "ETHUSDT",
		QuoteVolume24h: 4_500_000,
		EnteredAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		LastSeenAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	market := &fakeMarket{
		instruments: []universe.Instrument{
			usdtPerp("BTCUSDT"),
			usdtPerp("ETHUSDT"),
			usdtPerp("SOLUSDT"),
		},
		volumes: map[string]float64{
			"BTCUSDT": 5_000_000,
			"ETHUSDT": 3_000_000,
			"SOLUSDT": 1_000_000,
		},
	}

	svc := NewUniverseService(store, market, newFakeBus(), testUniverseConfig(), discardLogger())

	result, err := svc.RunCycle(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SymbolsAdded)
	assert.Equal(t, 0, result.SymbolsRemoved)
	assert.Equal(t, 2, result.TotalSymbols)
	assert.ElementsMatch(t, []string{"BTCUSDT", "ETHUSDT"}, store.symbols())
}

func TestUniverseService_RunCycle_ExitBelowThreshold(t *testing.T) {
	store := newFakeSymbolStore(
		domain.LiquidSymbol{Symbol: "BTCUSDT", QuoteVolume24h: 5_000_000},
		domain.LiquidSymbol{Symbol: "DOGEUSDT", QuoteVolume24h: 4_100_000},
	)
	market := &fakeMarket{
		instruments: []universe.Instrument{usdtPerp("BTCUSDT"), usdtPerp("DOGEUSDT")},
		volumes: map[string]float64{
			"BTCUSDT":  5_000_000,
			"DOGEUSDT": 1_500_000, // below exit threshold
		},
	}

	svc := NewUniverseService(store, market, newFakeBus(), testUniverseConfig(), discardLogger())

	result, err := svc.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.SymbolsRemoved)
	assert.ElementsMatch(t, []string{"BTCUSDT"}, store.symbols())
}

func TestUniverseService_RunCycle_PreservesEnteredAt(t *testing.T) {
	entered := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeSymbolStore(domain.LiquidSymbol{
		Symbol:    "BTCUSDT",
		EnteredAt: entered,
	})
	market := &fakeMarket{
		instruments: []universe.Instrument{usdtPerp("BTCUSDT")},
		volumes:     map[string]float64{"BTCUSDT": 6_000_000},
	}

	svc := NewUniverseService(store, market, newFakeBus(), testUniverseConfig(), discardLogger())

	_, err := svc.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entered, store.members["BTCUSDT"].EnteredAt)
	assert.False(t, store.members["BTCUSDT"].LastSeenAt.IsZero())
}

func TestUniverseService_RunCycle_FetchFailureLeavesStoreUntouched(t *testing.T) {
	store := newFakeSymbolStore(domain.LiquidSymbol{Symbol: "BTCUSDT"})

	for name, market := range map[string]*fakeMarket{
		"instrument fetch fails": {infoErr: errors.New("upstream down")},
		"ticker fetch fails": {
			instruments: []universe.Instrument{usdtPerp("BTCUSDT")},
			tickerErr:   errors.New("upstream down"),
		},
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewUniverseService(store, market, newFakeBus(), testUniverseConfig(), discardLogger())

			_, err := svc.RunCycle(context.Background())
			require.Error(t, err)
			assert.Zero(t, store.writes)
			assert.ElementsMatch(t, []string{"BTCUSDT"}, store.symbols())
		})
	}
}

func TestUniverseService_ApplyUpdate_Reconciles(t *testing.T) {
	store := newFakeSymbolStore(
		domain.LiquidSymbol{Symbol: "BTCUSDT"},
		domain.LiquidSymbol{Symbol: "XRPUSDT"},
	)
	svc := NewUniverseService(store, &fakeMarket{}, newFakeBus(), testUniverseConfig(), discardLogger())

	result, err := svc.ApplyUpdate(context.Background(), []domain.LiquidSymbol{
		{Symbol: "btcusdt", QuoteVolume24h: 5_000_000},
		{Symbol: "ETHUSDT", QuoteVolume24h: 4_200_000},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.SymbolsAdded)
	assert.Equal(t, 1, result.SymbolsRemoved)
	assert.Equal(t, 2, result.TotalSymbols)
	assert.ElementsMatch(t, []string{"BTCUSDT", "ETHUSDT"}, store.symbols())
}

func TestUniverseService_ApplyUpdate_PublishesSummary(t *testing.T) {
	bus := newFakeBus()
	svc := NewUniverseService(newFakeSymbolStore(), &fakeMarket{}, bus, testUniverseConfig(), discardLogger())

	_, err := svc.ApplyUpdate(context.Background(), []domain.LiquidSymbol{
		{Symbol: "BTCUSDT", QuoteVolume24h: 5_000_000},
	})
	require.NoError(t, err)

	bus.mu.Lock()
	defer bus.mu.Unlock()
	assert.Len(t, bus.published[ChannelUniverse], 1)
}

func TestUniverseService_Snapshot(t *testing.T) {
	store := newFakeSymbolStore(
		domain.LiquidSymbol{Symbol: "ETHUSDT", QuoteVolume24h: 4_000_000, LastSeenAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		domain.LiquidSymbol{Symbol: "BTCUSDT", QuoteVolume24h: 9_000_000, LastSeenAt: time.Date(2026, 2, 1, 0, 5, 0, 0, time.UTC)},
	)
	svc := NewUniverseService(store, &fakeMarket{}, newFakeBus(), testUniverseConfig(), discardLogger())

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, snap.TotalSymbols)
	require.Len(t, snap.Symbols, 2)
	assert.Equal(t, "BTCUSDT", snap.Symbols[0].Symbol)
	assert.Equal(t, "ETHUSDT", snap.Symbols[1].Symbol)
	// 2 symbols against a 2000 req/min budget clamps to the minimum.
	assert.Equal(t, 5, snap.Symbols[0].EstimatedPollIntervalSec)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 5, 0, 0, time.UTC), snap.UpdatedAt)
	assert.Equal(t, 4_000_000.0, snap.EnterThreshold)
	assert.Equal(t, 2_000_000.0, snap.ExitThreshold)
}

func TestUniverseService_Snapshot_Empty(t *testing.T) {
	svc := NewUniverseService(newFakeSymbolStore(), &fakeMarket{}, newFakeBus(), testUniverseConfig(), discardLogger())

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Zero(t, snap.TotalSymbols)
	assert.Empty(t, snap.Symbols)
}
