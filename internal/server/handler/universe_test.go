package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volspike/volspike/internal/domain"
)

type stubUniverseService struct {
	snapshot    domain.UniverseSnapshot
	snapshotErr error

	updateResult domain.CycleResult
	updateErr    error
	gotDesired   []domain.LiquidSymbol
}

func (s *stubUniverseService) Snapshot(context.Context) (domain.UniverseSnapshot, error) {
	return s.snapshot, s.snapshotErr
}

func (s *stubUniverseService) ApplyUpdate(_ context.Context, desired []domain.LiquidSymbol) (domain.CycleResult, error) {
	s.gotDesired = desired
	return s.updateResult, s.updateErr
}

func TestUniverseHandler_GetUniverse(t *testing.T) {
	stub := &stubUniverseService{
		snapshot: domain.UniverseSnapshot{
			UpdatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			EnterThreshold: 4_000_000,
			ExitThreshold:  2_000_000,
			Symbols: []domain.UniverseMember{
				{
					LiquidSymbol:             domain.LiquidSymbol{Symbol: "BTCUSDT", QuoteVolume24h: 9_000_000},
					EstimatedPollIntervalSec: 9,
				},
			},
			TotalSymbols: 1,
		},
	}
	h := NewUniverseHandler(stub, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/market/open-interest/liquid-universe", nil)
	rec := httptest.NewRecorder()
	h.GetUniverse(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var snap domain.UniverseSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.TotalSymbols)
	require.Len(t, snap.Symbols, 1)
	assert.Equal(t, "BTCUSDT", snap.Symbols[0].Symbol)
	assert.Equal(t, 9, snap.Symbols[0].EstimatedPollIntervalSec)
}

func TestUniverseHandler_GetUniverse_StoreFailure(t *testing.T) {
	h := NewUniverseHandler(&stubUniverseService{snapshotErr: assert.AnError}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/market/open-interest/liquid-universe", nil)
	rec := httptest.NewRecorder()
	h.GetUniverse(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUniverseHandler_UpdateUniverse(t *testing.T) {
	stub := &stubUniverseService{
		updateResult: domain.CycleResult{Success: true, SymbolsAdded: 1, TotalSymbols: 2},
	}
	h := NewUniverseHandler(stub, discardLogger())

	body := `{
		"symbols": [
			{"symbol": "BTCUSDT", "quoteVolume24h": 9000000, "lastSeenAt": "2026-03-01T12:00:00Z"},
			{"symbol": "ETHUSDT", "quoteVolume24h": 4200000, "lastSeenAt": "2026-03-01T12:00:00Z"}
		],
		"updatedAt": "2026-03-01T12:00:00Z"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/market/open-interest/liquid-universe/update", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.UpdateUniverse(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stub.gotDesired, 2)
	assert.Equal(t, "BTCUSDT", stub.gotDesired[0].Symbol)

	var result domain.CycleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.TotalSymbols)
}

func TestUniverseHandler_UpdateUniverse_BadRequests(t *testing.T) {
	for name, body := range map[string]string{
		"malformed json":  `{"symbols": [`,
		"missing symbols": `{"updatedAt": "2026-03-01T12:00:00Z"}`,
	} {
		t.Run(name, func(t *testing.T) {
			stub := &stubUniverseService{}
			h := NewUniverseHandler(stub, discardLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/market/open-interest/liquid-universe/update", strings.NewReader(body))
			rec := httptest.NewRecorder()
			h.UpdateUniverse(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, stub.gotDesired)
		})
	}
}
