package binance

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_FetchInstruments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/fapi/v1/exchangeInfo", r.URL.Path)
		w.Write([]byte(`{
			"symbols": [
				{"symbol": "BTCUSDT", "contractType": "PERPETUAL", "quoteAsset": "USDT", "status": "TRADING"},
				{"symbol": "BTCUSDT_240628", "contractType": "CURRENT_QUARTER", "quoteAsset": "USDT", "status": "TRADING"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, testLogger())

	instruments, err := c.FetchInstruments(context.Background())
	require.NoError(t, err)

	require.Len(t, instruments, 2)
	assert.Equal(t, "BTCUSDT", instruments[0].Symbol)
	assert.Equal(t, "PERPETUAL", instruments[0].ContractType)
	assert.Equal(t, "CURRENT_QUARTER", instruments[1].ContractType)
}

func TestClient_FetchInstruments_ProxyFallback(t *testing.T) {
	var directHits int
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		directHits++
		w.Write([]byte(`{"symbols": [{"symbol": "BTCUSDT", "contractType": "PERPETUAL", "quoteAsset": "USDT", "status": "TRADING"}]}`))
	}))
	defer direct.Close()

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream timeout", http.StatusBadGateway)
	}))
	defer proxy.Close()

	c := NewClient(Config{BaseURL: direct.URL, ProxyURL: proxy.URL}, testLogger())

	instruments, err := c.FetchInstruments(context.Background())
	require.NoError(t, err)
	assert.Len(t, instruments, 1)
	assert.Equal(t, 1, directHits)
}

func TestClient_FetchInstruments_ProxyPreferred(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("direct endpoint must not be hit when the proxy answers")
	}))
	defer direct.Close()

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/binance/futures/info", r.URL.Path)
		w.Write([]byte(`{"symbols": [{"symbol": "ETHUSDT", "contractType": "PERPETUAL", "quoteAsset": "USDT", "status": "TRADING"}]}`))
	}))
	defer proxy.Close()

	c := NewClient(Config{BaseURL: direct.URL, ProxyURL: proxy.URL}, testLogger())

	instruments, err := c.FetchInstruments(context.Background())
	require.NoError(t, err)
	require.Len(t, instruments, 1)
	assert.Equal(t, "ETHUSDT", instruments[0].Symbol)
}

func TestClient_FetchQuoteVolumes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/fapi/v1/ticker/24hr", r.URL.Path)
		w.Write([]byte(`[
			{"symbol": "BTCUSDT", "quoteVolume": "9000000.5"},
			{"symbol": "ETHUSDT", "quoteVolume": "not-a-number"},
			{"symbol": "SOLUSDT", "quoteVolume": ""}
		]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, testLogger())

	volumes, err := c.FetchQuoteVolumes(context.Background())
	require.NoError(t, err)

	// Malformed and missing volumes are skipped, not errors.
	assert.Equal(t, map[string]float64{"BTCUSDT": 9000000.5}, volumes)
}

func TestClient_FetchQuoteVolumes_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code": -1003, "msg": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, testLogger())

	_, err := c.FetchQuoteVolumes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
