// Package binance is the REST client for the Binance USDT-M futures API,
// limited to the two public endpoints the classification job needs: exchange
// metadata and 24h ticker statistics.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/volspike/volspike/internal/universe"
)

// Config holds client parameters. ProxyURL, when set, is tried first for the
// exchangeInfo fetch (deployments that must route metadata through an
// allow-listed proxy), with direct Binance as fallback.
type Config struct {
	BaseURL       string
	ProxyURL      string
	InfoTimeout   time.Duration
	TickerTimeout time.Duration
}

// Client fetches futures market metadata and ticker statistics. Both fetches
// carry short explicit timeouts so a stalled upstream cannot block the
// classification scheduler indefinitely.
type Client struct {
	baseURL       string
	proxyURL      string
	infoTimeout   time.Duration
	tickerTimeout time.Duration
	httpClient    *http.Client
	logger        *slog.Logger
}

// NewClient creates a Client. Zero timeouts fall back to 15s / 30s, matching
// the budgets of the production job.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	infoTimeout := cfg.InfoTimeout
	if infoTimeout <= 0 {
		infoTimeout = 15 * time.Second
	}
	tickerTimeout := cfg.TickerTimeout
	if tickerTimeout <= 0 {
		tickerTimeout = 30 * time.Second
	}

	return &Client{
		baseURL:       cfg.BaseURL,
		proxyURL:      cfg.ProxyURL,
		infoTimeout:   infoTimeout,
		tickerTimeout: tickerTimeout,
		// Per-request deadlines come from the context; the client timeout is
		// a backstop at the larger of the two budgets.
		httpClient: &http.Client{Timeout: tickerTimeout},
		logger:     logger.With(slog.String("component", "binance")),
	}
}

// FetchInstruments returns the exchange's instrument descriptors. The proxy is
// tried first when configured; on proxy failure the client logs and falls
// back to direct Binance.
func (c *Client) FetchInstruments(ctx context.Context) ([]universe.Instrument, error) {
	if c.proxyURL != "" {
		instruments, err := c.fetchInstrumentsFrom(ctx, c.proxyURL+"/api/binance/futures/info")
		if err == nil {
			return instruments, nil
		}
		c.logger.WarnContext(ctx, "proxy unavailable, using direct binance",
			slog.String("error", err.Error()),
		)
	}

	return c.fetchInstrumentsFrom(ctx, c.baseURL+"/fapi/v1/exchangeInfo")
}

func (c *Client) fetchInstrumentsFrom(ctx context.Context, url string) ([]universe.Instrument, error) {
	ctx, cancel := context.WithTimeout(ctx, c.infoTimeout)
	defer cancel()

	body, err := c.doGet(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("binance: get exchange info: %w", err)
	}

	var info exchangeInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("binance: decode exchange info: %w", err)
	}

	instruments := make([]universe.Instrument, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		instruments = append(instruments, s.toInstrument())
	}
	return instruments, nil
}

// FetchQuoteVolumes returns the 24h quote volume per canonical symbol.
// Tickers with missing or malformed volumes are skipped, not errors: the
// classifier treats symbols without statistics as "no information".
func (c *Client) FetchQuoteVolumes(ctx context.Context) (map[string]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.tickerTimeout)
	defer cancel()

	body, err := c.doGet(ctx, c.baseURL+"/fapi/v1/ticker/24hr")
	if err != nil {
		return nil, fmt.Errorf("binance: get 24hr tickers: %w", err)
	}

	var tickers []apiTicker
	if err := json.Unmarshal(body, &tickers); err != nil {
		return nil, fmt.Errorf("binance: decode 24hr tickers: %w", err)
	}

	volumes := make(map[string]float64, len(tickers))
	for _, t := range tickers {
		v, ok := t.quoteVolume()
		if !ok {
			continue
		}
		volumes[universe.NormalizeSymbol(t.Symbol)] = v
	}
	return volumes, nil
}

// doGet performs a GET request and returns the body for 2xx responses.
func (c *Client) doGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, url, string(snippet))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
