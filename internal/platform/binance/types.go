package binance

import (
	"strconv"

	"github.com/volspike/volspike/internal/universe"
)

// exchangeInfoResponse mirrors the /fapi/v1/exchangeInfo payload, reduced to
// the fields the universe filter needs.
type exchangeInfoResponse struct {
	Symbols []apiSymbol `json:"symbols"`
}

type apiSymbol struct {
	Symbol       string `json:"symbol"`
	ContractType string `json:"contractType"`
	QuoteAsset   string `json:"quoteAsset"`
	Status       string `json:"status"`
}

func (s apiSymbol) toInstrument() universe.Instrument {
	return universe.Instrument{
		Symbol:       s.Symbol,
		ContractType: s.ContractType,
		QuoteAsset:   s.QuoteAsset,
		Status:       s.Status,
	}
}

// apiTicker mirrors one element of the /fapi/v1/ticker/24hr array. Binance
// encodes numeric fields as strings.
type apiTicker struct {
	Symbol      string `json:"symbol"`
	QuoteVolume string `json:"quoteVolume"`
}

// quoteVolume parses the 24h quote volume, returning ok=false for missing or
// malformed values so the caller can skip the symbol this cycle.
func (t apiTicker) quoteVolume() (float64, bool) {
	if t.QuoteVolume == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(t.QuoteVolume, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
