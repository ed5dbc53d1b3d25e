package universe

// Instrument is the slice of exchange metadata the filter cares about.
type Instrument struct {
	Symbol       string
	ContractType string
	QuoteAsset   string
	Status       string
}

const (
	contractPerpetual = "PERPETUAL"
	statusTrading     = "TRADING"
)

// FilterUSDTPerpetuals selects the tradeable candidate set from exchange
// metadata: active USDT-margined perpetual contracts. A nil or empty
// instrument list yields an empty result rather than an error, so a cycle fed
// malformed metadata degrades to "no candidates" instead of crashing.
func FilterUSDTPerpetuals(instruments []Instrument) []string {
	out := make([]string, 0, len(instruments))
	for _, in := range instruments {
		if in.ContractType != contractPerpetual {
			continue
		}
		if in.QuoteAsset != "USDT" {
			continue
		}
		if in.Status != statusTrading {
			continue
		}
		if in.Symbol == "" {
			continue
		}
		out = append(out, NormalizeSymbol(in.Symbol))
	}
	return out
}
