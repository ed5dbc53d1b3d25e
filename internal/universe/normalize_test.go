package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"btcusdt", "BTCUSDT"},
		{"BTC-USDT", "BTCUSDT"},
		{"btc_usdt", "BTCUSDT"},
		{" eth-usdt ", "ETHUSDT"},
		{"1000PEPE_USDT", "1000PEPEUSDT"},
		{"", ""},
	}

	for _, tc := range tests {
		got := NormalizeSymbol(tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)

		// Idempotence: normalizing a canonical symbol is a no-op.
		assert.Equal(t, got, NormalizeSymbol(got))
	}
}

func TestFilterUSDTPerpetuals(t *testing.T) {
	instruments := []Instrument{
		{Symbol: "BTCUSDT", ContractType: "PERPETUAL", QuoteAsset: "USDT", Status: "TRADING"},
		{Symbol: "ETHUSDT", ContractType: "PERPETUAL", QuoteAsset: "USDT", Status: "TRADING"},
		{Symbol: "BTCUSD_250926", ContractType: "CURRENT_QUARTER", QuoteAsset: "USD", Status: "TRADING"},
		{Symbol: "DOGEUSDC", ContractType: "PERPETUAL", QuoteAsset: "USDC", Status: "TRADING"},
		{Symbol: "LUNAUSDT", ContractType: "PERPETUAL", QuoteAsset: "USDT", Status: "BREAK"},
		{Symbol: "", ContractType: "PERPETUAL", QuoteAsset: "USDT", Status: "TRADING"},
	}

	got := FilterUSDTPerpetuals(instruments)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, got)
}

func TestFilterUSDTPerpetualsMalformedMetadata(t *testing.T) {
	// Missing metadata degrades to an empty candidate set, never an error.
	assert.Empty(t, FilterUSDTPerpetuals(nil))
	assert.Empty(t, FilterUSDTPerpetuals([]Instrument{}))
	assert.Empty(t, FilterUSDTPerpetuals([]Instrument{{}}))
}
