package domain

import "time"

// LiquidSymbol is one membership record of the liquid universe: the set of
// instruments judged to have enough 24h quote volume to warrant real-time OI
// polling. Rows are created on first entry, refreshed every classification
// cycle while the symbol stays a member, and deleted when it exits.
type LiquidSymbol struct {
	Symbol         string    `json:"symbol"`
	QuoteVolume24h float64   `json:"quoteVolume24h"`
	EnteredAt      time.Time `json:"enteredAt"`
	LastSeenAt     time.Time `json:"lastSeenAt"`
}

// UniverseMember is a LiquidSymbol enriched with the polling interval the
// external poller should use, derived from the total membership size.
type UniverseMember struct {
	LiquidSymbol
	EstimatedPollIntervalSec int `json:"estimatedPollIntervalSec"`
}

// UniverseSnapshot is the public read-path view of the liquid universe,
// members sorted by descending volume.
type UniverseSnapshot struct {
	UpdatedAt      time.Time        `json:"updatedAt"`
	EnterThreshold float64          `json:"enterThreshold"`
	ExitThreshold  float64          `json:"exitThreshold"`
	Symbols        []UniverseMember `json:"symbols"`
	TotalSymbols   int              `json:"totalSymbols"`
}

// CycleResult is the structured outcome of one classification cycle.
type CycleResult struct {
	Success        bool      `json:"success"`
	SymbolsAdded   int       `json:"symbolsAdded"`
	SymbolsRemoved int       `json:"symbolsRemoved"`
	TotalSymbols   int       `json:"totalSymbols"`
	Errors         []string  `json:"errors,omitempty"`
	CompletedAt    time.Time `json:"completedAt"`
}
