// Package universe holds the pure classification logic of the liquid-universe
// pipeline: symbol normalization, candidate filtering, hysteresis membership,
// and the polling-interval estimate. Every function here is free of I/O so the
// whole package is exhaustively table-testable.
package universe

import "strings"

// NormalizeSymbol maps a raw exchange symbol to its canonical form: uppercase
// with separator characters removed ("btc-usdt" -> "BTCUSDT"). It is total and
// idempotent, and is applied everywhere a symbol crosses a boundary so that
// each instrument has exactly one key regardless of upstream formatting.
func NormalizeSymbol(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}
