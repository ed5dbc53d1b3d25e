package universe

import "math"

// EstimateInterval converts the universe size and a global request budget per
// minute into a per-symbol polling interval in seconds, clamped to
// [minSec, maxSec]. A non-positive universe size returns maxSec: with nothing
// known about the universe, assume the worst case and poll least aggressively.
//
// The formula spreads the fixed budget evenly across tracked symbols, so the
// cadence loosens automatically as the universe grows and tightens as it
// shrinks.
func EstimateInterval(universeSize, budgetPerMin, minSec, maxSec int) int {
	if universeSize <= 0 {
		return maxSec
	}

	pollsPerMinPerSymbol := float64(budgetPerMin) / float64(universeSize)
	raw := int(math.Round(60.0 / pollsPerMinPerSymbol))

	if raw < minSec {
		return minSec
	}
	if raw > maxSec {
		return maxSec
	}
	return raw
}
