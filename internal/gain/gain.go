// Package gain computes the multiplier between a baseline snapshot and a
// current quote, and buckets it into visual tiers.
package gain

import "token-pnl-bot/internal/domain"

// Multiplier returns the gain ratio of current over baseline.
//
// Market cap is preferred when both sides report it: for thinly traded
// tokens it moves less erratically than spot price. Price is the
// fallback. 0 is the "cannot compute" sentinel, returned whenever
// neither pair of fields is nonzero on both sides.
func Multiplier(baseline domain.Snapshot, current domain.Quote) float64 {
	if baseline.Quote.MarketCap > 0 && current.MarketCap > 0 {
		return current.MarketCap / baseline.Quote.MarketCap
	}
	if baseline.Quote.Price > 0 && current.Price > 0 {
		return current.Price / baseline.Quote.Price
	}
	return 0
}

// Tier is a multiplier bracket driving illustration and color choice.
type Tier string

const (
	TierLow   Tier = "low"   // [0, 2)
	TierMid   Tier = "mid"   // [2, 10)
	TierHigh  Tier = "high"  // [10, 20)
	TierUltra Tier = "ultra" // [20, ∞)
)

// TierFor buckets a multiplier. Boundaries are half-open and exhaustive,
// so every non-negative multiplier lands in exactly one tier.
func TierFor(multiplier float64) Tier {
	switch {
	case multiplier < 2:
		return TierLow
	case multiplier < 10:
		return TierMid
	case multiplier < 20:
		return TierHigh
	default:
		return TierUltra
	}
}
