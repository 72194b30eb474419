// Package market holds numeric helpers derived from upstream market data.
package market

import "math"

// AltSeasonScore maps the market share held outside BTC and ETH onto 0..100.
// A 50% non-BTC/ETH share is already the maximum score; a dominance sum above
// 100 clamps to 0.
func AltSeasonScore(btcDom, ethDom float64) int {
	share := 100 - (btcDom + ethDom)
	score := RoundHalfUp(share * 2)
	if math.IsNaN(score) {
		return 0
	}
	return int(math.Max(0, math.Min(100, score)))
}

// RoundHalfUp rounds to the nearest integer with .5 going towards +Inf.
func RoundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// Finite replaces NaN and infinities with zero.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
