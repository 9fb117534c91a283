package riskmath

import "math"

// RiskBasedSize computes a position notional and the margin it requires
// from a fixed fractional risk budget and a stop-loss distance (spec §4.N):
//
//	positionNotional = (balance · riskPct) / stopLossDistance
//	margin            = positionNotional / leverage
//
// stopLossDistance is expressed as a fraction of entry price (e.g. 0.02
// for a 2% stop). Returns (0, 0) if stopLossDistance or leverage is
// non-positive.
func RiskBasedSize(balance, riskPct, stopLossDistance float64, leverage int) (positionNotional, margin float64) {
	if stopLossDistance <= 0 || leverage <= 0 {
		return 0, 0
	}
	positionNotional = (balance * riskPct) / stopLossDistance
	margin = positionNotional / float64(leverage)
	return positionNotional, margin
}

// StopLossPrice returns the stop-loss price for a direction given either a
// fixed percentage distance or a risk-amount distance (whichever the
// caller resolved upstream into pctDistance).
func StopLossPrice(entryPrice float64, long bool, pctDistance float64) float64 {
	if long {
		return entryPrice * (1 - pctDistance)
	}
	return entryPrice * (1 + pctDistance)
}

// TakeProfitPrice returns the take-profit price implied by a risk-reward
// multiplier applied to the stop-loss distance.
func TakeProfitPrice(entryPrice, stopLossPrice float64, long bool, riskReward float64) float64 {
	distance := math.Abs(entryPrice - stopLossPrice)
	if long {
		return entryPrice + distance*riskReward
	}
	return entryPrice - distance*riskReward
}
