// Package riskmath is the pure-function component N: Kelly sizing,
// risk-based sizing, execution-cost modelling, Monte Carlo, walk-forward,
// and drawdown-curve analysis. Every function here is deterministic given
// its inputs and touches no store — grounded on the teacher's
// internal/trading/backtester.go statistics pass and
// stadam23-Eve-flipper/internal/engine/risk.go's percentile-style
// functions over a sorted trade slice.
package riskmath

import "time"

// Trade is the minimal closed-trade shape every risk-math function needs:
// a signed PnL and a time for ordering. Callers project their richer
// domain types (SimulatedPosition, etc.) down to this.
type Trade struct {
	ClosedAt time.Time
	PnL      float64
}
