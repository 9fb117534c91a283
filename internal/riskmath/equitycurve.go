package riskmath

import (
	"sort"
	"time"
)

// EquityPoint is one step of a reconstructed equity curve.
type EquityPoint struct {
	At     time.Time
	Equity float64
}

// DrawdownPeriod is a peak-to-trough-to-recovery excursion in an equity
// curve (spec §4.N supplement). Recovered is false if the curve never
// closed a new high after the trough by the end of the series.
type DrawdownPeriod struct {
	PeakAt       time.Time
	PeakEquity   float64
	TroughAt     time.Time
	TroughEquity float64
	RecoveredAt  time.Time
	Recovered    bool
	DrawdownPct  float64
}

// EquityCurve replays trades in chronological order starting from
// initialBalance and returns the resulting equity curve along with its
// maximum drawdown percentage and the full list of drawdown periods.
func EquityCurve(trades []Trade, initialBalance float64) (curve []EquityPoint, maxDrawdownPct float64, periods []DrawdownPeriod) {
	if len(trades) == 0 {
		return nil, 0, nil
	}
	sorted := append([]Trade(nil), trades...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ClosedAt.Before(sorted[j].ClosedAt) })

	curve = make([]EquityPoint, 0, len(sorted)+1)
	equity := initialBalance

	peak := initialBalance
	peakAt := sorted[0].ClosedAt
	inDrawdown := false
	var trough float64
	var troughAt time.Time

	flush := func(recoveredAt time.Time, recovered bool) {
		if !inDrawdown {
			return
		}
		pct := 0.0
		if peak != 0 {
			pct = (peak - trough) / peak * 100
		}
		periods = append(periods, DrawdownPeriod{
			PeakAt:       peakAt,
			PeakEquity:   peak,
			TroughAt:     troughAt,
			TroughEquity: trough,
			RecoveredAt:  recoveredAt,
			Recovered:    recovered,
			DrawdownPct:  pct,
		})
		if pct > maxDrawdownPct {
			maxDrawdownPct = pct
		}
		inDrawdown = false
	}

	for _, t := range sorted {
		equity += t.PnL
		curve = append(curve, EquityPoint{At: t.ClosedAt, Equity: equity})

		if equity >= peak {
			flush(t.ClosedAt, true)
			peak = equity
			peakAt = t.ClosedAt
			continue
		}
		if !inDrawdown {
			inDrawdown = true
			trough = equity
			troughAt = t.ClosedAt
		} else if equity < trough {
			trough = equity
			troughAt = t.ClosedAt
		}
	}
	flush(time.Time{}, false)

	return curve, maxDrawdownPct, periods
}
