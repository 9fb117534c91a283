package riskmath

import (
	"math"
	"testing"
)

func TestEquityCurve_EmptyTrades(t *testing.T) {
	curve, maxDD, periods := EquityCurve(nil, 1000)
	if curve != nil || maxDD != 0 || periods != nil {
		t.Errorf("empty trades should produce nil curve and zero drawdown, got curve=%v maxDD=%v periods=%v", curve, maxDD, periods)
	}
}

func TestEquityCurve_MonotonicGainsHaveNoDrawdown(t *testing.T) {
	trades := []Trade{
		tradeAt(5, 100),
		tradeAt(4, 50),
		tradeAt(3, 200),
	}
	curve, maxDD, periods := EquityCurve(trades, 1000)
	if len(curve) != 3 {
		t.Fatalf("expected 3 equity points, got %d", len(curve))
	}
	if curve[2].Equity != 1350 {
		t.Errorf("final equity = %v, want 1350", curve[2].Equity)
	}
	if maxDD != 0 {
		t.Errorf("all-gains curve should have zero max drawdown, got %v", maxDD)
	}
	if len(periods) != 0 {
		t.Errorf("all-gains curve should report no drawdown periods, got %v", periods)
	}
}

func TestEquityCurve_PeakTroughRecovery(t *testing.T) {
	// 1000 -> 1100 (peak) -> 900 (trough, -18.18%) -> 1200 (recovery, new peak)
	trades := []Trade{
		tradeAt(5, 100),
		tradeAt(4, -200),
		tradeAt(3, 300),
	}
	_, maxDD, periods := EquityCurve(trades, 1000)
	if len(periods) != 1 {
		t.Fatalf("expected exactly one drawdown period, got %d: %+v", len(periods), periods)
	}
	p := periods[0]
	if !p.Recovered {
		t.Errorf("drawdown should be marked recovered once equity makes a new high")
	}
	wantPct := (1100.0 - 900.0) / 1100.0 * 100
	if math.Abs(p.DrawdownPct-wantPct) > 1e-6 {
		t.Errorf("DrawdownPct = %v, want %v", p.DrawdownPct, wantPct)
	}
	if math.Abs(maxDD-wantPct) > 1e-6 {
		t.Errorf("maxDrawdownPct = %v, want %v", maxDD, wantPct)
	}
}

func TestEquityCurve_UnrecoveredDrawdownAtEnd(t *testing.T) {
	trades := []Trade{
		tradeAt(3, 100),
		tradeAt(2, -300),
	}
	_, _, periods := EquityCurve(trades, 1000)
	if len(periods) != 1 {
		t.Fatalf("expected one drawdown period, got %d", len(periods))
	}
	if periods[0].Recovered {
		t.Errorf("drawdown still open at end of series should not be marked recovered")
	}
}
