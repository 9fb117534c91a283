package riskmath

import (
	"math"
	"testing"
)

func TestRiskBasedSize(t *testing.T) {
	notional, margin := RiskBasedSize(10000, 0.02, 0.05, 10)
	// positionNotional = (10000*0.02)/0.05 = 4000, margin = 4000/10 = 400
	if math.Abs(notional-4000) > 1e-6 {
		t.Errorf("notional = %v, want 4000", notional)
	}
	if math.Abs(margin-400) > 1e-6 {
		t.Errorf("margin = %v, want 400", margin)
	}
}

func TestRiskBasedSizeInvalidInputs(t *testing.T) {
	if n, m := RiskBasedSize(10000, 0.02, 0, 10); n != 0 || m != 0 {
		t.Errorf("zero stop distance should return (0,0), got (%v,%v)", n, m)
	}
	if n, m := RiskBasedSize(10000, 0.02, 0.05, 0); n != 0 || m != 0 {
		t.Errorf("zero leverage should return (0,0), got (%v,%v)", n, m)
	}
}

func TestStopLossPrice(t *testing.T) {
	if got := StopLossPrice(100, true, 0.05); math.Abs(got-95) > 1e-6 {
		t.Errorf("long stop loss = %v, want 95", got)
	}
	if got := StopLossPrice(100, false, 0.05); math.Abs(got-105) > 1e-6 {
		t.Errorf("short stop loss = %v, want 105", got)
	}
}

func TestTakeProfitPrice(t *testing.T) {
	if got := TakeProfitPrice(100, 95, true, 2); math.Abs(got-110) > 1e-6 {
		t.Errorf("long take profit = %v, want 110", got)
	}
	if got := TakeProfitPrice(100, 105, false, 2); math.Abs(got-90) > 1e-6 {
		t.Errorf("short take profit = %v, want 90", got)
	}
}
