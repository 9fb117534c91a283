package riskmath

import (
	"math"
	"testing"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

func TestComputeExecutionCost_ScenarioS5(t *testing.T) {
	// 60000 -> 61200 LONG, 1000 USDT notional, 10bps slippage, 4bps
	// commission: net PnL should land at ~16.7 USDT.
	cost := ComputeExecutionCost(models.SideLong, 1000, 60000, 61200, 10, 4)
	if math.Abs(cost.NetPnLUSDT-16.7) > 0.05 {
		t.Errorf("NetPnLUSDT = %v, want ~16.7", cost.NetPnLUSDT)
	}
	if cost.EffectiveEntryPrice <= 60000 {
		t.Errorf("long entry slippage should push effective entry above 60000, got %v", cost.EffectiveEntryPrice)
	}
	if cost.EffectiveExitPrice >= 61200 {
		t.Errorf("long exit slippage should push effective exit below 61200, got %v", cost.EffectiveExitPrice)
	}
	if cost.EntrySlippageUSDT <= cost.ExitSlippageUSDT {
		t.Errorf("entry slippage (%v) should exceed exit slippage (%v)", cost.EntrySlippageUSDT, cost.ExitSlippageUSDT)
	}
}

func TestComputeExecutionCost_ShortDirection(t *testing.T) {
	// A short that falls in price is profitable; slippage pushes fills the
	// wrong way on both legs.
	cost := ComputeExecutionCost(models.SideShort, 1000, 60000, 58800, 10, 4)
	if cost.GrossPnL <= 0 {
		t.Errorf("short position with falling price should have positive gross PnL, got %v", cost.GrossPnL)
	}
	if cost.EffectiveEntryPrice >= 60000 {
		t.Errorf("short entry slippage should push effective entry below 60000, got %v", cost.EffectiveEntryPrice)
	}
	if cost.EffectiveExitPrice <= 58800 {
		t.Errorf("short exit slippage should push effective exit above 58800, got %v", cost.EffectiveExitPrice)
	}
}

func TestComputeExecutionCost_ZeroSlippageAndCommission(t *testing.T) {
	cost := ComputeExecutionCost(models.SideLong, 1000, 100, 110, 0, 0)
	if math.Abs(cost.NetPnLUSDT-cost.GrossPnL) > 1e-9 {
		t.Errorf("net PnL should equal gross PnL with zero costs, got net=%v gross=%v", cost.NetPnLUSDT, cost.GrossPnL)
	}
	if math.Abs(cost.GrossPnL-100) > 1e-9 {
		t.Errorf("GrossPnL = %v, want 100", cost.GrossPnL)
	}
}
