package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

func seedPortfolio(t *testing.T, ctx context.Context, e *Engine, balance float64) *models.Portfolio {
	t.Helper()
	p := &models.Portfolio{
		ID: uuid.New(), Platform: "binance", Name: "test",
		InitialBalance: decimal.NewFromFloat(balance), Balance: decimal.NewFromFloat(balance),
		MaxRiskPerTrade: 0.02, MaxOpenPositions: 10,
	}
	if err := e.store.SavePortfolio(ctx, p); err != nil {
		t.Fatalf("seed portfolio: %v", err)
	}
	return p
}

func TestSettleClose_AppliesMarginAndNetPnlToBalance(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	e := New(s)
	p := seedPortfolio(t, ctx, e, 10000)

	entry := 100.0
	sim, err := e.OpenManual(ctx, OpenParams{
		Symbol: "BTCUSDT", Direction: models.SideLong, Leverage: 1, MarginNotional: 1000,
		EntryPrice: &entry, PortfolioID: &p.ID,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	seedMarkPrice(t, ctx, s, "BTCUSDT", 110, time.Now().UTC())

	closed, err := e.CloseManual(ctx, CloseParams{ID: sim.ID})
	if err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded, err := s.GetPortfolio(ctx, p.ID)
	if err != nil {
		t.Fatalf("reload portfolio: %v", err)
	}
	pnl, _ := closed.PnlUSDT.Decimal.Float64()
	wantBalance := 10000 + 1000 + pnl
	got, _ := reloaded.Balance.Float64()
	if diff := got - wantBalance; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("balance = %v, want %v", got, wantBalance)
	}
}

func TestSnapshot_RecomputesMetricFromClosedTrades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	e := New(s)
	pm := NewPortfolioManager(e)
	p := seedPortfolio(t, ctx, e, 10000)

	entry := 100.0
	sim, err := e.OpenManual(ctx, OpenParams{
		Symbol: "ETHUSDT", Direction: models.SideLong, Leverage: 1, MarginNotional: 500,
		EntryPrice: &entry, PortfolioID: &p.ID,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	seedMarkPrice(t, ctx, s, "ETHUSDT", 120, time.Now().UTC())
	if _, err := e.CloseManual(ctx, CloseParams{ID: sim.ID}); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := pm.Snapshot(ctx, p.ID, time.Now().UTC()); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	snaps, err := s.PortfolioSnapshots(ctx, p.ID)
	if err != nil {
		t.Fatalf("load snapshots: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	if snaps[0].OpenPositions != 0 {
		t.Errorf("openPositions = %d, want 0", snaps[0].OpenPositions)
	}
}
