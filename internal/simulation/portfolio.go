package simulation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/riskmath"
)

// PortfolioManager maintains balance on close and recomputes end-of-cycle
// snapshots and performance metrics (spec §4.M).
type PortfolioManager struct {
	engine *Engine
}

func NewPortfolioManager(e *Engine) *PortfolioManager {
	return &PortfolioManager{engine: e}
}

// SettleClose applies a closed simulation's margin and net PnL back onto
// its portfolio's balance. No-op for simulations opened outside a
// portfolio (PortfolioID nil).
func (pm *PortfolioManager) SettleClose(ctx context.Context, sim *models.SimulatedPosition) error {
	if sim.PortfolioID == nil {
		return nil
	}
	p, err := pm.engine.store.GetPortfolio(ctx, *sim.PortfolioID)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}
	margin, _ := sim.MarginNotional.Float64()
	netPnl := 0.0
	if sim.PnlUSDT.Valid {
		netPnl, _ = sim.PnlUSDT.Decimal.Float64()
	}
	newBalance := decimal.NewFromFloat(margin + netPnl)
	p.Balance = p.Balance.Add(newBalance)
	return pm.engine.store.SavePortfolio(ctx, p)
}

// Snapshot records the portfolio's current balance, unrealized PnL across
// its OPEN simulations, and realized PnL across its CLOSED ones, then
// recomputes the trailing performance metric (spec §4.M).
func (pm *PortfolioManager) Snapshot(ctx context.Context, portfolioID uuid.UUID, takenAt time.Time) error {
	p, err := pm.engine.store.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}

	closed, err := pm.engine.store.ClosedSimulatedPositions(ctx, &portfolioID)
	if err != nil {
		return err
	}
	open, err := pm.engine.store.OpenSimulatedPositions(ctx)
	if err != nil {
		return err
	}

	var unrealized, realized decimal.Decimal
	openCount := 0
	for _, sim := range open {
		if sim.PortfolioID == nil || *sim.PortfolioID != portfolioID {
			continue
		}
		openCount++
		if sim.PnlUSDT.Valid {
			unrealized = unrealized.Add(sim.PnlUSDT.Decimal)
		}
	}
	for _, sim := range closed {
		if sim.PnlUSDT.Valid {
			realized = realized.Add(sim.PnlUSDT.Decimal)
		}
	}

	snap := &models.PortfolioSnapshot{
		PortfolioID:   portfolioID,
		TakenAt:       takenAt,
		Balance:       p.Balance,
		Unrealized:    unrealized,
		Realized:      realized,
		OpenPositions: openCount,
		TotalValue:    p.Balance.Add(unrealized),
	}
	if err := pm.engine.store.InsertPortfolioSnapshot(ctx, snap); err != nil {
		return err
	}

	return pm.recomputeMetric(ctx, portfolioID, p, closed)
}

func (pm *PortfolioManager) recomputeMetric(ctx context.Context, portfolioID uuid.UUID, p *models.Portfolio, closed []models.SimulatedPosition) error {
	if len(closed) == 0 {
		return nil
	}

	var wins, losses int
	var sumWin, sumLoss, sumCommission decimal.Decimal
	var sumSlippage float64
	var trades []riskmath.Trade
	var curConsecWins, curConsecLosses, maxConsecWins, maxConsecLosses int

	for _, sim := range closed {
		pnl := 0.0
		if sim.PnlUSDT.Valid {
			pnl, _ = sim.PnlUSDT.Decimal.Float64()
		}
		if sim.ClosedAt != nil {
			trades = append(trades, riskmath.Trade{ClosedAt: *sim.ClosedAt, PnL: pnl})
		}
		sumSlippage += sim.SlippageBps
		if sim.TotalCommissionUSDT.Valid {
			sumCommission = sumCommission.Add(sim.TotalCommissionUSDT.Decimal)
		}
		if pnl > 0 {
			wins++
			sumWin = sumWin.Add(decimal.NewFromFloat(pnl))
			curConsecWins++
			curConsecLosses = 0
		} else if pnl < 0 {
			losses++
			sumLoss = sumLoss.Add(decimal.NewFromFloat(pnl))
			curConsecLosses++
			curConsecWins = 0
		}
		if curConsecWins > maxConsecWins {
			maxConsecWins = curConsecWins
		}
		if curConsecLosses > maxConsecLosses {
			maxConsecLosses = curConsecLosses
		}
	}

	total := wins + losses
	winRate := 0.0
	if total > 0 {
		winRate = float64(wins) / float64(total)
	}
	avgWin := decimal.Zero
	if wins > 0 {
		avgWin = sumWin.Div(decimal.NewFromInt(int64(wins)))
	}
	avgLoss := decimal.Zero
	if losses > 0 {
		avgLoss = sumLoss.Div(decimal.NewFromInt(int64(losses)))
	}
	profitFactor := 0.0
	if !sumLoss.IsZero() {
		pf, _ := sumWin.Div(sumLoss.Abs()).Float64()
		profitFactor = pf
	}
	avgSlippageBps := 0.0
	if total > 0 {
		avgSlippageBps = sumSlippage / float64(total)
	}

	initial, _ := p.InitialBalance.Float64()
	_, maxDrawdownPct, _ := riskmath.EquityCurve(trades, initial)

	metric := &models.PortfolioMetric{
		PortfolioID:     portfolioID,
		WinRate:         winRate,
		AvgWin:          avgWin,
		AvgLoss:         avgLoss,
		ProfitFactor:    profitFactor,
		MaxConsecWins:   maxConsecWins,
		MaxConsecLosses: maxConsecLosses,
		AvgSlippageBps:  avgSlippageBps,
		TotalCommission: sumCommission,
		MaxDrawdownPct:  maxDrawdownPct,
	}
	return pm.engine.store.UpsertPortfolioMetric(ctx, metric)
}
