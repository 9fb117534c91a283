package simulation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/consensus"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/errs"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/riskmath"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/store"
)

// Default execution-cost parameters when a caller does not override them.
// These reproduce the spec's own worked example (scenario S5).
const (
	DefaultSlippageBps   = 10
	DefaultCommissionBps = 4
)

type Engine struct {
	store     *store.Store
	consensus *consensus.Engine
	portfolio *PortfolioManager
}

func New(s *store.Store) *Engine {
	e := &Engine{store: s, consensus: consensus.New(s)}
	e.portfolio = NewPortfolioManager(e)
	return e
}

// OpenParams is the manual-open request (spec §4.K).
type OpenParams struct {
	Symbol         string
	Direction      models.Side
	Leverage       int
	MarginNotional float64
	EntryPrice     *float64
	Notes          *string
	SlippageBps    float64
	CommissionBps  float64
	PortfolioID    *uuid.UUID
	Source         models.SimSource
}

// OpenManual resolves a reference price when none is supplied, applies
// entry slippage, and persists a new OPEN SimulatedPosition.
func (e *Engine) OpenManual(ctx context.Context, p OpenParams) (*models.SimulatedPosition, error) {
	entryPrice, err := e.resolveEntryPrice(ctx, p)
	if err != nil {
		return nil, errs.ValidationFailure("resolve entry price", err)
	}

	slippageBps := orDefault(p.SlippageBps, DefaultSlippageBps)
	commissionBps := orDefault(p.CommissionBps, DefaultCommissionBps)
	positionNotional := p.MarginNotional * float64(p.Leverage)

	effectiveEntry := applyEntrySlippage(p.Direction, entryPrice, slippageBps)

	source := p.Source
	if source == "" {
		source = models.SourceManual
	}

	sim := &models.SimulatedPosition{
		ID:                  uuid.New(),
		PortfolioID:         p.PortfolioID,
		Symbol:              p.Symbol,
		Direction:           p.Direction,
		Status:              models.SimOpen,
		Leverage:            p.Leverage,
		MarginNotional:      decimal.NewFromFloat(p.MarginNotional),
		PositionNotional:    decimal.NewFromFloat(positionNotional),
		EntryPrice:          decimal.NewFromFloat(entryPrice),
		EffectiveEntryPrice: decimal.NullDecimal{Decimal: decimal.NewFromFloat(effectiveEntry), Valid: true},
		SlippageBps:         slippageBps,
		CommissionBps:       commissionBps,
		Source:              source,
		Notes:               p.Notes,
		OpenedAt:            time.Now().UTC(),
	}
	if err := e.store.CreateSimulatedPosition(ctx, sim); err != nil {
		return nil, err
	}
	return sim, nil
}

func (e *Engine) resolveEntryPrice(ctx context.Context, p OpenParams) (float64, error) {
	if p.EntryPrice != nil {
		return *p.EntryPrice, nil
	}
	return ReferencePrice(ctx, e.store, p.Symbol)
}

// CloseParams is the manual-close request (spec §4.K).
type CloseParams struct {
	ID     uuid.UUID
	Reason *models.CloseReason
}

// CloseManual resolves the current price, applies ExecutionCost, and
// persists the CLOSED result.
func (e *Engine) CloseManual(ctx context.Context, p CloseParams) (*models.SimulatedPosition, error) {
	sim, err := e.store.GetSimulatedPosition(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if sim == nil || sim.Status != models.SimOpen {
		return nil, errs.ValidationFailure("no open simulation with that id", nil)
	}

	exitPrice, err := ReferencePrice(ctx, e.store, sim.Symbol)
	if err != nil {
		return nil, errs.ValidationFailure("resolve exit price", err)
	}

	reason := models.CloseManual
	if p.Reason != nil {
		reason = *p.Reason
	}
	e.applyClose(sim, exitPrice, reason, nil)

	if err := e.store.SaveSimulatedPosition(ctx, sim); err != nil {
		return nil, err
	}
	if err := e.portfolio.SettleClose(ctx, sim); err != nil {
		return nil, err
	}
	return sim, nil
}

// applyClose mutates sim in place to its closed state using
// ExecutionCost; shared by manual close and the Position Monitor.
func (e *Engine) applyClose(sim *models.SimulatedPosition, exitPrice float64, reason models.CloseReason, triggerLeadID *string) {
	notional, _ := sim.PositionNotional.Float64()
	entry, _ := sim.EntryPrice.Float64()

	cost := riskmath.ComputeExecutionCost(sim.Direction, notional, entry, exitPrice, sim.SlippageBps, sim.CommissionBps)

	now := time.Now().UTC()
	sim.Status = models.SimClosed
	sim.ExitPrice = decimal.NullDecimal{Decimal: decimal.NewFromFloat(exitPrice), Valid: true}
	sim.EffectiveExitPrice = decimal.NullDecimal{Decimal: decimal.NewFromFloat(cost.EffectiveExitPrice), Valid: true}
	sim.TotalCommissionUSDT = decimal.NullDecimal{Decimal: decimal.NewFromFloat(cost.TotalCommissionUSDT), Valid: true}
	sim.PnlUSDT = decimal.NullDecimal{Decimal: decimal.NewFromFloat(cost.NetPnLUSDT).Round(4), Valid: true}
	marginNotional, _ := sim.MarginNotional.Float64()
	if marginNotional != 0 {
		roi := 100 * cost.NetPnLUSDT / marginNotional
		sim.RoiPct = decimal.NullDecimal{Decimal: decimal.NewFromFloat(roi), Valid: true}
	}
	sim.CloseReason = &reason
	sim.CloseTriggerLeadID = triggerLeadID
	sim.ClosedAt = &now
}

// Reconcile recomputes unrealised PnL for every OPEN simulation against
// the current reference price without transitioning status.
func (e *Engine) Reconcile(ctx context.Context) ([]models.SimulatedPosition, error) {
	open, err := e.store.OpenSimulatedPositions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range open {
		sim := &open[i]
		price, err := ReferencePrice(ctx, e.store, sim.Symbol)
		if err != nil {
			continue
		}
		notional, _ := sim.PositionNotional.Float64()
		entry, _ := sim.EntryPrice.Float64()
		cost := riskmath.ComputeExecutionCost(sim.Direction, notional, entry, price, sim.SlippageBps, sim.CommissionBps)
		sim.PnlUSDT = decimal.NullDecimal{Decimal: decimal.NewFromFloat(cost.NetPnLUSDT).Round(4), Valid: true}
		if err := e.store.SaveSimulatedPosition(ctx, sim); err != nil {
			return nil, err
		}
	}
	return open, nil
}

func applyEntrySlippage(direction models.Side, price, slippageBps float64) float64 {
	entrySlipBps := slippageBps * 1.5
	if direction == models.SideLong {
		return price * (1 + entrySlipBps/10000)
	}
	return price * (1 - entrySlipBps/10000)
}

func orDefault(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}

func decimalFromFloat(v float64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(v), Valid: true}
}
