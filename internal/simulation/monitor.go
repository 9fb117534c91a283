package simulation

import (
	"context"
	"sync"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/logger"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

// trailingState tracks the running peak/trough and current trigger price
// for one OPEN position's trailing stop across monitor ticks. Kept
// in-memory only: a restart re-seeds from the position's entry price,
// which is a deliberately conservative (never tighter than real) reset.
type trailingState struct {
	peak    float64
	trough  float64
	trigger float64
}

// Monitor evaluates SL/TP/trailing-stop for every OPEN simulation once
// per ingest cycle (spec §4.L), closing any that trigger.
type Monitor struct {
	engine *Engine
	log    *logger.Logger

	mu       sync.Mutex
	trailing map[string]*trailingState
}

func NewMonitor(e *Engine, log *logger.Logger) *Monitor {
	return &Monitor{engine: e, log: log, trailing: make(map[string]*trailingState)}
}

// monitorConcurrency bounds how many OPEN positions are evaluated at
// once. Several open positions commonly share a symbol, so evaluating
// them concurrently is what makes ReferencePrice's singleflight dedup
// worth having rather than decorative.
const monitorConcurrency = 8

// Run evaluates every OPEN simulation carrying SL, TP, or a trailing
// stop, closing any that trigger this tick. Evaluation order within a
// single position is SL, then TP, then trailing (spec §4.L); positions
// themselves are evaluated concurrently, bounded by monitorConcurrency.
func (m *Monitor) Run(ctx context.Context) error {
	open, err := m.engine.store.OpenSimulatedPositions(ctx)
	if err != nil {
		return err
	}

	sem := make(chan struct{}, monitorConcurrency)
	var wg sync.WaitGroup
	for i := range open {
		sim := &open[i]
		if !hasAnyTrigger(sim) {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(sim *models.SimulatedPosition) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := m.evaluate(ctx, sim); err != nil {
				m.log.Errorf("position monitor evaluation failed", err, "simulationId", sim.ID.String())
			}
		}(sim)
	}
	wg.Wait()
	return nil
}

func hasAnyTrigger(sim *models.SimulatedPosition) bool {
	return sim.StopLossPrice.Valid || sim.TakeProfitPrice.Valid || sim.TrailingStopPct.Valid
}

func (m *Monitor) evaluate(ctx context.Context, sim *models.SimulatedPosition) error {
	price, err := ReferencePrice(ctx, m.engine.store, sim.Symbol)
	if err != nil {
		return err
	}
	long := sim.Direction == models.SideLong

	if sim.StopLossPrice.Valid {
		sl, _ := sim.StopLossPrice.Decimal.Float64()
		if (long && price <= sl) || (!long && price >= sl) {
			return m.close(ctx, sim, price, models.CloseStopLoss)
		}
	}

	if sim.TakeProfitPrice.Valid {
		tp, _ := sim.TakeProfitPrice.Decimal.Float64()
		if (long && price >= tp) || (!long && price <= tp) {
			return m.close(ctx, sim, price, models.CloseTakeProfit)
		}
	}

	if sim.TrailingStopPct.Valid {
		triggered, newStop := m.updateTrailing(sim, price, long)
		if triggered {
			sim.TrailingStopTrigger = decimalFromFloat(newStop)
			return m.close(ctx, sim, price, models.CloseTrailingStop)
		}
		sim.TrailingStopTrigger = decimalFromFloat(newStop)
		return m.engine.store.SaveSimulatedPosition(ctx, sim)
	}
	return nil
}

// updateTrailing advances the peak/trough and computes the new stop
// price, reporting whether the current price has crossed it.
func (m *Monitor) updateTrailing(sim *models.SimulatedPosition, price float64, long bool) (triggered bool, newStop float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pct, _ := sim.TrailingStopPct.Decimal.Float64()
	key := sim.ID.String()
	state, ok := m.trailing[key]
	if !ok {
		entry, _ := sim.EntryPrice.Float64()
		state = &trailingState{peak: entry, trough: entry}
		m.trailing[key] = state
	}

	if long {
		if price > state.peak {
			state.peak = price
		}
		newStop = state.peak * (1 - pct)
		triggered = price <= newStop
	} else {
		if state.trough == 0 || price < state.trough {
			state.trough = price
		}
		newStop = state.trough * (1 + pct)
		triggered = price >= newStop
	}
	state.trigger = newStop
	if triggered {
		delete(m.trailing, key)
	}
	return triggered, newStop
}

func (m *Monitor) close(ctx context.Context, sim *models.SimulatedPosition, price float64, reason models.CloseReason) error {
	m.engine.applyClose(sim, price, reason, nil)
	if err := m.engine.store.SaveSimulatedPosition(ctx, sim); err != nil {
		return err
	}
	return m.engine.portfolio.SettleClose(ctx, sim)
}
