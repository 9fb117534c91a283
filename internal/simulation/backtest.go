package simulation

import (
	"context"
	"time"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/riskmath"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/store"
)

// BacktestParams scopes a backtest-lite replay to one symbol and window.
type BacktestParams struct {
	Symbol        string
	From          time.Time
	To            time.Time
	SlippageBps   float64
	CommissionBps float64
}

// BacktestResult aggregates the hypothetical trades produced by replaying
// a symbol's event history (spec supplement: backtest-lite, read-only,
// no simulated positions are persisted).
type BacktestResult struct {
	Symbol       string
	TradeCount   int
	WinRate      float64
	AvgPnlUSDT   float64
	TotalPnlUSDT float64
	Trades       []riskmath.Trade
}

// openLeg is a hypothetical position opened by an OPEN event, waiting for
// a matching CLOSE event of the same side.
type openLeg struct {
	side     models.Side
	price    float64
	notional float64
	openedAt time.Time
}

// Backtest replays a symbol's chronological event history and opens a
// hypothetical position on every OPEN event, closing it at the first
// subsequent CLOSE event of the same side (or at the window end if none
// arrives), applying the same execution-cost model as live simulations.
func Backtest(ctx context.Context, s *store.Store, p BacktestParams) (*BacktestResult, error) {
	events, err := s.EventsForSymbolChronological(ctx, p.Symbol, p.From, p.To)
	if err != nil {
		return nil, err
	}

	slippageBps := orDefault(p.SlippageBps, DefaultSlippageBps)
	commissionBps := orDefault(p.CommissionBps, DefaultCommissionBps)

	open := make(map[models.Side]*openLeg)
	var trades []riskmath.Trade
	var totalPnl float64
	var wins int

	closeLeg := func(leg *openLeg, exitPrice float64, at time.Time) {
		cost := riskmath.ComputeExecutionCost(leg.side, leg.notional, leg.price, exitPrice, slippageBps, commissionBps)
		trades = append(trades, riskmath.Trade{ClosedAt: at, PnL: cost.NetPnLUSDT})
		totalPnl += cost.NetPnLUSDT
		if cost.NetPnLUSDT > 0 {
			wins++
		}
	}

	for _, ev := range events {
		if !ev.Price.Valid {
			continue
		}
		price, _ := ev.Price.Decimal.Float64()
		side := ev.EventType.Side()
		if side == "" {
			continue
		}

		switch {
		case ev.EventType.IsOpen():
			if _, exists := open[side]; !exists {
				size := 1.0
				if ev.Amount.Valid {
					size, _ = ev.Amount.Decimal.Float64()
				}
				open[side] = &openLeg{side: side, price: price, notional: size * price, openedAt: ev.EventTime}
			}
		case ev.EventType.IsClose():
			if leg, exists := open[side]; exists {
				closeLeg(leg, price, ev.EventTime)
				delete(open, side)
			}
		}
	}

	for _, leg := range open {
		lastPrice := leg.price
		if len(events) > 0 {
			for i := len(events) - 1; i >= 0; i-- {
				if events[i].Price.Valid {
					lastPrice, _ = events[i].Price.Decimal.Float64()
					break
				}
			}
		}
		closeLeg(leg, lastPrice, p.To)
	}

	result := &BacktestResult{Symbol: p.Symbol, TradeCount: len(trades), TotalPnlUSDT: totalPnl, Trades: trades}
	if len(trades) > 0 {
		result.WinRate = float64(wins) / float64(len(trades))
		result.AvgPnlUSDT = totalPnl / float64(len(trades))
	}
	return result, nil
}
