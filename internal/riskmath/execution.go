package riskmath

import "github.com/eyupilis/tracker-all-trader-sub001/internal/models"

// entrySlippageMultiplier is the ratio between entry and exit slippage
// (spec §4.K, §4.N): entry slippage is always 1.5x the configured exit
// slippage, modelling that entering against a consensus-driven move pays
// a worse price than exiting it.
const entrySlippageMultiplier = 1.5

// ExecutionCost is the computed cost/PnL breakdown for one round-trip
// simulated trade (spec §4.N, testable property 8, scenario S5).
type ExecutionCost struct {
	EffectiveEntryPrice float64
	EffectiveExitPrice  float64
	GrossPnL            float64
	EntrySlippageUSDT   float64
	ExitSlippageUSDT    float64
	TotalSlippageUSDT   float64
	EntryCommissionUSDT float64
	ExitCommissionUSDT  float64
	TotalCommissionUSDT float64
	NetPnLUSDT          float64
}

// ComputeExecutionCost applies entry/exit slippage (in the direction that
// worsens the trade) and per-side commission to a position, returning the
// net realised PnL.
func ComputeExecutionCost(direction models.Side, positionNotional, entryPrice, exitPrice, slippageBps, commissionBps float64) ExecutionCost {
	entrySlipBps := slippageBps * entrySlippageMultiplier
	exitSlipBps := slippageBps

	long := direction == models.SideLong

	var effectiveEntry, effectiveExit float64
	if long {
		// Opening a long buys -> slippage pushes the fill price up.
		effectiveEntry = entryPrice * (1 + entrySlipBps/10000)
		// Closing a long sells -> slippage pushes the fill price down.
		effectiveExit = exitPrice * (1 - exitSlipBps/10000)
	} else {
		// Opening a short sells -> slippage pushes the fill price down.
		effectiveEntry = entryPrice * (1 - entrySlipBps/10000)
		// Closing a short buys back -> slippage pushes the fill price up.
		effectiveExit = exitPrice * (1 + exitSlipBps/10000)
	}

	rawMove := (exitPrice - entryPrice) / entryPrice
	if !long {
		rawMove = -rawMove
	}
	grossPnL := positionNotional * rawMove

	entrySlip := positionNotional * entrySlipBps / 10000
	exitSlip := positionNotional * exitSlipBps / 10000
	entryCommission := positionNotional * commissionBps / 10000
	exitCommission := positionNotional * commissionBps / 10000

	totalSlippage := entrySlip + exitSlip
	totalCommission := entryCommission + exitCommission
	netPnL := grossPnL - totalSlippage - totalCommission

	return ExecutionCost{
		EffectiveEntryPrice: effectiveEntry,
		EffectiveExitPrice:  effectiveExit,
		GrossPnL:            grossPnL,
		EntrySlippageUSDT:   entrySlip,
		ExitSlippageUSDT:    exitSlip,
		TotalSlippageUSDT:   totalSlippage,
		EntryCommissionUSDT: entryCommission,
		ExitCommissionUSDT:  exitCommission,
		TotalCommissionUSDT: totalCommission,
		NetPnLUSDT:          netPnL,
	}
}
