package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SimStatus is the lifecycle status of a simulated position.
type SimStatus string

const (
	SimOpen   SimStatus = "OPEN"
	SimClosed SimStatus = "CLOSED"
)

// SimSource distinguishes a manually-opened simulation from one opened by
// the auto-trigger rule.
type SimSource string

const (
	SourceManual SimSource = "MANUAL"
	SourceAuto   SimSource = "AUTO"
)

// CloseReason records why a simulated position was closed.
type CloseReason string

const (
	CloseManual       CloseReason = "MANUAL"
	CloseReversal     CloseReason = "REVERSAL"
	CloseStopLoss     CloseReason = "STOP_LOSS"
	CloseTakeProfit   CloseReason = "TAKE_PROFIT"
	CloseTrailingStop CloseReason = "TRAILING_STOP"
)

// SimulatedPosition is one manual or auto-opened hypothetical trade
// (spec §3, §4.K, §4.L).
type SimulatedPosition struct {
	ID                   uuid.UUID           `gorm:"primaryKey;type:uuid" json:"id"`
	PortfolioID          *uuid.UUID          `gorm:"type:uuid;index:idx_sim_portfolio" json:"portfolioId,omitempty"`
	Symbol               string              `gorm:"size:32;not null;index:idx_sim_symbol" json:"symbol"`
	Direction            Side                `gorm:"size:8;not null" json:"direction"`
	Status               SimStatus           `gorm:"size:8;not null;index:idx_sim_status" json:"status"`
	Leverage             int                 `json:"leverage"`
	MarginNotional       decimal.Decimal     `gorm:"type:decimal(36,18)" json:"marginNotional"`
	PositionNotional     decimal.Decimal     `gorm:"type:decimal(36,18)" json:"positionNotional"`
	EntryPrice           decimal.Decimal     `gorm:"type:decimal(36,18)" json:"entryPrice"`
	ExitPrice            decimal.NullDecimal `gorm:"type:decimal(36,18)" json:"exitPrice,omitempty"`
	EffectiveEntryPrice  decimal.NullDecimal `gorm:"type:decimal(36,18)" json:"effectiveEntryPrice,omitempty"`
	EffectiveExitPrice   decimal.NullDecimal `gorm:"type:decimal(36,18)" json:"effectiveExitPrice,omitempty"`
	StopLossPrice        decimal.NullDecimal `gorm:"type:decimal(36,18)" json:"stopLossPrice,omitempty"`
	TakeProfitPrice      decimal.NullDecimal `gorm:"type:decimal(36,18)" json:"takeProfitPrice,omitempty"`
	TrailingStopPct      decimal.NullDecimal `gorm:"type:decimal(10,6)" json:"trailingStopPct,omitempty"`
	TrailingStopTrigger  decimal.NullDecimal `gorm:"type:decimal(36,18)" json:"trailingStopTrigger,omitempty"`
	SlippageBps          float64             `json:"slippageBps"`
	CommissionBps        float64             `json:"commissionBps"`
	TotalCommissionUSDT  decimal.NullDecimal `gorm:"type:decimal(36,18)" json:"totalCommissionUSDT,omitempty"`
	PnlUSDT              decimal.NullDecimal `gorm:"type:decimal(36,18)" json:"pnlUSDT,omitempty"`
	RoiPct               decimal.NullDecimal `gorm:"type:decimal(10,4)" json:"roiPct,omitempty"`
	CloseReason          *CloseReason        `gorm:"size:16" json:"closeReason,omitempty"`
	CloseTriggerLeadID   *string             `gorm:"size:64" json:"closeTriggerLeadId,omitempty"`
	Source               SimSource           `gorm:"size:8;not null" json:"source"`
	Notes                *string             `gorm:"type:text" json:"notes,omitempty"`
	OpenedAt             time.Time           `gorm:"not null" json:"openedAt"`
	ClosedAt             *time.Time          `json:"closedAt,omitempty"`
}

// IsOpenFor reports whether this simulation is an OPEN position for the
// given (symbol, direction), used by the auto-trigger matcher (spec §4.K).
func (s *SimulatedPosition) IsOpenFor(symbol string, direction Side) bool {
	return s.Status == SimOpen && s.Symbol == symbol && s.Direction == direction
}
