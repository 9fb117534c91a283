package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Portfolio tracks simulated balance and per-portfolio risk caps
// (spec §3).
type Portfolio struct {
	ID               uuid.UUID       `gorm:"primaryKey;type:uuid" json:"id"`
	Platform         string          `gorm:"size:32;not null" json:"platform"`
	Name             string          `gorm:"size:128;not null" json:"name"`
	InitialBalance   decimal.Decimal `gorm:"type:decimal(36,18)" json:"initialBalance"`
	Balance          decimal.Decimal `gorm:"type:decimal(36,18)" json:"balance"`
	MaxRiskPerTrade  float64         `json:"maxRiskPerTrade"`  // fraction of balance, e.g. 0.02
	MaxOpenPositions int             `json:"maxOpenPositions"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

// PortfolioSnapshot is an end-of-cycle valuation of a portfolio (spec §4.M).
type PortfolioSnapshot struct {
	ID             uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	PortfolioID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_psnap_portfolio_time" json:"portfolioId"`
	TakenAt        time.Time       `gorm:"not null;index:idx_psnap_portfolio_time" json:"takenAt"`
	Balance        decimal.Decimal `gorm:"type:decimal(36,18)" json:"balance"`
	Unrealized     decimal.Decimal `gorm:"type:decimal(36,18)" json:"unrealized"`
	Realized       decimal.Decimal `gorm:"type:decimal(36,18)" json:"realized"`
	OpenPositions  int             `json:"openPositions"`
	TotalValue     decimal.Decimal `gorm:"type:decimal(36,18)" json:"totalValue"`
}

// PortfolioMetric is the recomputed-from-closed-trades performance summary
// (spec §4.M).
type PortfolioMetric struct {
	PortfolioID       uuid.UUID       `gorm:"primaryKey;type:uuid" json:"portfolioId"`
	WinRate           float64         `json:"winRate"`
	AvgWin            decimal.Decimal `gorm:"type:decimal(36,18)" json:"avgWin"`
	AvgLoss           decimal.Decimal `gorm:"type:decimal(36,18)" json:"avgLoss"`
	ProfitFactor      float64         `json:"profitFactor"`
	MaxConsecWins     int             `json:"maxConsecWins"`
	MaxConsecLosses   int             `json:"maxConsecLosses"`
	AvgSlippageBps    float64         `json:"avgSlippageBps"`
	TotalCommission   decimal.Decimal `gorm:"type:decimal(36,18)" json:"totalCommission"`
	MaxDrawdownPct    float64         `json:"maxDrawdownPct"`
	ComputedAt        time.Time       `gorm:"autoUpdateTime" json:"computedAt"`
}
