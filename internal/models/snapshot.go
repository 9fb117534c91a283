package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is a position's directional side.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// MarginType is the margin mode a position was opened under.
type MarginType string

const (
	MarginIsolated MarginType = "ISOLATED"
	MarginCross    MarginType = "CROSS"
)

// PositionSnapshot is one row per (trader, symbol, side) observed in a
// single cycle. Insertion-only; duplicates at the same FetchedAt are
// discarded at the Store layer (spec §3).
type PositionSnapshot struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	LeadID       string          `gorm:"size:64;not null;index:idx_snapshot_lead_fetched;uniqueIndex:uq_snapshot_identity" json:"leadId"`
	FetchedAt    time.Time       `gorm:"not null;index:idx_snapshot_lead_fetched;uniqueIndex:uq_snapshot_identity" json:"fetchedAt"`
	Symbol       string          `gorm:"size:32;not null;index:idx_snapshot_symbol;uniqueIndex:uq_snapshot_identity" json:"symbol"`
	Side         Side            `gorm:"size:8;not null;uniqueIndex:uq_snapshot_identity" json:"side"`
	ContractType string          `gorm:"size:32" json:"contractType"`
	Leverage     int             `json:"leverage"`
	Size         decimal.Decimal `gorm:"type:decimal(36,18)" json:"size"`
	EntryPrice   decimal.Decimal `gorm:"type:decimal(36,18)" json:"entryPrice"`
	MarkPrice    decimal.Decimal `gorm:"type:decimal(36,18)" json:"markPrice"`
	MarginUSDT   decimal.NullDecimal `gorm:"type:decimal(36,18)" json:"marginUSDT,omitempty"`
	MarginType   MarginType      `gorm:"size:10" json:"marginType"`
	PnlUSDT      decimal.Decimal `gorm:"type:decimal(36,18)" json:"pnlUSDT"`
	RoePct       decimal.Decimal `gorm:"type:decimal(10,4)" json:"roePct"`
	RawBlob      string          `gorm:"type:text" json:"rawBlob,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"createdAt"`
}

// Key identifies the (symbol, side) pair used for snapshot-set diffing by
// the Visible Position Tracker (spec §4.E).
type SnapshotKey struct {
	Symbol string
	Side   Side
}

func (s *PositionSnapshot) Key() SnapshotKey {
	return SnapshotKey{Symbol: s.Symbol, Side: s.Side}
}
