package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionStateStatus is the lifecycle status of a single open/close arc.
type PositionStateStatus string

const (
	PositionActive PositionStateStatus = "ACTIVE"
	PositionClosed PositionStateStatus = "CLOSED"
)

// PositionState is a lifecycle record for a single open/close arc per
// (trader, symbol, direction). At most one ACTIVE row may exist per key
// (spec §3 invariant, spec §8 invariant 1).
type PositionState struct {
	ID                 uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	LeadID             string              `gorm:"size:64;not null;index:idx_posstate_key" json:"leadId"`
	Symbol             string              `gorm:"size:32;not null;index:idx_posstate_key" json:"symbol"`
	Side               Side                `gorm:"size:8;not null;index:idx_posstate_key" json:"side"`
	Status             PositionStateStatus `gorm:"size:8;not null;index:idx_posstate_status" json:"status"`
	EntryPrice         decimal.Decimal     `gorm:"type:decimal(36,18)" json:"entryPrice"`
	Amount             decimal.Decimal     `gorm:"type:decimal(36,18)" json:"amount"`
	Leverage           *int                `json:"leverage,omitempty"`
	FirstSeenAt        time.Time           `gorm:"not null" json:"firstSeenAt"`
	LastSeenAt         time.Time           `gorm:"not null" json:"lastSeenAt"`
	DisappearedAt      *time.Time          `json:"disappearedAt,omitempty"`
	EstimatedOpenTime  time.Time           `gorm:"not null" json:"estimatedOpenTime"`
	EstimatedCloseTime *time.Time          `json:"estimatedCloseTime,omitempty"`
	OpenEventID        *string             `gorm:"size:256" json:"openEventId,omitempty"`
	CloseEventID       *string             `gorm:"size:256" json:"closeEventId,omitempty"`
	CreatedAt          time.Time           `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time           `gorm:"autoUpdateTime" json:"updatedAt"`
}

// PositionKey is the (trader, symbol, direction) key the lifecycle
// diffing map is persistently keyed on (spec §9 "Lifecycle diffing").
type PositionKey struct {
	LeadID string
	Symbol string
	Side   Side
}

func (p *PositionState) Key() PositionKey {
	return PositionKey{LeadID: p.LeadID, Symbol: p.Symbol, Side: p.Side}
}
