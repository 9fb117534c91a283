package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EventType is the normalised semantic action for an order-history entry.
type EventType string

const (
	EventOpenLong   EventType = "OPEN_LONG"
	EventOpenShort  EventType = "OPEN_SHORT"
	EventCloseLong  EventType = "CLOSE_LONG"
	EventCloseShort EventType = "CLOSE_SHORT"
	EventUnknown    EventType = "UNKNOWN"
)

// IsOpen reports whether the event type opens a position.
func (e EventType) IsOpen() bool {
	return e == EventOpenLong || e == EventOpenShort
}

// IsClose reports whether the event type closes a position.
func (e EventType) IsClose() bool {
	return e == EventCloseLong || e == EventCloseShort
}

// Side returns the Side implied by the event type. Panics-free: returns
// "" for EventUnknown.
func (e EventType) Side() Side {
	switch e {
	case EventOpenLong, EventCloseLong:
		return SideLong
	case EventOpenShort, EventCloseShort:
		return SideShort
	default:
		return ""
	}
}

// Event is an exchange-visible order-history entry normalised to a
// semantic action. EventKey is globally unique and is the sole
// deduplication mechanism (spec §3, §9).
type Event struct {
	ID            uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	EventKey      string              `gorm:"size:256;not null;uniqueIndex:idx_event_key" json:"eventKey"`
	Platform      string              `gorm:"size:32;not null" json:"platform"`
	LeadID        string              `gorm:"size:64;not null;index:idx_event_lead_symbol" json:"leadId"`
	EventType     EventType           `gorm:"size:16;not null" json:"eventType"`
	Symbol        string              `gorm:"size:32;not null;index:idx_event_lead_symbol" json:"symbol"`
	Price         decimal.NullDecimal `gorm:"type:decimal(36,18)" json:"price,omitempty"`
	Amount        decimal.NullDecimal `gorm:"type:decimal(36,18)" json:"amount,omitempty"`
	AmountAsset   *string             `gorm:"size:16" json:"amountAsset,omitempty"`
	RealizedPnl   decimal.NullDecimal `gorm:"type:decimal(36,18)" json:"realizedPnl,omitempty"`
	EventTimeText string              `gorm:"size:32;not null" json:"eventTimeText"`
	EventTime     time.Time           `gorm:"not null;index:idx_event_time" json:"eventTime"`
	FetchedAt     time.Time           `gorm:"not null" json:"fetchedAt"`
	CreatedAt     time.Time           `gorm:"autoCreateTime" json:"createdAt"`
}

// BuildEventKey constructs the unique key from its constituent fields,
// following spec §3 exactly: platform|leadId|eventType|symbol|eventTimeText|amount|price.
func BuildEventKey(platform, leadID string, eventType EventType, symbol, eventTimeText string, amount, price decimal.Decimal) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s",
		platform, leadID, eventType, symbol, eventTimeText, amount.String(), price.String())
}
