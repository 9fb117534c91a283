package models

import "time"

// RawIngest is the append-only per-trader, per-cycle payload log: the
// source of truth for replay. No deletion policy in the core (spec §3).
type RawIngest struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LeadID         string    `gorm:"size:64;not null;index:idx_rawingest_lead_fetched" json:"leadId"`
	Platform       string    `gorm:"size:32;not null" json:"platform"`
	FetchedAt      time.Time `gorm:"not null;index:idx_rawingest_lead_fetched" json:"fetchedAt"`
	PayloadBlob    string    `gorm:"type:text;not null" json:"payloadBlob"`
	PositionsCount int       `gorm:"not null;default:0" json:"positionsCount"`
	OrdersCount    int       `gorm:"not null;default:0" json:"ordersCount"`
	TimeRangeStart time.Time `json:"timeRangeStart"`
	TimeRangeEnd   time.Time `json:"timeRangeEnd"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
