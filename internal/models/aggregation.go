package models

import "time"

// SymbolAggregation is the per-(platform, symbol) open-interest summary,
// recomputed atomically after every ingest cycle (spec §3, §4.G).
type SymbolAggregation struct {
	Platform       string     `gorm:"primaryKey;size:32" json:"platform"`
	Symbol         string     `gorm:"primaryKey;size:32" json:"symbol"`
	OpenLongCount  int        `gorm:"not null;default:0" json:"openLongCount"`
	OpenShortCount int        `gorm:"not null;default:0" json:"openShortCount"`
	TotalOpen      int        `gorm:"not null;default:0" json:"totalOpen"`
	LatestEventAt  *time.Time `json:"latestEventAt,omitempty"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// ConsensusSnapshot is one recorded direction call for a symbol, appended
// every time the Insights Engine evaluates consensus, so that a later
// evaluation can measure how often the call has flipped (spec §4.J
// stability score). Open question resolved: the spec names a "consensus
// time-series" without specifying where it lives; this table is the
// Insights Engine's own recording of what it has observed.
type ConsensusSnapshot struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Platform   string    `gorm:"size:32;not null;index:idx_consensus_snap_symbol" json:"platform"`
	Symbol     string    `gorm:"size:32;not null;index:idx_consensus_snap_symbol" json:"symbol"`
	Segment    Segment   `gorm:"size:8;not null" json:"segment"`
	Direction  string    `gorm:"size:8;not null" json:"direction"`
	ComputedAt time.Time `gorm:"not null;index:idx_consensus_snap_symbol" json:"computedAt"`
}
