// Package models is the §3 data model: the durable shape every other
// component reads and writes through the Store. Struct tags follow the
// teacher's gorm-first style (internal/models/trading.go), and
// money-sensitive fields use decimal.Decimal rather than float64.
package models

import "time"

// Segment classifies a LeadTrader by whether the venue exposes their
// current positions. Derived solely from PositionShow (spec §3 invariant).
type Segment string

const (
	SegmentVisible Segment = "VISIBLE"
	SegmentHidden  Segment = "HIDDEN"
	SegmentUnknown Segment = "UNKNOWN"
	SegmentBoth    Segment = "BOTH" // query-time filter value only, never stored
)

// LeadTrader is the immutable-identity, mutable-descriptor record for a
// polled account. Never destroyed; every ingest mutates the descriptors.
type LeadTrader struct {
	LeadID           string     `gorm:"primaryKey;size:64" json:"leadId"`
	Platform         string     `gorm:"size:32;not null;index:idx_leadtrader_platform" json:"platform"`
	Nickname         *string    `gorm:"size:128" json:"nickname,omitempty"`
	PositionShow     *bool      `json:"positionShow,omitempty"`
	PosShowUpdatedAt *time.Time `json:"posShowUpdatedAt,omitempty"`
	LastIngestAt     *time.Time `json:"lastIngestAt,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// CurrentSegment derives the segment classification. This is the only
// permitted way to classify a trader (spec §3 invariant).
func (t *LeadTrader) CurrentSegment() Segment {
	if t.PositionShow == nil {
		return SegmentUnknown
	}
	if *t.PositionShow {
		return SegmentVisible
	}
	return SegmentHidden
}

// MatchesSegmentFilter reports whether the trader's current segment
// satisfies a query-time filter (which may itself be SegmentBoth).
func (t *LeadTrader) MatchesSegmentFilter(filter Segment) bool {
	if filter == SegmentBoth || filter == "" {
		return t.CurrentSegment() != SegmentUnknown
	}
	return t.CurrentSegment() == filter
}
