package models

import (
	"time"

	"github.com/lib/pq"
)

// InsightsMode selects a named threshold preset for the Insights Engine
// (spec §4.J).
type InsightsMode string

const (
	ModeConservative InsightsMode = "conservative"
	ModeBalanced     InsightsMode = "balanced"
	ModeAggressive   InsightsMode = "aggressive"
)

// AutoTriggerRule is the singleton-per-platform auto-simulator
// configuration (spec §3, §4.K).
type AutoTriggerRule struct {
	Platform          string         `gorm:"primaryKey;size:32" json:"platform"`
	Enabled           bool           `json:"enabled"`
	Segment           Segment        `gorm:"size:8" json:"segment"`
	MinTraders        int            `json:"minTraders"`
	MinConfidence     float64        `json:"minConfidence"`
	MinSentimentAbs   float64        `json:"minSentimentAbs"`
	Leverage          int            `json:"leverage"`
	MarginNotional    float64        `json:"marginNotional"`
	CooldownMinutes   int            `json:"cooldownMinutes"`
	DryRun            bool           `json:"dryRun"`
	WatchSymbols      pq.StringArray `gorm:"type:text[]" json:"watchSymbols,omitempty"`
	LastRunAt         *time.Time     `json:"lastRunAt,omitempty"`
	CooldownUntil     *time.Time     `json:"cooldownUntil,omitempty"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

// ReadyAt returns when the rule will next be eligible to run; zero time if
// it is ready now.
func (r *AutoTriggerRule) ReadyAt() time.Time {
	if r.CooldownUntil == nil {
		return time.Time{}
	}
	return *r.CooldownUntil
}

// InsightsRule is the singleton-per-platform Insights Engine configuration
// (spec §3, §4.J).
type InsightsRule struct {
	Platform              string       `gorm:"primaryKey;size:32" json:"platform"`
	Mode                  InsightsMode `gorm:"size:16" json:"mode"`
	CrowdingThreshold     int          `json:"crowdingThreshold"`
	HighLeverageThreshold int          `json:"highLeverageThreshold"`
	UnstableFlipThreshold int          `json:"unstableFlipThreshold"`
	LowConfidenceFloor    float64      `json:"lowConfidenceFloor"`
	ScoreMultiplier       float64      `json:"scoreMultiplier"`
	UpdatedAt             time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
}
