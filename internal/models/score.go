package models

import "time"

// Confidence is a coarse sample-size-derived confidence bucket.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// TraderScore is the per-trader quality/weight record recomputed after
// every ingest (spec §3, §4.H).
type TraderScore struct {
	LeadID        string     `gorm:"primaryKey;size:64" json:"leadId"`
	Score30d      float64    `json:"score30d"`
	QualityScore  float64    `json:"qualityScore"`
	Confidence    Confidence `gorm:"size:8" json:"confidence"`
	WinRate       float64    `json:"winRate"`
	SampleSize    int        `json:"sampleSize"`
	TraderWeight  float64    `json:"traderWeight"`
	ComputedAt    time.Time  `gorm:"autoUpdateTime" json:"computedAt"`
}
