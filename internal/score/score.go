// Package score computes the per-trader quality/weight record consumed
// by the Consensus Engine's weighted aggregation (spec §4.H).
package score

import (
	"context"
	"math"
	"time"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/store"
)

const (
	realizedPnlWindow = 30 * 24 * time.Hour
	availabilityFresh = time.Hour
	availabilityStale = 24 * time.Hour

	// Sample-size thresholds for the confidence bucket. Open question
	// resolved: the spec names the buckets but not their boundaries, so
	// low/medium/high track how little of the win-rate signal is noise.
	sampleSizeMedium = 5
	sampleSizeHigh   = 20
)

type Scorer struct {
	store *store.Store
}

func New(s *store.Store) *Scorer {
	return &Scorer{store: s}
}

// RecomputeFor recomputes and persists the TraderScore for one trader,
// using its most recent LeadTrader row for availability and its recent
// CLOSE_* events for realised PnL, win rate, and sample size.
func (s *Scorer) RecomputeFor(ctx context.Context, leadID string, now time.Time) (models.TraderScore, error) {
	trader, err := s.store.GetLeadTrader(ctx, leadID)
	if err != nil {
		return models.TraderScore{}, err
	}

	events, err := s.store.RecentClosingEvents(ctx, leadID, now.Add(-realizedPnlWindow))
	if err != nil {
		return models.TraderScore{}, err
	}

	var sumPnl float64
	var wins, sampleSize int
	for _, ev := range events {
		sampleSize++
		if !ev.RealizedPnl.Valid {
			continue
		}
		pnl, _ := ev.RealizedPnl.Decimal.Float64()
		sumPnl += pnl
		if pnl > 0 {
			wins++
		}
	}

	score30d := normaliseLog(sumPnl)
	qualityScore := score30d // both scaled to [0,100]; quality tracks realised performance directly.
	winRate := 0.0
	if sampleSize > 0 {
		winRate = float64(wins) / float64(sampleSize)
	}
	confidence := confidenceBucket(sampleSize)

	weight := traderWeight(qualityScore, confidence, winRate, sampleSize, trader, now)

	result := models.TraderScore{
		LeadID:       leadID,
		Score30d:     score30d,
		QualityScore: qualityScore,
		Confidence:   confidence,
		WinRate:      winRate,
		SampleSize:   sampleSize,
		TraderWeight: weight,
		ComputedAt:   now,
	}
	if err := s.store.UpsertTraderScore(ctx, &result); err != nil {
		return models.TraderScore{}, err
	}
	return result, nil
}

// normaliseLog maps cumulative realised PnL to [0,100] via
// log10(1+pnl)*25, clipped. Negative PnL maps to 0.
func normaliseLog(pnl float64) float64 {
	if pnl <= 0 {
		return 0
	}
	v := math.Log10(1+pnl) * 25
	return clip01Scaled(v, 100)
}

func confidenceBucket(sampleSize int) models.Confidence {
	switch {
	case sampleSize >= sampleSizeHigh:
		return models.ConfidenceHigh
	case sampleSize >= sampleSizeMedium:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func traderWeight(qualityScore float64, confidence models.Confidence, winRate float64, sampleSize int, trader *models.LeadTrader, now time.Time) float64 {
	if sampleSize == 0 {
		return 0
	}
	if trader == nil || trader.LastIngestAt == nil {
		return 0
	}
	age := now.Sub(*trader.LastIngestAt)
	if age > availabilityStale {
		return 0
	}

	baseWeight := qualityScore / 100

	var confidenceFactor float64
	switch confidence {
	case models.ConfidenceHigh:
		confidenceFactor = 1.0
	case models.ConfidenceMedium:
		confidenceFactor = 0.75
	default:
		confidenceFactor = 0.5
	}

	winAdj := 1 + 2*(winRate-0.5)
	winAdj = clipRange(winAdj, 0.3, 1.3)

	availabilityPenalty := 0.75
	if age <= availabilityFresh {
		availabilityPenalty = 1.0
	}

	weight := baseWeight * confidenceFactor * winAdj * availabilityPenalty
	return clipRange(weight, 0, 1)
}

func clip01Scaled(v, max float64) float64 {
	return clipRange(v, 0, max)
}

func clipRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
