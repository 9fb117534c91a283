package insights

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

// LeaderboardEntry is one trader's rank contribution.
type LeaderboardEntry struct {
	LeadID         string
	TraderWeight   float64
	QualityScore   float64
	ActivityEvents int
	RealizedPnl    float64
	Score          float64
}

// Leaderboard weighting: traderWeight and qualityScore dominate since they
// already reflect realised performance (internal/score); activity and raw
// PnL break ties between otherwise similar traders.
const (
	weightTraderWeight   = 40.0
	weightQualityScore   = 0.4 // qualityScore is already 0..100
	weightActivityEvents = 10.0
	weightRealizedPnl    = 10.0
)

// buildLeaderboard ranks every trader in segment by
// score = f(traderWeight, qualityScore, activityEvents, realizedPnl) ×
// scoreMultiplier (spec §4.J), returning at most top entries.
func (e *Engine) buildLeaderboard(ctx context.Context, segment models.Segment, timeRange time.Duration, preset Preset, now time.Time, top int) ([]LeaderboardEntry, error) {
	traders, err := e.store.ListLeadTradersBySegment(ctx, segment, timeRange, now)
	if err != nil {
		return nil, err
	}
	if len(traders) == 0 {
		return nil, nil
	}

	leadIDs := make([]string, len(traders))
	for i, t := range traders {
		leadIDs[i] = t.LeadID
	}
	scores, err := e.store.TraderScores(ctx, leadIDs)
	if err != nil {
		return nil, err
	}

	since := now.Add(-timeRange)
	entries := make([]LeaderboardEntry, 0, len(traders))
	for _, leadID := range leadIDs {
		ts := scores[leadID]

		events, err := e.store.RecentClosingEvents(ctx, leadID, since)
		if err != nil {
			return nil, err
		}
		var realizedPnl float64
		for _, ev := range events {
			if ev.RealizedPnl.Valid {
				v, _ := ev.RealizedPnl.Decimal.Float64()
				realizedPnl += v
			}
		}

		score := (ts.TraderWeight*weightTraderWeight +
			ts.QualityScore*weightQualityScore +
			activityFactor(len(events))*weightActivityEvents +
			pnlFactor(realizedPnl)*weightRealizedPnl) * preset.ScoreMultiplier

		entries = append(entries, LeaderboardEntry{
			LeadID:         leadID,
			TraderWeight:   ts.TraderWeight,
			QualityScore:   ts.QualityScore,
			ActivityEvents: len(events),
			RealizedPnl:    realizedPnl,
			Score:          score,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	if top > 0 && len(entries) > top {
		entries = entries[:top]
	}
	return entries, nil
}

// activityFactor maps a raw event count to [0,1] via log10, so a trader
// with 100 closes doesn't dwarf one with 10 the way a linear count would.
func activityFactor(events int) float64 {
	if events <= 0 {
		return 0
	}
	return clip(math.Log10(float64(events+1))/2, 0, 1)
}

// pnlFactor maps positive realised PnL to [0,1] as log10(1+pnl)/4,
// clipped; zero or negative PnL returns 0.
func pnlFactor(pnl float64) float64 {
	if pnl <= 0 {
		return 0
	}
	return clip(math.Log10(1+pnl)/4, 0, 1)
}
