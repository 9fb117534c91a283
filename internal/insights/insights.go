// Package insights surfaces crowd anomalies, consensus stability, a
// trader leaderboard, and an overall risk band for a (segment, timeRange)
// query, each gated by a configurable threshold preset (spec §4.J).
package insights

import (
	"context"
	"time"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/consensus"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/logger"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/store"
)

// SymbolInsight is one symbol's consensus, anomaly, and stability read.
type SymbolInsight struct {
	Consensus consensus.SymbolConsensus
	Stability SymbolStability
	Anomalies []Anomaly
}

// Result is the full response for one Evaluate call.
type Result struct {
	Platform    string
	Segment     models.Segment
	Mode        models.InsightsMode
	Symbols     []SymbolInsight
	Leaderboard []LeaderboardEntry
	RiskScore   float64
	RiskBand    RiskBand
}

type Engine struct {
	store     *store.Store
	consensus *consensus.Engine
	log       *logger.Logger
}

func New(s *store.Store, c *consensus.Engine, log *logger.Logger) *Engine {
	return &Engine{store: s, consensus: c, log: log}
}

// Evaluate computes the full insights response for platform/segment over
// timeRange as of now. mode selects the threshold preset when no
// InsightsRule override is persisted for the platform. Every symbol's
// consensus call is recorded as a ConsensusSnapshot row before stability
// is measured, so repeated calls accumulate the history flip-counting
// needs.
func (e *Engine) Evaluate(ctx context.Context, platform string, segment models.Segment, timeRange time.Duration, mode models.InsightsMode, top int, now time.Time) (*Result, error) {
	preset, resolvedMode := e.resolvePreset(ctx, platform, mode)

	symbolConsensus, err := e.consensus.Compute(ctx, segment, timeRange, now)
	if err != nil {
		return nil, err
	}

	symbols := make([]SymbolInsight, 0, len(symbolConsensus))
	for _, sc := range symbolConsensus {
		snap := &models.ConsensusSnapshot{
			Platform:   platform,
			Symbol:     sc.Symbol,
			Segment:    segment,
			Direction:  string(sc.Direction),
			ComputedAt: now,
		}
		if err := e.store.InsertConsensusSnapshot(ctx, snap); err != nil {
			return nil, err
		}

		history, err := e.store.ConsensusSnapshotsForSymbol(ctx, platform, sc.Symbol, segment, now.Add(-timeRange))
		if err != nil {
			return nil, err
		}
		stability := computeStability(history)
		anomalies := detectAnomalies(sc, stability, preset)

		symbols = append(symbols, SymbolInsight{Consensus: sc, Stability: stability, Anomalies: anomalies})
	}

	leaderboard, err := e.buildLeaderboard(ctx, segment, timeRange, preset, now, top)
	if err != nil {
		return nil, err
	}

	riskScore, riskBand := overallRisk(symbols)
	if e.log != nil {
		e.log.Infof("insights evaluated", "platform", platform, "segment", segment, "symbols", len(symbols), "riskBand", riskBand, "riskScore", riskScore)
	}

	return &Result{
		Platform:    platform,
		Segment:     segment,
		Mode:        resolvedMode,
		Symbols:     symbols,
		Leaderboard: leaderboard,
		RiskScore:   riskScore,
		RiskBand:    riskBand,
	}, nil
}

// resolvePreset reads the platform's persisted InsightsRule; a rule row
// always carries explicit threshold fields, so its values are used as-is.
// With no persisted row, the named mode's built-in default preset applies.
func (e *Engine) resolvePreset(ctx context.Context, platform string, mode models.InsightsMode) (Preset, models.InsightsMode) {
	rule, err := e.store.GetInsightsRule(ctx, platform)
	if err != nil || rule == nil {
		return PresetFor(mode), mode
	}
	return Preset{
		CrowdingThreshold:     rule.CrowdingThreshold,
		HighLeverageThreshold: rule.HighLeverageThreshold,
		UnstableFlipThreshold: rule.UnstableFlipThreshold,
		LowConfidenceFloor:    rule.LowConfidenceFloor,
		ScoreMultiplier:       rule.ScoreMultiplier,
	}, rule.Mode
}
