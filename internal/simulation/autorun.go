package simulation

import (
	"context"
	"time"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/consensus"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/logger"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

// AutoRunner evaluates the platform's AutoTriggerRule against current
// consensus and opens, reverses, or skips simulated positions accordingly
// (spec §3, §4.K). One AutoRunner per ingest platform.
type AutoRunner struct {
	engine    *Engine
	consensus *consensus.Engine
	log       *logger.Logger
	platform  string
}

func NewAutoRunner(e *Engine, platform string, log *logger.Logger) *AutoRunner {
	return &AutoRunner{engine: e, consensus: e.consensus, log: log, platform: platform}
}

// Run loads the rule, checks enabled/cooldown, computes consensus, and
// opens or reverses positions for every symbol clearing the rule's
// thresholds. A rule's cooldown blocks a second run within
// CooldownMinutes of the last one (spec invariant 10).
func (a *AutoRunner) Run(ctx context.Context, now time.Time) error {
	rule, err := a.engine.store.GetAutoTriggerRule(ctx, a.platform)
	if err != nil {
		return err
	}
	if rule == nil || !rule.Enabled {
		return nil
	}
	if rule.CooldownUntil != nil && now.Before(*rule.CooldownUntil) {
		return nil
	}

	results, err := a.consensus.Compute(ctx, rule.Segment, 24*time.Hour, now)
	if err != nil {
		return err
	}

	watch := make(map[string]bool, len(rule.WatchSymbols))
	for _, s := range rule.WatchSymbols {
		watch[s] = true
	}

	for _, sc := range results {
		if len(watch) > 0 && !watch[sc.Symbol] {
			continue
		}
		if err := a.evaluateSymbol(ctx, rule, sc); err != nil {
			a.log.Errorf("auto-trigger evaluation failed", err, "symbol", sc.Symbol)
		}
	}

	rule.LastRunAt = &now
	cooldownUntil := now.Add(time.Duration(rule.CooldownMinutes) * time.Minute)
	rule.CooldownUntil = &cooldownUntil
	return a.engine.store.SaveAutoTriggerRule(ctx, rule)
}

func (a *AutoRunner) evaluateSymbol(ctx context.Context, rule *models.AutoTriggerRule, sc consensus.SymbolConsensus) error {
	if sc.Direction == consensus.DirectionNeutral {
		return nil
	}
	if sc.TotalTraders < rule.MinTraders {
		return nil
	}
	if float64(sc.ConfidenceScore) < rule.MinConfidence {
		return nil
	}
	if absFloat(sc.SentimentScore)*100 < rule.MinSentimentAbs {
		return nil
	}

	direction := models.SideLong
	if sc.Direction == consensus.DirectionShort {
		direction = models.SideShort
	}

	existing, err := a.engine.store.OpenSimulatedPositionFor(ctx, sc.Symbol, direction)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	opposite, err := a.engine.store.OpenSimulatedPositionFor(ctx, sc.Symbol, opposite(direction))
	if err != nil {
		return err
	}
	if opposite != nil {
		if rule.DryRun {
			a.log.Infof("auto-trigger would reverse position (dry run)", "symbol", sc.Symbol, "direction", direction)
			return nil
		}
		reason := models.CloseReversal
		if _, err := a.engine.CloseManual(ctx, CloseParams{ID: opposite.ID, Reason: &reason}); err != nil {
			return err
		}
	}

	if rule.DryRun {
		a.log.Infof("auto-trigger would open position (dry run)", "symbol", sc.Symbol, "direction", direction)
		return nil
	}

	_, err = a.engine.OpenManual(ctx, OpenParams{
		Symbol:         sc.Symbol,
		Direction:      direction,
		Leverage:       rule.Leverage,
		MarginNotional: rule.MarginNotional,
		Source:         models.SourceAuto,
	})
	return err
}

func opposite(side models.Side) models.Side {
	if side == models.SideLong {
		return models.SideShort
	}
	return models.SideLong
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
