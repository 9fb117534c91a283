package insights

import (
	"fmt"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/consensus"
)

// AnomalyType classifies a detected crowd or leverage condition.
type AnomalyType string

const (
	AnomalyLeverageSpike  AnomalyType = "LEVERAGE_SPIKE"
	AnomalyCrowdFormation AnomalyType = "CROWD_FORMATION"
	AnomalyConfidenceDrop AnomalyType = "CONFIDENCE_DROP"
	AnomalyUnstableFlip   AnomalyType = "UNSTABLE_FLIP"
)

// Anomaly is one detected condition for a symbol.
type Anomaly struct {
	Symbol string
	Type   AnomalyType
	Detail string
}

// detectAnomalies checks one symbol's consensus and stability reading
// against the active preset's four thresholds.
func detectAnomalies(sc consensus.SymbolConsensus, stability SymbolStability, preset Preset) []Anomaly {
	var out []Anomaly

	if sc.WeightedAvgLeverage >= float64(preset.HighLeverageThreshold) {
		out = append(out, Anomaly{
			Symbol: sc.Symbol,
			Type:   AnomalyLeverageSpike,
			Detail: fmt.Sprintf("weighted avg leverage %.1fx >= %dx", sc.WeightedAvgLeverage, preset.HighLeverageThreshold),
		})
	}

	if sc.TotalTraders >= preset.CrowdingThreshold {
		out = append(out, Anomaly{
			Symbol: sc.Symbol,
			Type:   AnomalyCrowdFormation,
			Detail: fmt.Sprintf("%d traders positioned >= crowding threshold %d", sc.TotalTraders, preset.CrowdingThreshold),
		})
	}

	if sc.Direction != consensus.DirectionNeutral && float64(sc.ConfidenceScore) < preset.LowConfidenceFloor*100 {
		out = append(out, Anomaly{
			Symbol: sc.Symbol,
			Type:   AnomalyConfidenceDrop,
			Detail: fmt.Sprintf("confidence %d below floor %.0f despite a %s call", sc.ConfidenceScore, preset.LowConfidenceFloor*100, sc.Direction),
		})
	}

	if stability.Flips >= preset.UnstableFlipThreshold {
		out = append(out, Anomaly{
			Symbol: sc.Symbol,
			Type:   AnomalyUnstableFlip,
			Detail: fmt.Sprintf("%d direction flips >= unstable threshold %d", stability.Flips, preset.UnstableFlipThreshold),
		})
	}

	return out
}
