package insights

import "github.com/eyupilis/tracker-all-trader-sub001/internal/models"

// Preset is a named bundle of the Insights Engine's anomaly and scoring
// thresholds (spec §4.J), mirrored in InsightsRule once a platform has
// persisted its own configuration.
type Preset struct {
	CrowdingThreshold     int
	HighLeverageThreshold int
	UnstableFlipThreshold int
	LowConfidenceFloor    float64
	ScoreMultiplier       float64
}

var builtinPresets = map[models.InsightsMode]Preset{
	models.ModeConservative: {
		CrowdingThreshold:     5,
		HighLeverageThreshold: 10,
		UnstableFlipThreshold: 3,
		LowConfidenceFloor:    0.5,
		ScoreMultiplier:       0.8,
	},
	models.ModeBalanced: {
		CrowdingThreshold:     8,
		HighLeverageThreshold: 20,
		UnstableFlipThreshold: 5,
		LowConfidenceFloor:    0.35,
		ScoreMultiplier:       1.0,
	},
	models.ModeAggressive: {
		CrowdingThreshold:     12,
		HighLeverageThreshold: 35,
		UnstableFlipThreshold: 8,
		LowConfidenceFloor:    0.2,
		ScoreMultiplier:       1.25,
	},
}

// PresetFor returns the built-in threshold bundle for mode, falling back
// to balanced for an unrecognised or empty mode.
func PresetFor(mode models.InsightsMode) Preset {
	if p, ok := builtinPresets[mode]; ok {
		return p
	}
	return builtinPresets[models.ModeBalanced]
}
