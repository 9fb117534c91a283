package insights

import "github.com/eyupilis/tracker-all-trader-sub001/internal/models"

// stabilityFlipPenalty is the k in stabilityScore = clip(100 − flipRate·k, 0, 100):
// a symbol that flips direction every single observation scores 0.
const stabilityFlipPenalty = 100.0

// SymbolStability summarises how often a symbol's consensus call has
// changed direction over the recorded history window.
type SymbolStability struct {
	Flips          int
	FlipRate       float64
	StabilityScore float64
}

// computeStability walks a symbol's recorded ConsensusSnapshot history in
// chronological order and counts direction changes.
func computeStability(history []models.ConsensusSnapshot) SymbolStability {
	if len(history) < 2 {
		return SymbolStability{StabilityScore: 100}
	}
	flips := 0
	for i := 1; i < len(history); i++ {
		if history[i].Direction != history[i-1].Direction {
			flips++
		}
	}
	flipRate := float64(flips) / float64(len(history)-1)
	return SymbolStability{
		Flips:          flips,
		FlipRate:       flipRate,
		StabilityScore: clip(100-flipRate*stabilityFlipPenalty, 0, 100),
	}
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
