package riskmath

import (
	"math"
	"sort"
)

// WindowStat is the in-sample/out-sample win rate for one walk-forward
// window.
type WindowStat struct {
	InSampleWinRate  float64
	OutSampleWinRate float64
	InSampleCount    int
	OutSampleCount   int
}

// WalkForwardResult summarises a walk-forward overfitting check
// (spec §4.N).
type WalkForwardResult struct {
	Windows      []WindowStat
	Correlation  float64 // Pearson correlation of per-window in/out win rate
	OverfitScore float64 // clip(-100*avgDegradation, 0, 100)
}

// WalkForward splits trades (assumed already in chronological order) into
// `windows` equal-sized windows; within each window the first
// inSampleRatio fraction is "in-sample" and the remainder "out-sample".
// It measures whether out-of-sample performance degrades relative to
// in-sample performance, a classic overfitting signal.
func WalkForward(trades []Trade, windows int, inSampleRatio float64) WalkForwardResult {
	if windows <= 0 || len(trades) == 0 {
		return WalkForwardResult{}
	}
	sorted := append([]Trade(nil), trades...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ClosedAt.Before(sorted[j].ClosedAt) })

	windowSize := len(sorted) / windows
	if windowSize == 0 {
		windowSize = len(sorted)
		windows = 1
	}

	stats := make([]WindowStat, 0, windows)
	for w := 0; w < windows; w++ {
		start := w * windowSize
		end := start + windowSize
		if w == windows-1 {
			end = len(sorted)
		}
		if start >= end {
			continue
		}
		segment := sorted[start:end]
		splitAt := int(float64(len(segment)) * inSampleRatio)
		inSample := segment[:splitAt]
		outSample := segment[splitAt:]
		stats = append(stats, WindowStat{
			InSampleWinRate:  winRate(inSample),
			OutSampleWinRate: winRate(outSample),
			InSampleCount:    len(inSample),
			OutSampleCount:   len(outSample),
		})
	}

	if len(stats) < 2 {
		degradation := 0.0
		if len(stats) == 1 {
			degradation = stats[0].OutSampleWinRate - stats[0].InSampleWinRate
		}
		return WalkForwardResult{
			Windows:      stats,
			Correlation:  0,
			OverfitScore: clip(-100*degradation, 0, 100),
		}
	}

	inRates := make([]float64, len(stats))
	outRates := make([]float64, len(stats))
	var totalDegradation float64
	for i, s := range stats {
		inRates[i] = s.InSampleWinRate
		outRates[i] = s.OutSampleWinRate
		totalDegradation += s.OutSampleWinRate - s.InSampleWinRate
	}
	avgDegradation := totalDegradation / float64(len(stats))

	return WalkForwardResult{
		Windows:      stats,
		Correlation:  pearson(inRates, outRates),
		OverfitScore: clip(-100*avgDegradation, 0, 100),
	}
}

func winRate(trades []Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	wins := 0
	for _, t := range trades {
		if t.PnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(trades))
}

func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return 0
	}
	mx, my := meanOf(xs), meanOf(ys)
	var num, dx2, dy2 float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		num += dx * dy
		dx2 += dx * dx
		dy2 += dy * dy
	}
	denom := math.Sqrt(dx2 * dy2)
	if denom == 0 {
		return 0
	}
	return num / denom
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
