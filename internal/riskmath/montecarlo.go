package riskmath

import (
	"math"
	"math/rand"
	"sort"
)

// MonteCarloResult summarises a bootstrap simulation of equity outcomes
// (spec §4.N, testable properties 9, scenario S6).
type MonteCarloResult struct {
	Mean               float64
	Median             float64
	StdDev             float64
	Worst              float64
	Best               float64
	Confidence95Low    float64
	Confidence95High   float64
	ProbabilityOfRuin  float64
	Runs               int
}

// MonteCarlo bootstraps `runs` simulations of `sampleSize` trades sampled
// with replacement from historical trade PnLs, starting from
// initialBalance. If sampleSize <= 0, it defaults to len(trades). If
// equity drops to or below zero mid-run, that run halts at 0 (floor, no
// further trades applied). Returns initialBalance-only statistics and
// zero ruin probability when trades is empty, satisfying invariant 9.
func MonteCarlo(trades []float64, initialBalance float64, runs, sampleSize int, rng *rand.Rand) MonteCarloResult {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if runs <= 0 {
		runs = 1
	}
	if sampleSize <= 0 {
		sampleSize = len(trades)
	}

	finals := make([]float64, runs)
	for i := 0; i < runs; i++ {
		equity := initialBalance
		if len(trades) > 0 {
			for j := 0; j < sampleSize; j++ {
				pnl := trades[rng.Intn(len(trades))]
				equity += pnl
				if equity <= 0 {
					equity = 0
					break
				}
			}
		}
		finals[i] = equity
	}

	sorted := append([]float64(nil), finals...)
	sort.Float64s(sorted)

	mean := meanOf(finals)
	stddev := stdDevOf(finals, mean)
	ruinCount := 0
	for _, f := range finals {
		if f < initialBalance {
			ruinCount++
		}
	}

	return MonteCarloResult{
		Mean:              mean,
		Median:            percentile(sorted, 50),
		StdDev:            stddev,
		Worst:             sorted[0],
		Best:              sorted[len(sorted)-1],
		Confidence95Low:   percentile(sorted, 2.5),
		Confidence95High:  percentile(sorted, 97.5),
		ProbabilityOfRuin: float64(ruinCount) / float64(runs),
		Runs:              runs,
	}
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stdDevOf(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

// percentile does linear-interpolation percentile lookup on an
// already-sorted slice. p is in [0,100].
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
