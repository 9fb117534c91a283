// Package consensus computes per-symbol weighted sentiment across the
// eligible trader population for a (timeRange, segment) query (spec
// §4.I). It reads current positions from the Store (VISIBLE traders via
// their latest snapshot set, HIDDEN traders via their ACTIVE lifecycle
// rows) and weighs each contribution by TraderScore.traderWeight.
package consensus

import (
	"context"
	"time"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/store"
)

// agreementEpsilon is the minimum |sentimentScore| to call a direction
// rather than NEUTRAL (spec §4.I step 5, "recommended 0.05").
const agreementEpsilon = 0.05

// DataSource classifies which trader segments contributed to a symbol's
// consensus (spec §4.I step 8).
type DataSource string

const (
	DataSourceVisible       DataSource = "VISIBLE"
	DataSourceHiddenDerived DataSource = "HIDDEN_DERIVED"
	DataSourceMixed         DataSource = "MIXED"
)

// Direction is the consensus call for one symbol.
type Direction string

const (
	DirectionLong    Direction = "LONG"
	DirectionShort   Direction = "SHORT"
	DirectionNeutral Direction = "NEUTRAL"
)

// SymbolConsensus is the computed sentiment/confidence summary for one
// symbol over the eligible trader population.
type SymbolConsensus struct {
	Symbol              string
	LongWeight          float64
	ShortWeight         float64
	SentimentScore      float64
	Direction           Direction
	ConfidenceScore     int
	WeightedAvgLeverage float64
	TotalTraders        int
	DataSource          DataSource
}

type contribution struct {
	weight     float64
	side       models.Side
	leverage   float64
	fromHidden bool
}

type Engine struct {
	store *store.Store
}

func New(s *store.Store) *Engine {
	return &Engine{store: s}
}

// Compute returns the per-symbol consensus across traders matching
// segment whose last ingest falls within timeRange of now.
func (e *Engine) Compute(ctx context.Context, segment models.Segment, timeRange time.Duration, now time.Time) ([]SymbolConsensus, error) {
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

	bySymbol := make(map[string][]contribution)

	var hiddenLeadIDs []string
	for _, t := range traders {
		if t.CurrentSegment() == models.SegmentHidden {
			hiddenLeadIDs = append(hiddenLeadIDs, t.LeadID)
		}
	}
	hiddenStates, err := e.store.AllActivePositionStates(ctx, hiddenLeadIDs)
	if err != nil {
		return nil, err
	}
	hiddenBySymbolLead := make(map[string][]models.PositionState)
	for _, st := range hiddenStates {
		hiddenBySymbolLead[st.Symbol] = append(hiddenBySymbolLead[st.Symbol], st)
	}

	for _, t := range traders {
		weight := scores[t.LeadID].TraderWeight
		if weight <= 0 {
			continue
		}
		switch t.CurrentSegment() {
		case models.SegmentVisible:
			latest, ok, err := e.store.LatestSnapshotFetchedAt(ctx, t.LeadID)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			snaps, err := e.store.SnapshotsAt(ctx, t.LeadID, latest)
			if err != nil {
				return nil, err
			}
			for _, snap := range snaps {
				lev := float64(snap.Leverage)
				bySymbol[snap.Symbol] = append(bySymbol[snap.Symbol], contribution{weight: weight, side: snap.Side, leverage: lev})
			}
		case models.SegmentHidden:
			for symbol, states := range hiddenBySymbolLead {
				for _, st := range states {
					if st.LeadID != t.LeadID {
						continue
					}
					lev := 0.0
					if st.Leverage != nil {
						lev = float64(*st.Leverage)
					}
					bySymbol[symbol] = append(bySymbol[symbol], contribution{weight: weight, side: st.Side, leverage: lev, fromHidden: true})
				}
			}
		}
	}

	results := make([]SymbolConsensus, 0, len(bySymbol))
	for symbol, contribs := range bySymbol {
		results = append(results, computeSymbol(symbol, contribs))
	}
	return results, nil
}

func computeSymbol(symbol string, contribs []contribution) SymbolConsensus {
	var longWeight, shortWeight, leverageWeightedSum float64
	var visibleCount, hiddenCount int
	for _, c := range contribs {
		if c.side == models.SideLong {
			longWeight += c.weight
		} else {
			shortWeight += c.weight
		}
		leverageWeightedSum += c.weight * c.leverage
		if c.fromHidden {
			hiddenCount++
		} else {
			visibleCount++
		}
	}
	sumWeights := longWeight + shortWeight

	sentiment := 0.0
	if sumWeights > 0 {
		sentiment = (longWeight - shortWeight) / sumWeights
	}

	direction := DirectionNeutral
	switch {
	case sentiment > agreementEpsilon:
		direction = DirectionLong
	case sentiment < -agreementEpsilon:
		direction = DirectionShort
	}

	n := len(contribs)
	agreementFactor := 1 - 1/(1+float64(n))
	confidence := 0
	if sumWeights > 0 {
		confidence = int(round(100 * absFloat(sentiment) * agreementFactor))
	}

	weightedAvgLeverage := 0.0
	if sumWeights > 0 {
		weightedAvgLeverage = leverageWeightedSum / sumWeights
	}

	dataSource := DataSourceMixed
	switch {
	case hiddenCount > 0 && visibleCount == 0:
		dataSource = DataSourceHiddenDerived
	case hiddenCount == 0 && visibleCount > 0:
		dataSource = DataSourceVisible
	}

	return SymbolConsensus{
		Symbol:              symbol,
		LongWeight:          longWeight,
		ShortWeight:         shortWeight,
		SentimentScore:      sentiment,
		Direction:           direction,
		ConfidenceScore:     confidence,
		WeightedAvgLeverage: weightedAvgLeverage,
		TotalTraders:        n,
		DataSource:          dataSource,
	}
}

func round(v float64) float64 {
	if v < 0 {
		return -round(-v)
	}
	return float64(int64(v + 0.5))
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
