// Package aggregator recomputes the per-(platform, symbol) open-interest
// summary after every ingest cycle (spec §4.G): for each symbol, how many
// traders are currently holding a long vs. a short, derived from each
// trader's latest snapshot set.
package aggregator

import (
	"context"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/store"
)

const platform = "binance"

type Aggregator struct {
	store *store.Store
}

func New(s *store.Store) *Aggregator {
	return &Aggregator{store: s}
}

// RecomputeAll rebuilds SymbolAggregation for every symbol any trader
// currently holds a snapshot in, counting only each trader's most recent
// fetchedAt snapshot set (spec §8 invariant 5).
func (a *Aggregator) RecomputeAll(ctx context.Context) error {
	leadIDs, err := a.store.DistinctLeadIDsWithSnapshots(ctx)
	if err != nil {
		return err
	}

	counts := make(map[string]*models.SymbolAggregation)
	for _, leadID := range leadIDs {
		latest, ok, err := a.store.LatestSnapshotFetchedAt(ctx, leadID)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		snaps, err := a.store.SnapshotsAt(ctx, leadID, latest)
		if err != nil {
			return err
		}
		for _, snap := range snaps {
			agg := counts[snap.Symbol]
			if agg == nil {
				agg = &models.SymbolAggregation{Platform: platform, Symbol: snap.Symbol}
				counts[snap.Symbol] = agg
			}
			if snap.Side == models.SideLong {
				agg.OpenLongCount++
			} else {
				agg.OpenShortCount++
			}
		}
	}

	for symbol, agg := range counts {
		agg.TotalOpen = agg.OpenLongCount + agg.OpenShortCount
		latestEventAt, ok, err := a.store.LatestEventTimeForSymbol(ctx, symbol)
		if err != nil {
			return err
		}
		if ok {
			agg.LatestEventAt = &latestEventAt
		}
		if err := a.store.UpsertSymbolAggregation(ctx, agg); err != nil {
			return err
		}
	}
	return nil
}
