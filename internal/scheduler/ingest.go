// Package scheduler drives the fixed-cadence ingest cycle over every
// configured trader with bounded per-cycle concurrency (spec §4.B, §5).
package scheduler

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/aggregator"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/errs"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/logger"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/normalize"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/score"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/scraper"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/store"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/tracker"
)

const platform = "binance"

// Ingestor runs the per-trader commit-atomic pipeline described in §5:
// upsert trader, insert snapshots, reconcile visible/hidden lifecycle,
// insert events, persist the raw payload, then recompute this trader's
// score+weight. Symbol aggregates are recomputed once per cycle, after
// every trader's transaction has committed — see Scheduler.runCycle.
type Ingestor struct {
	store   *store.Store
	scraper *scraper.Client
	log     *logger.Logger
}

func NewIngestor(s *store.Store, c *scraper.Client, log *logger.Logger) *Ingestor {
	return &Ingestor{store: s, scraper: c, log: log}
}

// IngestTrader fetches, normalises, and persists one trader's cycle. The
// write side runs inside a single transaction; a TraderFailure is
// returned (never propagated as FatalStore) for fetch/normalise
// problems so the caller can skip this trader and continue the cycle.
func (ing *Ingestor) IngestTrader(ctx context.Context, leadID string, timeRangeStart, timeRangeEnd int64) error {
	raw, err := ing.scraper.FetchTrader(ctx, leadID, timeRangeStart, timeRangeEnd)
	if err != nil {
		return errs.TraderFailure("fetch trader payload", err)
	}

	fetchedAt := time.Now().UTC()
	if raw.FetchedAt > 0 {
		fetchedAt = time.UnixMilli(raw.FetchedAt).UTC()
	}

	snapshots := normalize.Positions(leadID, fetchedAt, raw.ActivePositions)
	events := normalize.Events(platform, leadID, fetchedAt, raw.OrderHistory.AllOrders)

	blob, err := json.Marshal(raw)
	if err != nil {
		return errs.TraderFailure("marshal raw payload", err)
	}

	err = ing.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := ing.store.WithTx(tx)

		trader := &models.LeadTrader{
			LeadID:       leadID,
			Platform:     platform,
			LastIngestAt: &fetchedAt,
		}
		if raw.LeadCommon != nil {
			if raw.LeadCommon.Nickname != "" {
				nickname := raw.LeadCommon.Nickname
				trader.Nickname = &nickname
			}
			if raw.LeadCommon.PositionShow != nil {
				trader.PositionShow = raw.LeadCommon.PositionShow
				trader.PosShowUpdatedAt = &fetchedAt
			}
		}
		if err := txStore.UpsertLeadTrader(ctx, trader); err != nil {
			return err
		}

		if err := txStore.InsertSnapshots(ctx, snapshots); err != nil {
			return err
		}

		segment := models.SegmentVisible
		if trader.PositionShow != nil && !*trader.PositionShow {
			segment = models.SegmentHidden
		}
		if segment == models.SegmentVisible {
			if err := tracker.NewVisibleTracker(txStore).Reconcile(ctx, leadID, fetchedAt, snapshots); err != nil {
				return err
			}
		}

		if _, err := txStore.InsertEvents(ctx, events); err != nil {
			return err
		}
		if segment == models.SegmentHidden {
			windowStart := fetchedAt.Add(-24 * time.Hour)
			if err := tracker.NewHiddenTracker(txStore, ing.log).Reconcile(ctx, leadID, windowStart, fetchedAt.Add(time.Second)); err != nil {
				return err
			}
		}

		rawIngest := &models.RawIngest{
			LeadID:         leadID,
			Platform:       platform,
			FetchedAt:      fetchedAt,
			PayloadBlob:    string(blob),
			PositionsCount: len(raw.ActivePositions),
			OrdersCount:    len(raw.OrderHistory.AllOrders),
		}
		if raw.TimeRangeStart > 0 {
			rawIngest.TimeRangeStart = time.UnixMilli(raw.TimeRangeStart).UTC()
		}
		if raw.TimeRangeEnd > 0 {
			rawIngest.TimeRangeEnd = time.UnixMilli(raw.TimeRangeEnd).UTC()
		}
		if err := txStore.InsertRawIngest(ctx, rawIngest); err != nil {
			return err
		}

		_, err = score.New(txStore).RecomputeFor(ctx, leadID, fetchedAt)
		return err
	})
	if err != nil {
		if e, ok := err.(*errs.Error); ok {
			return e
		}
		return errs.FatalStore("ingest trader transaction", err)
	}
	return nil
}

// RecomputeAggregates rebuilds SymbolAggregation across every trader once,
// after every trader's transaction for the cycle has committed (spec §5's
// ordering guarantee: cross-trader operations run after every per-trader
// step completes for the cycle, never mid-cycle against a partial set).
func (ing *Ingestor) RecomputeAggregates(ctx context.Context) error {
	return aggregator.New(ing.store).RecomputeAll(ctx)
}
