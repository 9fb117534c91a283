package tracker

import (
	"context"
	"time"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/logger"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/store"
)

// HiddenTracker reconciles ACTIVE PositionState rows for a HIDDEN trader
// by replaying that trader's order events in chronological order: an
// OPEN event with no matching ACTIVE row starts a new arc at the event's
// own exact timestamp; a CLOSE event with a matching ACTIVE row ends it,
// exactly (unlike the visible tracker, no uncertainty window applies
// because the event timestamp *is* the transition instant).
type HiddenTracker struct {
	store *store.Store
	log   *logger.Logger
}

func NewHiddenTracker(s *store.Store, log *logger.Logger) *HiddenTracker {
	return &HiddenTracker{store: s, log: log}
}

// Reconcile replays every event for leadID in [from, to) chronologically.
func (t *HiddenTracker) Reconcile(ctx context.Context, leadID string, from, to time.Time) error {
	events, err := t.store.EventsInWindowChronological(ctx, leadID, from, to)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if err := t.apply(ctx, leadID, ev); err != nil {
			return err
		}
	}
	return nil
}

func (t *HiddenTracker) apply(ctx context.Context, leadID string, ev models.Event) error {
	side := ev.EventType.Side()
	if side == "" {
		return nil // EventUnknown: not a lifecycle-relevant action.
	}

	active, err := t.store.ActivePositionStatesForSymbol(ctx, leadID, ev.Symbol)
	if err != nil {
		return err
	}
	var current *models.PositionState
	for i := range active {
		if active[i].Side == side {
			current = &active[i]
			break
		}
	}

	switch {
	case ev.EventType.IsOpen():
		if current != nil {
			// Repeat open for an arc already tracked as active (e.g. a
			// scale-in order): treat as a liveness touch, not a new arc.
			return t.store.TouchLastSeenOne(ctx, current.ID, ev.EventTime)
		}
		key := ev.EventKey
		amount := ev.Amount.Decimal
		price := ev.Price.Decimal
		state := models.PositionState{
			LeadID:            leadID,
			Symbol:            ev.Symbol,
			Side:              side,
			Status:            models.PositionActive,
			EntryPrice:        price,
			Amount:            amount,
			FirstSeenAt:       ev.EventTime,
			LastSeenAt:        ev.EventTime,
			EstimatedOpenTime: ev.EventTime,
			OpenEventID:       &key,
		}
		return t.store.CreatePositionState(ctx, &state)

	case ev.EventType.IsClose():
		if current == nil {
			t.log.Warnf("orphan close event has no matching active position", "leadId", leadID, "symbol", ev.Symbol, "side", side, "eventKey", ev.EventKey)
			return nil
		}
		key := ev.EventKey
		return t.store.ClosePositionState(ctx, current.ID, ev.EventTime, ev.EventTime, &key)
	}
	return nil
}
