// Package tracker reconciles the position lifecycle (spec §3, §4.E/F):
// ACTIVE/CLOSED PositionState rows derived either from diffing
// consecutive snapshot sets (VISIBLE traders) or from replaying order
// events chronologically (HIDDEN traders).
package tracker

import (
	"context"
	"time"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/store"
)

// openEventMatchWindow is the lookback used to backdate a newly observed
// snapshot to a matching OPEN event, rather than the fetch instant.
const openEventMatchWindow = 5 * time.Minute

// VisibleTracker reconciles ACTIVE PositionState rows for a VISIBLE
// trader by diffing the snapshot set just fetched against the trader's
// currently ACTIVE rows.
type VisibleTracker struct {
	store *store.Store
}

func NewVisibleTracker(s *store.Store) *VisibleTracker {
	return &VisibleTracker{store: s}
}

// Reconcile opens new arcs for keys present in snapshots but not
// currently ACTIVE, touches lastSeenAt for keys present in both, and
// closes ACTIVE rows whose key disappeared from snapshots.
func (t *VisibleTracker) Reconcile(ctx context.Context, leadID string, fetchedAt time.Time, snapshots []models.PositionSnapshot) error {
	active, err := t.store.ActivePositionStates(ctx, leadID)
	if err != nil {
		return err
	}
	activeByKey := make(map[models.PositionKey]models.PositionState, len(active))
	for _, a := range active {
		activeByKey[a.Key()] = a
	}

	currentByKey := make(map[models.PositionKey]models.PositionSnapshot, len(snapshots))
	for _, s := range snapshots {
		currentByKey[models.PositionKey{LeadID: leadID, Symbol: s.Symbol, Side: s.Side}] = s
	}

	var stillActiveKeys []models.SnapshotKey
	for key, snap := range currentByKey {
		if _, ok := activeByKey[key]; ok {
			stillActiveKeys = append(stillActiveKeys, models.SnapshotKey{Symbol: key.Symbol, Side: key.Side})
			continue
		}
		if err := t.open(ctx, leadID, fetchedAt, snap); err != nil {
			return err
		}
	}
	if len(stillActiveKeys) > 0 {
		if err := t.store.BulkTouchLastSeen(ctx, leadID, stillActiveKeys, fetchedAt); err != nil {
			return err
		}
	}

	for key, a := range activeByKey {
		if _, ok := currentByKey[key]; ok {
			continue
		}
		estimatedClose := midpoint(a.LastSeenAt, fetchedAt)
		if err := t.store.ClosePositionState(ctx, a.ID, fetchedAt, estimatedClose, nil); err != nil {
			return err
		}
	}
	return nil
}

func (t *VisibleTracker) open(ctx context.Context, leadID string, fetchedAt time.Time, snap models.PositionSnapshot) error {
	estimatedOpen := fetchedAt
	var openEventID *string
	match, err := t.store.FindMatchingOpenEvent(ctx, leadID, snap.Symbol, snap.Side, fetchedAt, openEventMatchWindow)
	if err != nil {
		return err
	}
	if match != nil {
		estimatedOpen = match.EventTime
		key := match.EventKey
		openEventID = &key
	}

	leverage := snap.Leverage
	state := models.PositionState{
		LeadID:            leadID,
		Symbol:            snap.Symbol,
		Side:              snap.Side,
		Status:            models.PositionActive,
		EntryPrice:        snap.EntryPrice,
		Amount:            snap.Size,
		Leverage:          &leverage,
		FirstSeenAt:       fetchedAt,
		LastSeenAt:        fetchedAt,
		EstimatedOpenTime: estimatedOpen,
		OpenEventID:       openEventID,
	}
	return t.store.CreatePositionState(ctx, &state)
}

// midpoint implements the estimatedCloseTime rule for visible closures:
// the true close instant is unknown, only bounded between the last
// observation and the cycle that no longer saw the position.
func midpoint(a, b time.Time) time.Time {
	return a.Add(b.Sub(a) / 2)
}
