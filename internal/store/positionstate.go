package store

import (
	"context"
	"time"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/errs"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

// ActivePositionStates returns every ACTIVE lifecycle row for leadID,
// keyed by (symbol, direction) at the Store layer's discretion; callers
// index by Key().
func (s *Store) ActivePositionStates(ctx context.Context, leadID string) ([]models.PositionState, error) {
	var rows []models.PositionState
	err := s.db.WithContext(ctx).
		Where("lead_id = ? AND status = ?", leadID, models.PositionActive).
		Find(&rows).Error
	if err != nil {
		return nil, errs.FatalStore("active position states", err)
	}
	return rows, nil
}

// ActivePositionStatesForSymbol returns ACTIVE rows for a trader narrowed
// to one symbol, used by the Hidden Position Tracker to find an existing
// open arc for (trader, symbol, direction).
func (s *Store) ActivePositionStatesForSymbol(ctx context.Context, leadID, symbol string) ([]models.PositionState, error) {
	var rows []models.PositionState
	err := s.db.WithContext(ctx).
		Where("lead_id = ? AND symbol = ? AND status = ?", leadID, symbol, models.PositionActive).
		Order("first_seen_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errs.FatalStore("active position states for symbol", err)
	}
	return rows, nil
}

// CreatePositionState opens a new lifecycle row.
func (s *Store) CreatePositionState(ctx context.Context, p *models.PositionState) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return errs.FatalStore("create position state", err)
	}
	return nil
}

// BulkTouchLastSeen updates lastSeenAt for every ACTIVE row matching the
// given (leadId, symbol, side) keys, one UPDATE per key, used by the
// Visible Position Tracker's "still-active" step.
func (s *Store) BulkTouchLastSeen(ctx context.Context, leadID string, keys []models.SnapshotKey, fetchedAt time.Time) error {
	if len(keys) == 0 {
		return nil
	}
	for _, k := range keys {
		err := s.db.WithContext(ctx).
			Model(&models.PositionState{}).
			Where("lead_id = ? AND symbol = ? AND side = ? AND status = ?", leadID, k.Symbol, k.Side, models.PositionActive).
			Updates(map[string]interface{}{"last_seen_at": fetchedAt}).Error
		if err != nil {
			return errs.FatalStore("bulk touch last seen", err)
		}
	}
	return nil
}

// TouchLastSeenOne updates lastSeenAt for a single ACTIVE row, used by the
// Hidden Position Tracker when an OPEN event repeats for an already-open
// arc.
func (s *Store) TouchLastSeenOne(ctx context.Context, id uint, lastSeenAt time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&models.PositionState{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"last_seen_at": lastSeenAt}).Error
	if err != nil {
		return errs.FatalStore("touch last seen", err)
	}
	return nil
}

// ClosePositionState transitions one row to CLOSED.
func (s *Store) ClosePositionState(ctx context.Context, id uint, disappearedAt, estimatedCloseTime time.Time, closeEventID *string) error {
	err := s.db.WithContext(ctx).
		Model(&models.PositionState{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":               models.PositionClosed,
			"disappeared_at":       disappearedAt,
			"estimated_close_time": estimatedCloseTime,
			"close_event_id":       closeEventID,
		}).Error
	if err != nil {
		return errs.FatalStore("close position state", err)
	}
	return nil
}

// AllActivePositionStates returns every ACTIVE row, narrowed to leadIDs
// when that slice is non-empty, used by the Consensus Engine to build each
// HIDDEN trader's current position set.
func (s *Store) AllActivePositionStates(ctx context.Context, leadIDs []string) ([]models.PositionState, error) {
	var rows []models.PositionState
	q := s.db.WithContext(ctx).Where("status = ?", models.PositionActive)
	if len(leadIDs) > 0 {
		q = q.Where("lead_id IN ?", leadIDs)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, errs.FatalStore("all active position states", err)
	}
	return rows, nil
}
