package store

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/errs"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

// InsertEvents inserts normalised events, skipping any whose eventKey
// already exists (DuplicateEvent is recovered by design, never
// surfaced). Returns the number of rows actually inserted.
func (s *Store) InsertEvents(ctx context.Context, events []models.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&events)
	if result.Error != nil {
		return 0, errs.FatalStore("insert events", result.Error)
	}
	return int(result.RowsAffected), nil
}

// FindMatchingOpenEvent looks for an OPEN event for (leadId, symbol, side)
// with eventTime in (fetchedAt-window, fetchedAt], used by the Visible
// Position Tracker to backdate estimatedOpenTime when a matching order
// exists.
func (s *Store) FindMatchingOpenEvent(ctx context.Context, leadID, symbol string, side models.Side, fetchedAt time.Time, window time.Duration) (*models.Event, error) {
	openType := models.EventOpenLong
	if side == models.SideShort {
		openType = models.EventOpenShort
	}

	var ev models.Event
	err := s.db.WithContext(ctx).
		Where("lead_id = ? AND symbol = ? AND event_type = ? AND event_time <= ? AND event_time > ?",
			leadID, symbol, openType, fetchedAt, fetchedAt.Add(-window)).
		Order("event_time DESC").
		First(&ev).Error
	if err != nil {
		if errIsNotFound(err) {
			return nil, nil
		}
		return nil, errs.FatalStore("find matching open event", err)
	}
	return &ev, nil
}

// RecentClosingEvents returns CLOSE_* events for leadID within `since`,
// used by Trader Weight & Score to compute realised PnL, win rate, and
// sample size.
func (s *Store) RecentClosingEvents(ctx context.Context, leadID string, since time.Time) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Where("lead_id = ? AND event_time >= ? AND (event_type = ? OR event_type = ?)",
			leadID, since, models.EventCloseLong, models.EventCloseShort).
		Order("event_time ASC").
		Find(&events).Error
	if err != nil {
		return nil, errs.FatalStore("recent closing events", err)
	}
	return events, nil
}

// LatestEventTimeForSymbol returns the max eventTime recorded for symbol,
// used by the Symbol Aggregator's latestEventAt field.
func (s *Store) LatestEventTimeForSymbol(ctx context.Context, symbol string) (time.Time, bool, error) {
	var ev models.Event
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("event_time DESC").
		First(&ev).Error
	if err != nil {
		if errIsNotFound(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, errs.FatalStore("latest event time for symbol", err)
	}
	return ev.EventTime, true, nil
}

// LatestEventPriceForSymbol returns the price of the most recent event
// carrying a non-null price for symbol, the second stage of the
// simulation engine's reference-price lookup.
func (s *Store) LatestEventPriceForSymbol(ctx context.Context, symbol string) (*models.Event, error) {
	var ev models.Event
	err := s.db.WithContext(ctx).
		Where("symbol = ? AND price IS NOT NULL", symbol).
		Order("event_time DESC").
		First(&ev).Error
	if err != nil {
		if errIsNotFound(err) {
			return nil, nil
		}
		return nil, errs.FatalStore("latest event price for symbol", err)
	}
	return &ev, nil
}

// EventsInWindowChronological returns every event for leadID with
// eventTime inside [from, to), ordered ascending, for the Hidden Position
// Tracker's chronological replay.
func (s *Store) EventsInWindowChronological(ctx context.Context, leadID string, from, to time.Time) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Where("lead_id = ? AND event_time >= ? AND event_time < ?", leadID, from, to).
		Order("event_time ASC").
		Find(&events).Error
	if err != nil {
		return nil, errs.FatalStore("events in window", err)
	}
	return events, nil
}

// EventsForSymbolChronological returns every event for symbol within
// [from, to), ascending, for backtest-lite replay.
func (s *Store) EventsForSymbolChronological(ctx context.Context, symbol string, from, to time.Time) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Where("symbol = ? AND event_time >= ? AND event_time < ?", symbol, from, to).
		Order("event_time ASC").
		Find(&events).Error
	if err != nil {
		return nil, errs.FatalStore("events for symbol", err)
	}
	return events, nil
}
