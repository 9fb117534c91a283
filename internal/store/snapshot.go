package store

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/errs"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

// InsertSnapshots bulk-inserts a trader's positions for one fetchedAt. A
// row already present for the same (leadId, fetchedAt, symbol, side) is
// silently skipped, matching the "duplicates at the same fetchedAt
// discarded" rule.
func (s *Store) InsertSnapshots(ctx context.Context, snapshots []models.PositionSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&snapshots).Error
	if err != nil {
		return errs.FatalStore("insert snapshots", err)
	}
	return nil
}

// LatestSnapshotFetchedAt returns the most recent fetchedAt this trader
// has any snapshot rows for, and whether one exists at all.
func (s *Store) LatestSnapshotFetchedAt(ctx context.Context, leadID string) (time.Time, bool, error) {
	var snap models.PositionSnapshot
	err := s.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("fetched_at DESC").
		First(&snap).Error
	if err != nil {
		if errIsNotFound(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, errs.FatalStore("latest snapshot fetchedAt", err)
	}
	return snap.FetchedAt, true, nil
}

// SnapshotsAt returns every position row for leadID observed at exactly
// fetchedAt (the snapshot "set" for the diff in the Visible Position
// Tracker).
func (s *Store) SnapshotsAt(ctx context.Context, leadID string, fetchedAt time.Time) ([]models.PositionSnapshot, error) {
	var rows []models.PositionSnapshot
	err := s.db.WithContext(ctx).
		Where("lead_id = ? AND fetched_at = ?", leadID, fetchedAt).
		Find(&rows).Error
	if err != nil {
		return nil, errs.FatalStore("snapshots at", err)
	}
	return rows, nil
}

// LatestMarkPrices returns the markPrice of the last `limit` snapshots for
// symbol across all traders, most recent first, for the simulation
// engine's reference-price lookup.
func (s *Store) LatestMarkPrices(ctx context.Context, symbol string, limit int) ([]models.PositionSnapshot, error) {
	var rows []models.PositionSnapshot
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("fetched_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errs.FatalStore("latest mark prices", err)
	}
	return rows, nil
}

// DistinctLeadIDsWithSnapshots returns every trader id that has at least
// one PositionSnapshot row, for the Symbol Aggregator's per-trader sweep.
func (s *Store) DistinctLeadIDsWithSnapshots(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.PositionSnapshot{}).
		Distinct("lead_id").
		Pluck("lead_id", &ids).Error
	if err != nil {
		return nil, errs.FatalStore("distinct snapshot lead ids", err)
	}
	return ids, nil
}
