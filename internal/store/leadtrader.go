package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/errs"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

// Store is the durable persistence boundary described by the data model:
// every row in the system is owned here, and every other component reads
// current state and writes successor state through it.
type Store struct {
	db *gorm.DB
}

// New wraps an already-opened gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for callers that need to run their
// own transaction spanning multiple Store calls (the per-trader ingest
// transaction described in the concurrency model).
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithTx returns a Store bound to tx, for composing the trader-granular
// commit-atomic ingest transaction.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// UpsertLeadTrader creates the trader row on first ingest or updates its
// mutable descriptors on every subsequent one. leadId never changes.
func (s *Store) UpsertLeadTrader(ctx context.Context, t *models.LeadTrader) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "lead_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"platform", "nickname", "position_show", "pos_show_updated_at", "last_ingest_at", "updated_at",
		}),
	}).Create(t).Error
	if err != nil {
		return errs.FatalStore("upsert lead trader", err)
	}
	return nil
}

// GetLeadTrader loads one trader by id, returning nil without error when
// absent.
func (s *Store) GetLeadTrader(ctx context.Context, leadID string) (*models.LeadTrader, error) {
	var t models.LeadTrader
	err := s.db.WithContext(ctx).First(&t, "lead_id = ?", leadID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errs.FatalStore("get lead trader", err)
	}
	return &t, nil
}

// ListLeadTradersBySegment returns traders matching the segment filter
// whose last ingest falls within timeRange of now (VISIBLE/HIDDEN/UNKNOWN
// classification per LeadTrader.CurrentSegment).
func (s *Store) ListLeadTradersBySegment(ctx context.Context, segment models.Segment, timeRange time.Duration, now time.Time) ([]models.LeadTrader, error) {
	var all []models.LeadTrader
	cutoff := now.Add(-timeRange)
	q := s.db.WithContext(ctx).Where("last_ingest_at IS NOT NULL AND last_ingest_at >= ?", cutoff)
	if err := q.Find(&all).Error; err != nil {
		return nil, errs.FatalStore("list lead traders", err)
	}
	if segment == models.SegmentBoth {
		return all, nil
	}
	filtered := make([]models.LeadTrader, 0, len(all))
	for _, t := range all {
		if t.MatchesSegmentFilter(segment) {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}
