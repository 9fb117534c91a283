package store

import (
	"context"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/errs"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

// InsertRawIngest appends one per-trader per-cycle payload to the replay
// log. Never updated or deleted.
func (s *Store) InsertRawIngest(ctx context.Context, r *models.RawIngest) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return errs.FatalStore("insert raw ingest", err)
	}
	return nil
}
