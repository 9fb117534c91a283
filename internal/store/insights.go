package store

import (
	"context"
	"time"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/errs"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

// InsertConsensusSnapshot appends one recorded direction call, used by the
// Insights Engine to build up the "consensus time-series" its stability
// score measures flips over.
func (s *Store) InsertConsensusSnapshot(ctx context.Context, snap *models.ConsensusSnapshot) error {
	if err := s.db.WithContext(ctx).Create(snap).Error; err != nil {
		return errs.FatalStore("insert consensus snapshot", err)
	}
	return nil
}

// ConsensusSnapshotsForSymbol returns a symbol's recorded direction calls
// since the given time, ascending, for flip counting.
func (s *Store) ConsensusSnapshotsForSymbol(ctx context.Context, platform, symbol string, segment models.Segment, since time.Time) ([]models.ConsensusSnapshot, error) {
	var rows []models.ConsensusSnapshot
	err := s.db.WithContext(ctx).
		Where("platform = ? AND symbol = ? AND segment = ? AND computed_at >= ?", platform, symbol, segment, since).
		Order("computed_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errs.FatalStore("consensus snapshots for symbol", err)
	}
	return rows, nil
}
