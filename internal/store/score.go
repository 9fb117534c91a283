package store

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/errs"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

// UpsertTraderScore replaces a trader's score row.
func (s *Store) UpsertTraderScore(ctx context.Context, score *models.TraderScore) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "lead_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"score30d", "quality_score", "confidence", "win_rate", "sample_size", "trader_weight", "computed_at",
		}),
	}).Create(score).Error
	if err != nil {
		return errs.FatalStore("upsert trader score", err)
	}
	return nil
}

// TraderScores returns the score rows for the given traders, used by the
// Consensus Engine to look up each contributing trader's weight.
func (s *Store) TraderScores(ctx context.Context, leadIDs []string) (map[string]models.TraderScore, error) {
	var rows []models.TraderScore
	q := s.db.WithContext(ctx)
	if len(leadIDs) > 0 {
		q = q.Where("lead_id IN ?", leadIDs)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, errs.FatalStore("trader scores", err)
	}
	out := make(map[string]models.TraderScore, len(rows))
	for _, r := range rows {
		out[r.LeadID] = r
	}
	return out, nil
}

// AllTraderScores returns every score row, used by the leaderboard.
func (s *Store) AllTraderScores(ctx context.Context) ([]models.TraderScore, error) {
	var rows []models.TraderScore
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, errs.FatalStore("all trader scores", err)
	}
	return rows, nil
}
