package store

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/errs"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

// UpsertSymbolAggregation replaces the per-symbol counts, overwriting any
// prior row for (platform, symbol). Recomputation is idempotent: calling
// this twice with the same counts leaves the row unchanged.
func (s *Store) UpsertSymbolAggregation(ctx context.Context, agg *models.SymbolAggregation) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "platform"}, {Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"open_long_count", "open_short_count", "total_open", "latest_event_at", "updated_at",
		}),
	}).Create(agg).Error
	if err != nil {
		return errs.FatalStore("upsert symbol aggregation", err)
	}
	return nil
}

// SymbolAggregations returns the current aggregate for every symbol on a
// platform.
func (s *Store) SymbolAggregations(ctx context.Context, platform string) ([]models.SymbolAggregation, error) {
	var rows []models.SymbolAggregation
	err := s.db.WithContext(ctx).Where("platform = ?", platform).Find(&rows).Error
	if err != nil {
		return nil, errs.FatalStore("symbol aggregations", err)
	}
	return rows, nil
}
