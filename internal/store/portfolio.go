package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/errs"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

// GetPortfolio loads a portfolio by id.
func (s *Store) GetPortfolio(ctx context.Context, id uuid.UUID) (*models.Portfolio, error) {
	var p models.Portfolio
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if errIsNotFound(err) {
			return nil, nil
		}
		return nil, errs.FatalStore("get portfolio", err)
	}
	return &p, nil
}

// ListPortfolios returns every portfolio, used to snapshot each one at
// the end of a cycle.
func (s *Store) ListPortfolios(ctx context.Context) ([]models.Portfolio, error) {
	var rows []models.Portfolio
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, errs.FatalStore("list portfolios", err)
	}
	return rows, nil
}

// SavePortfolio persists balance/config changes.
func (s *Store) SavePortfolio(ctx context.Context, p *models.Portfolio) error {
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return errs.FatalStore("save portfolio", err)
	}
	return nil
}

// InsertPortfolioSnapshot appends one end-of-cycle balance snapshot.
func (s *Store) InsertPortfolioSnapshot(ctx context.Context, snap *models.PortfolioSnapshot) error {
	if err := s.db.WithContext(ctx).Create(snap).Error; err != nil {
		return errs.FatalStore("insert portfolio snapshot", err)
	}
	return nil
}

// PortfolioSnapshots returns the equity curve for a portfolio, oldest
// first.
func (s *Store) PortfolioSnapshots(ctx context.Context, portfolioID uuid.UUID) ([]models.PortfolioSnapshot, error) {
	var rows []models.PortfolioSnapshot
	err := s.db.WithContext(ctx).
		Where("portfolio_id = ?", portfolioID).
		Order("taken_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errs.FatalStore("portfolio snapshots", err)
	}
	return rows, nil
}

// UpsertPortfolioMetric replaces the recomputed metric row for a
// portfolio.
func (s *Store) UpsertPortfolioMetric(ctx context.Context, m *models.PortfolioMetric) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "portfolio_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"win_rate", "avg_win", "avg_loss", "profit_factor", "max_consec_wins", "max_consec_losses",
			"avg_slippage_bps", "total_commission", "max_drawdown_pct", "computed_at",
		}),
	}).Create(m).Error
	if err != nil {
		return errs.FatalStore("upsert portfolio metric", err)
	}
	return nil
}
