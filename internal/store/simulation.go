package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/errs"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

// CreateSimulatedPosition persists a newly opened simulation.
func (s *Store) CreateSimulatedPosition(ctx context.Context, p *models.SimulatedPosition) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return errs.FatalStore("create simulated position", err)
	}
	return nil
}

// SaveSimulatedPosition persists updates to an existing row (close,
// monitor trigger, reconcile).
func (s *Store) SaveSimulatedPosition(ctx context.Context, p *models.SimulatedPosition) error {
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return errs.FatalStore("save simulated position", err)
	}
	return nil
}

// GetSimulatedPosition loads one simulation by id.
func (s *Store) GetSimulatedPosition(ctx context.Context, id uuid.UUID) (*models.SimulatedPosition, error) {
	var p models.SimulatedPosition
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if errIsNotFound(err) {
			return nil, nil
		}
		return nil, errs.FatalStore("get simulated position", err)
	}
	return &p, nil
}

// OpenSimulatedPositions returns every OPEN simulation, used by the
// Position Monitor and by reconcile.
func (s *Store) OpenSimulatedPositions(ctx context.Context) ([]models.SimulatedPosition, error) {
	var rows []models.SimulatedPosition
	err := s.db.WithContext(ctx).Where("status = ?", models.SimOpen).Find(&rows).Error
	if err != nil {
		return nil, errs.FatalStore("open simulated positions", err)
	}
	return rows, nil
}

// OpenSimulatedPositionFor returns the OPEN simulation, if any, for
// (symbol, direction); used by auto-run to decide whether a candidate
// already has a matching or opposing position.
func (s *Store) OpenSimulatedPositionFor(ctx context.Context, symbol string, direction models.Side) (*models.SimulatedPosition, error) {
	var p models.SimulatedPosition
	err := s.db.WithContext(ctx).
		Where("status = ? AND symbol = ? AND direction = ?", models.SimOpen, symbol, direction).
		First(&p).Error
	if err != nil {
		if errIsNotFound(err) {
			return nil, nil
		}
		return nil, errs.FatalStore("open simulated position for", err)
	}
	return &p, nil
}

// ClosedSimulatedPositions returns every CLOSED simulation ordered by
// closedAt ascending, used by the Portfolio Manager's metrics
// recomputation.
func (s *Store) ClosedSimulatedPositions(ctx context.Context, portfolioID *uuid.UUID) ([]models.SimulatedPosition, error) {
	var rows []models.SimulatedPosition
	q := s.db.WithContext(ctx).Where("status = ?", models.SimClosed)
	if portfolioID != nil {
		q = q.Where("portfolio_id = ?", *portfolioID)
	}
	if err := q.Order("closed_at ASC").Find(&rows).Error; err != nil {
		return nil, errs.FatalStore("closed simulated positions", err)
	}
	return rows, nil
}
