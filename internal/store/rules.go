package store

import (
	"context"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/errs"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

// GetAutoTriggerRule loads the singleton-per-platform auto-run
// configuration, returning nil when none has been configured yet.
func (s *Store) GetAutoTriggerRule(ctx context.Context, platform string) (*models.AutoTriggerRule, error) {
	var r models.AutoTriggerRule
	err := s.db.WithContext(ctx).First(&r, "platform = ?", platform).Error
	if err != nil {
		if errIsNotFound(err) {
			return nil, nil
		}
		return nil, errs.FatalStore("get auto trigger rule", err)
	}
	return &r, nil
}

// SaveAutoTriggerRule creates or updates the rule for a platform.
func (s *Store) SaveAutoTriggerRule(ctx context.Context, r *models.AutoTriggerRule) error {
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return errs.FatalStore("save auto trigger rule", err)
	}
	return nil
}

// GetInsightsRule loads the singleton-per-platform insights configuration.
func (s *Store) GetInsightsRule(ctx context.Context, platform string) (*models.InsightsRule, error) {
	var r models.InsightsRule
	err := s.db.WithContext(ctx).First(&r, "platform = ?", platform).Error
	if err != nil {
		if errIsNotFound(err) {
			return nil, nil
		}
		return nil, errs.FatalStore("get insights rule", err)
	}
	return &r, nil
}

// SaveInsightsRule creates or updates the rule for a platform.
func (s *Store) SaveInsightsRule(ctx context.Context, r *models.InsightsRule) error {
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return errs.FatalStore("save insights rule", err)
	}
	return nil
}
