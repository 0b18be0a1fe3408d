package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/turnex-app/turnex/internal/infrastructure/persistence/models"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

const trialWarningSettingKey = "trial_warning_last_date"

// TrialWarningStampRepositoryImpl keeps the warning stamp in the tenant
// settings table, one row per tenant under a fixed key.
type TrialWarningStampRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewTrialWarningStampRepository(
	db *gorm.DB,
	logger logger.Interface,
) *TrialWarningStampRepositoryImpl {
	return &TrialWarningStampRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *TrialWarningStampRepositoryImpl) LastWarnedDate(ctx context.Context, tenantID uint) (string, error) {
	var model models.TenantSettingModel

	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND setting_key = ?", tenantID, trialWarningSettingKey).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		r.logger.Errorw("failed to read trial warning stamp", "tenant_id", tenantID, "error", err)
		return "", fmt.Errorf("failed to read trial warning stamp: %w", err)
	}

	return model.Value, nil
}

func (r *TrialWarningStampRepositoryImpl) SetLastWarnedDate(ctx context.Context, tenantID uint, date string) error {
	model := models.TenantSettingModel{
		TenantID: tenantID,
		Key:      trialWarningSettingKey,
		Value:    date,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
		}).
		Create(&model).Error
	if err != nil {
		r.logger.Errorw("failed to store trial warning stamp",
			"tenant_id", tenantID, "date", date, "error", err)
		return fmt.Errorf("failed to store trial warning stamp: %w", err)
	}

	return nil
}
