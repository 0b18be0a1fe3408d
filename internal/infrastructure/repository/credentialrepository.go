package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/turnex-app/turnex/internal/domain/gateway"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/mappers"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/models"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

type CredentialRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.CredentialMapper
	logger logger.Interface
}

func NewCredentialRepository(
	db *gorm.DB,
	logger logger.Interface,
) gateway.CredentialRepository {
	return &CredentialRepositoryImpl{
		db:     db,
		mapper: mappers.NewCredentialMapper(),
		logger: logger,
	}
}

func (r *CredentialRepositoryImpl) Create(ctx context.Context, cred *gateway.Credential) error {
	model, err := r.mapper.ToModel(cred)
	if err != nil {
		r.logger.Errorw("failed to map credential entity to model", "error", err)
		return fmt.Errorf("failed to map credential entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create gateway credential in database",
			"tenant_id", model.TenantID, "error", err)
		return fmt.Errorf("failed to create gateway credential: %w", err)
	}

	cred.SetID(model.ID)

	r.logger.Infow("gateway credential created successfully",
		"id", model.ID, "tenant_id", model.TenantID, "provider", model.Provider)
	return nil
}

func (r *CredentialRepositoryImpl) Update(ctx context.Context, cred *gateway.Credential) error {
	model, err := r.mapper.ToModel(cred)
	if err != nil {
		r.logger.Errorw("failed to map credential entity to model", "error", err)
		return fmt.Errorf("failed to map credential entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		r.logger.Errorw("failed to update gateway credential in database",
			"id", model.ID, "error", err)
		return fmt.Errorf("failed to update gateway credential: %w", err)
	}

	return nil
}

func (r *CredentialRepositoryImpl) FindByTenantID(ctx context.Context, tenantID uint) (*gateway.Credential, error) {
	var model models.GatewayCredentialModel

	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gateway.ErrCredentialNotFound
		}
		r.logger.Errorw("failed to find gateway credential by tenant ID",
			"tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to find gateway credential: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *CredentialRepositoryImpl) Delete(ctx context.Context, tenantID uint) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.GatewayCredentialModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete gateway credential",
			"tenant_id", tenantID, "error", result.Error)
		return fmt.Errorf("failed to delete gateway credential: %w", result.Error)
	}

	return nil
}
