package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/turnex-app/turnex/internal/domain/subscription"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/mappers"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/models"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

type PlanRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PlanMapper
	logger logger.Interface
}

func NewPlanRepository(
	db *gorm.DB,
	logger logger.Interface,
) subscription.PlanRepository {
	return &PlanRepositoryImpl{
		db:     db,
		mapper: mappers.NewPlanMapper(),
		logger: logger,
	}
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, planEntity *subscription.Plan) error {
	model, err := r.mapper.ToModel(planEntity)
	if err != nil {
		r.logger.Errorw("failed to map plan entity to model", "error", err)
		return fmt.Errorf("failed to map plan entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create plan in database", "slug", model.Slug, "error", err)
		return fmt.Errorf("failed to create plan: %w", err)
	}

	if err := planEntity.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set plan ID", "error", err)
		return fmt.Errorf("failed to set plan ID: %w", err)
	}

	return nil
}

func (r *PlanRepositoryImpl) Update(ctx context.Context, planEntity *subscription.Plan) error {
	model, err := r.mapper.ToModel(planEntity)
	if err != nil {
		r.logger.Errorw("failed to map plan entity to model", "error", err)
		return fmt.Errorf("failed to map plan entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		r.logger.Errorw("failed to update plan in database", "id", model.ID, "error", err)
		return fmt.Errorf("failed to update plan: %w", err)
	}

	return nil
}

func (r *PlanRepositoryImpl) FindByID(ctx context.Context, planID uint) (*subscription.Plan, error) {
	var model models.PlanModel

	if err := r.db.WithContext(ctx).First(&model, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrPlanNotFound
		}
		r.logger.Errorw("failed to find plan by ID", "id", planID, "error", err)
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *PlanRepositoryImpl) FindBySlug(ctx context.Context, slug string) (*subscription.Plan, error) {
	var model models.PlanModel

	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrPlanNotFound
		}
		r.logger.Errorw("failed to find plan by slug", "slug", slug, "error", err)
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *PlanRepositoryImpl) ListActive(ctx context.Context) ([]*subscription.Plan, error) {
	var modelList []*models.PlanModel

	err := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Order("sort_order ASC").
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to list active plans", "error", err)
		return nil, fmt.Errorf("failed to list active plans: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}
