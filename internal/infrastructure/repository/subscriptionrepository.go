package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/turnex-app/turnex/internal/domain/subscription"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/mappers"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/models"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(
	db *gorm.DB,
	logger logger.Interface,
) subscription.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, subscriptionEntity *subscription.Subscription) error {
	model, err := r.mapper.ToModel(subscriptionEntity)
	if err != nil {
		r.logger.Errorw("failed to map subscription entity to model", "error", err)
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription in database", "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := subscriptionEntity.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set subscription ID", "error", err)
		return fmt.Errorf("failed to set subscription ID: %w", err)
	}

	r.logger.Infow("subscription created successfully",
		"id", model.ID, "tenant_id", model.TenantID, "plan_id", model.PlanID)
	return nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, subscriptionEntity *subscription.Subscription) error {
	model, err := r.mapper.ToModel(subscriptionEntity)
	if err != nil {
		r.logger.Errorw("failed to map subscription entity to model", "error", err)
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		r.logger.Errorw("failed to update subscription in database", "id", model.ID, "error", err)
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	return nil
}

func (r *SubscriptionRepositoryImpl) FindByID(ctx context.Context, subID uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := r.db.WithContext(ctx).First(&model, subID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		r.logger.Errorw("failed to find subscription by ID", "id", subID, "error", err)
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) FindBySID(ctx context.Context, sid string) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := r.db.WithContext(ctx).Where("sid = ?", sid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		r.logger.Errorw("failed to find subscription by SID", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) FindByTenantID(ctx context.Context, tenantID uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		r.logger.Errorw("failed to find subscription by tenant ID", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) List(ctx context.Context, filters subscription.SubscriptionFilters) ([]*subscription.Subscription, error) {
	query := r.db.WithContext(ctx).Model(&models.SubscriptionModel{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.PlanID != nil {
		query = query.Where("plan_id = ?", *filters.PlanID)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var modelList []*models.SubscriptionModel
	if err := query.Order("created_at DESC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list subscriptions", "error", err)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}

func (r *SubscriptionRepositoryImpl) ListLapsed(ctx context.Context, cutoff time.Time, limit int) ([]*subscription.Subscription, error) {
	var modelList []*models.SubscriptionModel

	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{"trialing", "active"}).
		Where("current_period_end <= ?", cutoff).
		Order("current_period_end ASC").
		Limit(limit).
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to list lapsed subscriptions", "error", err)
		return nil, fmt.Errorf("failed to list lapsed subscriptions: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}
