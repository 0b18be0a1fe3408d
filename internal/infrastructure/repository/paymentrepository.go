package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/turnex-app/turnex/internal/domain/payment"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/mappers"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/models"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

type PaymentRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PaymentMapper
	logger logger.Interface
}

func NewPaymentRepository(
	db *gorm.DB,
	logger logger.Interface,
) payment.PaymentRepository {
	return &PaymentRepositoryImpl{
		db:     db,
		mapper: mappers.NewPaymentMapper(),
		logger: logger,
	}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, paymentEntity *payment.Payment) error {
	model, err := r.mapper.ToModel(paymentEntity)
	if err != nil {
		r.logger.Errorw("failed to map payment entity to model", "error", err)
		return fmt.Errorf("failed to map payment entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create payment in database",
			"correlation_id", model.CorrelationID, "error", err)
		return fmt.Errorf("failed to create payment: %w", err)
	}

	paymentEntity.SetID(model.ID)

	r.logger.Infow("payment created successfully",
		"id", model.ID, "tenant_id", model.TenantID, "correlation_id", model.CorrelationID)
	return nil
}

func (r *PaymentRepositoryImpl) Update(ctx context.Context, paymentEntity *payment.Payment) error {
	model, err := r.mapper.ToModel(paymentEntity)
	if err != nil {
		r.logger.Errorw("failed to map payment entity to model", "error", err)
		return fmt.Errorf("failed to map payment entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		r.logger.Errorw("failed to update payment in database", "id", model.ID, "error", err)
		return fmt.Errorf("failed to update payment: %w", err)
	}

	return nil
}

func (r *PaymentRepositoryImpl) FindByID(ctx context.Context, payID uint) (*payment.Payment, error) {
	var model models.PaymentModel

	if err := r.db.WithContext(ctx).First(&model, payID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		r.logger.Errorw("failed to find payment by ID", "id", payID, "error", err)
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *PaymentRepositoryImpl) FindBySID(ctx context.Context, sid string) (*payment.Payment, error) {
	var model models.PaymentModel

	if err := r.db.WithContext(ctx).Where("sid = ?", sid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		r.logger.Errorw("failed to find payment by SID", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *PaymentRepositoryImpl) FindByCorrelationID(ctx context.Context, correlationID string) (*payment.Payment, error) {
	var model models.PaymentModel

	if err := r.db.WithContext(ctx).Where("correlation_id = ?", correlationID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		r.logger.Errorw("failed to find payment by correlation ID",
			"correlation_id", correlationID, "error", err)
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *PaymentRepositoryImpl) ListByTenantID(ctx context.Context, tenantID uint, limit, offset int) ([]*payment.Payment, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var modelList []*models.PaymentModel
	if err := query.Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list payments by tenant", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}

func (r *PaymentRepositoryImpl) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*payment.Payment, error) {
	var modelList []*models.PaymentModel

	err := r.db.WithContext(ctx).
		Where("status = ?", "pending").
		Where("created_at <= ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to list stale pending payments", "error", err)
		return nil, fmt.Errorf("failed to list stale pending payments: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}
