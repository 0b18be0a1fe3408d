package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/turnex-app/turnex/internal/domain/booking"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/mappers"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/models"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

type BookingRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.BookingMapper
	logger logger.Interface
}

func NewBookingRepository(
	db *gorm.DB,
	logger logger.Interface,
) booking.BookingRepository {
	return &BookingRepositoryImpl{
		db:     db,
		mapper: mappers.NewBookingMapper(),
		logger: logger,
	}
}

func (r *BookingRepositoryImpl) Create(ctx context.Context, bookingEntity *booking.Booking) error {
	model, err := r.mapper.ToModel(bookingEntity)
	if err != nil {
		r.logger.Errorw("failed to map booking entity to model", "error", err)
		return fmt.Errorf("failed to map booking entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create booking in database",
			"tenant_id", model.TenantID, "error", err)
		return fmt.Errorf("failed to create booking: %w", err)
	}

	bookingEntity.SetID(model.ID)
	return nil
}

func (r *BookingRepositoryImpl) Update(ctx context.Context, bookingEntity *booking.Booking) error {
	model, err := r.mapper.ToModel(bookingEntity)
	if err != nil {
		r.logger.Errorw("failed to map booking entity to model", "error", err)
		return fmt.Errorf("failed to map booking entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		r.logger.Errorw("failed to update booking in database", "id", model.ID, "error", err)
		return fmt.Errorf("failed to update booking: %w", err)
	}

	return nil
}

func (r *BookingRepositoryImpl) FindByID(ctx context.Context, bookingID uint) (*booking.Booking, error) {
	var model models.BookingModel

	if err := r.db.WithContext(ctx).First(&model, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrBookingNotFound
		}
		r.logger.Errorw("failed to find booking by ID", "id", bookingID, "error", err)
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *BookingRepositoryImpl) FindBySID(ctx context.Context, sid string) (*booking.Booking, error) {
	var model models.BookingModel

	if err := r.db.WithContext(ctx).Where("sid = ?", sid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrBookingNotFound
		}
		r.logger.Errorw("failed to find booking by SID", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *BookingRepositoryImpl) ListOverdueDeposits(ctx context.Context, now time.Time, limit int) ([]*booking.Booking, error) {
	var modelList []*models.BookingModel

	err := r.db.WithContext(ctx).
		Where("deposit_required = ?", true).
		Where("deposit_status = ?", "pending").
		Where("deposit_due_at <= ?", now).
		Order("deposit_due_at ASC").
		Limit(limit).
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to list overdue deposits", "error", err)
		return nil, fmt.Errorf("failed to list overdue deposits: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}
