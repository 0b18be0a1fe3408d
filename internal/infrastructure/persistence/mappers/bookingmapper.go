package mappers

import (
	"fmt"

	"github.com/turnex-app/turnex/internal/domain/booking"
	vo "github.com/turnex-app/turnex/internal/domain/booking/valueobjects"
	payvo "github.com/turnex-app/turnex/internal/domain/payment/valueobjects"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/models"
	"github.com/turnex-app/turnex/internal/shared/mapper"
)

type BookingMapper interface {
	ToEntity(model *models.BookingModel) (*booking.Booking, error)
	ToModel(entity *booking.Booking) (*models.BookingModel, error)
	ToEntities(models []*models.BookingModel) ([]*booking.Booking, error)
}

type BookingMapperImpl struct{}

func NewBookingMapper() BookingMapper {
	return &BookingMapperImpl{}
}

func (m *BookingMapperImpl) ToEntity(model *models.BookingModel) (*booking.Booking, error) {
	if model == nil {
		return nil, nil
	}

	status := vo.BookingStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid booking status: %s", model.Status)
	}

	depositStatus := vo.DepositStatus(model.DepositStatus)
	if !depositStatus.IsValid() {
		return nil, fmt.Errorf("invalid deposit status: %s", model.DepositStatus)
	}

	entity, err := booking.ReconstructBooking(booking.BookingReconstructParams{
		ID:              model.ID,
		SID:             model.SID,
		TenantID:        model.TenantID,
		CustomerID:      model.CustomerID,
		ServiceID:       model.ServiceID,
		StartAt:         model.StartAt,
		EndAt:           model.EndAt,
		Status:          status,
		DepositRequired: model.DepositRequired,
		DepositAmount:   payvo.NewMoney(model.DepositAmountCents, model.DepositCurrency),
		DepositStatus:   depositStatus,
		DepositDueAt:    model.DepositDueAt,
		CancelledAt:     model.CancelledAt,
		CancelReason:    model.CancelReason,
		Version:         model.Version,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct booking entity: %w", err)
	}

	return entity, nil
}

func (m *BookingMapperImpl) ToModel(entity *booking.Booking) (*models.BookingModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.BookingModel{
		ID:                 entity.ID(),
		SID:                entity.SID(),
		TenantID:           entity.TenantID(),
		CustomerID:         entity.CustomerID(),
		ServiceID:          entity.ServiceID(),
		StartAt:            entity.StartAt(),
		EndAt:              entity.EndAt(),
		Status:             entity.Status().String(),
		DepositRequired:    entity.DepositRequired(),
		DepositAmountCents: entity.DepositAmount().AmountInCents(),
		DepositCurrency:    entity.DepositAmount().Currency(),
		DepositStatus:      entity.DepositStatus().String(),
		DepositDueAt:       entity.DepositDueAt(),
		CancelledAt:        entity.CancelledAt(),
		CancelReason:       entity.CancelReason(),
		Version:            entity.Version(),
		CreatedAt:          entity.CreatedAt(),
		UpdatedAt:          entity.UpdatedAt(),
	}, nil
}

func (m *BookingMapperImpl) ToEntities(modelList []*models.BookingModel) ([]*booking.Booking, error) {
	return mapper.MapSlicePtrWithID(modelList, m.ToEntity, func(model *models.BookingModel) uint { return model.ID })
}
