package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/turnex-app/turnex/internal/domain/payment"
	vo "github.com/turnex-app/turnex/internal/domain/payment/valueobjects"
	subvo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/models"
	"github.com/turnex-app/turnex/internal/shared/mapper"
)

type PaymentMapper interface {
	ToEntity(model *models.PaymentModel) (*payment.Payment, error)
	ToModel(entity *payment.Payment) (*models.PaymentModel, error)
	ToEntities(models []*models.PaymentModel) ([]*payment.Payment, error)
}

type PaymentMapperImpl struct{}

func NewPaymentMapper() PaymentMapper {
	return &PaymentMapperImpl{}
}

func (m *PaymentMapperImpl) ToEntity(model *models.PaymentModel) (*payment.Payment, error) {
	if model == nil {
		return nil, nil
	}

	status := vo.PaymentStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", model.Status)
	}

	correlationID, err := vo.ParseCorrelationID(model.CorrelationID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse correlation ID: %w", err)
	}

	period, err := subvo.ParseBillingPeriod(model.BillingPeriod)
	if err != nil {
		return nil, fmt.Errorf("failed to parse billing period: %w", err)
	}

	var rawPayload map[string]any
	if model.RawPayload != nil {
		if err := json.Unmarshal(model.RawPayload, &rawPayload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal raw payload: %w", err)
		}
	}

	entity, err := payment.ReconstructPayment(payment.PaymentReconstructParams{
		ID:               model.ID,
		SID:              model.SID,
		TenantID:         model.TenantID,
		PlanID:           model.PlanID,
		CorrelationID:    correlationID,
		Amount:           vo.NewMoney(model.AmountCents, model.Currency),
		BillingPeriod:    period,
		Status:           status,
		StatusDetail:     model.StatusDetail,
		PreferenceID:     model.PreferenceID,
		CheckoutURL:      model.CheckoutURL,
		GatewayPaymentID: model.GatewayPaymentID,
		RawPayload:       rawPayload,
		ApprovedAt:       model.ApprovedAt,
		Version:          model.Version,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct payment entity: %w", err)
	}

	return entity, nil
}

func (m *PaymentMapperImpl) ToModel(entity *payment.Payment) (*models.PaymentModel, error) {
	if entity == nil {
		return nil, nil
	}

	var payloadJSON datatypes.JSON
	if payload := entity.RawPayload(); len(payload) > 0 {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal raw payload: %w", err)
		}
		payloadJSON = data
	}

	return &models.PaymentModel{
		ID:               entity.ID(),
		SID:              entity.SID(),
		TenantID:         entity.TenantID(),
		PlanID:           entity.PlanID(),
		CorrelationID:    entity.CorrelationID().String(),
		AmountCents:      entity.Amount().AmountInCents(),
		Currency:         entity.Amount().Currency(),
		BillingPeriod:    entity.BillingPeriod().String(),
		Status:           entity.Status().String(),
		StatusDetail:     entity.StatusDetail(),
		PreferenceID:     entity.PreferenceID(),
		CheckoutURL:      entity.CheckoutURL(),
		GatewayPaymentID: entity.GatewayPaymentID(),
		RawPayload:       payloadJSON,
		ApprovedAt:       entity.ApprovedAt(),
		Version:          entity.Version(),
		CreatedAt:        entity.CreatedAt(),
		UpdatedAt:        entity.UpdatedAt(),
	}, nil
}

func (m *PaymentMapperImpl) ToEntities(modelList []*models.PaymentModel) ([]*payment.Payment, error) {
	return mapper.MapSlicePtrWithID(modelList, m.ToEntity, func(model *models.PaymentModel) uint { return model.ID })
}
