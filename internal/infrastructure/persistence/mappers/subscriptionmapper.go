package mappers

import (
	"fmt"

	"github.com/turnex-app/turnex/internal/domain/subscription"
	vo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/models"
	"github.com/turnex-app/turnex/internal/shared/mapper"
)

type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error)
	ToEntities(models []*models.SubscriptionModel) ([]*subscription.Subscription, error)
}

type SubscriptionMapperImpl struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &SubscriptionMapperImpl{}
}

func (m *SubscriptionMapperImpl) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	status := vo.SubscriptionStatus(model.Status)
	if !vo.ValidStatuses[status] {
		return nil, fmt.Errorf("invalid subscription status: %s", model.Status)
	}

	period, err := vo.ParseBillingPeriod(model.BillingPeriod)
	if err != nil {
		return nil, fmt.Errorf("failed to parse billing period: %w", err)
	}

	entity, err := subscription.ReconstructSubscription(subscription.SubscriptionReconstructParams{
		ID:                 model.ID,
		SID:                model.SID,
		TenantID:           model.TenantID,
		PlanID:             model.PlanID,
		Status:             status,
		BillingPeriod:      period,
		TrialStartAt:       model.TrialStartAt,
		TrialEndAt:         model.TrialEndAt,
		CurrentPeriodStart: model.CurrentPeriodStart,
		CurrentPeriodEnd:   model.CurrentPeriodEnd,
		CancelledAt:        model.CancelledAt,
		CancelReason:       model.CancelReason,
		GatewaySubID:       model.GatewaySubID,
		Version:            model.Version,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription entity: %w", err)
	}

	return entity, nil
}

func (m *SubscriptionMapperImpl) ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.SubscriptionModel{
		ID:                 entity.ID(),
		SID:                entity.SID(),
		TenantID:           entity.TenantID(),
		PlanID:             entity.PlanID(),
		Status:             entity.Status().String(),
		BillingPeriod:      entity.BillingPeriod().String(),
		TrialStartAt:       entity.TrialStartAt(),
		TrialEndAt:         entity.TrialEndAt(),
		CurrentPeriodStart: entity.CurrentPeriodStart(),
		CurrentPeriodEnd:   entity.CurrentPeriodEnd(),
		CancelledAt:        entity.CancelledAt(),
		CancelReason:       entity.CancelReason(),
		GatewaySubID:       entity.GatewaySubscriptionID(),
		Version:            entity.Version(),
		CreatedAt:          entity.CreatedAt(),
		UpdatedAt:          entity.UpdatedAt(),
	}, nil
}

func (m *SubscriptionMapperImpl) ToEntities(modelList []*models.SubscriptionModel) ([]*subscription.Subscription, error) {
	return mapper.MapSlicePtrWithID(modelList, m.ToEntity, func(model *models.SubscriptionModel) uint { return model.ID })
}
