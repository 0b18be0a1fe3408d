package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/turnex-app/turnex/internal/domain/subscription"
	vo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/models"
	"github.com/turnex-app/turnex/internal/shared/mapper"
)

type PlanMapper interface {
	ToEntity(model *models.PlanModel) (*subscription.Plan, error)
	ToModel(entity *subscription.Plan) (*models.PlanModel, error)
	ToEntities(models []*models.PlanModel) ([]*subscription.Plan, error)
}

type PlanMapperImpl struct{}

func NewPlanMapper() PlanMapper {
	return &PlanMapperImpl{}
}

func (m *PlanMapperImpl) ToEntity(model *models.PlanModel) (*subscription.Plan, error) {
	if model == nil {
		return nil, nil
	}

	var features []string
	if model.Features != nil {
		if err := json.Unmarshal(model.Features, &features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan features: %w", err)
		}
	}

	var limits vo.ResourceLimits
	if model.Limits != nil {
		if err := json.Unmarshal(model.Limits, &limits); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan limits: %w", err)
		}
	}

	entity, err := subscription.ReconstructPlan(subscription.PlanReconstructParams{
		ID:           model.ID,
		SID:          model.SID,
		Name:         model.Name,
		Slug:         model.Slug,
		PriceMonthly: model.PriceMonthly,
		PriceYearly:  model.PriceYearly,
		Currency:     model.Currency,
		TrialDays:    model.TrialDays,
		Features:     features,
		Limits:       limits,
		Status:       subscription.PlanStatus(model.Status),
		SortOrder:    model.SortOrder,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct plan entity: %w", err)
	}

	return entity, nil
}

func (m *PlanMapperImpl) ToModel(entity *subscription.Plan) (*models.PlanModel, error) {
	if entity == nil {
		return nil, nil
	}

	var featuresJSON datatypes.JSON
	if features := entity.Features(); len(features) > 0 {
		data, err := json.Marshal(features)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal plan features: %w", err)
		}
		featuresJSON = data
	}

	limitsJSON, err := json.Marshal(entity.Limits())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan limits: %w", err)
	}

	return &models.PlanModel{
		ID:           entity.ID(),
		SID:          entity.SID(),
		Name:         entity.Name(),
		Slug:         entity.Slug(),
		PriceMonthly: entity.PriceMonthly(),
		PriceYearly:  entity.PriceYearly(),
		Currency:     entity.Currency(),
		TrialDays:    entity.TrialDays(),
		Features:     featuresJSON,
		Limits:       limitsJSON,
		Status:       string(entity.Status()),
		SortOrder:    entity.SortOrder(),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
	}, nil
}

func (m *PlanMapperImpl) ToEntities(modelList []*models.PlanModel) ([]*subscription.Plan, error) {
	return mapper.MapSlicePtrWithID(modelList, m.ToEntity, func(model *models.PlanModel) uint { return model.ID })
}
