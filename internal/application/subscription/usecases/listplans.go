package usecases

import (
	"context"
	"fmt"

	"github.com/turnex-app/turnex/internal/domain/subscription"
	"github.com/turnex-app/turnex/internal/shared/mapper"
)

type PlanDTO struct {
	SID          string   `json:"sid"`
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	PriceMonthly uint64   `json:"price_monthly"`
	PriceYearly  uint64   `json:"price_yearly"`
	Currency     string   `json:"currency"`
	TrialDays    int      `json:"trial_days"`
	Features     []string `json:"features"`
	IsFree       bool     `json:"is_free"`
}

// ListPlansUseCase returns the active plan catalog for public display.
type ListPlansUseCase struct {
	planRepo subscription.PlanRepository
}

func NewListPlansUseCase(planRepo subscription.PlanRepository) *ListPlansUseCase {
	return &ListPlansUseCase{planRepo: planRepo}
}

func (uc *ListPlansUseCase) Execute(ctx context.Context) ([]PlanDTO, error) {
	plans, err := uc.planRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	return mapper.MapSlice(plans, func(p *subscription.Plan) PlanDTO {
		return PlanDTO{
			SID:          p.SID(),
			Name:         p.Name(),
			Slug:         p.Slug(),
			PriceMonthly: p.PriceMonthly(),
			PriceYearly:  p.PriceYearly(),
			Currency:     p.Currency(),
			TrialDays:    p.TrialDays(),
			Features:     p.Features(),
			IsFree:       p.IsFree(),
		}
	}), nil
}
