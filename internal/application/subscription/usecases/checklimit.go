package usecases

import (
	"context"
	"fmt"

	"github.com/turnex-app/turnex/internal/domain/subscription"
	vo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

type CheckLimitQuery struct {
	TenantID uint
	Resource string
}

type CheckLimitResult struct {
	Resource        string `json:"resource"`
	Current         int64  `json:"current"`
	Limit           *int64 `json:"limit"` // nil means unlimited
	HasReachedLimit bool   `json:"has_reached_limit"`
}

// CheckLimitUseCase answers whether a tenant may create another unit of a
// limited resource under their plan. Plan limits are served from cache when
// warm; usage is always counted live.
type CheckLimitUseCase struct {
	resolver       *SubscriptionResolver
	planRepo       subscription.PlanRepository
	planLimitCache PlanLimitCache
	usageReader    UsageReader
	logger         logger.Interface
}

func NewCheckLimitUseCase(
	resolver *SubscriptionResolver,
	planRepo subscription.PlanRepository,
	planLimitCache PlanLimitCache,
	usageReader UsageReader,
	logger logger.Interface,
) *CheckLimitUseCase {
	return &CheckLimitUseCase{
		resolver:       resolver,
		planRepo:       planRepo,
		planLimitCache: planLimitCache,
		usageReader:    usageReader,
		logger:         logger,
	}
}

func (uc *CheckLimitUseCase) Execute(ctx context.Context, query CheckLimitQuery) (*CheckLimitResult, error) {
	resource, err := vo.ParseResource(query.Resource)
	if err != nil {
		return nil, err
	}

	sub, err := uc.resolver.Resolve(ctx, query.TenantID)
	if err != nil {
		return nil, err
	}

	limits, err := uc.planLimits(ctx, sub.PlanID())
	if err != nil {
		return nil, err
	}

	current, err := uc.usageReader.CurrentUsage(ctx, query.TenantID, resource)
	if err != nil {
		uc.logger.Errorw("failed to read resource usage",
			"error", err, "tenant_id", query.TenantID, "resource", resource)
		return nil, fmt.Errorf("failed to read resource usage: %w", err)
	}

	limit := limits.Limit(resource)
	return &CheckLimitResult{
		Resource:        resource.String(),
		Current:         current,
		Limit:           limit,
		HasReachedLimit: limit != nil && current >= *limit,
	}, nil
}

func (uc *CheckLimitUseCase) planLimits(ctx context.Context, planID uint) (vo.ResourceLimits, error) {
	if cached, ok := uc.planLimitCache.Get(ctx, planID); ok {
		return *cached, nil
	}

	plan, err := uc.planRepo.FindByID(ctx, planID)
	if err != nil {
		return vo.ResourceLimits{}, fmt.Errorf("failed to load plan %d: %w", planID, err)
	}

	limits := plan.Limits()
	uc.planLimitCache.Set(ctx, planID, limits)
	return limits, nil
}
