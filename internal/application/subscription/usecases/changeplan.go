package usecases

import (
	"context"
	"fmt"

	"github.com/turnex-app/turnex/internal/domain/shared/events"
	"github.com/turnex-app/turnex/internal/domain/subscription"
	vo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
	"github.com/turnex-app/turnex/internal/shared/biztime"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

type ChangePlanCommand struct {
	TenantID      uint
	NewPlanSlug   string
	BillingPeriod string
}

type ChangePlanResult struct {
	SubscriptionSID string
	PlanSlug        string
	Status          string
	TrialEndAt      *string
}

// ChangePlanUseCase moves a trialing subscription to another plan.
// Paid plan changes outside trial happen through checkout and land via the
// payment webhook instead.
type ChangePlanUseCase struct {
	resolver         *SubscriptionResolver
	subscriptionRepo subscription.SubscriptionRepository
	planRepo         subscription.PlanRepository
	planLimitCache   PlanLimitCache
	publisher        events.EventPublisher
	logger           logger.Interface
}

func NewChangePlanUseCase(
	resolver *SubscriptionResolver,
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo subscription.PlanRepository,
	planLimitCache PlanLimitCache,
	publisher events.EventPublisher,
	logger logger.Interface,
) *ChangePlanUseCase {
	return &ChangePlanUseCase{
		resolver:         resolver,
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		planLimitCache:   planLimitCache,
		publisher:        publisher,
		logger:           logger,
	}
}

func (uc *ChangePlanUseCase) Execute(ctx context.Context, cmd ChangePlanCommand) (*ChangePlanResult, error) {
	sub, err := uc.resolver.Resolve(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}

	newPlan, err := uc.planRepo.FindBySlug(ctx, cmd.NewPlanSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", cmd.NewPlanSlug, err)
	}

	period := sub.BillingPeriod()
	if cmd.BillingPeriod != "" {
		period, err = vo.ParseBillingPeriod(cmd.BillingPeriod)
		if err != nil {
			return nil, err
		}
	}

	oldPlanID := sub.PlanID()
	now := biztime.NowUTC()
	if err := sub.ChangeTrialPlan(newPlan, period, now); err != nil {
		return nil, err
	}

	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		uc.logger.Errorw("failed to persist plan change", "error", err, "tenant_id", cmd.TenantID)
		return nil, fmt.Errorf("failed to persist plan change: %w", err)
	}

	uc.logger.Infow("subscription plan changed",
		"tenant_id", cmd.TenantID,
		"subscription_sid", sub.SID(),
		"old_plan_id", oldPlanID,
		"new_plan_slug", newPlan.Slug(),
		"status", sub.Status(),
	)

	if err := uc.publisher.Publish(subscription.NewPlanChangedEvent(sub.SID(), cmd.TenantID, oldPlanID, newPlan.ID())); err != nil {
		uc.logger.Warnw("failed to publish plan change event", "error", err, "tenant_id", cmd.TenantID)
	}

	result := &ChangePlanResult{
		SubscriptionSID: sub.SID(),
		PlanSlug:        newPlan.Slug(),
		Status:          sub.Status().String(),
	}
	if sub.TrialEndAt() != nil {
		s := biztime.FormatMetadataTime(*sub.TrialEndAt())
		result.TrialEndAt = &s
	}
	return result, nil
}
