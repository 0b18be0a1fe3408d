package usecases

import (
	"context"
	"fmt"

	"github.com/turnex-app/turnex/internal/domain/shared/events"
	"github.com/turnex-app/turnex/internal/domain/subscription"
	"github.com/turnex-app/turnex/internal/shared/biztime"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

// SubscriptionResolver loads a tenant's subscription and settles any lapsed
// trial on the way out. Trial expiry has no timer; every read path goes
// through here so an expired trial is downgraded to the free plan the first
// time anyone looks at it.
type SubscriptionResolver struct {
	subscriptionRepo subscription.SubscriptionRepository
	planRepo         subscription.PlanRepository
	publisher        events.EventPublisher
	freePlanSlug     string
	logger           logger.Interface
}

func NewSubscriptionResolver(
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo subscription.PlanRepository,
	publisher events.EventPublisher,
	freePlanSlug string,
	logger logger.Interface,
) *SubscriptionResolver {
	return &SubscriptionResolver{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		publisher:        publisher,
		freePlanSlug:     freePlanSlug,
		logger:           logger,
	}
}

// Resolve returns the tenant's subscription with lazy trial expiry applied.
func (r *SubscriptionResolver) Resolve(ctx context.Context, tenantID uint) (*subscription.Subscription, error) {
	sub, err := r.subscriptionRepo.FindByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := biztime.NowUTC()
	if !sub.IsTrialExpired(now) {
		return sub, nil
	}

	freePlan, err := r.planRepo.FindBySlug(ctx, r.freePlanSlug)
	if err != nil {
		r.logger.Errorw("failed to load free plan for trial downgrade",
			"error", err, "tenant_id", tenantID, "free_plan_slug", r.freePlanSlug)
		return nil, fmt.Errorf("failed to load free plan: %w", err)
	}

	fromPlanID := sub.PlanID()
	if err := sub.DowngradeToFree(freePlan, now); err != nil {
		return nil, fmt.Errorf("failed to downgrade expired trial: %w", err)
	}

	if err := r.subscriptionRepo.Update(ctx, sub); err != nil {
		r.logger.Errorw("failed to persist trial downgrade", "error", err, "tenant_id", tenantID)
		return nil, fmt.Errorf("failed to persist trial downgrade: %w", err)
	}

	r.logger.Infow("trial expired, downgraded to free plan",
		"tenant_id", tenantID,
		"subscription_sid", sub.SID(),
		"from_plan_id", fromPlanID,
		"to_plan_id", freePlan.ID(),
	)

	if err := r.publisher.Publish(subscription.NewDowngradedToFreeEvent(sub.SID(), tenantID, fromPlanID, freePlan.ID())); err != nil {
		r.logger.Warnw("failed to publish downgrade event", "error", err, "tenant_id", tenantID)
	}

	return sub, nil
}
