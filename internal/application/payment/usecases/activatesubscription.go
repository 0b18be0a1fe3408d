package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/turnex-app/turnex/internal/domain/shared/events"
	"github.com/turnex-app/turnex/internal/domain/subscription"
	subvo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
	"github.com/turnex-app/turnex/internal/shared/biztime"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

type ActivateSubscriptionCommand struct {
	TenantID      uint
	PlanID        uint
	BillingPeriod subvo.BillingPeriod
}

// ActivateSubscriptionUseCase applies an approved payment to the tenant's
// subscription: the plan takes effect and the period window extends by one
// billing cycle from now. Tenants paying without a prior subscription get
// one created active.
type ActivateSubscriptionUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	planRepo         subscription.PlanRepository
	publisher        events.EventPublisher
	logger           logger.Interface
}

func NewActivateSubscriptionUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo subscription.PlanRepository,
	publisher events.EventPublisher,
	logger logger.Interface,
) *ActivateSubscriptionUseCase {
	return &ActivateSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		publisher:        publisher,
		logger:           logger,
	}
}

func (uc *ActivateSubscriptionUseCase) Execute(ctx context.Context, cmd ActivateSubscriptionCommand) error {
	plan, err := uc.planRepo.FindByID(ctx, cmd.PlanID)
	if err != nil {
		return fmt.Errorf("failed to load plan %d: %w", cmd.PlanID, err)
	}

	now := biztime.NowUTC()
	sub, err := uc.subscriptionRepo.FindByTenantID(ctx, cmd.TenantID)
	switch {
	case errors.Is(err, subscription.ErrSubscriptionNotFound):
		sub, err = subscription.NewDirectSubscription(cmd.TenantID, plan, cmd.BillingPeriod, now)
		if err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
			return fmt.Errorf("failed to persist subscription: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to load subscription: %w", err)
	default:
		if err := sub.ApplyPayment(plan, cmd.BillingPeriod, now); err != nil {
			return fmt.Errorf("failed to apply payment: %w", err)
		}
		if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			return fmt.Errorf("failed to persist activation: %w", err)
		}
	}

	uc.logger.Infow("subscription activated",
		"tenant_id", cmd.TenantID,
		"subscription_sid", sub.SID(),
		"plan_id", plan.ID(),
		"billing_period", cmd.BillingPeriod,
		"period_end", sub.CurrentPeriodEnd(),
	)

	if err := uc.publisher.Publish(subscription.NewActivatedEvent(sub.SID(), cmd.TenantID, plan.ID(), sub.CurrentPeriodEnd())); err != nil {
		uc.logger.Warnw("failed to publish activation event", "error", err, "tenant_id", cmd.TenantID)
	}

	return nil
}
