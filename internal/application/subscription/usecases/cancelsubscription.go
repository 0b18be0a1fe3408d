package usecases

import (
	"context"
	"fmt"

	"github.com/turnex-app/turnex/internal/domain/shared/events"
	"github.com/turnex-app/turnex/internal/domain/subscription"
	"github.com/turnex-app/turnex/internal/shared/biztime"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

type CancelSubscriptionCommand struct {
	TenantID uint
	Reason   string
}

type CancelSubscriptionResult struct {
	SubscriptionSID string
	Status          string
	AccessUntil     string
}

// CancelSubscriptionUseCase cancels a tenant's subscription without
// shortening the already paid period.
type CancelSubscriptionUseCase struct {
	resolver         *SubscriptionResolver
	subscriptionRepo subscription.SubscriptionRepository
	publisher        events.EventPublisher
	logger           logger.Interface
}

func NewCancelSubscriptionUseCase(
	resolver *SubscriptionResolver,
	subscriptionRepo subscription.SubscriptionRepository,
	publisher events.EventPublisher,
	logger logger.Interface,
) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		resolver:         resolver,
		subscriptionRepo: subscriptionRepo,
		publisher:        publisher,
		logger:           logger,
	}
}

func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) (*CancelSubscriptionResult, error) {
	sub, err := uc.resolver.Resolve(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}

	now := biztime.NowUTC()
	if err := sub.Cancel(cmd.Reason, now); err != nil {
		return nil, err
	}

	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		uc.logger.Errorw("failed to persist cancellation", "error", err, "tenant_id", cmd.TenantID)
		return nil, fmt.Errorf("failed to persist cancellation: %w", err)
	}

	uc.logger.Infow("subscription cancelled",
		"tenant_id", cmd.TenantID,
		"subscription_sid", sub.SID(),
		"reason", cmd.Reason,
		"access_until", sub.CurrentPeriodEnd(),
	)

	if err := uc.publisher.Publish(subscription.NewCancelledEvent(sub.SID(), cmd.TenantID, sub.PlanID(), cmd.Reason, sub.CurrentPeriodEnd())); err != nil {
		uc.logger.Warnw("failed to publish cancellation event", "error", err, "tenant_id", cmd.TenantID)
	}

	return &CancelSubscriptionResult{
		SubscriptionSID: sub.SID(),
		Status:          sub.Status().String(),
		AccessUntil:     biztime.FormatMetadataTime(sub.CurrentPeriodEnd()),
	}, nil
}
