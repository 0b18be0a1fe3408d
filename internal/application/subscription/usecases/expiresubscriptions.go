package usecases

import (
	"context"
	"fmt"

	"github.com/turnex-app/turnex/internal/domain/shared/events"
	"github.com/turnex-app/turnex/internal/domain/subscription"
	"github.com/turnex-app/turnex/internal/shared/biztime"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

const expireSubscriptionsBatchSize = 100

// ExpireSubscriptionsUseCase marks lapsed subscriptions expired. This is a
// consistency sweep for reports; access checks read currentPeriodEnd
// directly and never wait for it.
type ExpireSubscriptionsUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	publisher        events.EventPublisher
	logger           logger.Interface
}

func NewExpireSubscriptionsUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	publisher events.EventPublisher,
	logger logger.Interface,
) *ExpireSubscriptionsUseCase {
	return &ExpireSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		publisher:        publisher,
		logger:           logger,
	}
}

// Execute settles one batch of lapsed subscriptions and returns how many
// rows it expired.
func (uc *ExpireSubscriptionsUseCase) Execute(ctx context.Context) (int, error) {
	now := biztime.NowUTC()

	lapsed, err := uc.subscriptionRepo.ListLapsed(ctx, now, expireSubscriptionsBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list lapsed subscriptions: %w", err)
	}

	expired := 0
	for _, sub := range lapsed {
		if err := ctx.Err(); err != nil {
			return expired, err
		}

		if err := sub.MarkAsExpired(now); err != nil {
			// settled by a payment or read between listing and processing
			uc.logger.Debugw("skipping lapsed subscription",
				"error", err, "subscription_sid", sub.SID())
			continue
		}
		if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			uc.logger.Errorw("failed to persist subscription expiry",
				"error", err, "subscription_sid", sub.SID())
			continue
		}

		if err := uc.publisher.Publish(subscription.NewExpiredEvent(sub.SID(), sub.TenantID(), sub.PlanID(), sub.CurrentPeriodEnd())); err != nil {
			uc.logger.Warnw("failed to publish subscription expired event",
				"error", err, "subscription_sid", sub.SID())
		}
		expired++
	}

	return expired, nil
}
