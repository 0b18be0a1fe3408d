package notification

import (
	"context"
	"time"

	"github.com/turnex-app/turnex/internal/domain/booking"
	"github.com/turnex-app/turnex/internal/domain/payment"
	"github.com/turnex-app/turnex/internal/domain/shared/events"
	"github.com/turnex-app/turnex/internal/domain/subscription"
	"github.com/turnex-app/turnex/internal/infrastructure/pubsub"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

const relayPublishTimeout = 5 * time.Second

// relayedEventTypes lists the lifecycle events forwarded to other
// instances. Internal events such as trial_started stay in-process.
var relayedEventTypes = []string{
	subscription.EventTypeTrialExpiring,
	subscription.EventTypeActivated,
	subscription.EventTypeDowngraded,
	subscription.EventTypeCancelled,
	subscription.EventTypePlanChanged,
	subscription.EventTypeExpired,
	payment.EventTypePaymentApproved,
	payment.EventTypePaymentRejected,
	booking.EventTypeDepositExpired,
}

// BillingEventRelay bridges in-process domain events onto the Redis billing
// channel, where the notification sender and the scheduling side pick them
// up. Delivery is best effort; a relay failure never reaches the publisher.
type BillingEventRelay struct {
	bus    pubsub.BillingEventPublisher
	logger logger.Interface
}

func NewBillingEventRelay(bus pubsub.BillingEventPublisher, logger logger.Interface) *BillingEventRelay {
	return &BillingEventRelay{
		bus:    bus,
		logger: logger,
	}
}

// Register subscribes the relay to every forwarded event type.
func (r *BillingEventRelay) Register(subscriber events.EventSubscriber) error {
	for _, eventType := range relayedEventTypes {
		if err := subscriber.Subscribe(eventType, events.NewSimpleEventHandler(eventType, r.relay)); err != nil {
			return err
		}
	}
	return nil
}

func (r *BillingEventRelay) relay(event events.DomainEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), relayPublishTimeout)
	defer cancel()

	err := r.bus.PublishBillingEvent(ctx, event.GetEventType(), event.GetAggregateID(), tenantIDOf(event))
	if err != nil {
		r.logger.Warnw("failed to relay billing event",
			"event_type", event.GetEventType(),
			"aggregate_id", event.GetAggregateID(),
			"error", err,
		)
	}
	return nil
}

func tenantIDOf(event events.DomainEvent) uint {
	switch e := event.(type) {
	case *subscription.TrialStartedEvent:
		return e.TenantID
	case *subscription.TrialExpiringEvent:
		return e.TenantID
	case *subscription.ActivatedEvent:
		return e.TenantID
	case *subscription.DowngradedToFreeEvent:
		return e.TenantID
	case *subscription.CancelledEvent:
		return e.TenantID
	case *subscription.PlanChangedEvent:
		return e.TenantID
	case *subscription.ExpiredEvent:
		return e.TenantID
	case *payment.PaymentApprovedEvent:
		return e.TenantID
	case *payment.PaymentRejectedEvent:
		return e.TenantID
	case *payment.PaymentExpiredEvent:
		return e.TenantID
	case *booking.DepositExpiredEvent:
		return e.TenantID
	default:
		return 0
	}
}
