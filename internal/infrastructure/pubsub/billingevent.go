package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turnex-app/turnex/internal/shared/goroutine"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

// BillingEvent is the cross-instance form of a billing lifecycle event.
// The scheduling side of the product listens on this channel to refresh
// tenant entitlements without polling the subscriptions table.
type BillingEvent struct {
	EventType      string `json:"event_type"`
	AggregateID    string `json:"aggregate_id"`
	TenantID       uint   `json:"tenant_id"`
	Timestamp      int64  `json:"timestamp"`
	SourceInstance string `json:"source_instance"`
}

// BillingEventHandler is a callback for handling billing events.
type BillingEventHandler func(ctx context.Context, event BillingEvent)

// BillingEventPublisher publishes billing events across instances.
type BillingEventPublisher interface {
	PublishBillingEvent(ctx context.Context, eventType, aggregateID string, tenantID uint) error
}

// BillingEventSubscriber subscribes to billing events.
type BillingEventSubscriber interface {
	Subscribe(ctx context.Context, handler BillingEventHandler) error
}

const billingEventChannel = "turnex:billing:events"

// RedisBillingEventBus implements both BillingEventPublisher and
// BillingEventSubscriber using Redis Pub/Sub.
type RedisBillingEventBus struct {
	client     *redis.Client
	logger     logger.Interface
	instanceID string
}

// NewRedisBillingEventBus creates a new Redis-based billing event bus
func NewRedisBillingEventBus(client *redis.Client, logger logger.Interface) *RedisBillingEventBus {
	return &RedisBillingEventBus{
		client:     client,
		logger:     logger,
		instanceID: uuid.NewString(),
	}
}

// PublishBillingEvent publishes a billing lifecycle event
func (b *RedisBillingEventBus) PublishBillingEvent(ctx context.Context, eventType, aggregateID string, tenantID uint) error {
	event := BillingEvent{
		EventType:      eventType,
		AggregateID:    aggregateID,
		TenantID:       tenantID,
		Timestamp:      time.Now().Unix(),
		SourceInstance: b.instanceID,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, billingEventChannel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish billing event",
			"event_type", event.EventType,
			"aggregate_id", event.AggregateID,
			"tenant_id", event.TenantID,
			"error", err,
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debugw("billing event published",
		"event_type", event.EventType,
		"aggregate_id", event.AggregateID,
		"tenant_id", event.TenantID,
	)
	return nil
}

// Subscribe subscribes to billing events and calls the handler for each event
func (b *RedisBillingEventBus) Subscribe(ctx context.Context, handler BillingEventHandler) error {
	pubsub := b.client.Subscribe(ctx, billingEventChannel)
	defer pubsub.Close()

	// Wait for subscription confirmation
	_, err := pubsub.Receive(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	b.logger.Infow("subscribed to billing events",
		"channel", billingEventChannel,
	)

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("billing event subscriber stopped",
				"reason", ctx.Err(),
			)
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("billing event channel closed")
				return nil
			}

			var event BillingEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warnw("failed to unmarshal billing event",
					"payload", msg.Payload,
					"error", err,
				)
				continue
			}

			// Events published by this instance were already handled in-process.
			if event.SourceInstance == b.instanceID {
				continue
			}

			// Handle event in background goroutine to avoid blocking the event loop
			evt := event
			goroutine.SafeGo(b.logger, "billing-event-handler", func() {
				handler(context.Background(), evt)
			})
		}
	}
}
