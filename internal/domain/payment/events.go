package payment

import (
	"time"

	"github.com/turnex-app/turnex/internal/domain/shared/events"
)

const (
	EventTypePaymentApproved = "payment.approved"
	EventTypePaymentRejected = "payment.rejected"
	EventTypePaymentExpired  = "payment.expired"
)

// PaymentApprovedEvent fires when a ledger row settles as approved.
type PaymentApprovedEvent struct {
	events.BaseEvent
	TenantID         uint
	PlanID           uint
	CorrelationID    string
	GatewayPaymentID string
	AmountInCents    int64
	Currency         string
}

func NewPaymentApprovedEvent(p *Payment) *PaymentApprovedEvent {
	return &PaymentApprovedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: p.SID(),
			EventType:   EventTypePaymentApproved,
			OccurredAt:  time.Now().UTC(),
			Version:     1,
		},
		TenantID:         p.TenantID(),
		PlanID:           p.PlanID(),
		CorrelationID:    p.CorrelationID().String(),
		GatewayPaymentID: derefOr(p.GatewayPaymentID(), ""),
		AmountInCents:    p.Amount().AmountInCents(),
		Currency:         p.Amount().Currency(),
	}
}

// PaymentRejectedEvent fires when the gateway rejects a payment.
type PaymentRejectedEvent struct {
	events.BaseEvent
	TenantID      uint
	CorrelationID string
	Detail        string
}

func NewPaymentRejectedEvent(p *Payment) *PaymentRejectedEvent {
	return &PaymentRejectedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: p.SID(),
			EventType:   EventTypePaymentRejected,
			OccurredAt:  time.Now().UTC(),
			Version:     1,
		},
		TenantID:      p.TenantID(),
		CorrelationID: p.CorrelationID().String(),
		Detail:        derefOr(p.StatusDetail(), ""),
	}
}

// PaymentExpiredEvent fires when the sweep closes an abandoned intent.
type PaymentExpiredEvent struct {
	events.BaseEvent
	TenantID      uint
	CorrelationID string
}

func NewPaymentExpiredEvent(p *Payment) *PaymentExpiredEvent {
	return &PaymentExpiredEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: p.SID(),
			EventType:   EventTypePaymentExpired,
			OccurredAt:  time.Now().UTC(),
			Version:     1,
		},
		TenantID:      p.TenantID(),
		CorrelationID: p.CorrelationID().String(),
	}
}
