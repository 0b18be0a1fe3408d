package booking

import (
	"time"

	"github.com/turnex-app/turnex/internal/domain/shared/events"
)

const EventTypeDepositExpired = "booking.deposit_expired"

// DepositExpiredEvent fires when the sweep releases a slot held by an
// unpaid deposit.
type DepositExpiredEvent struct {
	events.BaseEvent
	TenantID   uint
	CustomerID uint
	StartAt    time.Time
}

func NewDepositExpiredEvent(b *Booking) *DepositExpiredEvent {
	return &DepositExpiredEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: b.SID(),
			EventType:   EventTypeDepositExpired,
			OccurredAt:  time.Now().UTC(),
			Version:     1,
		},
		TenantID:   b.TenantID(),
		CustomerID: b.CustomerID(),
		StartAt:    b.StartAt(),
	}
}
