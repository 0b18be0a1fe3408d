package subscription

import (
	"time"

	"github.com/turnex-app/turnex/internal/domain/shared/events"
)

const (
	EventTypeTrialStarted   = "subscription.trial_started"
	EventTypeTrialExpiring  = "subscription.trial_expiring"
	EventTypeActivated      = "subscription.activated"
	EventTypeDowngraded     = "subscription.downgraded_to_free"
	EventTypeCancelled      = "subscription.cancelled"
	EventTypePlanChanged    = "subscription.plan_changed"
	EventTypeExpired        = "subscription.expired"
)

// TrialStartedEvent fires when a tenant begins a trial subscription.
type TrialStartedEvent struct {
	events.BaseEvent
	TenantID   uint
	PlanID     uint
	TrialEndAt time.Time
}

func NewTrialStartedEvent(sid string, tenantID, planID uint, trialEndAt time.Time) *TrialStartedEvent {
	return &TrialStartedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: sid,
			EventType:   EventTypeTrialStarted,
			OccurredAt:  time.Now().UTC(),
			Version:     1,
		},
		TenantID:   tenantID,
		PlanID:     planID,
		TrialEndAt: trialEndAt,
	}
}

// TrialExpiringEvent fires at most once per business day while a trial is
// inside its warning window. Delivery is best effort.
type TrialExpiringEvent struct {
	events.BaseEvent
	TenantID      uint
	PlanID        uint
	DaysRemaining int
	TrialEndAt    time.Time
}

func NewTrialExpiringEvent(sid string, tenantID, planID uint, daysRemaining int, trialEndAt time.Time) *TrialExpiringEvent {
	return &TrialExpiringEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: sid,
			EventType:   EventTypeTrialExpiring,
			OccurredAt:  time.Now().UTC(),
			Version:     1,
		},
		TenantID:      tenantID,
		PlanID:        planID,
		DaysRemaining: daysRemaining,
		TrialEndAt:    trialEndAt,
	}
}

// ActivatedEvent fires when a payment activates or renews a subscription.
type ActivatedEvent struct {
	events.BaseEvent
	TenantID  uint
	PlanID    uint
	PeriodEnd time.Time
}

func NewActivatedEvent(sid string, tenantID, planID uint, periodEnd time.Time) *ActivatedEvent {
	return &ActivatedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: sid,
			EventType:   EventTypeActivated,
			OccurredAt:  time.Now().UTC(),
			Version:     1,
		},
		TenantID:  tenantID,
		PlanID:    planID,
		PeriodEnd: periodEnd,
	}
}

// DowngradedToFreeEvent fires when an expired trial lazily downgrades to the
// free plan.
type DowngradedToFreeEvent struct {
	events.BaseEvent
	TenantID   uint
	FromPlanID uint
	ToPlanID   uint
}

func NewDowngradedToFreeEvent(sid string, tenantID, fromPlanID, toPlanID uint) *DowngradedToFreeEvent {
	return &DowngradedToFreeEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: sid,
			EventType:   EventTypeDowngraded,
			OccurredAt:  time.Now().UTC(),
			Version:     1,
		},
		TenantID:   tenantID,
		FromPlanID: fromPlanID,
		ToPlanID:   toPlanID,
	}
}

// CancelledEvent fires on subscription cancellation.
type CancelledEvent struct {
	events.BaseEvent
	TenantID    uint
	PlanID      uint
	Reason      string
	AccessUntil time.Time
}

func NewCancelledEvent(sid string, tenantID, planID uint, reason string, accessUntil time.Time) *CancelledEvent {
	return &CancelledEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: sid,
			EventType:   EventTypeCancelled,
			OccurredAt:  time.Now().UTC(),
			Version:     1,
		},
		TenantID:    tenantID,
		PlanID:      planID,
		Reason:      reason,
		AccessUntil: accessUntil,
	}
}

// PlanChangedEvent fires when a trialing subscription moves to another plan.
type PlanChangedEvent struct {
	events.BaseEvent
	TenantID   uint
	FromPlanID uint
	ToPlanID   uint
}

func NewPlanChangedEvent(sid string, tenantID, fromPlanID, toPlanID uint) *PlanChangedEvent {
	return &PlanChangedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: sid,
			EventType:   EventTypePlanChanged,
			OccurredAt:  time.Now().UTC(),
			Version:     1,
		},
		TenantID:   tenantID,
		FromPlanID: fromPlanID,
		ToPlanID:   toPlanID,
	}
}

// ExpiredEvent fires when a lapsed subscription is marked expired.
type ExpiredEvent struct {
	events.BaseEvent
	TenantID  uint
	PlanID    uint
	PeriodEnd time.Time
}

func NewExpiredEvent(sid string, tenantID, planID uint, periodEnd time.Time) *ExpiredEvent {
	return &ExpiredEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: sid,
			EventType:   EventTypeExpired,
			OccurredAt:  time.Now().UTC(),
			Version:     1,
		},
		TenantID:  tenantID,
		PlanID:    planID,
		PeriodEnd: periodEnd,
	}
}
