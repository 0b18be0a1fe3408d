package subscription

import (
	"context"
	"time"
)

// SubscriptionRepository persists subscription aggregates. There is at most
// one subscription per tenant.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription) error
	FindByID(ctx context.Context, subID uint) (*Subscription, error)
	FindBySID(ctx context.Context, sid string) (*Subscription, error)
	FindByTenantID(ctx context.Context, tenantID uint) (*Subscription, error)
	List(ctx context.Context, filters SubscriptionFilters) ([]*Subscription, error)
	// ListLapsed returns non-final subscriptions whose current period
	// ended at or before cutoff, oldest first.
	ListLapsed(ctx context.Context, cutoff time.Time, limit int) ([]*Subscription, error)
}

// SubscriptionFilters narrows subscription listings.
type SubscriptionFilters struct {
	Status *string
	PlanID *uint
	Limit  int
	Offset int
}

// PlanRepository persists billing plans.
type PlanRepository interface {
	Create(ctx context.Context, plan *Plan) error
	Update(ctx context.Context, plan *Plan) error
	FindByID(ctx context.Context, planID uint) (*Plan, error)
	FindBySlug(ctx context.Context, slug string) (*Plan, error)
	ListActive(ctx context.Context) ([]*Plan, error)
}
