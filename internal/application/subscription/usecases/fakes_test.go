package usecases

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/turnex-app/turnex/internal/domain/shared/events"
	"github.com/turnex-app/turnex/internal/domain/subscription"
	vo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// --- subscription repository fake ---

type fakeSubscriptionRepo struct {
	mu     sync.Mutex
	byTenant map[uint]*subscription.Subscription
	nextID uint
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{byTenant: make(map[uint]*subscription.Subscription), nextID: 1}
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byTenant[sub.TenantID()]; ok {
		return subscription.ErrSubscriptionExists
	}
	if sub.ID() == 0 {
		if err := sub.SetID(r.nextID); err != nil {
			return err
		}
		r.nextID++
	}
	r.byTenant[sub.TenantID()] = sub
	return nil
}

func (r *fakeSubscriptionRepo) Update(_ context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTenant[sub.TenantID()] = sub
	return nil
}

func (r *fakeSubscriptionRepo) FindByID(_ context.Context, subID uint) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.byTenant {
		if sub.ID() == subID {
			return sub, nil
		}
	}
	return nil, subscription.ErrSubscriptionNotFound
}

func (r *fakeSubscriptionRepo) FindBySID(_ context.Context, sid string) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.byTenant {
		if sub.SID() == sid {
			return sub, nil
		}
	}
	return nil, subscription.ErrSubscriptionNotFound
}

func (r *fakeSubscriptionRepo) FindByTenantID(_ context.Context, tenantID uint) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.byTenant[tenantID]
	if !ok {
		return nil, subscription.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (r *fakeSubscriptionRepo) List(_ context.Context, _ subscription.SubscriptionFilters) ([]*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*subscription.Subscription, 0, len(r.byTenant))
	for _, sub := range r.byTenant {
		out = append(out, sub)
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) ListLapsed(_ context.Context, cutoff time.Time, limit int) ([]*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*subscription.Subscription
	for _, sub := range r.byTenant {
		if len(out) >= limit {
			break
		}
		if sub.Status().IsTerminal() {
			continue
		}
		if !sub.CurrentPeriodEnd().After(cutoff) {
			out = append(out, sub)
		}
	}
	return out, nil
}

// --- plan repository fake ---

type fakePlanRepo struct {
	bySlug map[string]*subscription.Plan
}

func newFakePlanRepo(t *testing.T) *fakePlanRepo {
	t.Helper()
	now := time.Now().UTC()
	free, err := subscription.ReconstructPlan(subscription.PlanReconstructParams{
		ID: 1, SID: "plan_free", Name: "Gratis", Slug: "gratis", Currency: "ARS",
		Limits:    limitsWith(3),
		Status:    subscription.PlanStatusActive,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	pro, err := subscription.ReconstructPlan(subscription.PlanReconstructParams{
		ID: 2, SID: "plan_pro", Name: "Profesional", Slug: "profesional",
		PriceMonthly: 1500000, PriceYearly: 15000000, Currency: "ARS", TrialDays: 14,
		Status:    subscription.PlanStatusActive,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	return &fakePlanRepo{bySlug: map[string]*subscription.Plan{"gratis": free, "profesional": pro}}
}

func limitsWith(branches int64) vo.ResourceLimits {
	return vo.ResourceLimits{MaxBranches: &branches}
}

func (r *fakePlanRepo) Create(_ context.Context, _ *subscription.Plan) error { return nil }
func (r *fakePlanRepo) Update(_ context.Context, _ *subscription.Plan) error { return nil }

func (r *fakePlanRepo) FindByID(_ context.Context, planID uint) (*subscription.Plan, error) {
	for _, p := range r.bySlug {
		if p.ID() == planID {
			return p, nil
		}
	}
	return nil, subscription.ErrPlanNotFound
}

func (r *fakePlanRepo) FindBySlug(_ context.Context, slug string) (*subscription.Plan, error) {
	p, ok := r.bySlug[slug]
	if !ok {
		return nil, subscription.ErrPlanNotFound
	}
	return p, nil
}

func (r *fakePlanRepo) ListActive(_ context.Context) ([]*subscription.Plan, error) {
	out := make([]*subscription.Plan, 0, len(r.bySlug))
	for _, p := range r.bySlug {
		out = append(out, p)
	}
	return out, nil
}

// --- event publisher fake ---

type fakePublisher struct {
	mu       sync.Mutex
	events   []events.DomainEvent
	failNext bool
	err      error
}

func (p *fakePublisher) Publish(event events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failNext {
		p.failNext = false
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) PublishAll(evs []events.DomainEvent) error {
	for _, e := range evs {
		if err := p.Publish(e); err != nil {
			return err
		}
	}
	return nil
}

func (p *fakePublisher) published(eventType string) []events.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.DomainEvent
	for _, e := range p.events {
		if e.GetEventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// --- stamp repository fake ---

type fakeStampRepo struct {
	mu    sync.Mutex
	dates map[uint]string
}

func newFakeStampRepo() *fakeStampRepo {
	return &fakeStampRepo{dates: make(map[uint]string)}
}

func (r *fakeStampRepo) LastWarnedDate(_ context.Context, tenantID uint) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dates[tenantID], nil
}

func (r *fakeStampRepo) SetLastWarnedDate(_ context.Context, tenantID uint, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dates[tenantID] = date
	return nil
}

// --- plan limit cache fake ---

type fakePlanLimitCache struct {
	mu     sync.Mutex
	limits map[uint]vo.ResourceLimits
	hits   int
}

func newFakePlanLimitCache() *fakePlanLimitCache {
	return &fakePlanLimitCache{limits: make(map[uint]vo.ResourceLimits)}
}

func (c *fakePlanLimitCache) Get(_ context.Context, planID uint) (*vo.ResourceLimits, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limits[planID]
	if ok {
		c.hits++
		return &l, true
	}
	return nil, false
}

func (c *fakePlanLimitCache) Set(_ context.Context, planID uint, limits vo.ResourceLimits) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limits[planID] = limits
}

func (c *fakePlanLimitCache) Invalidate(_ context.Context, planID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.limits, planID)
}

// --- usage reader fake ---

type fakeUsageReader struct {
	usage map[vo.Resource]int64
}

func (r *fakeUsageReader) CurrentUsage(_ context.Context, _ uint, resource vo.Resource) (int64, error) {
	return r.usage[resource], nil
}
