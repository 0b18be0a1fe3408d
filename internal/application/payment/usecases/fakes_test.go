package usecases

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/turnex-app/turnex/internal/application/payment/gateway"
	"github.com/turnex-app/turnex/internal/domain/payment"
	"github.com/turnex-app/turnex/internal/domain/shared/events"
	"github.com/turnex-app/turnex/internal/domain/subscription"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var gatewayNotConnectedErr = errors.New("gateway credential disconnected")

// --- payment repository fake ---

type fakePaymentRepo struct {
	mu     sync.Mutex
	rows   map[string]*payment.Payment // keyed by correlation id
	nextID uint
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{rows: make(map[string]*payment.Payment), nextID: 1}
}

func (r *fakePaymentRepo) Create(_ context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID() == 0 {
		p.SetID(r.nextID)
		r.nextID++
	}
	r.rows[p.CorrelationID().String()] = p
	return nil
}

func (r *fakePaymentRepo) Update(_ context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[p.CorrelationID().String()] = p
	return nil
}

func (r *fakePaymentRepo) FindByID(_ context.Context, payID uint) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.ID() == payID {
			return p, nil
		}
	}
	return nil, payment.ErrPaymentNotFound
}

func (r *fakePaymentRepo) FindBySID(_ context.Context, sid string) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.SID() == sid {
			return p, nil
		}
	}
	return nil, payment.ErrPaymentNotFound
}

func (r *fakePaymentRepo) FindByCorrelationID(_ context.Context, correlationID string) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[correlationID]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	return p, nil
}

func (r *fakePaymentRepo) ListByTenantID(_ context.Context, tenantID uint, _, _ int) ([]*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*payment.Payment
	for _, p := range r.rows {
		if p.TenantID() == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) ListStalePending(_ context.Context, cutoff time.Time, limit int) ([]*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*payment.Payment
	for _, p := range r.rows {
		if p.Status().IsPending() && p.CreatedAt().Before(cutoff) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// --- subscription / plan repository fakes ---

type fakeSubscriptionRepo struct {
	mu       sync.Mutex
	byTenant map[uint]*subscription.Subscription
	nextID   uint
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{byTenant: make(map[uint]*subscription.Subscription), nextID: 1}
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
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
	return nil, nil
}

func (r *fakeSubscriptionRepo) ListLapsed(_ context.Context, _ time.Time, _ int) ([]*subscription.Subscription, error) {
	return nil, nil
}

type fakePlanRepo struct {
	plans map[uint]*subscription.Plan
}

func newFakePlanRepo(t *testing.T) *fakePlanRepo {
	t.Helper()
	now := time.Now().UTC()
	pro, err := subscription.ReconstructPlan(subscription.PlanReconstructParams{
		ID: 2, SID: "plan_pro", Name: "Profesional", Slug: "profesional",
		PriceMonthly: 1500000, PriceYearly: 15000000, Currency: "ARS", TrialDays: 14,
		Status:    subscription.PlanStatusActive,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	free, err := subscription.ReconstructPlan(subscription.PlanReconstructParams{
		ID: 1, SID: "plan_free", Name: "Gratis", Slug: "gratis", Currency: "ARS",
		Status:    subscription.PlanStatusActive,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	return &fakePlanRepo{plans: map[uint]*subscription.Plan{1: free, 2: pro}}
}

func (r *fakePlanRepo) Create(_ context.Context, _ *subscription.Plan) error { return nil }
func (r *fakePlanRepo) Update(_ context.Context, _ *subscription.Plan) error { return nil }

func (r *fakePlanRepo) FindByID(_ context.Context, planID uint) (*subscription.Plan, error) {
	p, ok := r.plans[planID]
	if !ok {
		return nil, subscription.ErrPlanNotFound
	}
	return p, nil
}

func (r *fakePlanRepo) FindBySlug(_ context.Context, slug string) (*subscription.Plan, error) {
	for _, p := range r.plans {
		if p.Slug() == slug {
			return p, nil
		}
	}
	return nil, subscription.ErrPlanNotFound
}

func (r *fakePlanRepo) ListActive(_ context.Context) ([]*subscription.Plan, error) {
	var out []*subscription.Plan
	for _, p := range r.plans {
		out = append(out, p)
	}
	return out, nil
}

// --- vault fake ---

type fakeVault struct {
	tokens map[uint]string
	err    error
}

func (v *fakeVault) BeginAuthorization(_ context.Context, _ uint, _ bool) (string, error) {
	return "", nil
}

func (v *fakeVault) CompleteAuthorization(_ context.Context, _, _ string) error { return nil }

func (v *fakeVault) AccessToken(_ context.Context, tenantID uint) (string, error) {
	if v.err != nil {
		return "", v.err
	}
	token, ok := v.tokens[tenantID]
	if !ok {
		return "", gatewayNotConnectedErr
	}
	return token, nil
}

func (v *fakeVault) PublicKey(_ context.Context, _ uint) (string, error) { return "", nil }

func (v *fakeVault) Status(_ context.Context, _ uint) (*gateway.ConnectionStatus, error) {
	return &gateway.ConnectionStatus{}, nil
}

func (v *fakeVault) Disconnect(_ context.Context, _ uint) error { return nil }

// --- gateway client fake ---

type fakeClient struct {
	mu          sync.Mutex
	payments    map[string]*gateway.PaymentInfo
	preference  *gateway.Preference
	prefErr     error
	getErr      error
	createdReqs []gateway.PreferenceRequest
}

func newFakeClient() *fakeClient {
	return &fakeClient{payments: make(map[string]*gateway.PaymentInfo)}
}

func (c *fakeClient) AuthorizationURL(state string) string { return "https://auth.example/" + state }

func (c *fakeClient) ExchangeAuthCode(_ context.Context, _ string) (*gateway.Tokens, error) {
	return nil, nil
}

func (c *fakeClient) RefreshToken(_ context.Context, _ string) (*gateway.Tokens, error) {
	return nil, nil
}

func (c *fakeClient) CreatePreference(_ context.Context, _ string, req gateway.PreferenceRequest) (*gateway.Preference, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prefErr != nil {
		return nil, c.prefErr
	}
	c.createdReqs = append(c.createdReqs, req)
	if c.preference != nil {
		return c.preference, nil
	}
	return &gateway.Preference{ID: "pref-1", CheckoutURL: "https://checkout.example/pref-1"}, nil
}

func (c *fakeClient) GetPayment(_ context.Context, _ string, paymentID string) (*gateway.PaymentInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	info, ok := c.payments[paymentID]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	return info, nil
}

// --- event publisher fake ---

type fakePublisher struct {
	mu     sync.Mutex
	events []events.DomainEvent
}

func (p *fakePublisher) Publish(event events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
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
