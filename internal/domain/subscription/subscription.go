package subscription

import (
	"fmt"
	"time"

	vo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
	"github.com/turnex-app/turnex/internal/shared/id"
)

// freePlanPeriodYears is the "forever" sentinel window applied to free-tier
// subscriptions. A free subscription never actually expires; the period end
// exists only so currentPeriodEnd stays the single access boundary.
const freePlanPeriodYears = 100

// Subscription is the billing aggregate root. Exactly one exists per tenant;
// cancellation is a state, never a row removal.
type Subscription struct {
	subID              uint
	sid                string
	tenantID           uint
	planID             uint
	status             vo.SubscriptionStatus
	billingPeriod      vo.BillingPeriod
	trialStartAt       *time.Time
	trialEndAt         *time.Time
	currentPeriodStart time.Time
	currentPeriodEnd   time.Time
	cancelledAt        *time.Time
	cancelReason       *string
	gatewaySubID       *string
	version            int
	createdAt          time.Time
	updatedAt          time.Time
}

// NewTrialSubscription creates a TRIALING subscription with the trial window
// defined by the plan. The current period mirrors the trial window so the
// access boundary is always currentPeriodEnd.
func NewTrialSubscription(tenantID uint, plan *Plan, now time.Time) (*Subscription, error) {
	if tenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if plan == nil {
		return nil, fmt.Errorf("plan is required")
	}
	if !plan.HasTrial() {
		return nil, fmt.Errorf("plan %s has no trial period", plan.Slug())
	}

	sid, err := id.NewSubscriptionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscription SID: %w", err)
	}

	trialEnd := now.AddDate(0, 0, plan.TrialDays())
	return &Subscription{
		sid:                sid,
		tenantID:           tenantID,
		planID:             plan.ID(),
		status:             vo.StatusTrialing,
		billingPeriod:      vo.BillingPeriodMonthly,
		trialStartAt:       &now,
		trialEndAt:         &trialEnd,
		currentPeriodStart: now,
		currentPeriodEnd:   trialEnd,
		version:            1,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// NewDirectSubscription creates an ACTIVE subscription without a trial.
// Free plans receive the sentinel period window.
func NewDirectSubscription(tenantID uint, plan *Plan, period vo.BillingPeriod, now time.Time) (*Subscription, error) {
	if tenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if plan == nil {
		return nil, fmt.Errorf("plan is required")
	}
	if !period.IsValid() {
		return nil, fmt.Errorf("invalid billing period: %s", period)
	}

	sid, err := id.NewSubscriptionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscription SID: %w", err)
	}

	periodEnd := period.NextPeriodEnd(now)
	if plan.IsFree() {
		periodEnd = now.AddDate(freePlanPeriodYears, 0, 0)
	}

	return &Subscription{
		sid:                sid,
		tenantID:           tenantID,
		planID:             plan.ID(),
		status:             vo.StatusActive,
		billingPeriod:      period,
		currentPeriodStart: now,
		currentPeriodEnd:   periodEnd,
		version:            1,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// SubscriptionReconstructParams carries persisted state for rebuilding a Subscription.
type SubscriptionReconstructParams struct {
	ID                 uint
	SID                string
	TenantID           uint
	PlanID             uint
	Status             vo.SubscriptionStatus
	BillingPeriod      vo.BillingPeriod
	TrialStartAt       *time.Time
	TrialEndAt         *time.Time
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelledAt        *time.Time
	CancelReason       *string
	GatewaySubID       *string
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ReconstructSubscription rebuilds a Subscription from persistence.
func ReconstructSubscription(p SubscriptionReconstructParams) (*Subscription, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if p.TenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if p.PlanID == 0 {
		return nil, fmt.Errorf("plan ID is required")
	}
	if !vo.ValidStatuses[p.Status] {
		return nil, fmt.Errorf("invalid subscription status: %s", p.Status)
	}
	if !p.BillingPeriod.IsValid() {
		return nil, fmt.Errorf("invalid billing period: %s", p.BillingPeriod)
	}

	return &Subscription{
		subID:              p.ID,
		sid:                p.SID,
		tenantID:           p.TenantID,
		planID:             p.PlanID,
		status:             p.Status,
		billingPeriod:      p.BillingPeriod,
		trialStartAt:       p.TrialStartAt,
		trialEndAt:         p.TrialEndAt,
		currentPeriodStart: p.CurrentPeriodStart,
		currentPeriodEnd:   p.CurrentPeriodEnd,
		cancelledAt:        p.CancelledAt,
		cancelReason:       p.CancelReason,
		gatewaySubID:       p.GatewaySubID,
		version:            p.Version,
		createdAt:          p.CreatedAt,
		updatedAt:          p.UpdatedAt,
	}, nil
}

func (s *Subscription) ID() uint                         { return s.subID }
func (s *Subscription) SID() string                      { return s.sid }
func (s *Subscription) TenantID() uint                   { return s.tenantID }
func (s *Subscription) PlanID() uint                     { return s.planID }
func (s *Subscription) Status() vo.SubscriptionStatus    { return s.status }
func (s *Subscription) BillingPeriod() vo.BillingPeriod  { return s.billingPeriod }
func (s *Subscription) TrialStartAt() *time.Time         { return s.trialStartAt }
func (s *Subscription) TrialEndAt() *time.Time           { return s.trialEndAt }
func (s *Subscription) CurrentPeriodStart() time.Time    { return s.currentPeriodStart }
func (s *Subscription) CurrentPeriodEnd() time.Time      { return s.currentPeriodEnd }
func (s *Subscription) CancelledAt() *time.Time          { return s.cancelledAt }
func (s *Subscription) CancelReason() *string            { return s.cancelReason }
func (s *Subscription) GatewaySubscriptionID() *string   { return s.gatewaySubID }
func (s *Subscription) Version() int                     { return s.version }
func (s *Subscription) CreatedAt() time.Time             { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time             { return s.updatedAt }

// SetID sets the subscription ID (only for persistence layer use).
func (s *Subscription) SetID(subID uint) error {
	if s.subID != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if subID == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.subID = subID
	return nil
}

// IsTrialExpired reports whether the trial window has lapsed without payment.
func (s *Subscription) IsTrialExpired(now time.Time) bool {
	return s.status == vo.StatusTrialing && s.trialEndAt != nil && now.After(*s.trialEndAt)
}

// TrialDaysRemaining returns whole days of trial left, rounding up.
// Returns 0 when not trialing or the trial already lapsed.
func (s *Subscription) TrialDaysRemaining(now time.Time) int {
	if s.status != vo.StatusTrialing || s.trialEndAt == nil {
		return 0
	}
	remaining := s.trialEndAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// HasAccess reports whether the tenant still has access to plan features.
// currentPeriodEnd is the authoritative boundary regardless of status:
// a cancelled subscription keeps access until its paid period runs out.
func (s *Subscription) HasAccess(now time.Time) bool {
	return now.Before(s.currentPeriodEnd)
}

// DowngradeToFree performs the lazy trial expiry transition: the subscription
// moves to ACTIVE on the free plan with trial fields cleared and the sentinel
// period window. Only valid for an expired trial.
func (s *Subscription) DowngradeToFree(freePlan *Plan, now time.Time) error {
	if freePlan == nil {
		return fmt.Errorf("free plan is required")
	}
	if !freePlan.IsFree() {
		return fmt.Errorf("plan %s is not a free plan", freePlan.Slug())
	}
	if !s.IsTrialExpired(now) {
		return fmt.Errorf("%w: downgrade requires an expired trial (status %s)", ErrInvalidTransition, s.status)
	}

	s.status = vo.StatusActive
	s.planID = freePlan.ID()
	s.trialStartAt = nil
	s.trialEndAt = nil
	s.currentPeriodStart = now
	s.currentPeriodEnd = now.AddDate(freePlanPeriodYears, 0, 0)
	s.updatedAt = now
	s.version++

	return nil
}

// ApplyPayment records a successful payment: the subscription becomes ACTIVE
// on the given plan and the period window is extended by one billing cycle
// from now. Valid from TRIALING or ACTIVE.
func (s *Subscription) ApplyPayment(plan *Plan, period vo.BillingPeriod, now time.Time) error {
	if plan == nil {
		return fmt.Errorf("plan is required")
	}
	if !period.IsValid() {
		return fmt.Errorf("invalid billing period: %s", period)
	}
	if !s.status.CanTransitionTo(vo.StatusActive) {
		return fmt.Errorf("%w: cannot apply payment in status %s", ErrInvalidTransition, s.status)
	}

	s.status = vo.StatusActive
	s.planID = plan.ID()
	s.billingPeriod = period
	s.currentPeriodStart = now
	s.currentPeriodEnd = period.NextPeriodEnd(now)
	s.updatedAt = now
	s.version++

	return nil
}

// Cancel marks the subscription cancelled with a reason. The period window is
// untouched: access remains valid until currentPeriodEnd.
func (s *Subscription) Cancel(reason string, now time.Time) error {
	if reason == "" {
		return fmt.Errorf("cancel reason is required")
	}
	if !s.status.CanTransitionTo(vo.StatusCancelled) {
		return fmt.Errorf("%w: cannot cancel in status %s", ErrInvalidTransition, s.status)
	}

	s.status = vo.StatusCancelled
	s.cancelledAt = &now
	s.cancelReason = &reason
	s.updatedAt = now
	s.version++

	return nil
}

// ChangeTrialPlan upgrades a trialing subscription to a new plan. If the new
// plan carries trial days the trial window restarts under it; otherwise the
// subscription activates immediately with a period window starting now.
func (s *Subscription) ChangeTrialPlan(newPlan *Plan, period vo.BillingPeriod, now time.Time) error {
	if newPlan == nil {
		return fmt.Errorf("plan is required")
	}
	if s.status != vo.StatusTrialing {
		return fmt.Errorf("%w: plan change from trial requires status trialing, got %s", ErrInvalidTransition, s.status)
	}
	if !period.IsValid() {
		return fmt.Errorf("invalid billing period: %s", period)
	}

	if newPlan.HasTrial() {
		trialEnd := now.AddDate(0, 0, newPlan.TrialDays())
		s.planID = newPlan.ID()
		s.trialStartAt = &now
		s.trialEndAt = &trialEnd
		s.currentPeriodStart = now
		s.currentPeriodEnd = trialEnd
	} else {
		s.status = vo.StatusActive
		s.planID = newPlan.ID()
		s.trialStartAt = nil
		s.trialEndAt = nil
		s.currentPeriodStart = now
		s.currentPeriodEnd = period.NextPeriodEnd(now)
	}

	s.billingPeriod = period
	s.updatedAt = now
	s.version++

	return nil
}

// MarkAsExpired transitions the subscription to EXPIRED once its period has
// fully lapsed. Terminal: no transition leaves EXPIRED.
func (s *Subscription) MarkAsExpired(now time.Time) error {
	if s.status == vo.StatusExpired {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusExpired) {
		return fmt.Errorf("%w: cannot expire in status %s", ErrInvalidTransition, s.status)
	}
	if now.Before(s.currentPeriodEnd) {
		return fmt.Errorf("%w: period has not ended yet", ErrInvalidTransition)
	}

	s.status = vo.StatusExpired
	s.updatedAt = now
	s.version++

	return nil
}

// SetGatewaySubscriptionID records the external gateway subscription id.
func (s *Subscription) SetGatewaySubscriptionID(gatewayID string) {
	if gatewayID == "" {
		return
	}
	s.gatewaySubID = &gatewayID
	s.updatedAt = time.Now().UTC()
	s.version++
}

// Validate performs domain-level validation.
func (s *Subscription) Validate() error {
	if s.tenantID == 0 {
		return fmt.Errorf("tenant ID is required")
	}
	if s.planID == 0 {
		return fmt.Errorf("plan ID is required")
	}
	if !vo.ValidStatuses[s.status] {
		return fmt.Errorf("invalid status: %s", s.status)
	}
	if s.currentPeriodEnd.Before(s.currentPeriodStart) {
		return fmt.Errorf("current period end must be after current period start")
	}
	if (s.trialStartAt == nil) != (s.trialEndAt == nil) {
		return fmt.Errorf("trial start and end must be set together")
	}
	return nil
}
