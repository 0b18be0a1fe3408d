package subscription

import (
	"fmt"
	"time"

	vo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
	"github.com/turnex-app/turnex/internal/shared/id"
)

type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusInactive PlanStatus = "inactive"
)

// Plan is an immutable catalog entry. It is created by the seed/admin
// process and read-only to the billing core.
type Plan struct {
	planID       uint
	sid          string
	name         string
	slug         string
	priceMonthly uint64
	priceYearly  uint64
	currency     string
	trialDays    int
	features     []string
	limits       vo.ResourceLimits
	status       PlanStatus
	sortOrder    int
	createdAt    time.Time
	updatedAt    time.Time
}

// NewPlan creates a new catalog plan. Prices are in minor units (cents).
func NewPlan(name, slug, currency string, priceMonthly, priceYearly uint64,
	trialDays int, features []string, limits vo.ResourceLimits) (*Plan, error) {

	if name == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if slug == "" {
		return nil, fmt.Errorf("plan slug is required")
	}
	if currency == "" {
		return nil, fmt.Errorf("plan currency is required")
	}
	if trialDays < 0 {
		return nil, fmt.Errorf("trial days cannot be negative")
	}
	if features == nil {
		features = []string{}
	}

	sid, err := id.NewPlanID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan SID: %w", err)
	}

	now := time.Now().UTC()
	return &Plan{
		sid:          sid,
		name:         name,
		slug:         slug,
		priceMonthly: priceMonthly,
		priceYearly:  priceYearly,
		currency:     currency,
		trialDays:    trialDays,
		features:     features,
		limits:       limits,
		status:       PlanStatusActive,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// PlanReconstructParams carries persisted state for rebuilding a Plan.
type PlanReconstructParams struct {
	ID           uint
	SID          string
	Name         string
	Slug         string
	PriceMonthly uint64
	PriceYearly  uint64
	Currency     string
	TrialDays    int
	Features     []string
	Limits       vo.ResourceLimits
	Status       PlanStatus
	SortOrder    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ReconstructPlan rebuilds a Plan from persistence.
func ReconstructPlan(p PlanReconstructParams) (*Plan, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("plan ID cannot be zero")
	}
	if p.Slug == "" {
		return nil, fmt.Errorf("plan slug is required")
	}
	if p.Status != PlanStatusActive && p.Status != PlanStatusInactive {
		return nil, fmt.Errorf("invalid plan status: %s", p.Status)
	}
	if p.Features == nil {
		p.Features = []string{}
	}

	return &Plan{
		planID:       p.ID,
		sid:          p.SID,
		name:         p.Name,
		slug:         p.Slug,
		priceMonthly: p.PriceMonthly,
		priceYearly:  p.PriceYearly,
		currency:     p.Currency,
		trialDays:    p.TrialDays,
		features:     p.Features,
		limits:       p.Limits,
		status:       p.Status,
		sortOrder:    p.SortOrder,
		createdAt:    p.CreatedAt,
		updatedAt:    p.UpdatedAt,
	}, nil
}

func (p *Plan) ID() uint                  { return p.planID }
func (p *Plan) SID() string               { return p.sid }
func (p *Plan) Name() string              { return p.name }
func (p *Plan) Slug() string              { return p.slug }
func (p *Plan) PriceMonthly() uint64      { return p.priceMonthly }
func (p *Plan) PriceYearly() uint64       { return p.priceYearly }
func (p *Plan) Currency() string          { return p.currency }
func (p *Plan) TrialDays() int            { return p.trialDays }
func (p *Plan) Status() PlanStatus        { return p.status }
func (p *Plan) SortOrder() int            { return p.sortOrder }
func (p *Plan) Limits() vo.ResourceLimits { return p.limits }
func (p *Plan) CreatedAt() time.Time      { return p.createdAt }
func (p *Plan) UpdatedAt() time.Time      { return p.updatedAt }

// Features returns a copy of the ordered capability tags.
func (p *Plan) Features() []string {
	out := make([]string, len(p.features))
	copy(out, p.features)
	return out
}

// HasFeature reports whether the plan carries the given capability tag.
func (p *Plan) HasFeature(feature string) bool {
	for _, f := range p.features {
		if f == feature {
			return true
		}
	}
	return false
}

// IsFree reports whether the plan costs nothing on every billing period.
func (p *Plan) IsFree() bool {
	return p.priceMonthly == 0 && p.priceYearly == 0
}

// HasTrial reports whether new subscriptions on this plan start with a trial.
func (p *Plan) HasTrial() bool {
	return p.trialDays > 0
}

// Price returns the price in minor units for the given billing period.
func (p *Plan) Price(period vo.BillingPeriod) uint64 {
	if period == vo.BillingPeriodYearly {
		return p.priceYearly
	}
	return p.priceMonthly
}

// SetID sets the plan ID (only for persistence layer use).
func (p *Plan) SetID(planID uint) error {
	if p.planID != 0 {
		return fmt.Errorf("plan ID is already set")
	}
	if planID == 0 {
		return fmt.Errorf("plan ID cannot be zero")
	}
	p.planID = planID
	return nil
}
