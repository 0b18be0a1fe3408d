package payment

import (
	"fmt"
	"time"

	vo "github.com/turnex-app/turnex/internal/domain/payment/valueobjects"
	subvo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
	"github.com/turnex-app/turnex/internal/shared/id"
)

// Payment is one row of the reconciliation ledger. Rows are append-mostly:
// a row is created when checkout succeeds at the gateway and only its status,
// gateway payment id and raw payload change afterwards. At most one row per
// correlation id ever reaches approved.
type Payment struct {
	payID         uint
	sid           string
	tenantID      uint
	planID        uint
	correlationID vo.CorrelationID
	amount        vo.Money
	billingPeriod subvo.BillingPeriod
	status        vo.PaymentStatus
	statusDetail  *string

	preferenceID     *string
	checkoutURL      *string
	gatewayPaymentID *string
	rawPayload       map[string]any

	approvedAt *time.Time

	version   int
	createdAt time.Time
	updatedAt time.Time
}

// NewPaymentIntent creates a pending ledger row for a checkout attempt.
// Callers persist it only after the gateway accepted the preference.
func NewPaymentIntent(tenantID, planID uint, correlationID vo.CorrelationID, amount vo.Money, period subvo.BillingPeriod, now time.Time) (*Payment, error) {
	if tenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if planID == 0 {
		return nil, fmt.Errorf("plan ID is required")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	if !period.IsValid() {
		return nil, fmt.Errorf("invalid billing period: %s", period)
	}

	sid, err := id.NewPaymentID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate payment SID: %w", err)
	}

	return &Payment{
		sid:           sid,
		tenantID:      tenantID,
		planID:        planID,
		correlationID: correlationID,
		amount:        amount,
		billingPeriod: period,
		status:        vo.PaymentStatusPending,
		rawPayload:    make(map[string]any),
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// SetGatewayInfo records the checkout preference returned by the gateway.
func (p *Payment) SetGatewayInfo(preferenceID, checkoutURL string) {
	p.preferenceID = &preferenceID
	p.checkoutURL = &checkoutURL
	p.updatedAt = time.Now().UTC()
}

// Approve settles the row. Approving an already approved row with the same
// gateway payment id is a no-op so webhook retries stay idempotent; a
// different gateway payment id on an approved row is a conflict.
func (p *Payment) Approve(gatewayPaymentID string, raw map[string]any, now time.Time) error {
	if gatewayPaymentID == "" {
		return fmt.Errorf("gateway payment ID is required")
	}
	if p.status == vo.PaymentStatusApproved {
		if p.gatewayPaymentID != nil && *p.gatewayPaymentID == gatewayPaymentID {
			return nil
		}
		return fmt.Errorf("%w: payment %s already approved with gateway payment %s",
			ErrAlreadyApproved, p.sid, derefOr(p.gatewayPaymentID, "?"))
	}
	if p.status != vo.PaymentStatusPending {
		return fmt.Errorf("cannot approve payment with status %s", p.status)
	}

	p.status = vo.PaymentStatusApproved
	p.gatewayPaymentID = &gatewayPaymentID
	p.approvedAt = &now
	p.recordPayload(raw)
	p.updatedAt = now
	p.version++

	return nil
}

// Reject settles the row as rejected. Final states are left untouched.
func (p *Payment) Reject(gatewayPaymentID, detail string, raw map[string]any, now time.Time) error {
	if p.status == vo.PaymentStatusRejected {
		return nil
	}
	if p.status.IsFinal() {
		return fmt.Errorf("cannot reject payment with final status %s", p.status)
	}

	p.status = vo.PaymentStatusRejected
	if gatewayPaymentID != "" {
		p.gatewayPaymentID = &gatewayPaymentID
	}
	if detail != "" {
		p.statusDetail = &detail
	}
	p.recordPayload(raw)
	p.updatedAt = now
	p.version++

	return nil
}

// MarkAsExpired closes an abandoned pending row. Settled rows are left alone.
func (p *Payment) MarkAsExpired(now time.Time) error {
	if p.status.IsFinal() {
		return nil
	}

	p.status = vo.PaymentStatusExpired
	p.updatedAt = now
	p.version++

	return nil
}

// RecordGatewayPayload attaches the latest raw gateway payload without
// changing status. Used when a webhook reports a state the ledger keeps
// pending, such as a user-cancelled checkout.
func (p *Payment) RecordGatewayPayload(raw map[string]any, detail string, now time.Time) {
	p.recordPayload(raw)
	if detail != "" {
		p.statusDetail = &detail
	}
	p.updatedAt = now
}

func (p *Payment) recordPayload(raw map[string]any) {
	if raw == nil {
		return
	}
	p.rawPayload = raw
}

func (p *Payment) ID() uint                          { return p.payID }
func (p *Payment) SID() string                       { return p.sid }
func (p *Payment) TenantID() uint                    { return p.tenantID }
func (p *Payment) PlanID() uint                      { return p.planID }
func (p *Payment) CorrelationID() vo.CorrelationID   { return p.correlationID }
func (p *Payment) Amount() vo.Money                  { return p.amount }
func (p *Payment) BillingPeriod() subvo.BillingPeriod { return p.billingPeriod }
func (p *Payment) Status() vo.PaymentStatus          { return p.status }
func (p *Payment) StatusDetail() *string             { return p.statusDetail }
func (p *Payment) PreferenceID() *string             { return p.preferenceID }
func (p *Payment) CheckoutURL() *string              { return p.checkoutURL }
func (p *Payment) GatewayPaymentID() *string         { return p.gatewayPaymentID }
func (p *Payment) RawPayload() map[string]any        { return p.rawPayload }
func (p *Payment) ApprovedAt() *time.Time            { return p.approvedAt }
func (p *Payment) Version() int                      { return p.version }
func (p *Payment) CreatedAt() time.Time              { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time              { return p.updatedAt }

// SetID sets the payment ID after persistence.
func (p *Payment) SetID(payID uint) {
	p.payID = payID
}

// PaymentReconstructParams carries persisted state for rebuilding a Payment.
type PaymentReconstructParams struct {
	ID               uint
	SID              string
	TenantID         uint
	PlanID           uint
	CorrelationID    vo.CorrelationID
	Amount           vo.Money
	BillingPeriod    subvo.BillingPeriod
	Status           vo.PaymentStatus
	StatusDetail     *string
	PreferenceID     *string
	CheckoutURL      *string
	GatewayPaymentID *string
	RawPayload       map[string]any
	ApprovedAt       *time.Time
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ReconstructPayment rebuilds a Payment from persistence.
func ReconstructPayment(p PaymentReconstructParams) (*Payment, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("payment ID cannot be zero")
	}
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", p.Status)
	}
	if p.RawPayload == nil {
		p.RawPayload = make(map[string]any)
	}

	return &Payment{
		payID:            p.ID,
		sid:              p.SID,
		tenantID:         p.TenantID,
		planID:           p.PlanID,
		correlationID:    p.CorrelationID,
		amount:           p.Amount,
		billingPeriod:    p.BillingPeriod,
		status:           p.Status,
		statusDetail:     p.StatusDetail,
		preferenceID:     p.PreferenceID,
		checkoutURL:      p.CheckoutURL,
		gatewayPaymentID: p.GatewayPaymentID,
		rawPayload:       p.RawPayload,
		approvedAt:       p.ApprovedAt,
		version:          p.Version,
		createdAt:        p.CreatedAt,
		updatedAt:        p.UpdatedAt,
	}, nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
