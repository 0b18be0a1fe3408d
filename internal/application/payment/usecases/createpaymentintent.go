package usecases

import (
	"context"
	"fmt"

	"github.com/turnex-app/turnex/internal/application/payment/gateway"
	"github.com/turnex-app/turnex/internal/domain/payment"
	payvo "github.com/turnex-app/turnex/internal/domain/payment/valueobjects"
	"github.com/turnex-app/turnex/internal/domain/subscription"
	subvo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
	"github.com/turnex-app/turnex/internal/shared/biztime"
	"github.com/turnex-app/turnex/internal/shared/errors"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

// CheckoutURLs are where the gateway sends the payer after checkout and
// where it posts webhooks.
type CheckoutURLs struct {
	NotificationURL string
	SuccessURL      string
	FailureURL      string
	PendingURL      string
}

type CreatePaymentIntentCommand struct {
	TenantID      uint
	PlanSlug      string
	BillingPeriod string
	PayerEmail    string
}

type CreatePaymentIntentResult struct {
	PaymentSID    string `json:"payment_sid"`
	CorrelationID string `json:"correlation_id"`
	CheckoutURL   string `json:"checkout_url"`
	PreferenceID  string `json:"preference_id"`
}

// CreatePaymentIntentUseCase opens a checkout for a plan purchase. The
// ledger row is written only after the gateway accepted the preference, so
// a gateway failure leaves no trace to reconcile.
type CreatePaymentIntentUseCase struct {
	paymentRepo payment.PaymentRepository
	planRepo    subscription.PlanRepository
	vault       gateway.Vault
	client      gateway.Client
	urls        CheckoutURLs
	logger      logger.Interface
}

func NewCreatePaymentIntentUseCase(
	paymentRepo payment.PaymentRepository,
	planRepo subscription.PlanRepository,
	vault gateway.Vault,
	client gateway.Client,
	urls CheckoutURLs,
	logger logger.Interface,
) *CreatePaymentIntentUseCase {
	return &CreatePaymentIntentUseCase{
		paymentRepo: paymentRepo,
		planRepo:    planRepo,
		vault:       vault,
		client:      client,
		urls:        urls,
		logger:      logger,
	}
}

func (uc *CreatePaymentIntentUseCase) Execute(ctx context.Context, cmd CreatePaymentIntentCommand) (*CreatePaymentIntentResult, error) {
	plan, err := uc.planRepo.FindBySlug(ctx, cmd.PlanSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", cmd.PlanSlug, err)
	}
	if plan.IsFree() {
		return nil, errors.NewValidationError("free plans are not purchased through checkout")
	}

	period := subvo.BillingPeriodMonthly
	if cmd.BillingPeriod != "" {
		period, err = subvo.ParseBillingPeriod(cmd.BillingPeriod)
		if err != nil {
			return nil, err
		}
	}

	accessToken, err := uc.vault.AccessToken(ctx, cmd.TenantID)
	if err != nil {
		uc.logger.Warnw("checkout blocked, gateway credentials unavailable",
			"error", err, "tenant_id", cmd.TenantID)
		return nil, errors.NewGatewayUnavailableError("payment gateway is not connected for this tenant")
	}

	now := biztime.NowUTC()
	correlationID, err := payvo.NewCorrelationID(cmd.TenantID, plan.Slug(), now)
	if err != nil {
		return nil, err
	}

	amount := payvo.NewMoney(int64(plan.Price(period)), plan.Currency())
	pref, err := uc.client.CreatePreference(ctx, accessToken, gateway.PreferenceRequest{
		Items: []gateway.PreferenceItem{{
			Title:        fmt.Sprintf("Turnex %s (%s)", plan.Name(), period),
			Quantity:     1,
			UnitPriceRaw: amount.AmountInCents(),
			CurrencyID:   amount.Currency(),
		}},
		PayerEmail:        cmd.PayerEmail,
		ExternalReference: correlationID.String(),
		Metadata: map[string]string{
			"correlation_id": correlationID.String(),
			"tenant_id":      fmt.Sprintf("%d", cmd.TenantID),
			"plan_slug":      plan.Slug(),
		},
		NotificationURL: uc.urls.NotificationURL,
		SuccessURL:      uc.urls.SuccessURL,
		FailureURL:      uc.urls.FailureURL,
		PendingURL:      uc.urls.PendingURL,
	})
	if err != nil {
		uc.logger.Errorw("failed to create checkout preference",
			"error", err, "tenant_id", cmd.TenantID, "plan_slug", plan.Slug())
		return nil, fmt.Errorf("failed to create checkout preference: %w", err)
	}

	intent, err := payment.NewPaymentIntent(cmd.TenantID, plan.ID(), correlationID, amount, period, now)
	if err != nil {
		return nil, err
	}
	intent.SetGatewayInfo(pref.ID, pref.CheckoutURL)

	if err := uc.paymentRepo.Create(ctx, intent); err != nil {
		uc.logger.Errorw("failed to persist payment intent",
			"error", err, "tenant_id", cmd.TenantID, "correlation_id", correlationID.String())
		return nil, fmt.Errorf("failed to persist payment intent: %w", err)
	}

	uc.logger.Infow("payment intent created",
		"tenant_id", cmd.TenantID,
		"payment_sid", intent.SID(),
		"correlation_id", correlationID.String(),
		"plan_slug", plan.Slug(),
		"amount", amount.String(),
	)

	return &CreatePaymentIntentResult{
		PaymentSID:    intent.SID(),
		CorrelationID: correlationID.String(),
		CheckoutURL:   pref.CheckoutURL,
		PreferenceID:  pref.ID,
	}, nil
}
