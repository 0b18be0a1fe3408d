package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/turnex-app/turnex/internal/application/payment/gateway"
	"github.com/turnex-app/turnex/internal/domain/payment"
	payvo "github.com/turnex-app/turnex/internal/domain/payment/valueobjects"
	"github.com/turnex-app/turnex/internal/shared/biztime"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

type HandleWebhookCommand struct {
	TenantID uint
	Type     string
	DataID   string
}

// HandleWebhookUseCase reconciles a gateway notification against the
// payment ledger. It never returns an error for business anomalies: the
// HTTP layer always acks so the gateway stops retrying, and anything odd
// is logged for reconciliation instead. At most one approval per
// correlation id ever reaches the subscription.
type HandleWebhookUseCase struct {
	paymentRepo payment.PaymentRepository
	vault       gateway.Vault
	client      gateway.Client
	activate    *ActivateSubscriptionUseCase
	logger      logger.Interface
}

func NewHandleWebhookUseCase(
	paymentRepo payment.PaymentRepository,
	vault gateway.Vault,
	client gateway.Client,
	activate *ActivateSubscriptionUseCase,
	logger logger.Interface,
) *HandleWebhookUseCase {
	return &HandleWebhookUseCase{
		paymentRepo: paymentRepo,
		vault:       vault,
		client:      client,
		activate:    activate,
		logger:      logger,
	}
}

func (uc *HandleWebhookUseCase) Execute(ctx context.Context, cmd HandleWebhookCommand) error {
	if cmd.Type != "payment" {
		uc.logger.Debugw("ignoring non-payment webhook", "type", cmd.Type, "tenant_id", cmd.TenantID)
		return nil
	}
	if cmd.DataID == "" {
		uc.logger.Warnw("payment webhook without data id", "tenant_id", cmd.TenantID)
		return nil
	}

	accessToken, err := uc.vault.AccessToken(ctx, cmd.TenantID)
	if err != nil {
		uc.logger.Errorw("cannot verify webhook, gateway credentials unavailable",
			"error", err, "tenant_id", cmd.TenantID, "gateway_payment_id", cmd.DataID)
		return nil
	}

	info, err := uc.client.GetPayment(ctx, accessToken, cmd.DataID)
	if err != nil {
		uc.logger.Errorw("failed to fetch payment from gateway",
			"error", err, "tenant_id", cmd.TenantID, "gateway_payment_id", cmd.DataID)
		return nil
	}

	if !payvo.IsSubscriptionReference(info.ExternalReference) {
		uc.logger.Debugw("webhook for foreign reference, skipping",
			"tenant_id", cmd.TenantID, "external_reference", info.ExternalReference)
		return nil
	}

	row, err := uc.paymentRepo.FindByCorrelationID(ctx, info.ExternalReference)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			uc.logger.Warnw("webhook for unknown correlation id",
				"tenant_id", cmd.TenantID, "correlation_id", info.ExternalReference)
			return nil
		}
		uc.logger.Errorw("failed to load payment row",
			"error", err, "correlation_id", info.ExternalReference)
		return nil
	}

	now := biztime.NowUTC()
	switch info.Status {
	case gateway.PaymentStatusApproved:
		uc.reconcileApproved(ctx, row, info, now)
	case gateway.PaymentStatusRejected:
		uc.reconcileRejected(ctx, row, info, now)
	case gateway.PaymentStatusCancelled:
		// the payer backed out; the row stays pending so a retry of the
		// same checkout can still settle it
		row.RecordGatewayPayload(info.Raw, fmt.Sprintf("gateway reported %s", info.Status), now)
		uc.persist(ctx, row, "cancelled payload recorded")
	default:
		uc.logger.Infow("webhook with non-terminal status, recorded only",
			"tenant_id", cmd.TenantID,
			"correlation_id", row.CorrelationID().String(),
			"gateway_status", info.Status,
		)
		row.RecordGatewayPayload(info.Raw, info.StatusDetail, now)
		uc.persist(ctx, row, "pending payload recorded")
	}

	return nil
}

func (uc *HandleWebhookUseCase) reconcileApproved(ctx context.Context, row *payment.Payment, info *gateway.PaymentInfo, now time.Time) {
	alreadyApproved := row.Status().IsApproved()

	if err := row.Approve(info.ID, info.Raw, now); err != nil {
		uc.logger.Errorw("failed to approve payment row",
			"error", err, "correlation_id", row.CorrelationID().String(), "gateway_payment_id", info.ID)
		return
	}
	if alreadyApproved {
		uc.logger.Infow("duplicate approval webhook ignored",
			"correlation_id", row.CorrelationID().String(), "gateway_payment_id", info.ID)
		return
	}

	if !uc.persist(ctx, row, "approval") {
		return
	}

	cmd := ActivateSubscriptionCommand{
		TenantID:      row.TenantID(),
		PlanID:        row.PlanID(),
		BillingPeriod: row.BillingPeriod(),
	}
	if err := uc.activate.Execute(ctx, cmd); err != nil {
		// the ledger row is settled; activation is retried by support
		// tooling off the approved-without-activation report
		uc.logger.Errorw("payment approved but activation failed",
			"error", err, "correlation_id", row.CorrelationID().String(), "tenant_id", row.TenantID())
	}
}

func (uc *HandleWebhookUseCase) reconcileRejected(ctx context.Context, row *payment.Payment, info *gateway.PaymentInfo, now time.Time) {
	if err := row.Reject(info.ID, info.StatusDetail, info.Raw, now); err != nil {
		uc.logger.Errorw("failed to reject payment row",
			"error", err, "correlation_id", row.CorrelationID().String())
		return
	}
	uc.persist(ctx, row, "rejection")
	uc.logger.Infow("payment rejected",
		"correlation_id", row.CorrelationID().String(),
		"gateway_payment_id", info.ID,
		"detail", info.StatusDetail,
	)
}

func (uc *HandleWebhookUseCase) persist(ctx context.Context, row *payment.Payment, what string) bool {
	if err := uc.paymentRepo.Update(ctx, row); err != nil {
		uc.logger.Errorw("failed to persist payment "+what,
			"error", err, "correlation_id", row.CorrelationID().String())
		return false
	}
	return true
}
