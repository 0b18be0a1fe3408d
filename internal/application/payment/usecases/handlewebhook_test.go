package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnex-app/turnex/internal/application/payment/gateway"
	"github.com/turnex-app/turnex/internal/domain/payment"
	payvo "github.com/turnex-app/turnex/internal/domain/payment/valueobjects"
	subvo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
)

type webhookFixture struct {
	uc       *HandleWebhookUseCase
	payRepo  *fakePaymentRepo
	subRepo  *fakeSubscriptionRepo
	client   *fakeClient
	vault    *fakeVault
	intent   *payment.Payment
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	payRepo := newFakePaymentRepo()
	subRepo := newFakeSubscriptionRepo()
	planRepo := newFakePlanRepo(t)
	client := newFakeClient()
	vault := &fakeVault{tokens: map[uint]string{10: "access-token"}}
	pub := &fakePublisher{}

	activate := NewActivateSubscriptionUseCase(subRepo, planRepo, pub, testLogger())
	uc := NewHandleWebhookUseCase(payRepo, vault, client, activate, testLogger())

	now := time.Now().UTC()
	cid, err := payvo.NewCorrelationID(10, "profesional", now)
	require.NoError(t, err)
	intent, err := payment.NewPaymentIntent(10, 2, cid, payvo.NewMoney(1500000, "ARS"), subvo.BillingPeriodMonthly, now)
	require.NoError(t, err)
	require.NoError(t, payRepo.Create(context.Background(), intent))

	return &webhookFixture{uc: uc, payRepo: payRepo, subRepo: subRepo, client: client, vault: vault, intent: intent}
}

func (f *webhookFixture) stubGatewayPayment(status, detail string) {
	f.client.payments["mp-555"] = &gateway.PaymentInfo{
		ID:                "mp-555",
		Status:            status,
		StatusDetail:      detail,
		ExternalReference: f.intent.CorrelationID().String(),
		AmountInCents:     1500000,
		CurrencyID:        "ARS",
		Raw:               map[string]any{"id": "mp-555", "status": status},
	}
}

func TestHandleWebhook_ApprovedActivatesSubscription(t *testing.T) {
	f := newWebhookFixture(t)
	f.stubGatewayPayment("approved", "accredited")

	err := f.uc.Execute(context.Background(), HandleWebhookCommand{TenantID: 10, Type: "payment", DataID: "mp-555"})

	require.NoError(t, err)

	row, err := f.payRepo.FindByCorrelationID(context.Background(), f.intent.CorrelationID().String())
	require.NoError(t, err)
	assert.Equal(t, payvo.PaymentStatusApproved, row.Status())
	assert.Equal(t, "mp-555", *row.GatewayPaymentID())

	sub, err := f.subRepo.FindByTenantID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, subvo.StatusActive, sub.Status())
	assert.Equal(t, uint(2), sub.PlanID())
}

func TestHandleWebhook_DuplicateApprovalExtendsOnce(t *testing.T) {
	f := newWebhookFixture(t)
	f.stubGatewayPayment("approved", "accredited")
	cmd := HandleWebhookCommand{TenantID: 10, Type: "payment", DataID: "mp-555"}

	require.NoError(t, f.uc.Execute(context.Background(), cmd))
	sub, err := f.subRepo.FindByTenantID(context.Background(), 10)
	require.NoError(t, err)
	periodEndAfterFirst := sub.CurrentPeriodEnd()
	versionAfterFirst := sub.Version()

	// gateway retries the same notification
	require.NoError(t, f.uc.Execute(context.Background(), cmd))
	require.NoError(t, f.uc.Execute(context.Background(), cmd))

	sub, err = f.subRepo.FindByTenantID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, periodEndAfterFirst, sub.CurrentPeriodEnd(), "period extended exactly once")
	assert.Equal(t, versionAfterFirst, sub.Version())

	row, err := f.payRepo.FindByCorrelationID(context.Background(), f.intent.CorrelationID().String())
	require.NoError(t, err)
	assert.Equal(t, payvo.PaymentStatusApproved, row.Status())
}

func TestHandleWebhook_Rejected(t *testing.T) {
	f := newWebhookFixture(t)
	f.stubGatewayPayment("rejected", "cc_rejected_insufficient_amount")

	err := f.uc.Execute(context.Background(), HandleWebhookCommand{TenantID: 10, Type: "payment", DataID: "mp-555"})

	require.NoError(t, err)
	row, err := f.payRepo.FindByCorrelationID(context.Background(), f.intent.CorrelationID().String())
	require.NoError(t, err)
	assert.Equal(t, payvo.PaymentStatusRejected, row.Status())

	_, err = f.subRepo.FindByTenantID(context.Background(), 10)
	assert.Error(t, err, "no subscription created for rejected payment")
}

func TestHandleWebhook_CancelledKeepsPending(t *testing.T) {
	f := newWebhookFixture(t)
	f.stubGatewayPayment("cancelled", "")

	err := f.uc.Execute(context.Background(), HandleWebhookCommand{TenantID: 10, Type: "payment", DataID: "mp-555"})

	require.NoError(t, err)
	row, err := f.payRepo.FindByCorrelationID(context.Background(), f.intent.CorrelationID().String())
	require.NoError(t, err)
	assert.Equal(t, payvo.PaymentStatusPending, row.Status())
	assert.NotEmpty(t, row.RawPayload(), "payload recorded for reconciliation")
}

func TestHandleWebhook_NonPaymentTypeIgnored(t *testing.T) {
	f := newWebhookFixture(t)

	err := f.uc.Execute(context.Background(), HandleWebhookCommand{TenantID: 10, Type: "merchant_order", DataID: "123"})

	require.NoError(t, err)
	row, _ := f.payRepo.FindByCorrelationID(context.Background(), f.intent.CorrelationID().String())
	assert.Equal(t, payvo.PaymentStatusPending, row.Status())
}

func TestHandleWebhook_ForeignReferenceSkipped(t *testing.T) {
	f := newWebhookFixture(t)
	f.client.payments["mp-777"] = &gateway.PaymentInfo{
		ID: "mp-777", Status: "approved", ExternalReference: "order-xyz",
	}

	err := f.uc.Execute(context.Background(), HandleWebhookCommand{TenantID: 10, Type: "payment", DataID: "mp-777"})

	require.NoError(t, err)
	_, subErr := f.subRepo.FindByTenantID(context.Background(), 10)
	assert.Error(t, subErr)
}

func TestHandleWebhook_VaultFailureStillAcks(t *testing.T) {
	f := newWebhookFixture(t)
	f.vault.err = gatewayNotConnectedErr
	f.stubGatewayPayment("approved", "accredited")

	err := f.uc.Execute(context.Background(), HandleWebhookCommand{TenantID: 10, Type: "payment", DataID: "mp-555"})

	require.NoError(t, err, "webhook is always acked")
	row, _ := f.payRepo.FindByCorrelationID(context.Background(), f.intent.CorrelationID().String())
	assert.Equal(t, payvo.PaymentStatusPending, row.Status(), "nothing reconciled without credentials")
}

func TestHandleWebhook_UnknownCorrelationAcked(t *testing.T) {
	f := newWebhookFixture(t)
	f.client.payments["mp-888"] = &gateway.PaymentInfo{
		ID: "mp-888", Status: "approved",
		ExternalReference: "sub_99_empresa_1730000000000000000",
	}

	err := f.uc.Execute(context.Background(), HandleWebhookCommand{TenantID: 10, Type: "payment", DataID: "mp-888"})

	require.NoError(t, err)
}
