package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	payvo "github.com/turnex-app/turnex/internal/domain/payment/valueobjects"
	apperrors "github.com/turnex-app/turnex/internal/shared/errors"
)

func newIntentFixture(t *testing.T) (*CreatePaymentIntentUseCase, *fakePaymentRepo, *fakeClient, *fakeVault) {
	t.Helper()
	payRepo := newFakePaymentRepo()
	planRepo := newFakePlanRepo(t)
	client := newFakeClient()
	vault := &fakeVault{tokens: map[uint]string{10: "access-token"}}
	uc := NewCreatePaymentIntentUseCase(payRepo, planRepo, vault, client, CheckoutURLs{
		NotificationURL: "https://api.example/webhooks/mercadopago/10",
		SuccessURL:      "https://app.example/billing/success",
		FailureURL:      "https://app.example/billing/failure",
		PendingURL:      "https://app.example/billing/pending",
	}, testLogger())
	return uc, payRepo, client, vault
}

func TestCreatePaymentIntent(t *testing.T) {
	uc, payRepo, client, _ := newIntentFixture(t)

	result, err := uc.Execute(context.Background(), CreatePaymentIntentCommand{
		TenantID: 10, PlanSlug: "profesional", BillingPeriod: "monthly",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/pref-1", result.CheckoutURL)
	assert.NotEmpty(t, result.PaymentSID)

	// the correlation id follows the convention and reached the gateway
	parsed, err := payvo.ParseCorrelationID(result.CorrelationID)
	require.NoError(t, err)
	assert.Equal(t, uint(10), parsed.TenantID())
	assert.Equal(t, "profesional", parsed.PlanSlug())
	require.Len(t, client.createdReqs, 1)
	assert.Equal(t, result.CorrelationID, client.createdReqs[0].ExternalReference)
	assert.Equal(t, int64(1500000), client.createdReqs[0].Items[0].UnitPriceRaw)

	row, err := payRepo.FindByCorrelationID(context.Background(), result.CorrelationID)
	require.NoError(t, err)
	assert.Equal(t, payvo.PaymentStatusPending, row.Status())
	assert.Equal(t, "pref-1", *row.PreferenceID())
}

func TestCreatePaymentIntent_PayerAndMetadataForwarded(t *testing.T) {
	uc, _, client, _ := newIntentFixture(t)

	result, err := uc.Execute(context.Background(), CreatePaymentIntentCommand{
		TenantID: 10, PlanSlug: "profesional", BillingPeriod: "yearly", PayerEmail: "owner@studio.example",
	})

	require.NoError(t, err)
	require.Len(t, client.createdReqs, 1)
	req := client.createdReqs[0]
	assert.Equal(t, "owner@studio.example", req.PayerEmail)
	// metadata duplicates the correlation id so the payment stays
	// attributable even if external_reference gets clobbered
	assert.Equal(t, result.CorrelationID, req.Metadata["correlation_id"])
	assert.Equal(t, "10", req.Metadata["tenant_id"])
	assert.Equal(t, "profesional", req.Metadata["plan_slug"])
}

func TestCreatePaymentIntent_NotConnected(t *testing.T) {
	uc, payRepo, _, vault := newIntentFixture(t)
	vault.tokens = nil

	_, err := uc.Execute(context.Background(), CreatePaymentIntentCommand{TenantID: 10, PlanSlug: "profesional"})

	require.Error(t, err)
	assert.True(t, apperrors.IsGatewayUnavailableError(err))
	rows, _ := payRepo.ListByTenantID(context.Background(), 10, 10, 0)
	assert.Empty(t, rows, "no ledger row without a gateway checkout")
}

func TestCreatePaymentIntent_GatewayFailureLeavesNoRow(t *testing.T) {
	uc, payRepo, client, _ := newIntentFixture(t)
	client.prefErr = errors.New("gateway 500")

	_, err := uc.Execute(context.Background(), CreatePaymentIntentCommand{TenantID: 10, PlanSlug: "profesional"})

	require.Error(t, err)
	rows, _ := payRepo.ListByTenantID(context.Background(), 10, 10, 0)
	assert.Empty(t, rows)
}

func TestCreatePaymentIntent_FreePlanRejected(t *testing.T) {
	uc, _, _, _ := newIntentFixture(t)

	_, err := uc.Execute(context.Background(), CreatePaymentIntentCommand{TenantID: 10, PlanSlug: "gratis"})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}
