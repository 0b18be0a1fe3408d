package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnex-app/turnex/internal/application/payment/usecases"
	"github.com/turnex-app/turnex/internal/domain/gateway"
	"github.com/turnex-app/turnex/internal/interfaces/http/handlers/testutil"
)

type mockCreatePaymentIntentUC struct {
	result *usecases.CreatePaymentIntentResult
	err    error
	cmds   []usecases.CreatePaymentIntentCommand
}

func (m *mockCreatePaymentIntentUC) Execute(ctx context.Context, cmd usecases.CreatePaymentIntentCommand) (*usecases.CreatePaymentIntentResult, error) {
	m.cmds = append(m.cmds, cmd)
	return m.result, m.err
}

type mockHandleWebhookUC struct {
	err  error
	cmds []usecases.HandleWebhookCommand
}

func (m *mockHandleWebhookUC) Execute(ctx context.Context, cmd usecases.HandleWebhookCommand) error {
	m.cmds = append(m.cmds, cmd)
	return m.err
}

// =====================================================================
// TestBillingHandler_CreatePaymentIntent
// =====================================================================

func TestBillingHandler_CreatePaymentIntent_Success(t *testing.T) {
	mockUC := &mockCreatePaymentIntentUC{result: &usecases.CreatePaymentIntentResult{
		PaymentSID:    "pay_test123",
		CorrelationID: "sub_7_profesional_1700000000000000000",
		CheckoutURL:   "https://checkout.example/pref_1",
		PreferenceID:  "pref_1",
	}}
	handler := NewBillingHandler(mockUC, nil)

	reqBody := CreatePaymentIntentRequest{PlanSlug: "profesional", BillingPeriod: "monthly", PayerEmail: "owner@studio.example"}
	c, w := testutil.NewTestContext(http.MethodPost, "/tenants/7/payments", reqBody)
	testutil.SetURLParam(c, "tenant_id", "7")

	handler.CreatePaymentIntent(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp testutil.APIResponse
	err := testutil.ParseResponse(w, &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	require.Len(t, mockUC.cmds, 1)
	assert.Equal(t, uint(7), mockUC.cmds[0].TenantID)
	assert.Equal(t, "owner@studio.example", mockUC.cmds[0].PayerEmail)
}

func TestBillingHandler_CreatePaymentIntent_InvalidPayerEmail(t *testing.T) {
	handler := NewBillingHandler(nil, nil)

	reqBody := CreatePaymentIntentRequest{PlanSlug: "profesional", BillingPeriod: "monthly", PayerEmail: "not-an-email"}
	c, w := testutil.NewTestContext(http.MethodPost, "/tenants/7/payments", reqBody)
	testutil.SetURLParam(c, "tenant_id", "7")

	handler.CreatePaymentIntent(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillingHandler_CreatePaymentIntent_InvalidBillingPeriod(t *testing.T) {
	handler := NewBillingHandler(nil, nil)

	reqBody := CreatePaymentIntentRequest{PlanSlug: "profesional", BillingPeriod: "weekly"}
	c, w := testutil.NewTestContext(http.MethodPost, "/tenants/7/payments", reqBody)
	testutil.SetURLParam(c, "tenant_id", "7")

	handler.CreatePaymentIntent(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillingHandler_CreatePaymentIntent_GatewayNotConnected(t *testing.T) {
	mockUC := &mockCreatePaymentIntentUC{err: gateway.ErrCredentialNotFound}
	handler := NewBillingHandler(mockUC, nil)

	reqBody := CreatePaymentIntentRequest{PlanSlug: "profesional", BillingPeriod: "monthly"}
	c, w := testutil.NewTestContext(http.MethodPost, "/tenants/7/payments", reqBody)
	testutil.SetURLParam(c, "tenant_id", "7")

	handler.CreatePaymentIntent(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// =====================================================================
// TestBillingHandler_Webhook
// =====================================================================

func TestBillingHandler_Webhook_QueryParams(t *testing.T) {
	mockUC := &mockHandleWebhookUC{}
	handler := NewBillingHandler(nil, mockUC)

	c, w := testutil.NewTestContext(http.MethodPost, "/webhooks/mercadopago", nil)
	testutil.SetQueryParams(c, map[string]string{
		"tenant_id": "7",
		"type":      "payment",
		"data.id":   "mp_12345",
	})

	handler.Webhook(c)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mockUC.cmds, 1)
	assert.Equal(t, uint(7), mockUC.cmds[0].TenantID)
	assert.Equal(t, "payment", mockUC.cmds[0].Type)
	assert.Equal(t, "mp_12345", mockUC.cmds[0].DataID)
}

func TestBillingHandler_Webhook_JSONBody(t *testing.T) {
	mockUC := &mockHandleWebhookUC{}
	handler := NewBillingHandler(nil, mockUC)

	body := map[string]interface{}{
		"type": "payment",
		"data": map[string]string{"id": "mp_67890"},
	}
	c, w := testutil.NewTestContext(http.MethodPost, "/webhooks/mercadopago", body)
	testutil.SetQueryParams(c, map[string]string{"tenant_id": "7"})

	handler.Webhook(c)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mockUC.cmds, 1)
	assert.Equal(t, "mp_67890", mockUC.cmds[0].DataID)
}

func TestBillingHandler_Webhook_MissingTenantID(t *testing.T) {
	mockUC := &mockHandleWebhookUC{}
	handler := NewBillingHandler(nil, mockUC)

	c, w := testutil.NewTestContext(http.MethodPost, "/webhooks/mercadopago", nil)
	testutil.SetQueryParams(c, map[string]string{
		"type":    "payment",
		"data.id": "mp_12345",
	})

	handler.Webhook(c)

	// Acked without processing: retrying cannot make the notification usable.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, mockUC.cmds)
}

func TestBillingHandler_Webhook_ProcessingErrorStillAcks(t *testing.T) {
	mockUC := &mockHandleWebhookUC{err: assert.AnError}
	handler := NewBillingHandler(nil, mockUC)

	c, w := testutil.NewTestContext(http.MethodPost, "/webhooks/mercadopago", nil)
	testutil.SetQueryParams(c, map[string]string{
		"tenant_id": "7",
		"type":      "payment",
		"data.id":   "mp_12345",
	})

	handler.Webhook(c)

	assert.Equal(t, http.StatusOK, w.Code)
}
