package mercadopago

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnex-app/turnex/internal/application/payment/gateway"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(Config{AppID: "app-1", AppSecret: "secret", RedirectURL: "https://turnex.app/gateway/callback"})
	client.baseURL = server.URL
	return client, server
}

func TestAuthorizationURL(t *testing.T) {
	client := NewClient(Config{AppID: "app-1", AppSecret: "secret", RedirectURL: "https://turnex.app/gateway/callback"})

	url := client.AuthorizationURL("nonce-abc")

	assert.Contains(t, url, "auth.mercadopago.com/authorization")
	assert.Contains(t, url, "state=nonce-abc")
	assert.Contains(t, url, "client_id=app-1")
}

func TestCreatePreference(t *testing.T) {
	var captured preferenceRequestBody
	var gotAuth string
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/checkout/preferences", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(preferenceResponse{
			ID:               "pref-99",
			InitPoint:        "https://mp.example/checkout/pref-99",
			SandboxInitPoint: "https://sandbox.mp.example/checkout/pref-99",
		})
	}))
	defer server.Close()

	expires := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	pref, err := client.CreatePreference(context.Background(), "tenant-token", gateway.PreferenceRequest{
		Items: []gateway.PreferenceItem{{
			Title:        "Turnex profesional (monthly)",
			Quantity:     1,
			UnitPriceRaw: 1500000,
			CurrencyID:   "ARS",
		}},
		PayerEmail:        "owner@studio.example",
		ExternalReference: "sub_10_profesional_1234567890",
		Metadata: map[string]string{
			"correlation_id": "sub_10_profesional_1234567890",
			"tenant_id":      "10",
		},
		NotificationURL: "https://turnex.app/webhooks/mercadopago?tenant_id=10",
		SuccessURL:      "https://turnex.app/billing/success",
		ExpiresAt:       &expires,
	})

	require.NoError(t, err)
	assert.Equal(t, "pref-99", pref.ID)
	assert.Equal(t, "https://mp.example/checkout/pref-99", pref.CheckoutURL)
	assert.Equal(t, "Bearer tenant-token", gotAuth)
	assert.Equal(t, "sub_10_profesional_1234567890", captured.ExternalReference)
	require.NotNil(t, captured.Payer)
	assert.Equal(t, "owner@studio.example", captured.Payer.Email)
	assert.Equal(t, "sub_10_profesional_1234567890", captured.Metadata["correlation_id"])
	assert.Equal(t, "10", captured.Metadata["tenant_id"])
	require.Len(t, captured.Items, 1)
	assert.Equal(t, 15000.0, captured.Items[0].UnitPrice, "cents convert to currency units on the wire")
	assert.True(t, captured.Expires)
	assert.Equal(t, "2026-03-02T12:00:00Z", captured.ExpirationDateTo)
}

func TestCreatePreference_GatewayError(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid items","error":"bad_request"}`))
	}))
	defer server.Close()

	_, err := client.CreatePreference(context.Background(), "tenant-token", gateway.PreferenceRequest{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid items", apiErr.Message)
	assert.Equal(t, "bad_request", apiErr.ErrorCode)
}

func TestGetPayment(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payments/555", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 555,
			"status": "approved",
			"status_detail": "accredited",
			"external_reference": "sub_10_profesional_1234567890",
			"currency_id": "ARS",
			"transaction_amount": 15000.0
		}`))
	}))
	defer server.Close()

	info, err := client.GetPayment(context.Background(), "tenant-token", "555")

	require.NoError(t, err)
	assert.Equal(t, "555", info.ID)
	assert.Equal(t, gateway.PaymentStatusApproved, info.Status)
	assert.Equal(t, "accredited", info.StatusDetail)
	assert.Equal(t, "sub_10_profesional_1234567890", info.ExternalReference)
	assert.Equal(t, int64(1500000), info.AmountInCents)
	assert.Contains(t, info.Raw, "status_detail", "full payload kept for the ledger")
}

func TestGetPayment_NotFound(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Payment not found","error":"not_found"}`))
	}))
	defer server.Close()

	_, err := client.GetPayment(context.Background(), "tenant-token", "999")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
