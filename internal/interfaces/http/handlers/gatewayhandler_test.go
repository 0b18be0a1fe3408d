package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnex-app/turnex/internal/application/payment/gateway"
	domaingateway "github.com/turnex-app/turnex/internal/domain/gateway"
	"github.com/turnex-app/turnex/internal/interfaces/http/handlers/testutil"
)

type mockVault struct {
	status    *gateway.ConnectionStatus
	statusErr error
	publicKey string
	pkErr     error
	authURL   string
}

func (v *mockVault) BeginAuthorization(ctx context.Context, tenantID uint, sandbox bool) (string, error) {
	return v.authURL, nil
}

func (v *mockVault) CompleteAuthorization(ctx context.Context, nonce, code string) error { return nil }

func (v *mockVault) AccessToken(ctx context.Context, tenantID uint) (string, error) { return "", nil }

func (v *mockVault) PublicKey(ctx context.Context, tenantID uint) (string, error) {
	return v.publicKey, v.pkErr
}

func (v *mockVault) Status(ctx context.Context, tenantID uint) (*gateway.ConnectionStatus, error) {
	return v.status, v.statusErr
}

func (v *mockVault) Disconnect(ctx context.Context, tenantID uint) error { return nil }

// =====================================================================
// TestGatewayHandler_Status
// =====================================================================

func TestGatewayHandler_Status_ConnectedIncludesPublicKey(t *testing.T) {
	vault := &mockVault{
		status: &gateway.ConnectionStatus{
			Connected:         true,
			Provider:          "mercadopago",
			ExternalAccountID: "mp-user-42",
			TokenExpiresAt:    time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		},
		publicKey: "APP_USR-public-key",
	}
	handler := NewGatewayHandler(vault)

	c, w := testutil.NewTestContext(http.MethodGet, "/tenants/7/gateway/status", nil)
	testutil.SetURLParam(c, "tenant_id", "7")

	handler.Status(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var status GatewayStatusResponse
	require.NoError(t, json.Unmarshal(data, &status))
	assert.True(t, status.Connected)
	assert.Equal(t, "APP_USR-public-key", status.PublicKey)
	assert.Equal(t, "2026-09-01T12:00:00Z", status.TokenExpiresAt)
}

func TestGatewayHandler_Status_NotConnectedOmitsPublicKey(t *testing.T) {
	vault := &mockVault{
		status:    &gateway.ConnectionStatus{Connected: false, Provider: "mercadopago"},
		publicKey: "should-not-leak",
	}
	handler := NewGatewayHandler(vault)

	c, w := testutil.NewTestContext(http.MethodGet, "/tenants/7/gateway/status", nil)
	testutil.SetURLParam(c, "tenant_id", "7")

	handler.Status(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var status GatewayStatusResponse
	require.NoError(t, json.Unmarshal(data, &status))
	assert.False(t, status.Connected)
	assert.Empty(t, status.PublicKey)
}

func TestGatewayHandler_Status_PublicKeyFailureDegrades(t *testing.T) {
	vault := &mockVault{
		status: &gateway.ConnectionStatus{Connected: true, Provider: "mercadopago"},
		pkErr:  domaingateway.ErrCredentialDisconnected,
	}
	handler := NewGatewayHandler(vault)

	c, w := testutil.NewTestContext(http.MethodGet, "/tenants/7/gateway/status", nil)
	testutil.SetURLParam(c, "tenant_id", "7")

	handler.Status(c)

	// status still answers; the key is just absent
	assert.Equal(t, http.StatusOK, w.Code)
}

// =====================================================================
// TestGatewayHandler_Connect / Callback
// =====================================================================

func TestGatewayHandler_Connect_Success(t *testing.T) {
	vault := &mockVault{authURL: "https://auth.mercadopago.com/authorization?state=abc"}
	handler := NewGatewayHandler(vault)

	c, w := testutil.NewTestContext(http.MethodPost, "/tenants/7/gateway/connect", ConnectGatewayRequest{Sandbox: true})
	testutil.SetURLParam(c, "tenant_id", "7")

	handler.Connect(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGatewayHandler_Callback_MissingParams(t *testing.T) {
	handler := NewGatewayHandler(&mockVault{})

	c, w := testutil.NewTestContext(http.MethodGet, "/gateway/callback", nil)

	handler.Callback(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
