package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turnex-app/turnex/internal/application/payment/gateway"
	"github.com/turnex-app/turnex/internal/shared/errors"
	"github.com/turnex-app/turnex/internal/shared/logger"
	"github.com/turnex-app/turnex/internal/shared/utils"
)

// GatewayHandler exposes the tenant-facing gateway link lifecycle.
type GatewayHandler struct {
	vault  gateway.Vault
	logger logger.Interface
}

func NewGatewayHandler(vault gateway.Vault) *GatewayHandler {
	return &GatewayHandler{
		vault:  vault,
		logger: logger.NewLogger(),
	}
}

type ConnectGatewayRequest struct {
	Sandbox bool `json:"sandbox"`
}

type ConnectGatewayResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

type GatewayStatusResponse struct {
	Connected          bool   `json:"connected"`
	Provider           string `json:"provider"`
	ExternalAccountID  string `json:"external_account_id,omitempty"`
	Sandbox            bool   `json:"sandbox"`
	PublicKey          string `json:"public_key,omitempty"`
	TokenExpiresAt     string `json:"token_expires_at,omitempty"`
	DisconnectedReason string `json:"disconnected_reason,omitempty"`
}

func (h *GatewayHandler) Connect(c *gin.Context) {
	tenantID, err := parseTenantID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ConnectGatewayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for gateway connect", "tenant_id", tenantID, "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid request body"))
		return
	}

	url, err := h.vault.BeginAuthorization(c.Request.Context(), tenantID, req.Sandbox)
	if err != nil {
		utils.ErrorResponseWithError(c, asAppError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", ConnectGatewayResponse{AuthorizationURL: url})
}

// Callback completes the OAuth handshake. The gateway redirects the tenant
// here with the nonce in state and a one-time authorization code.
func (h *GatewayHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		utils.ErrorResponseWithError(c, errors.NewInvalidOAuthStateError("Missing state or code parameter"))
		return
	}

	if err := h.vault.CompleteAuthorization(c.Request.Context(), state, code); err != nil {
		utils.ErrorResponseWithError(c, asAppError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payment gateway connected successfully", nil)
}

func (h *GatewayHandler) Status(c *gin.Context) {
	tenantID, err := parseTenantID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	status, err := h.vault.Status(c.Request.Context(), tenantID)
	if err != nil {
		utils.ErrorResponseWithError(c, asAppError(err))
		return
	}

	resp := GatewayStatusResponse{
		Connected:          status.Connected,
		Provider:           status.Provider,
		ExternalAccountID:  status.ExternalAccountID,
		Sandbox:            status.Sandbox,
		DisconnectedReason: status.DisconnectedReason,
	}
	if !status.TokenExpiresAt.IsZero() {
		resp.TokenExpiresAt = status.TokenExpiresAt.UTC().Format(time.RFC3339)
	}
	if status.Connected {
		// the public key is safe to hand to the browser; the checkout
		// widget needs it to tokenize cards
		pk, err := h.vault.PublicKey(c.Request.Context(), tenantID)
		if err != nil {
			h.logger.Warnw("failed to load gateway public key", "tenant_id", tenantID, "error", err)
		} else {
			resp.PublicKey = pk
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func (h *GatewayHandler) Disconnect(c *gin.Context) {
	tenantID, err := parseTenantID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.vault.Disconnect(c.Request.Context(), tenantID); err != nil {
		utils.ErrorResponseWithError(c, asAppError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payment gateway disconnected", nil)
}
