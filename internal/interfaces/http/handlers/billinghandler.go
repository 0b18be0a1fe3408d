package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turnex-app/turnex/internal/application/payment/usecases"
	"github.com/turnex-app/turnex/internal/shared/errors"
	"github.com/turnex-app/turnex/internal/shared/logger"
	"github.com/turnex-app/turnex/internal/shared/utils"
)

type createPaymentIntentUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreatePaymentIntentCommand) (*usecases.CreatePaymentIntentResult, error)
}

type handleWebhookUseCase interface {
	Execute(ctx context.Context, cmd usecases.HandleWebhookCommand) error
}

type BillingHandler struct {
	createIntentUC createPaymentIntentUseCase
	webhookUC      handleWebhookUseCase
	logger         logger.Interface
}

func NewBillingHandler(
	createIntentUC createPaymentIntentUseCase,
	webhookUC handleWebhookUseCase,
) *BillingHandler {
	return &BillingHandler{
		createIntentUC: createIntentUC,
		webhookUC:      webhookUC,
		logger:         logger.NewLogger(),
	}
}

type CreatePaymentIntentRequest struct {
	PlanSlug      string `json:"plan_slug" validate:"required"`
	BillingPeriod string `json:"billing_period" validate:"required,oneof=monthly yearly"`
	PayerEmail    string `json:"payer_email" validate:"omitempty,email"`
}

// webhookBody is the JSON shape the gateway posts. Older notifications put
// the same fields in the query string instead.
type webhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (h *BillingHandler) CreatePaymentIntent(c *gin.Context) {
	tenantID, err := parseTenantID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create payment intent", "tenant_id", tenantID, "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid request body"))
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.CreatePaymentIntentCommand{
		TenantID:      tenantID,
		PlanSlug:      req.PlanSlug,
		BillingPeriod: req.BillingPeriod,
		PayerEmail:    req.PayerEmail,
	}

	result, err := h.createIntentUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, asAppError(err))
		return
	}

	utils.CreatedResponse(c, result, "Payment intent created successfully")
}

// Webhook receives gateway payment notifications. It always acks with 200:
// a non-2xx answer makes the gateway retry for days, and replays are already
// harmless on our side.
func (h *BillingHandler) Webhook(c *gin.Context) {
	tenantIDStr := c.Query("tenant_id")
	tenantID, err := strconv.ParseUint(tenantIDStr, 10, 32)
	if err != nil || tenantID == 0 {
		h.logger.Warnw("webhook without usable tenant id", "tenant_id", tenantIDStr)
		c.Status(http.StatusOK)
		return
	}

	eventType := c.Query("type")
	if eventType == "" {
		eventType = c.Query("topic")
	}
	dataID := c.Query("data.id")
	if dataID == "" {
		dataID = c.Query("id")
	}

	if eventType == "" || dataID == "" {
		var body webhookBody
		if err := c.ShouldBindJSON(&body); err == nil {
			if eventType == "" {
				eventType = body.Type
			}
			if dataID == "" {
				dataID = body.Data.ID
			}
		}
	}

	cmd := usecases.HandleWebhookCommand{
		TenantID: uint(tenantID),
		Type:     eventType,
		DataID:   dataID,
	}

	if err := h.webhookUC.Execute(c.Request.Context(), cmd); err != nil {
		h.logger.Errorw("webhook processing failed",
			"tenant_id", tenantID,
			"type", eventType,
			"data_id", dataID,
			"error", err,
		)
	}

	c.Status(http.StatusOK)
}
