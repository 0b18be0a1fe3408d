package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turnex-app/turnex/internal/application/subscription/usecases"
	"github.com/turnex-app/turnex/internal/shared/errors"
	"github.com/turnex-app/turnex/internal/shared/logger"
	"github.com/turnex-app/turnex/internal/shared/utils"
)

type createSubscriptionUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateSubscriptionCommand) (*usecases.CreateSubscriptionResult, error)
}

type createTrialSubscriptionUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateTrialSubscriptionCommand) (*usecases.CreateTrialSubscriptionResult, error)
}

type getSubscriptionUseCase interface {
	Execute(ctx context.Context, query usecases.GetSubscriptionQuery) (*usecases.SubscriptionDTO, error)
}

type cancelSubscriptionUseCase interface {
	Execute(ctx context.Context, cmd usecases.CancelSubscriptionCommand) (*usecases.CancelSubscriptionResult, error)
}

type changePlanUseCase interface {
	Execute(ctx context.Context, cmd usecases.ChangePlanCommand) (*usecases.ChangePlanResult, error)
}

type checkLimitUseCase interface {
	Execute(ctx context.Context, query usecases.CheckLimitQuery) (*usecases.CheckLimitResult, error)
}

type listPlansUseCase interface {
	Execute(ctx context.Context) ([]usecases.PlanDTO, error)
}

type SubscriptionHandler struct {
	createUC      createSubscriptionUseCase
	createTrialUC createTrialSubscriptionUseCase
	getUC         getSubscriptionUseCase
	cancelUC      cancelSubscriptionUseCase
	changePlanUC  changePlanUseCase
	checkLimitUC  checkLimitUseCase
	listPlansUC   listPlansUseCase
	logger        logger.Interface
}

func NewSubscriptionHandler(
	createUC createSubscriptionUseCase,
	createTrialUC createTrialSubscriptionUseCase,
	getUC getSubscriptionUseCase,
	cancelUC cancelSubscriptionUseCase,
	changePlanUC changePlanUseCase,
	checkLimitUC checkLimitUseCase,
	listPlansUC listPlansUseCase,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		createUC:      createUC,
		createTrialUC: createTrialUC,
		getUC:         getUC,
		cancelUC:      cancelUC,
		changePlanUC:  changePlanUC,
		checkLimitUC:  checkLimitUC,
		listPlansUC:   listPlansUC,
		logger:        logger.NewLogger(),
	}
}

type CreateSubscriptionRequest struct {
	PlanSlug      string `json:"plan_slug" validate:"required"`
	BillingPeriod string `json:"billing_period" validate:"omitempty,oneof=monthly yearly"`
}

type CreateTrialRequest struct {
	PlanSlug string `json:"plan_slug" validate:"required"`
}

type CancelSubscriptionRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type ChangePlanRequest struct {
	PlanSlug      string `json:"plan_slug" validate:"required"`
	BillingPeriod string `json:"billing_period" validate:"omitempty,oneof=monthly yearly"`
}

// CreateSubscription signs a tenant up without a trial, typically on the
// free plan.
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	tenantID, err := parseTenantID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create subscription", "tenant_id", tenantID, "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid request body"))
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.CreateSubscriptionCommand{
		TenantID:      tenantID,
		PlanSlug:      req.PlanSlug,
		BillingPeriod: req.BillingPeriod,
	}

	result, err := h.createUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, asAppError(err))
		return
	}

	utils.CreatedResponse(c, result, "Subscription created successfully")
}

func (h *SubscriptionHandler) CreateTrial(c *gin.Context) {
	tenantID, err := parseTenantID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CreateTrialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create trial", "tenant_id", tenantID, "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid request body"))
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.CreateTrialSubscriptionCommand{
		TenantID: tenantID,
		PlanSlug: req.PlanSlug,
	}

	result, err := h.createTrialUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, asAppError(err))
		return
	}

	utils.CreatedResponse(c, result, "Trial subscription created successfully")
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	tenantID, err := parseTenantID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getUC.Execute(c.Request.Context(), usecases.GetSubscriptionQuery{TenantID: tenantID})
	if err != nil {
		utils.ErrorResponseWithError(c, asAppError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	tenantID, err := parseTenantID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for cancel subscription", "tenant_id", tenantID, "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid request body"))
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.CancelSubscriptionCommand{
		TenantID: tenantID,
		Reason:   req.Reason,
	}

	result, err := h.cancelUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, asAppError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscription cancelled successfully", result)
}

func (h *SubscriptionHandler) ChangePlan(c *gin.Context) {
	tenantID, err := parseTenantID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for change plan", "tenant_id", tenantID, "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid request body"))
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.ChangePlanCommand{
		TenantID:      tenantID,
		NewPlanSlug:   req.PlanSlug,
		BillingPeriod: req.BillingPeriod,
	}

	result, err := h.changePlanUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, asAppError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Plan changed successfully", result)
}

func (h *SubscriptionHandler) CheckLimit(c *gin.Context) {
	tenantID, err := parseTenantID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resource := c.Param("resource")
	if resource == "" {
		utils.ErrorResponseWithError(c, errors.NewValidationError("Resource is required"))
		return
	}

	query := usecases.CheckLimitQuery{
		TenantID: tenantID,
		Resource: resource,
	}

	result, err := h.checkLimitUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, asAppError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	result, err := h.listPlansUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, asAppError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func parseTenantID(c *gin.Context) (uint, error) {
	idStr := c.Param("tenant_id")
	if idStr == "" {
		return 0, errors.NewValidationError("Tenant ID is required")
	}

	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.NewValidationError("Invalid tenant ID format")
	}

	return uint(id), nil
}
