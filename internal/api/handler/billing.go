package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/agendahof/agendahof-server/internal/api/middleware"
	"github.com/agendahof/agendahof-server/internal/model/dto"
	"github.com/agendahof/agendahof-server/internal/pkg/response"
	"github.com/agendahof/agendahof-server/internal/service"
)

type BillingHandler struct {
	billingService     *service.BillingService
	entitlementService *service.EntitlementService
}

func NewBillingHandler(billingService *service.BillingService, entitlementService *service.EntitlementService) *BillingHandler {
	return &BillingHandler{
		billingService:     billingService,
		entitlementService: entitlementService,
	}
}

// Plans lists the subscription catalog
// GET /api/v1/plans
func (h *BillingHandler) Plans(c *gin.Context) {
	response.Success(c, h.billingService.ListPlans())
}

// Entitlement returns the caller's current access state
// GET /api/v1/billing/entitlement
func (h *BillingHandler) Entitlement(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	result, err := h.entitlementService.GetEntitlement(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, result)
}

// Checkout opens a hosted checkout session for a plan
// POST /api/v1/billing/checkout
func (h *BillingHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.billingService.CreateCheckout(userID, req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownPlan):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrBillingUnavailable):
			response.ServerError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// Webhook receives billing provider events. Signature is verified inside the
// service; the raw body must reach it untouched.
// POST /api/v1/billing/webhook
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.ParamError(c, "failed to read body")
		return
	}

	if err := h.billingService.HandleWebhook(payload, c.GetHeader("Stripe-Signature")); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	response.Success(c, nil)
}
