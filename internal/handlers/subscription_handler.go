package handlers

import (
	"net/http"

	"practice-service/internal/apperr"
	"practice-service/internal/middleware"
	"practice-service/internal/models"
	"practice-service/internal/service"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	Entitlements *service.EntitlementService
}

func NewSubscriptionHandler(s *service.EntitlementService) *SubscriptionHandler {
	return &SubscriptionHandler{Entitlements: s}
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	sub, err := h.Entitlements.GetActive(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, sub)
}

type applyPlanRequest struct {
	PlanType models.PlanType    `json:"plan_type" binding:"required"`
	Payment  models.PaymentInfo `json:"payment"`
}

// ApplyPlan tops up the user's subscription with a plan allotment. The
// normal path for this is the payment event consumer; the endpoint exists
// for manual grants.
func (h *SubscriptionHandler) ApplyPlan(c *gin.Context) {
	var req applyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	sub, err := h.Entitlements.ApplyPlan(c.Request.Context(), middleware.UserID(c), req.PlanType, req.Payment)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, sub)
}

func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	if err := h.Entitlements.Cancel(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"message": "Subscription cancelled"})
}
