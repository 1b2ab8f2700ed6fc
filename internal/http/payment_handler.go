package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) createPaymentIntent(c *gin.Context) {
	var req struct {
		ViolationID string `json:"violation_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("violation_id is required"))
		return
	}
	violationID, err := parseOptionalUUID(req.ViolationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid violation_id"))
		return
	}

	intent, err := h.payments.CreateIntent(c.Request.Context(), violationID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(intent))
}

func (h *Handler) confirmPayment(c *gin.Context) {
	var req struct {
		ViolationID     string `json:"violation_id" binding:"required"`
		PaymentIntentID string `json:"payment_intent_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("violation_id and payment_intent_id are required"))
		return
	}
	violationID, err := parseOptionalUUID(req.ViolationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid violation_id"))
		return
	}

	record, err := h.payments.Confirm(c.Request.Context(), violationID, req.PaymentIntentID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse("Payment confirmed", gin.H{"violation": record}))
}
