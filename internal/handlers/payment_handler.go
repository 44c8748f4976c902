package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/paycore/payment-processor/internal/models"
	"github.com/paycore/payment-processor/internal/service"
	"github.com/paycore/payment-processor/internal/telemetry"
)

type PaymentHandler struct {
	orchestrator *service.Orchestrator
}

func NewPaymentHandler(orchestrator *service.Orchestrator) *PaymentHandler {
	return &PaymentHandler{orchestrator: orchestrator}
}

// SubmitPayment processes a transfer request. Business-rule failures come
// back as well-formed unsuccessful results with status 400; only
// infrastructure failures map to 500.
func (h *PaymentHandler) SubmitPayment(c *gin.Context) {
	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		telemetry.Logger.Error("Error decoding payment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.orchestrator.Process(c.Request.Context(), &req)
	if err != nil {
		if ve, ok := models.AsValidationError(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"message":        models.MessageUnsuccessful,
				"failure_reason": ve.Error(),
			})
			return
		}
		telemetry.Logger.Error("Error processing payment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"message":        models.MessageUnsuccessful,
			"failure_reason": "internal error",
		})
		return
	}

	if result.Status == models.StatusCompleted {
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusBadRequest, result)
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	transactionID := c.Param("transactionId")

	result, err := h.orchestrator.GetStatus(c.Request.Context(), transactionID)
	if errors.Is(err, models.ErrPaymentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) GetPaymentsByAccount(c *gin.Context) {
	accountNumber := c.Param("accountNumber")

	payments, err := h.orchestrator.ListByAccount(c.Request.Context(), accountNumber)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) GetPaymentsByStatus(c *gin.Context) {
	status, err := models.ParsePaymentStatus(c.Param("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payments, err := h.orchestrator.ListByStatus(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) GetAllPayments(c *gin.Context) {
	payments, err := h.orchestrator.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}
