package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/paycore/payment-processor/internal/models"
	"github.com/paycore/payment-processor/internal/service"
)

type AuditHandler struct {
	audits *service.AuditService
}

func NewAuditHandler(audits *service.AuditService) *AuditHandler {
	return &AuditHandler{audits: audits}
}

func (h *AuditHandler) GetByTransactionID(c *gin.Context) {
	records, err := h.audits.GetByTransactionID(c.Request.Context(), c.Param("transactionId"))
	if errors.Is(err, models.ErrAuditNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No audit records found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit records"})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *AuditHandler) GetByAccount(c *gin.Context) {
	records, err := h.audits.GetByAccount(c.Request.Context(), c.Param("accountNumber"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit records"})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *AuditHandler) GetByStatus(c *gin.Context) {
	status, err := models.ParsePaymentStatus(c.Param("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := h.audits.GetByStatus(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit records"})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *AuditHandler) GetFraudulent(c *gin.Context) {
	records, err := h.audits.GetFraudulent(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit records"})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *AuditHandler) GetHighRisk(c *gin.Context) {
	records, err := h.audits.HighRiskAudits(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit records"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetByTimeRange expects start and end query params in RFC 3339.
func (h *AuditHandler) GetByTimeRange(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start time"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end time"})
		return
	}

	records, err := h.audits.GetByTimeRange(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *AuditHandler) GetAccountAnalytics(c *gin.Context) {
	analytics, err := h.audits.AccountAnalytics(c.Request.Context(), c.Param("accountNumber"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
		return
	}
	c.JSON(http.StatusOK, analytics)
}

func (h *AuditHandler) GetDailySummary(c *gin.Context) {
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	summary, err := h.audits.DailySummary(c.Request.Context(), day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AuditHandler) GetMetrics(c *gin.Context) {
	avg, err := h.audits.AverageProcessingTimeMs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
		return
	}
	max, err := h.audits.MaxProcessingTimeMs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
		return
	}
	rate, err := h.audits.FraudDetectionRate(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"average_processing_time_ms": avg,
		"max_processing_time_ms":     max,
		"fraud_detection_rate":       rate,
	})
}
