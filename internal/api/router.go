package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paycore/payment-processor/internal/handlers"
	"github.com/paycore/payment-processor/internal/service"
	"github.com/paycore/payment-processor/internal/telemetry"
)

func NewRouter(orchestrator *service.Orchestrator, audits *service.AuditService) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "payment-processor"})
	})

	paymentHandler := handlers.NewPaymentHandler(orchestrator)
	payments := r.Group("/api/payments")
	{
		payments.POST("", paymentHandler.SubmitPayment)
		payments.GET("", paymentHandler.GetAllPayments)
		payments.GET("/:transactionId", paymentHandler.GetPayment)
		payments.GET("/status/:status", paymentHandler.GetPaymentsByStatus)
		payments.GET("/account/:accountNumber", paymentHandler.GetPaymentsByAccount)
	}

	auditHandler := handlers.NewAuditHandler(audits)
	auditRoutes := r.Group("/api/audits")
	{
		auditRoutes.GET("/fraudulent", auditHandler.GetFraudulent)
		auditRoutes.GET("/high-risk", auditHandler.GetHighRisk)
		auditRoutes.GET("/range", auditHandler.GetByTimeRange)
		auditRoutes.GET("/metrics", auditHandler.GetMetrics)
		auditRoutes.GET("/status/:status", auditHandler.GetByStatus)
		auditRoutes.GET("/account/:accountNumber", auditHandler.GetByAccount)
		auditRoutes.GET("/analytics/account/:accountNumber", auditHandler.GetAccountAnalytics)
		auditRoutes.GET("/summary/daily", auditHandler.GetDailySummary)
		auditRoutes.GET("/:transactionId", auditHandler.GetByTransactionID)
	}

	return r
}
