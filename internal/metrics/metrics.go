package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_processed_total",
		Help: "Number of processed payments by final status.",
	}, []string{"status"})

	PaymentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_processing_duration_seconds",
		Help:    "Time spent processing a payment end to end.",
		Buckets: prometheus.DefBuckets,
	})

	FraudChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraud_checks_total",
		Help: "Number of fraud checks by verdict.",
	}, []string{"verdict"})

	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_write_failures_total",
		Help: "Number of audit records that could not be written.",
	})
)
