package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditRecord is an immutable snapshot of one terminal payment decision.
// It captures the payment details at audit time together with every check
// result that led to the final status. Records are appended once and never
// mutated.
type AuditRecord struct {
	ID            int64           `json:"id"`
	TransactionID string          `json:"transaction_id"`
	FromAccount   string          `json:"from_account"`
	ToAccount     string          `json:"to_account"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentType   PaymentType     `json:"payment_type"`
	Description   string          `json:"description,omitempty"`

	// Check results. Pointers stay nil for checks that never ran, so a
	// short-circuited pipeline is distinguishable from a failed check.
	SourceAccountValid      *bool    `json:"source_account_valid,omitempty"`
	DestinationAccountValid *bool    `json:"destination_account_valid,omitempty"`
	FraudCheckPassed        *bool    `json:"fraud_check_passed,omitempty"`
	FraudReason             string   `json:"fraud_reason,omitempty"`
	FraudRiskScore          *float64 `json:"fraud_risk_score,omitempty"`
	SufficientBalance       *bool    `json:"sufficient_balance,omitempty"`

	FinalStatus         PaymentStatus `json:"final_status"`
	FailureReason       string        `json:"failure_reason,omitempty"`
	PaymentInitiatedAt  time.Time     `json:"payment_initiated_at"`
	ProcessingTimeMs    int64         `json:"processing_time_ms"`
	AuditedAt           time.Time     `json:"audited_at"`
}

// AuditAnalytics aggregates audit records for one account.
type AuditAnalytics struct {
	AccountNumber                 string                  `json:"account_number"`
	TotalTransactions             int                     `json:"total_transactions"`
	StatusBreakdown               map[PaymentStatus]int64 `json:"status_breakdown"`
	FraudDetectedCount            int64                   `json:"fraud_detected_count"`
	FraudPercentage               float64                 `json:"fraud_percentage"`
	SourceValidationFailures      int64                   `json:"source_validation_failures"`
	DestinationValidationFailures int64                   `json:"destination_validation_failures"`
	InsufficientBalanceCount      int64                   `json:"insufficient_balance_count"`
	AverageProcessingTimeMs       float64                 `json:"average_processing_time_ms"`
	MaxProcessingTimeMs           int64                   `json:"max_processing_time_ms"`
}

// DailyAuditSummary aggregates one calendar day of audit records.
type DailyAuditSummary struct {
	Date                    string           `json:"date"`
	TotalTransactions       int              `json:"total_transactions"`
	SuccessfulTransactions  int64            `json:"successful_transactions"`
	FailedTransactions      int64            `json:"failed_transactions"`
	SuccessRate             float64          `json:"success_rate"`
	FraudDetectedCount      int64            `json:"fraud_detected_count"`
	AverageProcessingTimeMs float64          `json:"average_processing_time_ms"`
	TopFailureReasons       map[string]int64 `json:"top_failure_reasons"`
}
