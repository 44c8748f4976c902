package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	StatusPending                 PaymentStatus = "PENDING"
	StatusProcessing              PaymentStatus = "PROCESSING"
	StatusCompleted               PaymentStatus = "COMPLETED"
	StatusAccountValidationFailed PaymentStatus = "ACCOUNT_VALIDATION_FAILED"
	StatusFraudCheckFailed        PaymentStatus = "FRAUD_CHECK_FAILED"
	StatusInsufficientBalance     PaymentStatus = "INSUFFICIENT_BALANCE"
	StatusFailed                  PaymentStatus = "FAILED"
)

// validTransitions encodes the forward-only lifecycle. Anything not listed
// here is rejected by the repositories.
var validTransitions = map[PaymentStatus][]PaymentStatus{
	StatusPending: {
		StatusProcessing,
		StatusAccountValidationFailed,
		StatusFraudCheckFailed,
		StatusInsufficientBalance,
		StatusFailed,
	},
	StatusProcessing: {StatusCompleted, StatusFailed},
}

// CanTransition reports whether a payment may move from one status to another.
func CanTransition(from, to PaymentStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s PaymentStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case StatusPending, StatusProcessing, StatusCompleted,
		StatusAccountValidationFailed, StatusFraudCheckFailed,
		StatusInsufficientBalance, StatusFailed:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

type PaymentType string

const (
	PaymentTypeDomestic  PaymentType = "DOMESTIC"
	PaymentTypeInterbank PaymentType = "INTERBANK"
	PaymentTypeIntrabank PaymentType = "INTRABANK"
	PaymentTypeOther     PaymentType = "OTHER"
)

func ParsePaymentType(s string) (PaymentType, error) {
	switch PaymentType(s) {
	case PaymentTypeDomestic, PaymentTypeInterbank, PaymentTypeIntrabank, PaymentTypeOther:
		return PaymentType(s), nil
	}
	return "", fmt.Errorf("unknown payment type %q", s)
}

// Payment is one money-transfer attempt. Records are never deleted; history
// is preserved through the audit trail, not payment versioning.
type Payment struct {
	TransactionID string          `json:"transaction_id"`
	FromAccount   string          `json:"from_account"`
	ToAccount     string          `json:"to_account"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentType   PaymentType     `json:"payment_type"`
	Description   string          `json:"description,omitempty"`
	Status        PaymentStatus   `json:"status"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PaymentRequest is the inbound transfer request before any Payment exists.
type PaymentRequest struct {
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	PaymentType string          `json:"payment_type"`
	Description string          `json:"description"`
}

// PaymentResult is returned for every processed request, successful or not.
type PaymentResult struct {
	TransactionID string          `json:"transaction_id"`
	FromAccount   string          `json:"from_account"`
	ToAccount     string          `json:"to_account"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentType   PaymentType     `json:"payment_type"`
	Status        PaymentStatus   `json:"status"`
	Message       string          `json:"message"`
	FailureReason string          `json:"failure_reason,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

const (
	MessageSuccessful   = "Payment successful"
	MessageUnsuccessful = "Payment unsuccessful"
)

// ResultFromPayment builds the caller-facing view of a payment.
func ResultFromPayment(p *Payment) *PaymentResult {
	res := &PaymentResult{
		TransactionID: p.TransactionID,
		FromAccount:   p.FromAccount,
		ToAccount:     p.ToAccount,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentType:   p.PaymentType,
		Status:        p.Status,
		Timestamp:     p.UpdatedAt,
	}
	if p.Status == StatusCompleted {
		res.Message = MessageSuccessful
	} else {
		res.Message = MessageUnsuccessful
		res.FailureReason = p.FailureReason
	}
	return res
}
