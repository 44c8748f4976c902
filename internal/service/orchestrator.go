package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/paycore/payment-processor/internal/interfaces"
	"github.com/paycore/payment-processor/internal/metrics"
	"github.com/paycore/payment-processor/internal/models"
	"github.com/paycore/payment-processor/internal/telemetry"
)

var recognizedCurrencies = map[string]struct{}{
	"USD": {}, "EUR": {}, "GBP": {}, "INR": {}, "JPY": {}, "AUD": {}, "CAD": {},
}

// Orchestrator drives a transfer request through account validation, fraud
// screening, balance verification and funds movement, persisting every
// status transition and appending one audit record per terminal outcome.
type Orchestrator struct {
	payments  interfaces.PaymentRepository
	audits    *AuditService
	accounts  interfaces.AccountService
	fraud     interfaces.FraudChecker
	locker    interfaces.AccountLocker
	publisher interfaces.TransitionPublisher
}

func NewOrchestrator(
	payments interfaces.PaymentRepository,
	audits *AuditService,
	accounts interfaces.AccountService,
	fraud interfaces.FraudChecker,
	locker interfaces.AccountLocker,
	publisher interfaces.TransitionPublisher,
) *Orchestrator {
	return &Orchestrator{
		payments:  payments,
		audits:    audits,
		accounts:  accounts,
		fraud:     fraud,
		locker:    locker,
		publisher: publisher,
	}
}

// Process runs the payment pipeline. Malformed requests are rejected with a
// ValidationError before any Payment record exists; every other path
// produces a Payment in a terminal state plus one audit record.
func (o *Orchestrator) Process(ctx context.Context, req *models.PaymentRequest) (*models.PaymentResult, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "orchestrator.Process")
	defer span.End()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	paymentType, _ := models.ParsePaymentType(strings.ToUpper(req.PaymentType))

	startedAt := time.Now()
	now := startedAt.UTC()
	payment := &models.Payment{
		TransactionID: uuid.NewString(),
		FromAccount:   req.FromAccount,
		ToAccount:     req.ToAccount,
		Amount:        req.Amount,
		Currency:      strings.ToUpper(req.Currency),
		PaymentType:   paymentType,
		Description:   req.Description,
		Status:        models.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	span.SetAttributes(attribute.String("transaction_id", payment.TransactionID))

	if err := o.payments.Insert(ctx, payment); err != nil {
		// Nothing was recorded for this attempt; the caller sees a plain
		// error rather than a PaymentResult.
		return nil, fmt.Errorf("persist payment: %w", err)
	}

	telemetry.Logger.Info("Processing payment",
		zap.String("transaction_id", payment.TransactionID),
		zap.String("from_account", payment.FromAccount),
		zap.String("to_account", payment.ToAccount),
		zap.String("amount", payment.Amount.StringFixed(2)),
	)

	outcome := &AuditOutcome{}

	// Step 1: validate source account. Fraud screening and the balance
	// check are skipped entirely when this fails.
	sourceValidation, err := o.accounts.ValidateAccount(ctx, payment.FromAccount)
	if err != nil {
		return o.failUnexpected(ctx, payment, models.StatusPending, outcome, startedAt, err), nil
	}
	outcome.SourceAccountValid = &sourceValidation.Valid
	if !sourceValidation.Valid {
		return o.failPayment(ctx, payment, models.StatusPending, models.StatusAccountValidationFailed,
			"Source account validation failed: "+sourceValidation.Message, outcome, startedAt), nil
	}

	// Step 2: validate destination account, same short-circuit.
	destValidation, err := o.accounts.ValidateAccount(ctx, payment.ToAccount)
	if err != nil {
		return o.failUnexpected(ctx, payment, models.StatusPending, outcome, startedAt, err), nil
	}
	outcome.DestinationAccountValid = &destValidation.Valid
	if !destValidation.Valid {
		return o.failPayment(ctx, payment, models.StatusPending, models.StatusAccountValidationFailed,
			"Destination account validation failed: "+destValidation.Message, outcome, startedAt), nil
	}

	// Step 3: fraud screening.
	fraudResult, err := o.fraud.CheckFraud(ctx, &models.FraudCheckRequest{
		TransactionID: payment.TransactionID,
		FromAccount:   payment.FromAccount,
		ToAccount:     payment.ToAccount,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
	})
	if err != nil {
		return o.failUnexpected(ctx, payment, models.StatusPending, outcome, startedAt, err), nil
	}
	outcome.Fraud = fraudResult
	if fraudResult.Fraudulent {
		metrics.FraudChecks.WithLabelValues("fraudulent").Inc()
		return o.failPayment(ctx, payment, models.StatusPending, models.StatusFraudCheckFailed,
			"Fraud detected: "+fraudResult.Reason, outcome, startedAt), nil
	}
	metrics.FraudChecks.WithLabelValues("legitimate").Inc()

	// Steps 4-5: balance check and funds movement run under the account
	// locks so a concurrent transfer cannot overdraw between them.
	release, err := o.locker.LockAccounts(ctx, payment.FromAccount, payment.ToAccount)
	if err != nil {
		return o.failUnexpected(ctx, payment, models.StatusPending, outcome, startedAt, err), nil
	}
	defer release()

	balanceCheck, err := o.accounts.CheckBalance(ctx, payment.FromAccount, payment.Amount)
	if err != nil {
		return o.failUnexpected(ctx, payment, models.StatusPending, outcome, startedAt, err), nil
	}
	outcome.SufficientBalance = &balanceCheck.SufficientBalance
	if !balanceCheck.SufficientBalance {
		return o.failPayment(ctx, payment, models.StatusPending, models.StatusInsufficientBalance,
			balanceCheck.Message, outcome, startedAt), nil
	}

	if err := o.transition(ctx, payment, models.StatusPending, models.StatusProcessing, ""); err != nil {
		return o.failUnexpected(ctx, payment, models.StatusPending, outcome, startedAt, err), nil
	}

	if err := o.accounts.Transfer(ctx, payment.FromAccount, payment.ToAccount, payment.Amount); err != nil {
		return o.failUnexpected(ctx, payment, models.StatusProcessing, outcome, startedAt, err), nil
	}

	if err := o.transition(ctx, payment, models.StatusProcessing, models.StatusCompleted, ""); err != nil {
		return o.failUnexpected(ctx, payment, models.StatusProcessing, outcome, startedAt, err), nil
	}

	o.recordAudit(ctx, payment, outcome, startedAt)
	o.observe(payment.Status, startedAt)

	telemetry.Logger.Info("Payment completed",
		zap.String("transaction_id", payment.TransactionID),
		zap.Duration("duration", time.Since(startedAt)),
	)
	return models.ResultFromPayment(payment), nil
}

// GetStatus is a pure read; an unknown id yields ErrPaymentNotFound.
func (o *Orchestrator) GetStatus(ctx context.Context, transactionID string) (*models.PaymentResult, error) {
	payment, err := o.payments.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return models.ResultFromPayment(payment), nil
}

// ListByAccount returns payments where the account is sender or receiver.
func (o *Orchestrator) ListByAccount(ctx context.Context, accountNumber string) ([]*models.Payment, error) {
	return o.payments.ListByAccount(ctx, accountNumber)
}

func (o *Orchestrator) ListByStatus(ctx context.Context, status models.PaymentStatus) ([]*models.Payment, error) {
	return o.payments.ListByStatus(ctx, status)
}

func (o *Orchestrator) ListAll(ctx context.Context) ([]*models.Payment, error) {
	return o.payments.ListAll(ctx)
}

// failPayment moves the payment to a terminal business-rule failure state,
// audits the outcome and builds the unsuccessful result.
func (o *Orchestrator) failPayment(ctx context.Context, p *models.Payment, from, status models.PaymentStatus, reason string, outcome *AuditOutcome, startedAt time.Time) *models.PaymentResult {
	telemetry.Logger.Warn("Payment failed",
		zap.String("transaction_id", p.TransactionID),
		zap.String("status", string(status)),
		zap.String("reason", reason),
	)

	if err := o.transition(ctx, p, from, status, reason); err != nil {
		telemetry.Logger.Error("Failed to persist terminal status",
			zap.String("transaction_id", p.TransactionID),
			zap.Error(err),
		)
		// Keep the in-memory view terminal so the caller still gets an
		// explicit unsuccessful result.
		p.Status = status
		p.FailureReason = reason
		p.UpdatedAt = time.Now().UTC()
	}

	o.recordAudit(ctx, p, outcome, startedAt)
	o.observe(status, startedAt)
	return models.ResultFromPayment(p)
}

// failUnexpected handles infrastructure errors after the Payment record
// exists: the payment lands in FAILED and balances stay untouched.
func (o *Orchestrator) failUnexpected(ctx context.Context, p *models.Payment, from models.PaymentStatus, outcome *AuditOutcome, startedAt time.Time, cause error) *models.PaymentResult {
	telemetry.Logger.Error("Unexpected error processing payment",
		zap.String("transaction_id", p.TransactionID),
		zap.Error(cause),
	)
	return o.failPayment(ctx, p, from, models.StatusFailed,
		"Payment processing failed: "+cause.Error(), outcome, startedAt)
}

// transition persists a forward status move with compare-and-swap semantics
// and publishes the change. Publish failures are logged, never fatal.
func (o *Orchestrator) transition(ctx context.Context, p *models.Payment, from, to models.PaymentStatus, failureReason string) error {
	rows, err := o.payments.TransitionStatus(ctx, p.TransactionID, from, to, failureReason)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("invalid state transition from %s to %s for payment %s", from, to, p.TransactionID)
	}

	p.Status = to
	if failureReason != "" {
		p.FailureReason = failureReason
	}
	p.UpdatedAt = time.Now().UTC()

	if err := o.publisher.PublishTransition(ctx, p.TransactionID, from, to); err != nil {
		telemetry.Logger.Error("Failed to publish state transition",
			zap.String("transaction_id", p.TransactionID),
			zap.Error(err),
		)
	}

	telemetry.Logger.Info("Payment state transition",
		zap.String("transaction_id", p.TransactionID),
		zap.String("from_state", string(from)),
		zap.String("to_state", string(to)),
	)
	return nil
}

// recordAudit appends the terminal-outcome snapshot. An audit-write failure
// is logged and counted but never masks the payment outcome.
func (o *Orchestrator) recordAudit(ctx context.Context, p *models.Payment, outcome *AuditOutcome, startedAt time.Time) {
	if _, err := o.audits.RecordOutcome(ctx, p, outcome, startedAt); err != nil {
		metrics.AuditWriteFailures.Inc()
		telemetry.Logger.Error("Failed to create audit record",
			zap.String("transaction_id", p.TransactionID),
			zap.Error(err),
		)
	}
}

func (o *Orchestrator) observe(status models.PaymentStatus, startedAt time.Time) {
	metrics.PaymentsProcessed.WithLabelValues(string(status)).Inc()
	metrics.PaymentDuration.Observe(time.Since(startedAt).Seconds())
}

func validateRequest(req *models.PaymentRequest) error {
	if strings.TrimSpace(req.FromAccount) == "" {
		return &models.ValidationError{Field: "from_account", Message: "must not be empty"}
	}
	if strings.TrimSpace(req.ToAccount) == "" {
		return &models.ValidationError{Field: "to_account", Message: "must not be empty"}
	}
	if !req.Amount.IsPositive() {
		return &models.ValidationError{Field: "amount", Message: "must be positive"}
	}
	if _, ok := recognizedCurrencies[strings.ToUpper(req.Currency)]; !ok {
		return &models.ValidationError{Field: "currency", Message: fmt.Sprintf("unrecognized currency %q", req.Currency)}
	}
	if _, err := models.ParsePaymentType(strings.ToUpper(req.PaymentType)); err != nil {
		return &models.ValidationError{Field: "payment_type", Message: err.Error()}
	}
	return nil
}
