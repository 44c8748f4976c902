package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/paycore/payment-processor/internal/interfaces"
	"github.com/paycore/payment-processor/internal/models"
	"github.com/paycore/payment-processor/internal/telemetry"
)

// High-risk review criteria. Meeting any one of them flags an audit record
// for manual review.
const (
	reviewRiskScoreThreshold  = 0.7
	slowProcessingThresholdMs = 5000
)

// AuditOutcome collects the check results gathered while a payment moved
// through the pipeline. Nil pointers mark checks that never ran.
type AuditOutcome struct {
	SourceAccountValid      *bool
	DestinationAccountValid *bool
	Fraud                   *models.FraudCheckResult
	SufficientBalance       *bool
}

// AuditService owns the append-only audit trail and derives analytics from
// it on demand. Nothing here mutates an existing record.
type AuditService struct {
	repo interfaces.AuditRepository
}

func NewAuditService(repo interfaces.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// RecordOutcome appends the snapshot for a payment that reached a terminal
// status.
func (s *AuditService) RecordOutcome(ctx context.Context, p *models.Payment, outcome *AuditOutcome, startedAt time.Time) (*models.AuditRecord, error) {
	if p == nil || p.TransactionID == "" {
		return nil, errors.New("payment with transaction id required for audit")
	}

	record := &models.AuditRecord{
		TransactionID:      p.TransactionID,
		FromAccount:        p.FromAccount,
		ToAccount:          p.ToAccount,
		Amount:             p.Amount,
		Currency:           p.Currency,
		PaymentType:        p.PaymentType,
		Description:        p.Description,
		FinalStatus:        p.Status,
		FailureReason:      p.FailureReason,
		PaymentInitiatedAt: p.CreatedAt,
		ProcessingTimeMs:   time.Since(startedAt).Milliseconds(),
		AuditedAt:          time.Now().UTC(),
	}

	if outcome != nil {
		record.SourceAccountValid = outcome.SourceAccountValid
		record.DestinationAccountValid = outcome.DestinationAccountValid
		record.SufficientBalance = outcome.SufficientBalance
		if outcome.Fraud != nil {
			passed := !outcome.Fraud.Fraudulent
			record.FraudCheckPassed = &passed
			record.FraudReason = outcome.Fraud.Reason
			score := outcome.Fraud.RiskScore
			record.FraudRiskScore = &score
		} else {
			record.FraudReason = "Fraud check not performed"
		}
	}

	if err := s.repo.Append(ctx, record); err != nil {
		return nil, err
	}

	telemetry.Logger.Info("Audit record created",
		zap.String("transaction_id", record.TransactionID),
		zap.String("final_status", string(record.FinalStatus)),
	)
	return record, nil
}

func (s *AuditService) GetByTransactionID(ctx context.Context, transactionID string) ([]*models.AuditRecord, error) {
	if transactionID == "" {
		return nil, errors.New("transaction id must not be empty")
	}
	records, err := s.repo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, models.ErrAuditNotFound
	}
	return records, nil
}

func (s *AuditService) GetByAccount(ctx context.Context, accountNumber string) ([]*models.AuditRecord, error) {
	if accountNumber == "" {
		return nil, errors.New("account number must not be empty")
	}
	return s.repo.FindByAccount(ctx, accountNumber)
}

func (s *AuditService) GetByStatus(ctx context.Context, status models.PaymentStatus) ([]*models.AuditRecord, error) {
	return s.repo.FindByFinalStatus(ctx, status)
}

// GetFraudulent returns records whose fraud check failed.
func (s *AuditService) GetFraudulent(ctx context.Context) ([]*models.AuditRecord, error) {
	return s.repo.FindByFraudCheckPassed(ctx, false)
}

func (s *AuditService) GetByTimeRange(ctx context.Context, start, end time.Time) ([]*models.AuditRecord, error) {
	if start.After(end) {
		return nil, errors.New("start must not be after end")
	}
	return s.repo.FindByTimeRange(ctx, start, end)
}

// AverageProcessingTimeMs averages processing time across completed
// payments. Zero when nothing has completed yet.
func (s *AuditService) AverageProcessingTimeMs(ctx context.Context) (float64, error) {
	completed, err := s.repo.FindByFinalStatus(ctx, models.StatusCompleted)
	if err != nil {
		return 0, err
	}
	if len(completed) == 0 {
		return 0, nil
	}

	var total int64
	for _, a := range completed {
		total += a.ProcessingTimeMs
	}
	return float64(total) / float64(len(completed)), nil
}

// MaxProcessingTimeMs is the slowest completed payment on record. Zero
// when nothing has completed yet.
func (s *AuditService) MaxProcessingTimeMs(ctx context.Context) (int64, error) {
	completed, err := s.repo.FindByFinalStatus(ctx, models.StatusCompleted)
	if err != nil {
		return 0, err
	}

	var max int64
	for _, a := range completed {
		if a.ProcessingTimeMs > max {
			max = a.ProcessingTimeMs
		}
	}
	return max, nil
}

// FraudDetectionRate is the percentage of audited payments whose fraud
// check failed.
func (s *AuditService) FraudDetectionRate(ctx context.Context) (float64, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(all) == 0 {
		return 0, nil
	}

	var fraudulent int
	for _, a := range all {
		if a.FraudCheckPassed != nil && !*a.FraudCheckPassed {
			fraudulent++
		}
	}
	return float64(fraudulent) / float64(len(all)) * 100, nil
}

// HighRiskAudits returns the records flagged for manual review: high risk
// score, failed fraud check, or slow processing.
func (s *AuditService) HighRiskAudits(ctx context.Context) ([]*models.AuditRecord, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var flagged []*models.AuditRecord
	for _, a := range all {
		if isHighRisk(a) {
			flagged = append(flagged, a)
		}
	}
	return flagged, nil
}

func isHighRisk(a *models.AuditRecord) bool {
	if a.FraudRiskScore != nil && *a.FraudRiskScore > reviewRiskScoreThreshold {
		return true
	}
	if a.FraudCheckPassed != nil && !*a.FraudCheckPassed {
		return true
	}
	return a.ProcessingTimeMs > slowProcessingThresholdMs
}

// AccountAnalytics aggregates the audit trail for one account.
func (s *AuditService) AccountAnalytics(ctx context.Context, accountNumber string) (*models.AuditAnalytics, error) {
	audits, err := s.GetByAccount(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	analytics := &models.AuditAnalytics{
		AccountNumber:     accountNumber,
		TotalTransactions: len(audits),
		StatusBreakdown:   make(map[models.PaymentStatus]int64),
	}

	var totalTimeMs int64
	for _, a := range audits {
		analytics.StatusBreakdown[a.FinalStatus]++
		if a.FraudCheckPassed != nil && !*a.FraudCheckPassed {
			analytics.FraudDetectedCount++
		}
		if a.SourceAccountValid != nil && !*a.SourceAccountValid {
			analytics.SourceValidationFailures++
		}
		if a.DestinationAccountValid != nil && !*a.DestinationAccountValid {
			analytics.DestinationValidationFailures++
		}
		if a.SufficientBalance != nil && !*a.SufficientBalance {
			analytics.InsufficientBalanceCount++
		}
		totalTimeMs += a.ProcessingTimeMs
		if a.ProcessingTimeMs > analytics.MaxProcessingTimeMs {
			analytics.MaxProcessingTimeMs = a.ProcessingTimeMs
		}
	}

	if len(audits) > 0 {
		analytics.FraudPercentage = float64(analytics.FraudDetectedCount) / float64(len(audits)) * 100
		analytics.AverageProcessingTimeMs = float64(totalTimeMs) / float64(len(audits))
	}
	return analytics, nil
}

// DailySummary aggregates one calendar day (UTC) of audit records.
func (s *AuditService) DailySummary(ctx context.Context, day time.Time) (*models.DailyAuditSummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Nanosecond)

	audits, err := s.repo.FindByTimeRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	summary := &models.DailyAuditSummary{
		Date:              start.Format("2006-01-02"),
		TotalTransactions: len(audits),
		TopFailureReasons: make(map[string]int64),
	}

	var totalTimeMs int64
	for _, a := range audits {
		if a.FinalStatus == models.StatusCompleted {
			summary.SuccessfulTransactions++
		}
		if a.FraudCheckPassed != nil && !*a.FraudCheckPassed {
			summary.FraudDetectedCount++
		}
		if a.FailureReason != "" {
			summary.TopFailureReasons[a.FailureReason]++
		}
		totalTimeMs += a.ProcessingTimeMs
	}
	summary.FailedTransactions = int64(len(audits)) - summary.SuccessfulTransactions

	if len(audits) > 0 {
		summary.SuccessRate = float64(summary.SuccessfulTransactions) / float64(len(audits)) * 100
		summary.AverageProcessingTimeMs = float64(totalTimeMs) / float64(len(audits))
	}
	return summary, nil
}
