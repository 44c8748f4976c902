package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paycore/payment-processor/internal/models"
	"github.com/paycore/payment-processor/internal/repository/memory"
	"github.com/paycore/payment-processor/internal/service"
)

func seedAudit(t *testing.T, svc *service.AuditService, txID string, status models.PaymentStatus, fraud *models.FraudCheckResult, processing time.Duration) *models.AuditRecord {
	t.Helper()

	payment := &models.Payment{
		TransactionID: txID,
		FromAccount:   "ACC001",
		ToAccount:     "ACC002",
		Amount:        decimal.RequireFromString("100.00"),
		Currency:      "USD",
		PaymentType:   models.PaymentTypeDomestic,
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}
	if status != models.StatusCompleted {
		payment.FailureReason = "reason: " + string(status)
	}

	outcome := &service.AuditOutcome{Fraud: fraud}
	record, err := svc.RecordOutcome(context.Background(), payment, outcome, time.Now().Add(-processing))
	if err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	return record
}

func TestRecordOutcomeSnapshotsFraudResult(t *testing.T) {
	svc := service.NewAuditService(memory.NewAuditRepository())

	record := seedAudit(t, svc, "tx-fraud", models.StatusFraudCheckFailed, &models.FraudCheckResult{
		Fraudulent: true,
		Reason:     "Same account transfer detected",
		RiskScore:  0.96,
	}, 10*time.Millisecond)

	if record.FraudCheckPassed == nil || *record.FraudCheckPassed {
		t.Error("expected fraud check recorded as failed")
	}
	if record.FraudRiskScore == nil || *record.FraudRiskScore != 0.96 {
		t.Error("expected risk score snapshotted")
	}
	if record.FraudReason != "Same account transfer detected" {
		t.Errorf("unexpected fraud reason %q", record.FraudReason)
	}
}

func TestRecordOutcomeWithoutFraudCheck(t *testing.T) {
	svc := service.NewAuditService(memory.NewAuditRepository())

	record := seedAudit(t, svc, "tx-nofraud", models.StatusAccountValidationFailed, nil, time.Millisecond)
	if record.FraudCheckPassed != nil {
		t.Error("expected no fraud verdict when the check never ran")
	}
	if record.FraudReason != "Fraud check not performed" {
		t.Errorf("unexpected fraud reason %q", record.FraudReason)
	}
}

func TestRecordOutcomeRequiresPayment(t *testing.T) {
	svc := service.NewAuditService(memory.NewAuditRepository())

	if _, err := svc.RecordOutcome(context.Background(), nil, nil, time.Now()); err == nil {
		t.Fatal("expected error for nil payment")
	}
	if _, err := svc.RecordOutcome(context.Background(), &models.Payment{}, nil, time.Now()); err == nil {
		t.Fatal("expected error for missing transaction id")
	}
}

func TestAuditQueries(t *testing.T) {
	svc := service.NewAuditService(memory.NewAuditRepository())
	ctx := context.Background()

	seedAudit(t, svc, "tx-1", models.StatusCompleted, &models.FraudCheckResult{RiskScore: 0.1, Reason: "ok"}, 5*time.Millisecond)
	seedAudit(t, svc, "tx-2", models.StatusFraudCheckFailed, &models.FraudCheckResult{Fraudulent: true, RiskScore: 0.9, Reason: "bad"}, 5*time.Millisecond)
	seedAudit(t, svc, "tx-3", models.StatusInsufficientBalance, &models.FraudCheckResult{RiskScore: 0.2, Reason: "ok"}, 5*time.Millisecond)

	byTx, err := svc.GetByTransactionID(ctx, "tx-2")
	if err != nil {
		t.Fatalf("GetByTransactionID: %v", err)
	}
	if len(byTx) != 1 || byTx[0].FinalStatus != models.StatusFraudCheckFailed {
		t.Errorf("unexpected result for tx-2: %+v", byTx)
	}

	byAccount, err := svc.GetByAccount(ctx, "ACC002")
	if err != nil {
		t.Fatalf("GetByAccount: %v", err)
	}
	if len(byAccount) != 3 {
		t.Errorf("expected 3 records for ACC002, got %d", len(byAccount))
	}

	byStatus, err := svc.GetByStatus(ctx, models.StatusCompleted)
	if err != nil {
		t.Fatalf("GetByStatus: %v", err)
	}
	if len(byStatus) != 1 {
		t.Errorf("expected 1 completed record, got %d", len(byStatus))
	}

	fraudulent, err := svc.GetFraudulent(ctx)
	if err != nil {
		t.Fatalf("GetFraudulent: %v", err)
	}
	if len(fraudulent) != 1 || fraudulent[0].TransactionID != "tx-2" {
		t.Errorf("unexpected fraudulent set: %+v", fraudulent)
	}

	now := time.Now().UTC()
	inRange, err := svc.GetByTimeRange(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	if err != nil {
		t.Fatalf("GetByTimeRange: %v", err)
	}
	if len(inRange) != 3 {
		t.Errorf("expected all records in range, got %d", len(inRange))
	}

	if _, err := svc.GetByTimeRange(ctx, now, now.Add(-time.Hour)); err == nil {
		t.Error("expected error for inverted time range")
	}

	if _, err := svc.GetByTransactionID(ctx, "tx-unknown"); !errors.Is(err, models.ErrAuditNotFound) {
		t.Errorf("expected ErrAuditNotFound for unknown transaction, got %v", err)
	}
}

func TestProcessingTimeMetrics(t *testing.T) {
	svc := service.NewAuditService(memory.NewAuditRepository())
	ctx := context.Background()

	avg, err := svc.AverageProcessingTimeMs(ctx)
	if err != nil {
		t.Fatalf("AverageProcessingTimeMs: %v", err)
	}
	if avg != 0 {
		t.Errorf("expected zero average with no audits, got %f", avg)
	}

	seedAudit(t, svc, "tx-1", models.StatusCompleted, &models.FraudCheckResult{Reason: "ok"}, 100*time.Millisecond)
	seedAudit(t, svc, "tx-2", models.StatusCompleted, &models.FraudCheckResult{Reason: "ok"}, 300*time.Millisecond)
	// Failures are excluded from the completed-payment average.
	seedAudit(t, svc, "tx-3", models.StatusFailed, nil, 10*time.Second)

	avg, err = svc.AverageProcessingTimeMs(ctx)
	if err != nil {
		t.Fatalf("AverageProcessingTimeMs: %v", err)
	}
	if avg < 100 || avg > 600 {
		t.Errorf("average %f outside expected window", avg)
	}
}

func TestMaxProcessingTime(t *testing.T) {
	svc := service.NewAuditService(memory.NewAuditRepository())
	ctx := context.Background()

	max, err := svc.MaxProcessingTimeMs(ctx)
	if err != nil {
		t.Fatalf("MaxProcessingTimeMs: %v", err)
	}
	if max != 0 {
		t.Errorf("expected zero max with no audits, got %d", max)
	}

	seedAudit(t, svc, "tx-1", models.StatusCompleted, &models.FraudCheckResult{Reason: "ok"}, 100*time.Millisecond)
	seedAudit(t, svc, "tx-2", models.StatusCompleted, &models.FraudCheckResult{Reason: "ok"}, 400*time.Millisecond)
	// Failures are excluded from the completed-payment maximum.
	seedAudit(t, svc, "tx-3", models.StatusFailed, nil, 10*time.Second)

	max, err = svc.MaxProcessingTimeMs(ctx)
	if err != nil {
		t.Fatalf("MaxProcessingTimeMs: %v", err)
	}
	if max < 400 || max > 1000 {
		t.Errorf("max %d outside expected window", max)
	}
}

func TestFraudDetectionRate(t *testing.T) {
	svc := service.NewAuditService(memory.NewAuditRepository())
	ctx := context.Background()

	rate, err := svc.FraudDetectionRate(ctx)
	if err != nil {
		t.Fatalf("FraudDetectionRate: %v", err)
	}
	if rate != 0 {
		t.Errorf("expected zero rate with no audits, got %f", rate)
	}

	seedAudit(t, svc, "tx-1", models.StatusCompleted, &models.FraudCheckResult{Reason: "ok"}, time.Millisecond)
	seedAudit(t, svc, "tx-2", models.StatusFraudCheckFailed, &models.FraudCheckResult{Fraudulent: true, Reason: "bad"}, time.Millisecond)
	seedAudit(t, svc, "tx-3", models.StatusFraudCheckFailed, &models.FraudCheckResult{Fraudulent: true, Reason: "bad"}, time.Millisecond)
	seedAudit(t, svc, "tx-4", models.StatusCompleted, &models.FraudCheckResult{Reason: "ok"}, time.Millisecond)

	rate, err = svc.FraudDetectionRate(ctx)
	if err != nil {
		t.Fatalf("FraudDetectionRate: %v", err)
	}
	if rate != 50 {
		t.Errorf("expected 50%% fraud rate, got %f", rate)
	}
}

func TestHighRiskAudits(t *testing.T) {
	svc := service.NewAuditService(memory.NewAuditRepository())
	ctx := context.Background()

	seedAudit(t, svc, "tx-ok", models.StatusCompleted, &models.FraudCheckResult{RiskScore: 0.1, Reason: "ok"}, time.Millisecond)
	seedAudit(t, svc, "tx-score", models.StatusCompleted, &models.FraudCheckResult{RiskScore: 0.75, Reason: "ok"}, time.Millisecond)
	seedAudit(t, svc, "tx-fraud", models.StatusFraudCheckFailed, &models.FraudCheckResult{Fraudulent: true, RiskScore: 0.5, Reason: "bad"}, time.Millisecond)
	seedAudit(t, svc, "tx-slow", models.StatusCompleted, &models.FraudCheckResult{RiskScore: 0.1, Reason: "ok"}, 6*time.Second)

	flagged, err := svc.HighRiskAudits(ctx)
	if err != nil {
		t.Fatalf("HighRiskAudits: %v", err)
	}
	if len(flagged) != 3 {
		t.Fatalf("expected 3 flagged records, got %d", len(flagged))
	}
	for _, record := range flagged {
		if record.TransactionID == "tx-ok" {
			t.Error("tx-ok must not be flagged for review")
		}
	}
}

func TestAccountAnalytics(t *testing.T) {
	svc := service.NewAuditService(memory.NewAuditRepository())
	ctx := context.Background()

	seedAudit(t, svc, "tx-1", models.StatusCompleted, &models.FraudCheckResult{RiskScore: 0.1, Reason: "ok"}, 50*time.Millisecond)
	seedAudit(t, svc, "tx-2", models.StatusFraudCheckFailed, &models.FraudCheckResult{Fraudulent: true, RiskScore: 0.9, Reason: "bad"}, 20*time.Millisecond)

	analytics, err := svc.AccountAnalytics(ctx, "ACC001")
	if err != nil {
		t.Fatalf("AccountAnalytics: %v", err)
	}
	if analytics.TotalTransactions != 2 {
		t.Errorf("expected 2 transactions, got %d", analytics.TotalTransactions)
	}
	if analytics.FraudDetectedCount != 1 {
		t.Errorf("expected 1 fraud detection, got %d", analytics.FraudDetectedCount)
	}
	if analytics.FraudPercentage != 50 {
		t.Errorf("expected 50%% fraud, got %f", analytics.FraudPercentage)
	}
	if analytics.StatusBreakdown[models.StatusCompleted] != 1 {
		t.Errorf("unexpected status breakdown: %+v", analytics.StatusBreakdown)
	}
	if analytics.MaxProcessingTimeMs <= 0 {
		t.Errorf("expected positive max processing time, got %d", analytics.MaxProcessingTimeMs)
	}
}

func TestDailySummary(t *testing.T) {
	svc := service.NewAuditService(memory.NewAuditRepository())
	ctx := context.Background()

	seedAudit(t, svc, "tx-1", models.StatusCompleted, &models.FraudCheckResult{Reason: "ok"}, time.Millisecond)
	seedAudit(t, svc, "tx-2", models.StatusInsufficientBalance, &models.FraudCheckResult{Reason: "ok"}, time.Millisecond)

	summary, err := svc.DailySummary(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("DailySummary: %v", err)
	}
	if summary.TotalTransactions != 2 {
		t.Errorf("expected 2 transactions, got %d", summary.TotalTransactions)
	}
	if summary.SuccessfulTransactions != 1 || summary.FailedTransactions != 1 {
		t.Errorf("unexpected success/failure split: %d/%d",
			summary.SuccessfulTransactions, summary.FailedTransactions)
	}
	if summary.SuccessRate != 50 {
		t.Errorf("expected 50%% success rate, got %f", summary.SuccessRate)
	}
	if len(summary.TopFailureReasons) != 1 {
		t.Errorf("expected one failure reason bucket, got %+v", summary.TopFailureReasons)
	}
}
