package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paycore/payment-processor/internal/models"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS payment_audits (
			id BIGSERIAL PRIMARY KEY,
			transaction_id VARCHAR(64) NOT NULL,
			from_account VARCHAR(64) NOT NULL,
			to_account VARCHAR(64) NOT NULL,
			amount NUMERIC(19,2) NOT NULL,
			currency VARCHAR(8) NOT NULL,
			payment_type VARCHAR(32) NOT NULL,
			description TEXT,
			source_account_valid BOOLEAN,
			destination_account_valid BOOLEAN,
			fraud_check_passed BOOLEAN,
			fraud_reason TEXT,
			fraud_risk_score DOUBLE PRECISION,
			sufficient_balance BOOLEAN,
			final_status VARCHAR(32) NOT NULL,
			failure_reason TEXT,
			payment_initiated_at TIMESTAMP NOT NULL,
			processing_time_ms BIGINT NOT NULL DEFAULT 0,
			audited_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_audits_transaction_id ON payment_audits(transaction_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_audits_final_status ON payment_audits(final_status)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_audits_audited_at ON payment_audits(audited_at)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

func (r *AuditRepository) Append(ctx context.Context, a *models.AuditRecord) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO payment_audits (transaction_id, from_account, to_account,
			amount, currency, payment_type, description,
			source_account_valid, destination_account_valid,
			fraud_check_passed, fraud_reason, fraud_risk_score, sufficient_balance,
			final_status, failure_reason, payment_initiated_at, processing_time_ms, audited_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`, a.TransactionID, a.FromAccount, a.ToAccount, a.Amount.StringFixed(2),
		a.Currency, string(a.PaymentType), nullString(a.Description),
		nullBool(a.SourceAccountValid), nullBool(a.DestinationAccountValid),
		nullBool(a.FraudCheckPassed), nullString(a.FraudReason), nullFloat(a.FraudRiskScore),
		nullBool(a.SufficientBalance), string(a.FinalStatus), nullString(a.FailureReason),
		a.PaymentInitiatedAt, a.ProcessingTimeMs, a.AuditedAt).Scan(&a.ID)
}

func (r *AuditRepository) FindByTransactionID(ctx context.Context, transactionID string) ([]*models.AuditRecord, error) {
	return r.queryAudits(ctx, selectAudit+` WHERE transaction_id = $1 ORDER BY audited_at DESC`, transactionID)
}

func (r *AuditRepository) FindByAccount(ctx context.Context, accountNumber string) ([]*models.AuditRecord, error) {
	return r.queryAudits(ctx, selectAudit+` WHERE from_account = $1 OR to_account = $1 ORDER BY audited_at DESC`, accountNumber)
}

func (r *AuditRepository) FindByFinalStatus(ctx context.Context, status models.PaymentStatus) ([]*models.AuditRecord, error) {
	return r.queryAudits(ctx, selectAudit+` WHERE final_status = $1 ORDER BY audited_at DESC`, string(status))
}

func (r *AuditRepository) FindByFraudCheckPassed(ctx context.Context, passed bool) ([]*models.AuditRecord, error) {
	return r.queryAudits(ctx, selectAudit+` WHERE fraud_check_passed = $1 ORDER BY audited_at DESC`, passed)
}

func (r *AuditRepository) FindByTimeRange(ctx context.Context, start, end time.Time) ([]*models.AuditRecord, error) {
	return r.queryAudits(ctx, selectAudit+` WHERE audited_at BETWEEN $1 AND $2 ORDER BY audited_at DESC`, start, end)
}

func (r *AuditRepository) FindAll(ctx context.Context) ([]*models.AuditRecord, error) {
	return r.queryAudits(ctx, selectAudit)
}

const selectAudit = `
	SELECT id, transaction_id, from_account, to_account, amount, currency,
		payment_type, description, source_account_valid, destination_account_valid,
		fraud_check_passed, fraud_reason, fraud_risk_score, sufficient_balance,
		final_status, failure_reason, payment_initiated_at, processing_time_ms, audited_at
	FROM payment_audits`

func (r *AuditRepository) queryAudits(ctx context.Context, query string, args ...any) ([]*models.AuditRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.AuditRecord
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

func scanAudit(rows *sql.Rows) (*models.AuditRecord, error) {
	var (
		a             models.AuditRecord
		amount        string
		paymentType   string
		finalStatus   string
		description   sql.NullString
		srcValid      sql.NullBool
		dstValid      sql.NullBool
		fraudPassed   sql.NullBool
		fraudReason   sql.NullString
		riskScore     sql.NullFloat64
		sufficient    sql.NullBool
		failureReason sql.NullString
	)
	err := rows.Scan(&a.ID, &a.TransactionID, &a.FromAccount, &a.ToAccount,
		&amount, &a.Currency, &paymentType, &description,
		&srcValid, &dstValid, &fraudPassed, &fraudReason, &riskScore, &sufficient,
		&finalStatus, &failureReason, &a.PaymentInitiatedAt, &a.ProcessingTimeMs, &a.AuditedAt)
	if err != nil {
		return nil, err
	}

	a.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	a.PaymentType = models.PaymentType(paymentType)
	a.FinalStatus = models.PaymentStatus(finalStatus)
	a.Description = description.String
	a.FraudReason = fraudReason.String
	a.FailureReason = failureReason.String
	a.SourceAccountValid = boolPtr(srcValid)
	a.DestinationAccountValid = boolPtr(dstValid)
	a.FraudCheckPassed = boolPtr(fraudPassed)
	a.SufficientBalance = boolPtr(sufficient)
	if riskScore.Valid {
		a.FraudRiskScore = &riskScore.Float64
	}
	return &a, nil
}

func boolPtr(b sql.NullBool) *bool {
	if !b.Valid {
		return nil
	}
	return &b.Bool
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
