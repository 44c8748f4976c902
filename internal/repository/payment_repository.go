package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paycore/payment-processor/internal/models"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS payments (
			transaction_id VARCHAR(64) PRIMARY KEY,
			from_account VARCHAR(64) NOT NULL,
			to_account VARCHAR(64) NOT NULL,
			amount NUMERIC(19,2) NOT NULL,
			currency VARCHAR(8) NOT NULL,
			payment_type VARCHAR(32) NOT NULL,
			description TEXT,
			status VARCHAR(32) NOT NULL,
			failure_reason TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_from_account ON payments(from_account)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_to_account ON payments(to_account)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

func (r *PaymentRepository) Insert(ctx context.Context, p *models.Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (transaction_id, from_account, to_account, amount,
			currency, payment_type, description, status, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, p.TransactionID, p.FromAccount, p.ToAccount, p.Amount.StringFixed(2),
		p.Currency, string(p.PaymentType), p.Description, string(p.Status),
		nullable(p.FailureReason), p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT transaction_id, from_account, to_account, amount, currency,
			payment_type, description, status, failure_reason, created_at, updated_at
		FROM payments WHERE transaction_id = $1
	`, transactionID)

	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPaymentNotFound
	}
	return p, err
}

// TransitionStatus performs a compare-and-swap on the status column so a
// payment can only move forward through the lifecycle.
func (r *PaymentRepository) TransitionStatus(ctx context.Context, transactionID string, from, to models.PaymentStatus, failureReason string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $1, failure_reason = COALESCE($2, failure_reason), updated_at = $3
		WHERE transaction_id = $4 AND status = $5
	`, string(to), nullable(failureReason), time.Now().UTC(), transactionID, string(from))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PaymentRepository) ListByAccount(ctx context.Context, accountNumber string) ([]*models.Payment, error) {
	return r.queryPayments(ctx, `
		SELECT transaction_id, from_account, to_account, amount, currency,
			payment_type, description, status, failure_reason, created_at, updated_at
		FROM payments WHERE from_account = $1 OR to_account = $1
	`, accountNumber)
}

func (r *PaymentRepository) ListByStatus(ctx context.Context, status models.PaymentStatus) ([]*models.Payment, error) {
	return r.queryPayments(ctx, `
		SELECT transaction_id, from_account, to_account, amount, currency,
			payment_type, description, status, failure_reason, created_at, updated_at
		FROM payments WHERE status = $1
	`, string(status))
}

func (r *PaymentRepository) ListAll(ctx context.Context) ([]*models.Payment, error) {
	return r.queryPayments(ctx, `
		SELECT transaction_id, from_account, to_account, amount, currency,
			payment_type, description, status, failure_reason, created_at, updated_at
		FROM payments
	`)
}

func (r *PaymentRepository) queryPayments(ctx context.Context, query string, args ...any) ([]*models.Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var (
		p             models.Payment
		amount        string
		paymentType   string
		status        string
		description   sql.NullString
		failureReason sql.NullString
	)
	err := row.Scan(&p.TransactionID, &p.FromAccount, &p.ToAccount, &amount,
		&p.Currency, &paymentType, &description, &status, &failureReason,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	p.PaymentType = models.PaymentType(paymentType)
	p.Status = models.PaymentStatus(status)
	p.Description = description.String
	p.FailureReason = failureReason.String
	return &p, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
