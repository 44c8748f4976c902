package interfaces

import (
	"context"
	"time"

	"github.com/paycore/payment-processor/internal/models"
)

// AuditRepository is the append-only store for audit records. There is no
// update or delete: a record written once is immutable.
type AuditRepository interface {
	Append(ctx context.Context, record *models.AuditRecord) error
	FindByTransactionID(ctx context.Context, transactionID string) ([]*models.AuditRecord, error)
	FindByAccount(ctx context.Context, accountNumber string) ([]*models.AuditRecord, error)
	FindByFinalStatus(ctx context.Context, status models.PaymentStatus) ([]*models.AuditRecord, error)
	FindByFraudCheckPassed(ctx context.Context, passed bool) ([]*models.AuditRecord, error)
	FindByTimeRange(ctx context.Context, start, end time.Time) ([]*models.AuditRecord, error)
	FindAll(ctx context.Context) ([]*models.AuditRecord, error)
}
