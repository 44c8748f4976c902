package interfaces

import (
	"context"

	"github.com/paycore/payment-processor/internal/models"
)

// PaymentRepository defines the contract for payment data access.
type PaymentRepository interface {
	Insert(ctx context.Context, payment *models.Payment) error
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	// TransitionStatus moves the payment from one status to another with a
	// compare-and-swap on the current status. It returns the number of rows
	// changed; zero means the payment was not in the expected status.
	TransitionStatus(ctx context.Context, transactionID string, from, to models.PaymentStatus, failureReason string) (int64, error)
	ListByAccount(ctx context.Context, accountNumber string) ([]*models.Payment, error)
	ListByStatus(ctx context.Context, status models.PaymentStatus) ([]*models.Payment, error)
	ListAll(ctx context.Context) ([]*models.Payment, error)
}
