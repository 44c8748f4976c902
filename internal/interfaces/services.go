package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/paycore/payment-processor/internal/models"
)

// AccountService validates accounts and moves funds between them. The
// orchestrator treats it as a black box and surfaces its messages verbatim.
type AccountService interface {
	ValidateAccount(ctx context.Context, accountNumber string) (*models.AccountValidation, error)
	CheckBalance(ctx context.Context, accountNumber string, amount decimal.Decimal) (*models.BalanceCheck, error)
	// Transfer debits from and credits to in one atomic step. Either both
	// balances change or neither does.
	Transfer(ctx context.Context, from, to string, amount decimal.Decimal) error
}

// FraudChecker produces a fraud verdict and risk score for a proposed
// transfer. Implementations may be local scoring or a remote screener.
type FraudChecker interface {
	CheckFraud(ctx context.Context, req *models.FraudCheckRequest) (*models.FraudCheckResult, error)
}

// AccountLocker serializes balance read-modify-write cycles per account.
// LockAccounts acquires both accounts in a deadlock-free order and returns
// a release function.
type AccountLocker interface {
	LockAccounts(ctx context.Context, a, b string) (release func(), err error)
}

// TransitionPublisher emits payment status-transition events for downstream
// consumers. Publish failures must not fail the payment.
type TransitionPublisher interface {
	PublishTransition(ctx context.Context, transactionID string, from, to models.PaymentStatus) error
}
