package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/paycore/payment-processor/internal/models"
	"github.com/paycore/payment-processor/internal/telemetry"
)

var accountPattern = regexp.MustCompile(`^ACC\d{3,}$`)

// AccountService holds account balances behind a single mutex so concurrent
// transfers touching the same account serialize their read-modify-write.
// It stands in for a real ledger; the orchestrator only sees the interface.
type AccountService struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

func NewAccountService() *AccountService {
	s := &AccountService{}
	s.seed()
	return s
}

func (s *AccountService) seed() {
	s.balances = map[string]decimal.Decimal{
		"ACC001": decimal.RequireFromString("100000.00"),
		"ACC002": decimal.RequireFromString("50000.00"),
		"ACC003": decimal.RequireFromString("25000.00"),
		"ACC004": decimal.RequireFromString("5000.00"),
		"ACC005": decimal.RequireFromString("1000.00"),
	}
}

// Reset restores the seeded balances. Intended for tests.
func (s *AccountService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed()
}

func (s *AccountService) ValidateAccount(_ context.Context, accountNumber string) (*models.AccountValidation, error) {
	resp := &models.AccountValidation{AccountNumber: accountNumber}

	if !isValidAccount(accountNumber) {
		resp.Message = "Invalid account number"
		telemetry.Logger.Warn("Account validation failed", zap.String("account", accountNumber))
		return resp, nil
	}

	s.mu.Lock()
	balance := s.balanceLocked(accountNumber)
	s.mu.Unlock()

	resp.Valid = true
	resp.AvailableBalance = balance
	resp.Message = "Account is valid"
	return resp, nil
}

func (s *AccountService) CheckBalance(_ context.Context, accountNumber string, amount decimal.Decimal) (*models.BalanceCheck, error) {
	resp := &models.BalanceCheck{AccountNumber: accountNumber}

	if !isValidAccount(accountNumber) {
		resp.Message = "Invalid account number"
		return resp, nil
	}

	s.mu.Lock()
	balance := s.balanceLocked(accountNumber)
	s.mu.Unlock()

	resp.Valid = true
	resp.AvailableBalance = balance

	if balance.GreaterThanOrEqual(amount) {
		resp.SufficientBalance = true
		resp.Message = "Sufficient balance available"
	} else {
		resp.Message = fmt.Sprintf("Insufficient balance. Available: %s, Required: %s",
			balance.StringFixed(2), amount.StringFixed(2))
	}
	return resp, nil
}

// Transfer applies the debit and credit under one lock. The balance is
// re-checked here so a concurrent transfer cannot overdraw the account
// between the orchestrator's balance check and the funds movement.
func (s *AccountService) Transfer(_ context.Context, from, to string, amount decimal.Decimal) error {
	if !isValidAccount(from) || !isValidAccount(to) {
		return models.ErrAccountNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fromBalance := s.balanceLocked(from)
	if fromBalance.LessThan(amount) {
		return models.ErrInsufficientBalance
	}

	s.balances[from] = fromBalance.Sub(amount)
	s.balances[to] = s.balanceLocked(to).Add(amount)

	telemetry.Logger.Info("Funds transferred",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("amount", amount.StringFixed(2)),
	)
	return nil
}

// Balance returns the current balance of an account. Intended for tests.
func (s *AccountService) Balance(accountNumber string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balanceLocked(accountNumber)
}

// balanceLocked materializes unseeded accounts on first touch with a
// deterministic balance derived from the account number, keeping repeated
// runs reproducible. Callers must hold s.mu.
func (s *AccountService) balanceLocked(accountNumber string) decimal.Decimal {
	if balance, ok := s.balances[accountNumber]; ok {
		return balance
	}
	balance := derivedBalance(accountNumber)
	s.balances[accountNumber] = balance
	return balance
}

// derivedBalance maps an account number onto [1000.00, 100000.00).
func derivedBalance(accountNumber string) decimal.Decimal {
	h := fnv.New64a()
	h.Write([]byte(accountNumber))
	cents := int64(h.Sum64() % 9900000)
	return decimal.New(100000+cents, -2)
}

func isValidAccount(accountNumber string) bool {
	return accountPattern.MatchString(strings.TrimSpace(accountNumber))
}
