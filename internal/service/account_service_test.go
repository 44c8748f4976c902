package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/paycore/payment-processor/internal/models"
	"github.com/paycore/payment-processor/internal/service"
)

func TestValidateAccount(t *testing.T) {
	svc := service.NewAccountService()
	ctx := context.Background()

	valid, err := svc.ValidateAccount(ctx, "ACC001")
	if err != nil {
		t.Fatalf("ValidateAccount: %v", err)
	}
	if !valid.Valid {
		t.Fatal("ACC001 must be valid")
	}
	if !valid.AvailableBalance.Equal(decimal.RequireFromString("100000.00")) {
		t.Errorf("expected seeded balance 100000.00, got %s", valid.AvailableBalance)
	}

	for _, account := range []string{"", "  ", "BOGUS", "ACC12", "acc001"} {
		resp, err := svc.ValidateAccount(ctx, account)
		if err != nil {
			t.Fatalf("ValidateAccount(%q): %v", account, err)
		}
		if resp.Valid {
			t.Errorf("account %q must be invalid", account)
		}
	}
}

func TestValidateAccountUnseededPatternIsDeterministic(t *testing.T) {
	svc := service.NewAccountService()
	ctx := context.Background()

	first, err := svc.ValidateAccount(ctx, "ACC999")
	if err != nil {
		t.Fatalf("ValidateAccount: %v", err)
	}
	if !first.Valid {
		t.Fatal("ACC999 matches the account pattern and must validate")
	}

	second, _ := svc.ValidateAccount(ctx, "ACC999")
	if !first.AvailableBalance.Equal(second.AvailableBalance) {
		t.Errorf("derived balance must be stable, got %s then %s",
			first.AvailableBalance, second.AvailableBalance)
	}
}

func TestCheckBalance(t *testing.T) {
	svc := service.NewAccountService()
	ctx := context.Background()

	sufficient, err := svc.CheckBalance(ctx, "ACC005", decimal.RequireFromString("1000.00"))
	if err != nil {
		t.Fatalf("CheckBalance: %v", err)
	}
	if !sufficient.SufficientBalance {
		t.Error("exact balance must count as sufficient")
	}

	insufficient, err := svc.CheckBalance(ctx, "ACC005", decimal.RequireFromString("1000.01"))
	if err != nil {
		t.Fatalf("CheckBalance: %v", err)
	}
	if insufficient.SufficientBalance {
		t.Error("expected insufficient balance")
	}
	if !strings.Contains(insufficient.Message, "Insufficient balance") {
		t.Errorf("expected explanatory message, got %q", insufficient.Message)
	}

	invalid, err := svc.CheckBalance(ctx, "NOPE", decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("CheckBalance: %v", err)
	}
	if invalid.Valid || invalid.SufficientBalance {
		t.Error("invalid account must fail the balance check")
	}
}

func TestTransfer(t *testing.T) {
	svc := service.NewAccountService()
	ctx := context.Background()

	if err := svc.Transfer(ctx, "ACC001", "ACC002", decimal.RequireFromString("2500.00")); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if got := svc.Balance("ACC001"); !got.Equal(decimal.RequireFromString("97500.00")) {
		t.Errorf("expected ACC001 debited to 97500.00, got %s", got)
	}
	if got := svc.Balance("ACC002"); !got.Equal(decimal.RequireFromString("52500.00")) {
		t.Errorf("expected ACC002 credited to 52500.00, got %s", got)
	}
}

func TestTransferInsufficientLeavesBalancesUntouched(t *testing.T) {
	svc := service.NewAccountService()

	err := svc.Transfer(context.Background(), "ACC005", "ACC001", decimal.RequireFromString("2000.00"))
	if !errors.Is(err, models.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := svc.Balance("ACC005"); !got.Equal(decimal.RequireFromString("1000.00")) {
		t.Errorf("debit must not happen, got %s", got)
	}
	if got := svc.Balance("ACC001"); !got.Equal(decimal.RequireFromString("100000.00")) {
		t.Errorf("credit must not happen, got %s", got)
	}
}

func TestTransferInvalidAccount(t *testing.T) {
	svc := service.NewAccountService()

	if err := svc.Transfer(context.Background(), "BOGUS", "ACC001", decimal.NewFromInt(1)); !errors.Is(err, models.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestConcurrentTransfersSerialize(t *testing.T) {
	svc := service.NewAccountService()
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if err := svc.Transfer(ctx, "ACC001", "ACC002", decimal.RequireFromString("10.00")); err != nil {
				t.Errorf("Transfer: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := svc.Balance("ACC001"); !got.Equal(decimal.RequireFromString("99500.00")) {
		t.Errorf("expected ACC001 at 99500.00 after %d transfers, got %s", workers, got)
	}
	if got := svc.Balance("ACC002"); !got.Equal(decimal.RequireFromString("50500.00")) {
		t.Errorf("expected ACC002 at 50500.00 after %d transfers, got %s", workers, got)
	}
}
