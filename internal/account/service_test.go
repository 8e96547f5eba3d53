package account

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestOpenAccount(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	acc, err := svc.Open(ctx, "1234567890")
	if err != nil {
		t.Fatalf("open account: %v", err)
	}

	if acc.Status != StatusActive {
		t.Fatalf("expected ACTIVE status, got %s", acc.Status)
	}
	if !acc.Balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", acc.Balance)
	}
	if !acc.DailyWithdrawLimit.Equal(DefaultDailyWithdrawLimit) {
		t.Fatalf("unexpected withdraw limit: %s", acc.DailyWithdrawLimit)
	}
	if !acc.DailyTransferLimit.Equal(DefaultDailyTransferLimit) {
		t.Fatalf("unexpected transfer limit: %s", acc.DailyTransferLimit)
	}
}

func TestOpenDuplicateAccount(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Open(ctx, "1234567890"); err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := svc.Open(ctx, "1234567890"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetMissingAccount(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	if _, err := svc.Get(context.Background(), "0000000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCloseAccountWithBalance(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	acc, err := svc.Open(ctx, "1234567890")
	if err != nil {
		t.Fatalf("open account: %v", err)
	}

	acc.Balance = decimal.NewFromInt(100)
	if err := repo.Save(ctx, acc); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	if err := svc.Close(ctx, "1234567890"); !errors.Is(err, ErrBalanceRemaining) {
		t.Fatalf("expected ErrBalanceRemaining, got %v", err)
	}

	got, err := svc.Get(ctx, "1234567890")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.Status != StatusActive {
		t.Fatalf("account should stay ACTIVE, got %s", got.Status)
	}
}

func TestCloseAccount(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Open(ctx, "1234567890"); err != nil {
		t.Fatalf("open account: %v", err)
	}
	if err := svc.Close(ctx, "1234567890"); err != nil {
		t.Fatalf("close account: %v", err)
	}

	acc, err := svc.Get(ctx, "1234567890")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if acc.Status != StatusInactive {
		t.Fatalf("expected INACTIVE status, got %s", acc.Status)
	}
}
