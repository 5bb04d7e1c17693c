package store

import (
	"context"
	"testing"

	"github.com/creditline/ledger-service/internal/domain"
)

func TestSeedAccountsIsIdempotent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := SeedAccounts(ctx, repo, DefaultSeedAccounts()); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}
	if err := SeedAccounts(ctx, repo, DefaultSeedAccounts()); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	for _, want := range DefaultSeedAccounts() {
		account, err := repo.GetAccount(ctx, want.ID)
		if err != nil {
			t.Fatalf("expected account %d to exist: %v", want.ID, err)
		}
		if account.Limit != want.Limit {
			t.Fatalf("account %d: expected limit %d, got %d", want.ID, want.Limit, account.Limit)
		}
		if account.Balance != 0 {
			t.Fatalf("account %d: expected initial balance 0, got %d", want.ID, account.Balance)
		}
	}
}

func TestSeedAccountsDoesNotResetExistingState(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := SeedAccounts(ctx, repo, DefaultSeedAccounts()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, err := applyTestTransaction(t, repo, 1, 5000, domain.KindCredit, "keep"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	// A restart re-runs seeding; committed balances survive it.
	if err := SeedAccounts(ctx, repo, DefaultSeedAccounts()); err != nil {
		t.Fatalf("re-seed failed: %v", err)
	}
	account, err := repo.GetAccount(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Balance != 5000 {
		t.Fatalf("expected balance 5000 to survive re-seeding, got %d", account.Balance)
	}
}
