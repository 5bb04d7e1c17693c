package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/creditline/ledger-service/internal/domain"
)

func newSeededMemoryRepository(t *testing.T, balance, limit int64) *MemoryRepository {
	t.Helper()
	repo := NewMemoryRepository()
	err := repo.CreateAccount(context.Background(), &domain.Account{
		ID:      1,
		Name:    "test account",
		Balance: balance,
		Limit:   limit,
	})
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	return repo
}

func applyTestTransaction(t *testing.T, repo Repository, accountID, amount int64, kind domain.TransactionKind, note string) (*domain.TransactionResult, error) {
	t.Helper()
	tx := &domain.Transaction{
		AccountID:  accountID,
		Amount:     amount,
		Kind:       kind,
		Note:       note,
		OccurredAt: time.Now().UTC().Truncate(time.Second),
	}
	return repo.ApplyTransaction(context.Background(), tx)
}

func TestMemoryRepositoryApplyTransaction(t *testing.T) {
	t.Run("credit then debit into overdraft", func(t *testing.T) {
		repo := newSeededMemoryRepository(t, 0, 100000)

		result, err := applyTestTransaction(t, repo, 1, 10000, domain.KindCredit, "p0")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Limit != 100000 || result.Balance != 10000 {
			t.Fatalf("expected limit=100000 balance=10000, got %+v", result)
		}

		result, err = applyTestTransaction(t, repo, 1, 20000, domain.KindDebit, "w0")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Balance != -10000 {
			t.Fatalf("expected balance=-10000, got %d", result.Balance)
		}
	})

	t.Run("rejection leaves balance and log untouched", func(t *testing.T) {
		repo := newSeededMemoryRepository(t, 0, 100000)

		if _, err := applyTestTransaction(t, repo, 1, 10000, domain.KindCredit, "p0"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := applyTestTransaction(t, repo, 1, 20000, domain.KindDebit, "w0"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err := applyTestTransaction(t, repo, 1, 95000, domain.KindDebit, "w1")
		if !errors.Is(err, domain.ErrLimitExceeded) {
			t.Fatalf("expected ErrLimitExceeded, got %v", err)
		}

		account, err := repo.GetAccount(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if account.Balance != -10000 {
			t.Fatalf("expected balance unchanged at -10000, got %d", account.Balance)
		}

		entries, err := repo.LastTransactions(context.Background(), 1, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 log entries after rejection, got %d", len(entries))
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		repo := NewMemoryRepository()
		_, err := applyTestTransaction(t, repo, 42, 100, domain.KindCredit, "test")
		if !errors.Is(err, ErrAccountNotFound) {
			t.Fatalf("expected ErrAccountNotFound, got %v", err)
		}
	})

	t.Run("assigns monotonic ids", func(t *testing.T) {
		repo := newSeededMemoryRepository(t, 0, 0)
		var previous int64
		for i := 0; i < 5; i++ {
			tx := &domain.Transaction{AccountID: 1, Amount: 1, Kind: domain.KindCredit, Note: "seq", OccurredAt: time.Now()}
			if _, err := repo.ApplyTransaction(context.Background(), tx); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tx.ID <= previous {
				t.Fatalf("expected strictly increasing ids, got %d after %d", tx.ID, previous)
			}
			previous = tx.ID
		}
	})
}

func TestMemoryRepositoryCreateAccount(t *testing.T) {
	repo := newSeededMemoryRepository(t, 0, 1000)

	err := repo.CreateAccount(context.Background(), &domain.Account{ID: 1, Limit: 9999})
	if !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}

	// The original account is untouched.
	account, err := repo.GetAccount(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Limit != 1000 {
		t.Fatalf("expected limit 1000, got %d", account.Limit)
	}
}

func TestMemoryRepositoryLastTransactions(t *testing.T) {
	t.Run("empty history yields empty slice", func(t *testing.T) {
		repo := newSeededMemoryRepository(t, 0, 1000)
		entries, err := repo.LastTransactions(context.Background(), 1, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 0 {
			t.Fatalf("expected no entries, got %d", len(entries))
		}
	})

	t.Run("returns newest first, capped at n", func(t *testing.T) {
		repo := newSeededMemoryRepository(t, 0, 0)
		for i := 0; i < 15; i++ {
			if _, err := applyTestTransaction(t, repo, 1, 100, domain.KindCredit, fmt.Sprintf("P %d", i)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		entries, err := repo.LastTransactions(context.Background(), 1, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 10 {
			t.Fatalf("expected 10 entries, got %d", len(entries))
		}
		for i := 1; i < len(entries); i++ {
			if entries[i].ID >= entries[i-1].ID {
				t.Fatalf("expected strictly descending ids, got %d before %d", entries[i-1].ID, entries[i].ID)
			}
		}
		if entries[0].Note != "P 14" {
			t.Fatalf("expected newest entry first, got note %q", entries[0].Note)
		}
	})

	t.Run("fewer than n returns all of them", func(t *testing.T) {
		repo := newSeededMemoryRepository(t, 0, 0)
		for i := 0; i < 3; i++ {
			if _, err := applyTestTransaction(t, repo, 1, 100, domain.KindCredit, fmt.Sprintf("P %d", i)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		entries, err := repo.LastTransactions(context.Background(), 1, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}
	})
}

func TestMemoryRepositoryConcurrentDebitsNoDoubleCounting(t *testing.T) {
	const (
		startBalance = 50000
		limit        = 100000
		debitAmount  = 20000
		workers      = 50
	)
	// floor((B+L)/A) submissions can succeed before the floor is hit.
	wantSucceeded := (startBalance + limit) / debitAmount

	repo := newSeededMemoryRepository(t, startBalance, limit)

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := applyTestTransaction(t, repo, 1, debitAmount, domain.KindDebit, "drain")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrLimitExceeded):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != wantSucceeded {
		t.Fatalf("expected exactly %d debits to succeed, got %d (rejected %d)", wantSucceeded, succeeded, rejected)
	}

	account, err := repo.GetAccount(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantBalance := int64(startBalance - debitAmount*wantSucceeded)
	if account.Balance != wantBalance {
		t.Fatalf("expected final balance %d, got %d", wantBalance, account.Balance)
	}
	if account.Balance < -account.Limit {
		t.Fatalf("invariant violated: balance %d below floor %d", account.Balance, -account.Limit)
	}
}

func TestMemoryRepositoryConcurrentMixedTrafficHoldsInvariant(t *testing.T) {
	const (
		limit   = 5000
		workers = 8
		rounds  = 200
	)

	repo := newSeededMemoryRepository(t, 0, limit)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var acceptedSum int64

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				kind := domain.KindCredit
				amount := int64(worker%7 + 1)
				if (worker+i)%3 == 0 {
					kind = domain.KindDebit
					amount = int64(worker%11 + 1)
				}
				tx := &domain.Transaction{AccountID: 1, Amount: amount, Kind: kind, Note: "mix", OccurredAt: time.Now()}
				_, err := repo.ApplyTransaction(context.Background(), tx)
				if err == nil {
					mu.Lock()
					acceptedSum += tx.Delta()
					mu.Unlock()
				} else if !errors.Is(err, domain.ErrLimitExceeded) {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	account, err := repo.GetAccount(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Balance != acceptedSum {
		t.Fatalf("final balance %d does not equal sum of accepted deltas %d", account.Balance, acceptedSum)
	}
	if account.Balance < -int64(limit) {
		t.Fatalf("invariant violated: balance %d below floor %d", account.Balance, -limit)
	}
}
