/**
 * @description
 * This file provides an in-memory implementation of the `Repository` interface.
 * It backs the test suite and serves as the storage layer when no DATABASE_URL
 * is configured, keeping local development free of external services.
 *
 * Concurrency model: each account carries its own mutex that serializes the
 * validate-then-apply sequence, so contention is scoped to a single account's
 * submissions. The balance is held in an atomic and the log behind an RWMutex,
 * so the read paths (GetAccount, LastTransactions) never take the mutation
 * lock and never block writers.
 */

package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/creditline/ledger-service/internal/domain"
)

type memoryAccount struct {
	id    int64
	name  string
	limit int64

	mu      sync.Mutex // serializes the read-check-write sequence
	balance atomic.Int64

	entriesMu sync.RWMutex
	entries   []domain.Transaction
}

// MemoryRepository is a thread-safe, process-local Repository implementation.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[int64]*memoryAccount
	seq      atomic.Int64 // monotonic transaction id, shared across accounts
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[int64]*memoryAccount)}
}

func (m *MemoryRepository) account(accountID int64) (*memoryAccount, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[accountID]
	return a, ok
}

// GetAccount returns a copy of the account's current committed state.
func (m *MemoryRepository) GetAccount(ctx context.Context, accountID int64) (*domain.Account, error) {
	a, ok := m.account(accountID)
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &domain.Account{
		ID:      a.id,
		Name:    a.name,
		Balance: a.balance.Load(),
		Limit:   a.limit,
	}, nil
}

// CreateAccount registers a new account. Returns ErrAccountExists when the id
// is already taken, which makes startup seeding idempotent.
func (m *MemoryRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; ok {
		return ErrAccountExists
	}
	a := &memoryAccount{
		id:    account.ID,
		name:  account.Name,
		limit: account.Limit,
	}
	a.balance.Store(account.Balance)
	m.accounts[account.ID] = a
	return nil
}

// ApplyTransaction validates and applies the transaction under the account's
// mutation lock. The log append happens before the lock is released, so the
// entry order always matches the order balances were committed in.
func (m *MemoryRepository) ApplyTransaction(ctx context.Context, tx *domain.Transaction) (*domain.TransactionResult, error) {
	a, ok := m.account(tx.AccountID)
	if !ok {
		return nil, ErrAccountNotFound
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	newBalance, err := domain.CheckedBalance(a.balance.Load(), a.limit, tx.Delta())
	if err != nil {
		return nil, err
	}

	a.balance.Store(newBalance)
	tx.ID = m.seq.Add(1)

	a.entriesMu.Lock()
	a.entries = append(a.entries, *tx)
	a.entriesMu.Unlock()

	return &domain.TransactionResult{Limit: a.limit, Balance: newBalance}, nil
}

// LastTransactions returns up to n entries for the account, most recent first.
func (m *MemoryRepository) LastTransactions(ctx context.Context, accountID int64, n int) ([]domain.Transaction, error) {
	a, ok := m.account(accountID)
	if !ok {
		return []domain.Transaction{}, nil
	}

	a.entriesMu.RLock()
	defer a.entriesMu.RUnlock()

	if n > len(a.entries) {
		n = len(a.entries)
	}
	transactions := make([]domain.Transaction, 0, n)
	for i := len(a.entries) - 1; i >= len(a.entries)-n; i-- {
		transactions = append(transactions, a.entries[i])
	}
	return transactions, nil
}

// Compile-time check: ensure both implementations satisfy the interface.
var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*PostgresRepository)(nil)
)
