/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the ledger-service. By defining an interface,
 * we decouple the ledger's business logic from the specific storage implementation
 * (PostgreSQL or in-memory), making the code more modular and easier to test.
 *
 * @dependencies
 * - context: Standard Go library.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"

	"github.com/creditline/ledger-service/internal/domain"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

// Repository defines the set of methods for interacting with ledger storage.
//
// ApplyTransaction is the mutation boundary: the conditional balance update
// and the log append happen as one indivisible unit per account. Two
// concurrent calls for the same account never interleave their
// read-check-write sequences, and a rejected or failed call leaves both the
// balance and the log untouched.
type Repository interface {
	// Account methods
	GetAccount(ctx context.Context, accountID int64) (*domain.Account, error)
	CreateAccount(ctx context.Context, account *domain.Account) error

	// Ledger methods
	ApplyTransaction(ctx context.Context, tx *domain.Transaction) (*domain.TransactionResult, error)
	LastTransactions(ctx context.Context, accountID int64, n int) ([]domain.Transaction, error)
}
