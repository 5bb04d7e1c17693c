/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the necessary SQL queries to interact with the database tables
 * holding accounts and their transaction log.
 *
 * The submit path runs inside a single database transaction with a row lock on
 * the account (`SELECT ... FOR UPDATE`), so the limit check, the balance update,
 * and the log insert commit or roll back together.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creditline/ledger-service/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the accounts and transactions tables if they do not
// exist yet. The CHECK constraints mirror the limit rule enforced in Go code,
// so a bug above this layer still cannot persist an invariant violation.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			balance BIGINT NOT NULL DEFAULT 0,
			credit_limit BIGINT NOT NULL CHECK (credit_limit >= 0),
			CONSTRAINT accounts_balance_floor CHECK (balance >= -credit_limit)
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			account_id BIGINT NOT NULL REFERENCES accounts (id),
			amount BIGINT NOT NULL CHECK (amount > 0),
			kind TEXT NOT NULL CHECK (kind IN ('credit', 'debit')),
			note VARCHAR(10) NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_account_id
			ON transactions (account_id, id DESC)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// GetAccount retrieves an account by id.
func (r *PostgresRepository) GetAccount(ctx context.Context, accountID int64) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT id, name, balance, credit_limit FROM accounts WHERE id = $1`
	err := r.db.QueryRow(ctx, query, accountID).Scan(&account.ID, &account.Name, &account.Balance, &account.Limit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// CreateAccount provisions a new account. Returns ErrAccountExists when the id
// is already taken, which makes startup seeding idempotent.
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, name, balance, credit_limit)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, account.ID, account.Name, account.Balance, account.Limit)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountExists
	}
	return nil
}

// ApplyTransaction validates the transaction against the account's current
// state, mutates the balance, and appends the log entry — all inside one
// database transaction. On success it fills in tx.ID with the assigned
// monotonic sequence value and returns the post-transaction balance.
func (r *PostgresRepository) ApplyTransaction(ctx context.Context, tx *domain.Transaction) (*domain.TransactionResult, error) {
	dbTx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx)

	var balance, limit int64
	// Use FOR UPDATE to lock the row, preventing race conditions.
	err = dbTx.QueryRow(ctx, "SELECT balance, credit_limit FROM accounts WHERE id = $1 FOR UPDATE", tx.AccountID).Scan(&balance, &limit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	newBalance, err := domain.CheckedBalance(balance, limit, tx.Delta())
	if err != nil {
		return nil, err
	}

	if _, err = dbTx.Exec(ctx, "UPDATE accounts SET balance = $1 WHERE id = $2", newBalance, tx.AccountID); err != nil {
		return nil, err
	}

	err = dbTx.QueryRow(ctx, `
		INSERT INTO transactions (account_id, amount, kind, note, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, tx.AccountID, tx.Amount, tx.Kind, tx.Note, tx.OccurredAt).Scan(&tx.ID)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, err
	}

	return &domain.TransactionResult{Limit: limit, Balance: newBalance}, nil
}

// LastTransactions returns up to n entries for the account, most recent first.
// The id sequence is the sole ordering key. An account with no history yields
// an empty slice, never an error.
func (r *PostgresRepository) LastTransactions(ctx context.Context, accountID int64, n int) ([]domain.Transaction, error) {
	query := `
		SELECT id, account_id, amount, kind, note, occurred_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, accountID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, n)
	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(&tx.ID, &tx.AccountID, &tx.Amount, &tx.Kind, &tx.Note, &tx.OccurredAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}
