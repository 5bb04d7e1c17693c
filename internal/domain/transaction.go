/**
 * @description
 * This file defines the core domain models for the ledger-service.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Amounts are stored as `int64` to represent the value in the smallest currency
 *   unit (cents), which avoids floating-point inaccuracies with financial data.
 * - The transaction log stores magnitudes; direction is carried by `Kind`.
 */

package domain

import (
	"errors"
	"time"
	"unicode/utf8"
)

// TransactionKind enumerates the two directions a ledger transaction can take.
type TransactionKind string

const (
	KindCredit TransactionKind = "credit"
	KindDebit  TransactionKind = "debit"
)

// MaxNoteLength bounds the free-text note attached to every transaction.
const MaxNoteLength = 10

// TimestampLayout is the fixed, sortable wire format for rendered timestamps
// (UTC, second precision).
const TimestampLayout = "2006-01-02T15:04:05Z"

var (
	ErrInvalidAmount = errors.New("amount must be a strictly positive integer")
	ErrInvalidKind   = errors.New("kind must be either 'credit' or 'debit'")
	ErrInvalidNote   = errors.New("note must be between 1 and 10 characters")
)

// Transaction represents one immutable entry in an account's ledger history.
// This struct maps directly to the `transactions` table in the database.
type Transaction struct {
	ID         int64           `json:"id"`
	AccountID  int64           `json:"account_id"`
	Amount     int64           `json:"amount"` // magnitude in cents, always positive
	Kind       TransactionKind `json:"kind"`
	Note       string          `json:"note"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Delta returns the signed balance movement this transaction represents.
func (t *Transaction) Delta() int64 {
	if t.Kind == KindDebit {
		return -t.Amount
	}
	return t.Amount
}

// ParseKind validates and converts a raw kind string from an API request.
func ParseKind(raw string) (TransactionKind, error) {
	switch TransactionKind(raw) {
	case KindCredit, KindDebit:
		return TransactionKind(raw), nil
	default:
		return "", ErrInvalidKind
	}
}

// SubmitTransactionRequest is the DTO for incoming transaction submissions.
type SubmitTransactionRequest struct {
	Amount int64  `json:"amount"` // in cents
	Kind   string `json:"kind"`
	Note   string `json:"note"`
}

// Validate checks the request shape before any shared state is touched.
// A failure here is an input-validation failure, distinct from a business-rule
// rejection raised later by the store.
func (r SubmitTransactionRequest) Validate() error {
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	if _, err := ParseKind(r.Kind); err != nil {
		return err
	}
	if n := utf8.RuneCountInString(r.Note); n < 1 || n > MaxNoteLength {
		return ErrInvalidNote
	}
	return nil
}

// TransactionResult is returned to the caller after a successful submission.
type TransactionResult struct {
	Limit   int64 `json:"limit"`   // the account's unchanged credit limit
	Balance int64 `json:"balance"` // post-transaction balance
}

// Statement is the point-in-time snapshot of an account: current balance,
// limit, and the most recent transactions, newest first.
type Statement struct {
	Balance            StatementBalance `json:"balance"`
	RecentTransactions []StatementEntry `json:"recent_transactions"`
}

// StatementBalance carries the balance block of a statement response.
type StatementBalance struct {
	Total     int64  `json:"total"`
	QueriedAt string `json:"queried_at"`
	Limit     int64  `json:"limit"`
}

// StatementEntry is one rendered transaction within a statement.
type StatementEntry struct {
	Amount     int64           `json:"amount"`
	Kind       TransactionKind `json:"kind"`
	Note       string          `json:"note"`
	OccurredAt string          `json:"occurred_at"`
}

// NewStatementEntry renders a log entry for the statement wire format.
func NewStatementEntry(tx Transaction) StatementEntry {
	return StatementEntry{
		Amount:     tx.Amount,
		Kind:       tx.Kind,
		Note:       tx.Note,
		OccurredAt: tx.OccurredAt.UTC().Format(TimestampLayout),
	}
}
