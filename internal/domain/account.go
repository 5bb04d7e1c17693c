package domain

import "errors"

// ErrLimitExceeded is the business-rule rejection raised when a debit would
// push the balance below the account's credit floor. No state is mutated when
// it is returned.
var ErrLimitExceeded = errors.New("transaction would exceed the account limit")

// Account represents a customer holding a balance bounded below by -Limit.
type Account struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"` // in cents, may be negative down to -Limit
	Limit   int64  `json:"limit"`   // non-negative, immutable after creation
}

// Floor returns the lowest balance the account may ever reach.
func (a *Account) Floor() int64 {
	return -a.Limit
}

// CheckedBalance computes the post-transaction balance for a signed delta,
// enforcing the invariant balance >= -limit. This is the single limit-check
// rule; every storage backend applies transactions through it (or an exact
// SQL rendering of it) so the invariant holds identically regardless of
// storage choice.
func CheckedBalance(balance, limit, delta int64) (int64, error) {
	candidate := balance + delta
	if candidate < -limit {
		return 0, ErrLimitExceeded
	}
	return candidate, nil
}
