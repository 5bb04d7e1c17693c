package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionAppliedEvent is published to the message broker after a
// transaction has been committed. Consumers (reporting, notifications) get a
// self-contained record of the movement and the resulting balance.
type TransactionAppliedEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	AccountID     int64           `json:"account_id"`
	TransactionID int64           `json:"transaction_id"`
	Kind          TransactionKind `json:"kind"`
	Amount        int64           `json:"amount"`
	Balance       int64           `json:"balance"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
