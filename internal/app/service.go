/**
 * @description
 * This file contains the core business logic for the ledger-service. The `Service`
 * struct orchestrates transaction submission and statement queries, coordinating
 * between the storage repository and the message broker.
 *
 * Key features:
 * - Validates submissions before any shared state is touched.
 * - Delegates the atomic validate-mutate-append unit to the repository, which
 *   serializes it per account.
 * - Publishes an event to RabbitMQ after each committed transaction for
 *   asynchronous consumers; publishing is best effort and never affects the
 *   outcome returned to the caller.
 *
 * @dependencies
 * - context, errors, log, time: Standard Go libraries.
 * - github.com/google/uuid: For event ids.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/rabbitmq: For event publication.
 */

package app

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/creditline/ledger-service/internal/domain"
	"github.com/creditline/ledger-service/internal/store"
	"github.com/creditline/ledger-service/pkg/rabbitmq"
)

// StatementEntries is how many recent transactions a statement carries.
const StatementEntries = 10

const ledgerEventsExchange = "ledger_events"

// ErrRateLimited is returned when an account exceeds its submission budget.
// The submission was refused before touching shared state and may be retried
// after the window passes.
var ErrRateLimited = errors.New("too many submissions for this account")

// Service provides the core business logic for the ledger.
type Service struct {
	repo          store.Repository
	eventProducer rabbitmq.Publisher

	rateLimiter     *RedisSubmitRateLimiter
	submitRateLimit int

	now func() time.Time
}

// NewService creates a new ledger service instance. producer may be nil when
// no broker is configured.
func NewService(repo store.Repository, producer rabbitmq.Publisher) *Service {
	return &Service{
		repo:          repo,
		eventProducer: producer,
		now:           time.Now,
	}
}

// SetSubmitRateLimiter enables per-account submission rate limiting. A nil
// limiter or a non-positive limit leaves submissions unlimited.
func (s *Service) SetSubmitRateLimiter(limiter *RedisSubmitRateLimiter, perMinute int) {
	s.rateLimiter = limiter
	s.submitRateLimit = perMinute
}

// SubmitTransaction applies one credit or debit against an account.
//
// Input validation failures (non-positive amount, unknown kind, bad note) are
// rejected before step one even runs. Business-rule rejections surface as
// domain.ErrLimitExceeded and leave no trace: no balance change, no log entry.
// The timestamp is server time at successful application, never client time.
func (s *Service) SubmitTransaction(ctx context.Context, accountID int64, req domain.SubmitTransactionRequest) (*domain.TransactionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if s.rateLimiter != nil && s.submitRateLimit > 0 {
		count, _, err := s.rateLimiter.ConsumeRateLimit(ctx, "submit", strconv.FormatInt(accountID, 10), s.submitRateLimit, time.Minute)
		if err != nil {
			// Rate limiting is a protection layer, not a correctness gate.
			log.Printf("level=warn component=app msg=\"rate limiter unavailable; allowing submission\" account_id=%d err=%v", accountID, err)
		} else if count > s.submitRateLimit {
			return nil, ErrRateLimited
		}
	}

	kind, _ := domain.ParseKind(req.Kind) // already validated above

	tx := &domain.Transaction{
		AccountID:  accountID,
		Amount:     req.Amount,
		Kind:       kind,
		Note:       req.Note,
		OccurredAt: s.now().UTC().Truncate(time.Second),
	}

	result, err := s.repo.ApplyTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.publishTransactionApplied(ctx, tx, result.Balance)

	return result, nil
}

// Statement composes the read-only snapshot of an account: current balance,
// limit, and the last ten transactions, newest first. The two reads are not
// atomic with respect to each other; a transaction applied concurrently may
// appear in the balance but not yet in the log, or vice versa. That window is
// accepted for the read path.
func (s *Service) Statement(ctx context.Context, accountID int64) (*domain.Statement, error) {
	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	recent, err := s.repo.LastTransactions(ctx, accountID, StatementEntries)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.StatementEntry, 0, len(recent))
	for _, tx := range recent {
		entries = append(entries, domain.NewStatementEntry(tx))
	}

	return &domain.Statement{
		Balance: domain.StatementBalance{
			Total:     account.Balance,
			QueriedAt: s.now().UTC().Format(domain.TimestampLayout),
			Limit:     account.Limit,
		},
		RecentTransactions: entries,
	}, nil
}

func (s *Service) publishTransactionApplied(ctx context.Context, tx *domain.Transaction, balance int64) {
	if s.eventProducer == nil {
		return
	}

	event := domain.TransactionAppliedEvent{
		EventID:       uuid.New(),
		AccountID:     tx.AccountID,
		TransactionID: tx.ID,
		Kind:          tx.Kind,
		Amount:        tx.Amount,
		Balance:       balance,
		OccurredAt:    tx.OccurredAt,
	}

	if err := s.eventProducer.Publish(ctx, ledgerEventsExchange, "ledger.transaction.applied", event); err != nil {
		log.Printf("level=warn component=app msg=\"transaction applied event publish failed\" account_id=%d transaction_id=%d err=%v", tx.AccountID, tx.ID, err)
	}
}
