package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/creditline/ledger-service/internal/domain"
)

// DefaultSeedAccounts returns the demo accounts provisioned at startup when
// seeding is enabled. Limits are in cents; balances start at zero.
func DefaultSeedAccounts() []domain.Account {
	return []domain.Account{
		{ID: 1, Name: "o barato sai caro", Limit: 1000 * 100},
		{ID: 2, Name: "zan corp ltda", Limit: 800 * 100},
		{ID: 3, Name: "les cruders", Limit: 10000 * 100},
		{ID: 4, Name: "padaria joia de cocaia", Limit: 100000 * 100},
		{ID: 5, Name: "kid mais", Limit: 5000 * 100},
	}
}

// SeedAccounts provisions the given accounts, skipping any that already
// exist. Safe to run on every boot.
func SeedAccounts(ctx context.Context, repo Repository, accounts []domain.Account) error {
	created := 0
	for i := range accounts {
		err := repo.CreateAccount(ctx, &accounts[i])
		if errors.Is(err, ErrAccountExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seeding account %d: %w", accounts[i].ID, err)
		}
		created++
	}
	log.Printf("level=info component=store msg=\"seed accounts provisioned\" created=%d existing=%d", created, len(accounts)-created)
	return nil
}
