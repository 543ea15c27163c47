package balance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/testenv"
)

// unwritableTransactions rejects every new record
type unwritableTransactions struct {
	persistence.TransactionRepository
}

func (unwritableTransactions) Create(context.Context, *entity.Transaction) error {
	return errs.NewStorageError("transactions", "write", errors.New("disk full"))
}

func TestBalanceChangeIsReversedWhenRecordFails(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	uc := NewBalanceUseCase(Dependencies{
		Users:        env.Repos.Users,
		Transactions: unwritableTransactions{env.Repos.Transactions},
		IDs:          env.IDs,
		Clock:        env.Clock,
		Audit:        env.Audit,
		Events:       env.Events,
		Logger:       env.Logger,
	}, env.Policy)
	alice := env.SeedUser(t, "alice", "1234567890", "500")

	t.Run("Deposit", func(t *testing.T) {
		_, err := uc.Deposit(ctx, alice.ID, amount("250"), "salary")

		require.Error(t, err)
		assert.True(t, errs.IsStorageError(err))
		assert.Equal(t, "500.00", env.Balance(t, alice.ID))
	})

	t.Run("Withdraw", func(t *testing.T) {
		_, err := uc.Withdraw(ctx, alice.ID, amount("125.50"), "")

		require.Error(t, err)
		assert.True(t, errs.IsStorageError(err))
		assert.Equal(t, "500.00", env.Balance(t, alice.ID))
	})

	assert.Empty(t, env.AuditActions(t, alice.ID))
	assert.Empty(t, env.PublishedTypes())
	txns, err := env.Repos.Transactions.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, txns)
}
