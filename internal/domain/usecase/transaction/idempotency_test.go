package transaction

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/testenv"
)

func TestRequestHash(t *testing.T) {
	base := usecase.SendMoneyRequest{BeneficiaryID: "BEN1", Amount: entity.MustAmount("10"), Description: "rent"}

	same := base
	same.Amount = entity.MustAmount("10.00")
	same.Description = "  rent "
	same.IdempotencyKey = "other-key"
	assert.Equal(t, RequestHash(base), RequestHash(same))

	otherAmount := base
	otherAmount.Amount = entity.MustAmount("10.01")
	assert.NotEqual(t, RequestHash(base), RequestHash(otherAmount))

	otherBeneficiary := base
	otherBeneficiary.BeneficiaryID = "BEN2"
	assert.NotEqual(t, RequestHash(base), RequestHash(otherBeneficiary))
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("4f1c2a"))
	assert.NoError(t, ValidateKey(strings.Repeat("k", MaxIdempotencyKeyLength)))
	assert.ErrorIs(t, ValidateKey(strings.Repeat("k", MaxIdempotencyKeyLength+1)), errs.ErrValidation)
}

func TestIdempotencyHandler(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	handler := NewIdempotencyHandler(env.Repos.Idempotency, env.Repos.Transactions, env.Clock, env.Logger)

	txn := &entity.Transaction{
		ID:         "TXN20250829100000000001",
		FromUserID: "USR1",
		ToUserID:   entity.ExternalParty,
		Amount:     entity.MustAmount("25"),
		Status:     entity.StatusSuccess,
		Timestamp:  env.Clock.Now(),
	}
	require.NoError(t, env.Repos.Transactions.Create(ctx, txn))

	t.Run("Unused key", func(t *testing.T) {
		prior, err := handler.CheckIdempotency(ctx, "USR1", "key-1", "hash-a")

		require.NoError(t, err)
		assert.Nil(t, prior)
	})

	handler.Remember(ctx, "USR1", "key-1", "hash-a", txn.ID)

	t.Run("Same request returns the earlier transfer", func(t *testing.T) {
		prior, err := handler.CheckIdempotency(ctx, "USR1", "key-1", "hash-a")

		require.NoError(t, err)
		require.NotNil(t, prior)
		assert.Equal(t, txn.ID, prior.ID)
	})

	t.Run("Different request conflicts", func(t *testing.T) {
		_, err := handler.CheckIdempotency(ctx, "USR1", "key-1", "hash-b")

		assert.ErrorIs(t, err, errs.ErrIdempotencyConflict)
	})

	t.Run("Keys are scoped per user", func(t *testing.T) {
		prior, err := handler.CheckIdempotency(ctx, "USR2", "key-1", "hash-b")

		require.NoError(t, err)
		assert.Nil(t, prior)
	})

	t.Run("Remember does not overwrite", func(t *testing.T) {
		handler.Remember(ctx, "USR1", "key-1", "hash-b", "TXN-other")

		record, err := env.Repos.Idempotency.Get(ctx, "USR1", "key-1")
		require.NoError(t, err)
		assert.Equal(t, "hash-a", record.RequestHash)
	})
}
