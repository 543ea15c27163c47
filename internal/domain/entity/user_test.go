package entity

import (
	"testing"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(balance string) *User {
	return &User{
		ID:            "USR0000TEST",
		Username:      "alice",
		AccountNumber: "1234567890",
		Balance:       MustAmount(balance),
		DailyLimit:    MustAmount("10000"),
	}
}

func TestUser_Debit(t *testing.T) {
	t.Run("Sufficient balance", func(t *testing.T) {
		user := newTestUser("100.00")

		require.NoError(t, user.Debit(MustAmount("40.50")))
		assert.Equal(t, "59.50", FormatAmount(user.Balance))
	})

	t.Run("Exact balance", func(t *testing.T) {
		user := newTestUser("100.00")

		require.NoError(t, user.Debit(MustAmount("100")))
		assert.True(t, user.Balance.IsZero())
	})

	t.Run("Insufficient balance leaves balance untouched", func(t *testing.T) {
		user := newTestUser("10.00")

		err := user.Debit(MustAmount("10.01"))

		assert.True(t, errs.IsInsufficientBalanceError(err))
		assert.Equal(t, "10.00", FormatAmount(user.Balance))
	})

	t.Run("Non-positive amount", func(t *testing.T) {
		user := newTestUser("10.00")

		assert.ErrorIs(t, user.Debit(MustAmount("0")), errs.ErrInvalidAmount)
		assert.ErrorIs(t, user.Debit(MustAmount("-1")), errs.ErrInvalidAmount)
	})
}

func TestUser_Credit(t *testing.T) {
	user := newTestUser("0")

	require.NoError(t, user.Credit(MustAmount("0.10")))
	require.NoError(t, user.Credit(MustAmount("0.20")))

	assert.Equal(t, "0.30", FormatAmount(user.Balance))
	assert.ErrorIs(t, user.Credit(MustAmount("1.001")), errs.ErrInvalidAmount)
}

func TestUser_Clone(t *testing.T) {
	user := newTestUser("50")
	clone := user.Clone()

	require.NoError(t, clone.Debit(MustAmount("20")))

	assert.Equal(t, "50.00", FormatAmount(user.Balance))
	assert.Equal(t, "30.00", FormatAmount(clone.Balance))
}
