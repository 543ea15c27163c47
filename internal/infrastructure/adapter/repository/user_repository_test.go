package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
)

func testUser(id, username, account, balance string) *entity.User {
	return &entity.User{
		ID:            id,
		Username:      username,
		PasswordHash:  "$2a$10$hash",
		AccountNumber: account,
		Balance:       entity.MustAmount(balance),
		DailyLimit:    entity.MustAmount("10000"),
		CreatedAt:     time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC),
	}
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repos := NewTestRepositories(t)

	alice := testUser("USR00000001", "alice", "1234567890", "1000")
	require.NoError(t, repos.Users.Create(ctx, alice))

	byID, err := repos.Users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Username, byID.Username)
	assert.Equal(t, alice.PasswordHash, byID.PasswordHash)
	assert.True(t, alice.Balance.Equal(byID.Balance))
	assert.True(t, alice.DailyLimit.Equal(byID.DailyLimit))
	assert.True(t, alice.CreatedAt.Equal(byID.CreatedAt))

	byName, err := repos.Users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	byAccount, err := repos.Users.GetByAccountNumber(ctx, "1234567890")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byAccount.ID)

	_, err = repos.Users.GetByID(ctx, "USR404")
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
}

func TestUserRepository_Uniqueness(t *testing.T) {
	ctx := context.Background()
	repos := NewTestRepositories(t)
	require.NoError(t, repos.Users.Create(ctx, testUser("USR1", "alice", "1234567890", "0")))

	err := repos.Users.Create(ctx, testUser("USR2", "alice", "9876543210", "0"))
	assert.ErrorIs(t, err, errs.ErrUsernameExists)

	err = repos.Users.Create(ctx, testUser("USR3", "bob", "1234567890", "0"))
	assert.ErrorIs(t, err, errs.ErrAccountExists)
}

func TestUserRepository_UpdateAtomically(t *testing.T) {
	ctx := context.Background()
	repos := NewTestRepositories(t)
	require.NoError(t, repos.Users.Create(ctx, testUser("USR1", "alice", "1234567890", "100")))
	require.NoError(t, repos.Users.Create(ctx, testUser("USR2", "bob", "9876543210", "5")))

	t.Run("Transfer is written in one step", func(t *testing.T) {
		err := repos.Users.UpdateAtomically(ctx, []string{"USR1", "USR2"}, func(users map[string]*entity.User) error {
			amount := entity.MustAmount("30.25")
			if err := users["USR1"].Debit(amount); err != nil {
				return err
			}
			return users["USR2"].Credit(amount)
		})
		require.NoError(t, err)

		alice, _ := repos.Users.GetByID(ctx, "USR1")
		bob, _ := repos.Users.GetByID(ctx, "USR2")
		assert.Equal(t, "69.75", entity.FormatAmount(alice.Balance))
		assert.Equal(t, "35.25", entity.FormatAmount(bob.Balance))
	})

	t.Run("Failure leaves balances untouched", func(t *testing.T) {
		err := repos.Users.UpdateAtomically(ctx, []string{"USR2", "USR1"}, func(users map[string]*entity.User) error {
			if err := users["USR1"].Credit(entity.MustAmount("1000")); err != nil {
				return err
			}
			return users["USR2"].Debit(entity.MustAmount("1000"))
		})
		assert.True(t, errs.IsInsufficientBalanceError(err))

		alice, _ := repos.Users.GetByID(ctx, "USR1")
		assert.Equal(t, "69.75", entity.FormatAmount(alice.Balance))
	})

	t.Run("Unknown user", func(t *testing.T) {
		err := repos.Users.UpdateAtomically(ctx, []string{"USR1", "USR9"}, func(map[string]*entity.User) error {
			t.Fatal("fn must not run")
			return nil
		})
		assert.ErrorIs(t, err, errs.ErrUserNotFound)
	})
}
