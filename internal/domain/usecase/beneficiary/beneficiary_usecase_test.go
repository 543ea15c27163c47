package beneficiary

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/testenv"
)

func newBeneficiaries(t *testing.T) (*BeneficiaryUseCase, *testenv.Env, *entity.User) {
	env := testenv.New(t)
	uc := NewBeneficiaryUseCase(Dependencies{
		Users:         env.Repos.Users,
		Beneficiaries: env.Repos.Beneficiaries,
		IDs:           env.IDs,
		Clock:         env.Clock,
		Audit:         env.Audit,
		Logger:        env.Logger,
	})
	owner := env.SeedUser(t, "alice", "1234567890", "100")
	return uc, env, owner
}

func strPtr(s string) *string { return &s }

func TestAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("Known bank", func(t *testing.T) {
		uc, env, owner := newBeneficiaries(t)

		result, err := uc.Add(ctx, owner.ID, usecase.AddBeneficiaryRequest{
			Name: " John Smith ", BankName: "HBL", AccountNumber: "9876-5432-10",
		})

		require.NoError(t, err)
		assert.Empty(t, result.Warning)
		assert.Regexp(t, `^BEN[0-9A-F]{8}$`, result.Beneficiary.ID)
		assert.Equal(t, "John Smith", result.Beneficiary.Name)
		assert.Equal(t, "9876543210", result.Beneficiary.AccountNumber)
		assert.Equal(t, []entity.AuditAction{entity.ActionBeneficiaryAdded}, env.AuditActions(t, owner.ID))
	})

	t.Run("Unknown bank carries a warning", func(t *testing.T) {
		uc, _, owner := newBeneficiaries(t)

		result, err := uc.Add(ctx, owner.ID, usecase.AddBeneficiaryRequest{
			Name: "John", BankName: "Acme Savings", AccountNumber: "9876543210",
		})

		require.NoError(t, err)
		assert.Equal(t, UnknownBankWarning, result.Warning)
	})

	t.Run("Duplicates are rejected", func(t *testing.T) {
		uc, _, owner := newBeneficiaries(t)
		_, err := uc.Add(ctx, owner.ID, usecase.AddBeneficiaryRequest{Name: "John", BankName: "HBL", AccountNumber: "9876543210"})
		require.NoError(t, err)

		_, err = uc.Add(ctx, owner.ID, usecase.AddBeneficiaryRequest{Name: "JOHN", BankName: "UBL", AccountNumber: "5555566666"})
		assert.ErrorIs(t, err, errs.ErrBeneficiaryExists)

		_, err = uc.Add(ctx, owner.ID, usecase.AddBeneficiaryRequest{Name: "Jane", BankName: "UBL", AccountNumber: "9876543210"})
		assert.ErrorIs(t, err, errs.ErrAccountExists)

		list, err := uc.List(ctx, owner.ID, usecase.ListBeneficiariesRequest{Page: entity.PageRequest{Page: 1, PageSize: 20}})
		require.NoError(t, err)
		assert.Equal(t, 1, list.Page.TotalItems)
	})

	testCases := []struct {
		name     string
		req      usecase.AddBeneficiaryRequest
		expected error
	}{
		{"Own account", usecase.AddBeneficiaryRequest{Name: "Me", BankName: "HBL", AccountNumber: "1234567890"}, errs.ErrInvalidAccount},
		{"Short account", usecase.AddBeneficiaryRequest{Name: "John", BankName: "HBL", AccountNumber: "12345"}, errs.ErrInvalidAccount},
		{"Short name", usecase.AddBeneficiaryRequest{Name: "J", BankName: "HBL", AccountNumber: "9876543210"}, errs.ErrValidation},
		{"Short bank", usecase.AddBeneficiaryRequest{Name: "John", BankName: "AB", AccountNumber: "9876543210"}, errs.ErrValidation},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uc, _, owner := newBeneficiaries(t)
			_, err := uc.Add(ctx, owner.ID, tc.req)
			assert.ErrorIs(t, err, tc.expected)
		})
	}

	t.Run("Unknown owner", func(t *testing.T) {
		uc, _, _ := newBeneficiaries(t)
		_, err := uc.Add(ctx, "USR00000000", usecase.AddBeneficiaryRequest{Name: "John", BankName: "HBL", AccountNumber: "9876543210"})
		assert.ErrorIs(t, err, errs.ErrUserNotFound)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	uc, env, owner := newBeneficiaries(t)
	for i := 0; i < 25; i++ {
		bank := "HBL"
		if i%5 == 0 {
			bank = "Meezan Bank"
		}
		env.SeedBeneficiary(t, owner.ID, fmt.Sprintf("Payee %02d", i), bank, fmt.Sprintf("98765432%02d", i))
		env.Clock.Advance(time.Minute)
	}

	t.Run("Newest first and paginated", func(t *testing.T) {
		list, err := uc.List(ctx, owner.ID, usecase.ListBeneficiariesRequest{Page: entity.PageRequest{Page: 2, PageSize: 20}})

		require.NoError(t, err)
		require.Len(t, list.Items, 5)
		assert.Equal(t, "Payee 04", list.Items[0].Name)
		assert.Equal(t, "Payee 00", list.Items[4].Name)
		assert.Equal(t, entity.PageInfo{Page: 2, PageSize: 20, TotalItems: 25, TotalPages: 2, HasPrevious: true}, list.Page)
	})

	t.Run("Zero request uses the default page", func(t *testing.T) {
		list, err := uc.List(ctx, owner.ID, usecase.ListBeneficiariesRequest{})

		require.NoError(t, err)
		assert.Len(t, list.Items, entity.DefaultPageSize)
		assert.Equal(t, 1, list.Page.Page)
		assert.True(t, list.Page.HasNext)
	})

	t.Run("Page far past the end is empty", func(t *testing.T) {
		list, err := uc.List(ctx, owner.ID, usecase.ListBeneficiariesRequest{Page: entity.PageRequest{Page: math.MaxInt / 10, PageSize: entity.MaxPageSize}})

		require.NoError(t, err)
		assert.Empty(t, list.Items)
		assert.Equal(t, 25, list.Page.TotalItems)
	})

	t.Run("Filters", func(t *testing.T) {
		list, err := uc.List(ctx, owner.ID, usecase.ListBeneficiariesRequest{
			SearchName: "payee 1",
			BankFilter: "meezan",
			Page:       entity.PageRequest{Page: 1, PageSize: 20},
		})

		require.NoError(t, err)
		require.Len(t, list.Items, 2)
		assert.Equal(t, "Payee 15", list.Items[0].Name)
		assert.Equal(t, "Payee 10", list.Items[1].Name)
	})

	t.Run("Other owners see nothing", func(t *testing.T) {
		bob := env.SeedUser(t, "bob", "5555566666", "0")
		list, err := uc.List(ctx, bob.ID, usecase.ListBeneficiariesRequest{Page: entity.PageRequest{Page: 1, PageSize: 20}})

		require.NoError(t, err)
		assert.Empty(t, list.Items)
		assert.Zero(t, list.Page.TotalPages)
	})
}

func TestGetUpdateRemove(t *testing.T) {
	ctx := context.Background()
	uc, env, owner := newBeneficiaries(t)
	john := env.SeedBeneficiary(t, owner.ID, "John", "HBL", "9876543210")
	env.SeedBeneficiary(t, owner.ID, "Jane", "UBL", "5555566666")

	t.Run("Get", func(t *testing.T) {
		got, err := uc.Get(ctx, owner.ID, john.ID)
		require.NoError(t, err)
		assert.Equal(t, "John", got.Name)

		bob := env.SeedUser(t, "bob", "1111122222", "0")
		_, err = uc.Get(ctx, bob.ID, john.ID)
		assert.ErrorIs(t, err, errs.ErrBeneficiaryNotFound)
	})

	t.Run("No updates", func(t *testing.T) {
		_, err := uc.Update(ctx, owner.ID, john.ID, usecase.UpdateBeneficiaryRequest{})
		assert.ErrorIs(t, err, errs.ErrNoUpdates)
	})

	t.Run("Conflicts", func(t *testing.T) {
		_, err := uc.Update(ctx, owner.ID, john.ID, usecase.UpdateBeneficiaryRequest{Name: strPtr("jane")})
		assert.ErrorIs(t, err, errs.ErrNameExists)

		_, err = uc.Update(ctx, owner.ID, john.ID, usecase.UpdateBeneficiaryRequest{AccountNumber: strPtr("55555-66666")})
		assert.ErrorIs(t, err, errs.ErrAccountExists)

		_, err = uc.Update(ctx, owner.ID, john.ID, usecase.UpdateBeneficiaryRequest{AccountNumber: strPtr("1234567890")})
		assert.ErrorIs(t, err, errs.ErrInvalidAccount)
	})

	t.Run("Rename keeps other fields", func(t *testing.T) {
		updated, err := uc.Update(ctx, owner.ID, john.ID, usecase.UpdateBeneficiaryRequest{Name: strPtr("Johnny"), BankName: strPtr("MCB")})

		require.NoError(t, err)
		assert.Equal(t, "Johnny", updated.Name)
		assert.Equal(t, "MCB", updated.BankName)
		assert.Equal(t, "9876543210", updated.AccountNumber)

		stored, err := uc.Get(ctx, owner.ID, john.ID)
		require.NoError(t, err)
		assert.Equal(t, updated.Name, stored.Name)
		assert.Equal(t, updated.BankName, stored.BankName)
		assert.True(t, updated.AddedAt.Equal(stored.AddedAt))
	})

	t.Run("Renaming to its own name differently cased", func(t *testing.T) {
		_, err := uc.Update(ctx, owner.ID, john.ID, usecase.UpdateBeneficiaryRequest{Name: strPtr("JOHNNY")})
		assert.NoError(t, err)
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, uc.Remove(ctx, owner.ID, john.ID))
		assert.ErrorIs(t, uc.Remove(ctx, owner.ID, john.ID), errs.ErrBeneficiaryNotFound)
		_, err := uc.Get(ctx, owner.ID, john.ID)
		assert.ErrorIs(t, err, errs.ErrBeneficiaryNotFound)
	})

	assert.Equal(t, []entity.AuditAction{
		entity.ActionBeneficiaryUpdated,
		entity.ActionBeneficiaryUpdated,
		entity.ActionBeneficiaryRemoved,
	}, env.AuditActions(t, owner.ID))
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	uc, env, owner := newBeneficiaries(t)
	env.SeedBeneficiary(t, owner.ID, "John Smith", "HBL", "9876543210")
	env.Clock.Advance(time.Minute)
	env.SeedBeneficiary(t, owner.ID, "Johnny Cash", "Meezan Bank", "5555566666")

	matches, err := uc.Search(ctx, owner.ID, "john", false)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Johnny Cash", matches[0].Name)

	matches, err = uc.Search(ctx, owner.ID, "john smith", true)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	matches, err = uc.Search(ctx, owner.ID, "66666", false)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	_, err = uc.Search(ctx, owner.ID, "  ", false)
	assert.ErrorIs(t, err, errs.ErrValidation)
}
