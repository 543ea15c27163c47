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

func testBeneficiary(owner, id, name, account string) *entity.Beneficiary {
	return &entity.Beneficiary{
		OwnerUserID:   owner,
		ID:            id,
		Name:          name,
		BankName:      "HBL",
		AccountNumber: account,
		AddedAt:       time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC),
	}
}

func TestBeneficiaryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repos := NewTestRepositories(t)
	john := testBeneficiary("USR1", "BEN1", "John Smith", "9876543210")

	require.NoError(t, repos.Beneficiaries.Create(ctx, john))

	got, err := repos.Beneficiaries.GetByID(ctx, "USR1", "BEN1")
	require.NoError(t, err)
	assert.Equal(t, john, got)

	_, err = repos.Beneficiaries.GetByID(ctx, "USR2", "BEN1")
	assert.ErrorIs(t, err, errs.ErrBeneficiaryNotFound)

	john.BankName = "Meezan Bank"
	require.NoError(t, repos.Beneficiaries.Update(ctx, john))
	got, _ = repos.Beneficiaries.GetByID(ctx, "USR1", "BEN1")
	assert.Equal(t, "Meezan Bank", got.BankName)

	require.NoError(t, repos.Beneficiaries.Delete(ctx, "USR1", "BEN1"))
	assert.ErrorIs(t, repos.Beneficiaries.Delete(ctx, "USR1", "BEN1"), errs.ErrBeneficiaryNotFound)
}

func TestBeneficiaryRepository_DuplicateRejection(t *testing.T) {
	ctx := context.Background()
	repos := NewTestRepositories(t)
	require.NoError(t, repos.Beneficiaries.Create(ctx, testBeneficiary("USR1", "BEN1", "John Smith", "9876543210")))

	err := repos.Beneficiaries.Create(ctx, testBeneficiary("USR1", "BEN2", "JOHN SMITH ", "1111122222"))
	assert.ErrorIs(t, err, errs.ErrBeneficiaryExists)

	err = repos.Beneficiaries.Create(ctx, testBeneficiary("USR1", "BEN3", "Jane", "9876543210"))
	assert.ErrorIs(t, err, errs.ErrAccountExists)

	// another owner may save the same payee
	require.NoError(t, repos.Beneficiaries.Create(ctx, testBeneficiary("USR2", "BEN4", "John Smith", "9876543210")))

	list, err := repos.Beneficiaries.ListByOwner(ctx, "USR1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repos.Beneficiaries.Create(ctx, testBeneficiary("USR1", "BEN5", "Jane", "5555566666")))
	err = repos.Beneficiaries.Update(ctx, testBeneficiary("USR1", "BEN5", "john smith", "5555566666"))
	assert.ErrorIs(t, err, errs.ErrNameExists)
	err = repos.Beneficiaries.Update(ctx, testBeneficiary("USR1", "BEN5", "Jane", "9876543210"))
	assert.ErrorIs(t, err, errs.ErrAccountExists)
}
