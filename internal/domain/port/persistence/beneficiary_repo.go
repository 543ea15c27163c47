package persistence

import (
	"context"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
)

// BeneficiaryRepository defines methods to interact with saved payees
type BeneficiaryRepository interface {
	// Create stores a new beneficiary after checking per-owner uniqueness
	//
	// Possible errors:
	// - ErrBeneficiaryExists: If the owner already has a beneficiary with this name
	// - ErrAccountExists: If the owner already saved this account number
	Create(ctx context.Context, beneficiary *entity.Beneficiary) error

	// ListByOwner returns the owner's beneficiaries in table order
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Beneficiary, error)

	// GetByID retrieves one of the owner's beneficiaries
	//
	// Possible errors:
	// - ErrBeneficiaryNotFound: If the owner has no beneficiary with this id
	GetByID(ctx context.Context, ownerID, beneficiaryID string) (*entity.Beneficiary, error)

	// Update replaces the stored beneficiary, keeping per-owner uniqueness
	//
	// Possible errors:
	// - ErrBeneficiaryNotFound: If the beneficiary doesn't exist
	// - ErrNameExists: If another beneficiary of the owner uses the new name
	// - ErrAccountExists: If another beneficiary of the owner uses the new account number
	Update(ctx context.Context, beneficiary *entity.Beneficiary) error

	// Delete removes one of the owner's beneficiaries
	//
	// Possible errors:
	// - ErrBeneficiaryNotFound: If nothing matched
	Delete(ctx context.Context, ownerID, beneficiaryID string) error
}
