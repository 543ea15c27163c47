package usecase

import (
	"context"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
)

// AddBeneficiaryRequest carries a new payee
type AddBeneficiaryRequest struct {
	Name          string
	BankName      string
	AccountNumber string
}

// AddBeneficiaryResult is the stored payee; Warning is set for banks outside the known list
type AddBeneficiaryResult struct {
	Beneficiary *entity.Beneficiary
	Warning     string
}

// ListBeneficiariesRequest filters the owner's payees
type ListBeneficiariesRequest struct {
	SearchName string
	BankFilter string
	Page       entity.PageRequest
}

// BeneficiaryList is one page of payees
type BeneficiaryList struct {
	Items []*entity.Beneficiary
	Page  entity.PageInfo
}

// UpdateBeneficiaryRequest holds optional replacements; nil fields are kept
type UpdateBeneficiaryRequest struct {
	Name          *string
	BankName      *string
	AccountNumber *string
}

// BeneficiaryUseCase defines payee management operations
type BeneficiaryUseCase interface {
	Add(ctx context.Context, ownerID string, req AddBeneficiaryRequest) (*AddBeneficiaryResult, error)
	List(ctx context.Context, ownerID string, req ListBeneficiariesRequest) (*BeneficiaryList, error)
	Get(ctx context.Context, ownerID, beneficiaryID string) (*entity.Beneficiary, error)
	Update(ctx context.Context, ownerID, beneficiaryID string, req UpdateBeneficiaryRequest) (*entity.Beneficiary, error)
	Remove(ctx context.Context, ownerID, beneficiaryID string) error
	Search(ctx context.Context, ownerID, query string, exact bool) ([]*entity.Beneficiary, error)
}
