package beneficiary

import (
	"context"
	"sort"
	"strings"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/audit"
)

// UnknownBankWarning is returned with payees at banks outside the common list
const UnknownBankWarning = "bank name is not in the list of common banks, please double-check it"

// Dependencies groups the collaborators of BeneficiaryUseCase
type Dependencies struct {
	Users         persistence.UserRepository
	Beneficiaries persistence.BeneficiaryRepository
	IDs           coreport.IDGenerator
	Clock         coreport.TimeProvider
	Audit         *audit.Recorder
	Logger        coreport.Logger
}

// BeneficiaryUseCase manages the saved payees of a user
type BeneficiaryUseCase struct {
	users         persistence.UserRepository
	beneficiaries persistence.BeneficiaryRepository
	ids           coreport.IDGenerator
	clock         coreport.TimeProvider
	audit         *audit.Recorder
	logger        coreport.Logger
}

var _ usecase.BeneficiaryUseCase = (*BeneficiaryUseCase)(nil)

// NewBeneficiaryUseCase creates a new BeneficiaryUseCase
func NewBeneficiaryUseCase(deps Dependencies) *BeneficiaryUseCase {
	return &BeneficiaryUseCase{
		users:         deps.Users,
		beneficiaries: deps.Beneficiaries,
		ids:           deps.IDs,
		clock:         deps.Clock,
		audit:         deps.Audit,
		logger:        deps.Logger,
	}
}

// Add validates and stores a new payee for the owner
func (s *BeneficiaryUseCase) Add(ctx context.Context, ownerID string, req usecase.AddBeneficiaryRequest) (*usecase.AddBeneficiaryResult, error) {
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	b := &entity.Beneficiary{
		OwnerUserID:   owner.ID,
		ID:            s.ids.BeneficiaryID(),
		Name:          strings.TrimSpace(req.Name),
		BankName:      strings.TrimSpace(req.BankName),
		AccountNumber: entity.NormalizeAccountNumber(req.AccountNumber),
		AddedAt:       s.clock.Now(),
	}
	if err := validate(b, owner); err != nil {
		return nil, err
	}

	if err := s.beneficiaries.Create(ctx, b); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, owner.ID, entity.ActionBeneficiaryAdded, map[string]any{
		"beneficiary_id": b.ID,
		"name":           b.Name,
		"bank_name":      b.BankName,
		"account_number": b.AccountNumber,
	})
	s.logger.Info("Beneficiary added", map[string]any{
		"user_id":        owner.ID,
		"beneficiary_id": b.ID,
	})

	result := &usecase.AddBeneficiaryResult{Beneficiary: b}
	if !entity.IsKnownBank(b.BankName) {
		result.Warning = UnknownBankWarning
	}
	return result, nil
}

func validate(b *entity.Beneficiary, owner *entity.User) error {
	if err := entity.ValidateBeneficiaryName(b.Name); err != nil {
		return err
	}
	if err := entity.ValidateBankName(b.BankName); err != nil {
		return err
	}
	if err := entity.ValidateAccountNumber(b.AccountNumber); err != nil {
		return err
	}
	if b.AccountNumber == owner.AccountNumber {
		return errs.NewFieldError("account_number", "cannot add your own account as a beneficiary", errs.ErrInvalidAccount)
	}
	return nil
}

// List pages through the owner's payees, newest first
func (s *BeneficiaryUseCase) List(ctx context.Context, ownerID string, req usecase.ListBeneficiariesRequest) (*usecase.BeneficiaryList, error) {
	all, err := s.beneficiaries.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	name := strings.ToLower(strings.TrimSpace(req.SearchName))
	bank := strings.ToLower(strings.TrimSpace(req.BankFilter))
	filtered := make([]*entity.Beneficiary, 0, len(all))
	for _, b := range all {
		if name != "" && !strings.Contains(strings.ToLower(b.Name), name) {
			continue
		}
		if bank != "" && !strings.Contains(strings.ToLower(b.BankName), bank) {
			continue
		}
		filtered = append(filtered, b)
	}
	newestFirst(filtered)

	items, page := entity.Paginate(filtered, req.Page)
	return &usecase.BeneficiaryList{Items: items, Page: page}, nil
}

func newestFirst(list []*entity.Beneficiary) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].AddedAt.After(list[j].AddedAt)
	})
}

// Get returns one of the owner's payees
func (s *BeneficiaryUseCase) Get(ctx context.Context, ownerID, beneficiaryID string) (*entity.Beneficiary, error) {
	return s.beneficiaries.GetByID(ctx, ownerID, beneficiaryID)
}

// Update replaces the given fields; an update without changes is rejected
func (s *BeneficiaryUseCase) Update(
	ctx context.Context,
	ownerID, beneficiaryID string,
	req usecase.UpdateBeneficiaryRequest,
) (*entity.Beneficiary, error) {
	if req.Name == nil && req.BankName == nil && req.AccountNumber == nil {
		return nil, errs.ErrNoUpdates
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	current, err := s.beneficiaries.GetByID(ctx, ownerID, beneficiaryID)
	if err != nil {
		return nil, err
	}

	updated := *current
	changes := map[string]any{}
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
		changes["name"] = updated.Name
	}
	if req.BankName != nil {
		updated.BankName = strings.TrimSpace(*req.BankName)
		changes["bank_name"] = updated.BankName
	}
	if req.AccountNumber != nil {
		updated.AccountNumber = entity.NormalizeAccountNumber(*req.AccountNumber)
		changes["account_number"] = updated.AccountNumber
	}
	if err := validate(&updated, owner); err != nil {
		return nil, err
	}

	if err := s.beneficiaries.Update(ctx, &updated); err != nil {
		return nil, err
	}

	changes["beneficiary_id"] = beneficiaryID
	s.audit.Record(ctx, ownerID, entity.ActionBeneficiaryUpdated, changes)
	s.logger.Info("Beneficiary updated", map[string]any{
		"user_id":        ownerID,
		"beneficiary_id": beneficiaryID,
	})
	return &updated, nil
}

// Remove deletes one of the owner's payees
func (s *BeneficiaryUseCase) Remove(ctx context.Context, ownerID, beneficiaryID string) error {
	b, err := s.beneficiaries.GetByID(ctx, ownerID, beneficiaryID)
	if err != nil {
		return err
	}
	if err := s.beneficiaries.Delete(ctx, ownerID, beneficiaryID); err != nil {
		return err
	}

	s.audit.Record(ctx, ownerID, entity.ActionBeneficiaryRemoved, map[string]any{
		"beneficiary_id": b.ID,
		"name":           b.Name,
	})
	s.logger.Info("Beneficiary removed", map[string]any{
		"user_id":        ownerID,
		"beneficiary_id": beneficiaryID,
	})
	return nil
}

// Search matches the query against name, bank and account number
func (s *BeneficiaryUseCase) Search(ctx context.Context, ownerID, query string, exact bool) ([]*entity.Beneficiary, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errs.NewValidationError("query", "is required")
	}

	all, err := s.beneficiaries.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	matches := make([]*entity.Beneficiary, 0)
	for _, b := range all {
		if b.Matches(query, exact) {
			matches = append(matches, b)
		}
	}
	newestFirst(matches)
	return matches, nil
}
