package repository

import (
	"context"
	"strings"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
)

// BeneficiaryRepository implements persistence.BeneficiaryRepository over the beneficiaries table
type BeneficiaryRepository struct {
	store  persistence.TableStore
	logger coreport.Logger
}

// NewBeneficiaryRepository creates a new BeneficiaryRepository instance
func NewBeneficiaryRepository(store persistence.TableStore, logger coreport.Logger) *BeneficiaryRepository {
	return &BeneficiaryRepository{store: store, logger: logger}
}

func beneficiaryToRow(b *entity.Beneficiary) persistence.Row {
	return persistence.Row{
		"owner_user_id":  b.OwnerUserID,
		"beneficiary_id": b.ID,
		"name":           b.Name,
		"bank_name":      b.BankName,
		"account_number": b.AccountNumber,
		"added_at":       formatTime(b.AddedAt),
	}
}

func rowToBeneficiary(r persistence.Row) *entity.Beneficiary {
	return &entity.Beneficiary{
		OwnerUserID:   r["owner_user_id"],
		ID:            r["beneficiary_id"],
		Name:          r["name"],
		BankName:      r["bank_name"],
		AccountNumber: r["account_number"],
		AddedAt:       parseTime(r["added_at"]),
	}
}

// checkUnique enforces (owner, lower(name)) and (owner, account) uniqueness, ignoring the row being updated
func checkUnique(t *persistence.Table, b *entity.Beneficiary, nameErr error) error {
	for _, row := range t.Rows {
		if row["owner_user_id"] != b.OwnerUserID || row["beneficiary_id"] == b.ID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(row["name"]), strings.TrimSpace(b.Name)) {
			return nameErr
		}
		if row["account_number"] == b.AccountNumber {
			return errs.ErrAccountExists
		}
	}
	return nil
}

// Create stores a new beneficiary
func (r *BeneficiaryRepository) Create(ctx context.Context, b *entity.Beneficiary) error {
	return r.store.Mutate(ctx, BeneficiariesTable, func(t *persistence.Table) error {
		if err := checkUnique(t, b, errs.ErrBeneficiaryExists); err != nil {
			return err
		}
		t.Rows = append(t.Rows, beneficiaryToRow(b))
		return nil
	})
}

// ListByOwner returns the owner's beneficiaries in table order
func (r *BeneficiaryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Beneficiary, error) {
	t, err := r.store.Read(ctx, BeneficiariesTable)
	if err != nil {
		return nil, err
	}
	rows := t.Filter(persistence.Match{"owner_user_id": ownerID})
	out := make([]*entity.Beneficiary, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToBeneficiary(row))
	}
	return out, nil
}

// GetByID retrieves one of the owner's beneficiaries
func (r *BeneficiaryRepository) GetByID(ctx context.Context, ownerID, beneficiaryID string) (*entity.Beneficiary, error) {
	t, err := r.store.Read(ctx, BeneficiariesTable)
	if err != nil {
		return nil, err
	}
	rows := t.Filter(persistence.Match{"owner_user_id": ownerID, "beneficiary_id": beneficiaryID})
	if len(rows) == 0 {
		return nil, errs.ErrBeneficiaryNotFound
	}
	return rowToBeneficiary(rows[0]), nil
}

// Update replaces the stored beneficiary
func (r *BeneficiaryRepository) Update(ctx context.Context, b *entity.Beneficiary) error {
	return r.store.Mutate(ctx, BeneficiariesTable, func(t *persistence.Table) error {
		var target persistence.Row
		for _, row := range t.Rows {
			if row["owner_user_id"] == b.OwnerUserID && row["beneficiary_id"] == b.ID {
				target = row
				break
			}
		}
		if target == nil {
			return errs.ErrBeneficiaryNotFound
		}
		if err := checkUnique(t, b, errs.ErrNameExists); err != nil {
			return err
		}
		for column, value := range beneficiaryToRow(b) {
			target[column] = value
		}
		return nil
	})
}

// Delete removes one of the owner's beneficiaries
func (r *BeneficiaryRepository) Delete(ctx context.Context, ownerID, beneficiaryID string) error {
	n, err := r.store.Delete(ctx, BeneficiariesTable, persistence.Match{
		"owner_user_id":  ownerID,
		"beneficiary_id": beneficiaryID,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrBeneficiaryNotFound
	}
	r.logger.Debug("Beneficiary deleted", map[string]any{
		"user_id":        ownerID,
		"beneficiary_id": beneficiaryID,
	})
	return nil
}
