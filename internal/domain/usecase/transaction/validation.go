package transaction

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
)

// TransactionValidator applies the banking policy to transfers
type TransactionValidator struct {
	policy entity.BankingPolicy
}

// NewTransactionValidator creates a new TransactionValidator
func NewTransactionValidator(policy entity.BankingPolicy) *TransactionValidator {
	return &TransactionValidator{policy: policy}
}

// ValidateAmount checks format first, then the policy bounds
func (v *TransactionValidator) ValidateAmount(amount decimal.Decimal) error {
	if err := entity.ValidatePositiveAmount(amount); err != nil {
		return err
	}
	if amount.LessThan(v.policy.MinTransactionAmount) {
		return fmt.Errorf("%w: minimum is %s", errs.ErrAmountTooLow, entity.FormatAmount(v.policy.MinTransactionAmount))
	}
	if amount.GreaterThan(v.policy.MaxTransactionAmount) {
		return fmt.Errorf("%w: maximum is %s", errs.ErrAmountTooHigh, entity.FormatAmount(v.policy.MaxTransactionAmount))
	}
	return nil
}

// CheckDailyLimit rejects a transfer that would pass the user's amount limit or the daily count limit
func (v *TransactionValidator) CheckDailyLimit(user *entity.User, today persistence.DailyActivity, amount decimal.Decimal) error {
	limitErr := &errs.DailyLimitError{
		UserID:    user.ID,
		Limit:     entity.FormatAmount(user.DailyLimit),
		Spent:     entity.FormatAmount(today.Total),
		Requested: entity.FormatAmount(amount),
	}

	if today.Total.Add(amount).GreaterThan(user.DailyLimit) {
		return limitErr
	}
	if today.Count+1 > v.policy.DailyTransactionLimit {
		limitErr.CountExceeded = true
		return limitErr
	}
	return nil
}

// Limits reports the remaining allowance for today
func (v *TransactionValidator) Limits(user *entity.User, today persistence.DailyActivity) (remainingAmount decimal.Decimal, remainingCount int) {
	remainingAmount = decimal.Max(user.DailyLimit.Sub(today.Total), decimal.Zero)
	remainingCount = v.policy.DailyTransactionLimit - today.Count
	if remainingCount < 0 {
		remainingCount = 0
	}
	return remainingAmount, remainingCount
}
