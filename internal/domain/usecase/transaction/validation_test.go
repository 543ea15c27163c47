package transaction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
)

func TestTransactionValidator_ValidateAmount(t *testing.T) {
	validator := NewTransactionValidator(entity.DefaultBankingPolicy())

	testCases := []struct {
		name   string
		amount string
		err    error
	}{
		{"Minimum", "1", nil},
		{"Maximum", "50000", nil},
		{"Two decimals", "12.34", nil},
		{"Zero", "0", errs.ErrInvalidAmount},
		{"Negative", "-5", errs.ErrInvalidAmount},
		{"Three decimals", "1.005", errs.ErrInvalidAmount},
		{"Below minimum", "0.99", errs.ErrAmountTooLow},
		{"Above maximum", "50000.01", errs.ErrAmountTooHigh},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.ValidateAmount(entity.MustAmount(tc.amount))
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestTransactionValidator_CheckDailyLimit(t *testing.T) {
	validator := NewTransactionValidator(entity.DefaultBankingPolicy())
	user := &entity.User{ID: "USR1", DailyLimit: entity.MustAmount("1000")}

	t.Run("Within limit", func(t *testing.T) {
		today := persistence.DailyActivity{Total: entity.MustAmount("400"), Count: 2}
		assert.NoError(t, validator.CheckDailyLimit(user, today, entity.MustAmount("600")))
	})

	t.Run("Amount limit", func(t *testing.T) {
		today := persistence.DailyActivity{Total: entity.MustAmount("400"), Count: 2}

		err := validator.CheckDailyLimit(user, today, entity.MustAmount("600.01"))

		assert.ErrorIs(t, err, errs.ErrDailyLimitExceeded)
		var limitErr *errs.DailyLimitError
		if assert.True(t, errors.As(err, &limitErr)) {
			assert.False(t, limitErr.CountExceeded)
			assert.Equal(t, "400.00", limitErr.Spent)
		}
	})

	t.Run("Count limit", func(t *testing.T) {
		today := persistence.DailyActivity{Total: entity.MustAmount("10"), Count: 10}

		err := validator.CheckDailyLimit(user, today, entity.MustAmount("1"))

		var limitErr *errs.DailyLimitError
		if assert.True(t, errors.As(err, &limitErr)) {
			assert.True(t, limitErr.CountExceeded)
		}
	})
}

func TestTransactionValidator_Limits(t *testing.T) {
	validator := NewTransactionValidator(entity.DefaultBankingPolicy())
	user := &entity.User{ID: "USR1", DailyLimit: entity.MustAmount("1000")}

	amount, count := validator.Limits(user, persistence.DailyActivity{Total: entity.MustAmount("250"), Count: 3})
	assert.Equal(t, "750.00", entity.FormatAmount(amount))
	assert.Equal(t, 7, count)

	// a lowered limit can leave the spent total above it
	amount, count = validator.Limits(user, persistence.DailyActivity{Total: entity.MustAmount("1500"), Count: 12})
	assert.True(t, amount.IsZero())
	assert.Zero(t, count)
}
