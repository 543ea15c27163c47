package entity

import (
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	"github.com/shopspring/decimal"
)

// MaxDecimalPlaces defines the maximum number of decimal places allowed for money amounts
const MaxDecimalPlaces = 2

// ParseAmount validates and parses a textual money amount.
// Accepts plain decimal notation with at most two decimal places; negatives are rejected.
func ParseAmount(amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}
	if strings.ContainsAny(amount, "eE,$ ") {
		return decimal.Zero, fmt.Errorf("%w: invalid number format", errs.ErrInvalidAmount)
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}
	if err := checkAmount(value); err != nil {
		return decimal.Zero, err
	}
	return value, nil
}

// ValidatePositiveAmount checks that an amount is greater than zero with at most two decimals
func ValidatePositiveAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", errs.ErrInvalidAmount)
	}
	return checkAmount(amount)
}

func checkAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: amount cannot be negative", errs.ErrInvalidAmount)
	}
	if !amount.Equal(amount.Truncate(MaxDecimalPlaces)) {
		return fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
	}
	return nil
}

// FormatAmount renders an amount with exactly two decimal places
// Example: 10 becomes "10.00", 10.5 becomes "10.50"
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(MaxDecimalPlaces)
}

// ParseStoredAmount reads an amount persisted in a table cell.
// Empty cells read as zero; stored values are not re-validated.
func ParseStoredAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

// MustAmount parses a literal amount and panics on malformed input
func MustAmount(amount string) decimal.Decimal {
	return decimal.RequireFromString(amount)
}

// ValidateNonNegativeAmount accepts zero or a positive amount with at most two decimals
func ValidateNonNegativeAmount(amount decimal.Decimal) error {
	return checkAmount(amount)
}
