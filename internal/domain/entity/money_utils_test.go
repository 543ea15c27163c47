package entity

import (
	"testing"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	t.Run("Valid amounts", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected string
		}{
			{"100.00", "100.00"},
			{"0.01", "0.01"},
			{"1", "1.00"},
			{"1.5", "1.50"},
			{" 1234567.89 ", "1234567.89"},
			{"0", "0.00"},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				amount, err := ParseAmount(tc.input)
				require.NoError(t, err)
				assert.Equal(t, tc.expected, FormatAmount(amount))
			})
		}
	})

	t.Run("Invalid amounts", func(t *testing.T) {
		testCases := []struct {
			input       string
			description string
		}{
			{"", "Empty string"},
			{"   ", "Whitespace only"},
			{"-1.00", "Negative amount"},
			{"1.234", "Too many decimal places"},
			{"abc", "Non-numeric"},
			{"1,000.00", "Comma as thousands separator"},
			{"1.00.00", "Multiple decimal points"},
			{"$100", "Currency symbol"},
			{"1e3", "Exponent notation"},
		}

		for _, tc := range testCases {
			t.Run(tc.description, func(t *testing.T) {
				_, err := ParseAmount(tc.input)
				assert.ErrorIs(t, err, errs.ErrInvalidAmount)
			})
		}
	})
}

func TestValidatePositiveAmount(t *testing.T) {
	assert.NoError(t, ValidatePositiveAmount(decimal.RequireFromString("0.01")))
	assert.ErrorIs(t, ValidatePositiveAmount(decimal.Zero), errs.ErrInvalidAmount)
	assert.ErrorIs(t, ValidatePositiveAmount(decimal.RequireFromString("-5")), errs.ErrInvalidAmount)
	assert.ErrorIs(t, ValidatePositiveAmount(decimal.RequireFromString("10.005")), errs.ErrInvalidAmount)
}

func TestParseStoredAmount(t *testing.T) {
	amount, err := ParseStoredAmount("")
	require.NoError(t, err)
	assert.True(t, amount.IsZero())

	amount, err = ParseStoredAmount("1500.5")
	require.NoError(t, err)
	assert.Equal(t, "1500.50", FormatAmount(amount))

	_, err = ParseStoredAmount("n/a")
	assert.Error(t, err)
}
