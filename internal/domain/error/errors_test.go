package error

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Nil", nil, ""},
		{"InsufficientBalance", ErrInsufficientBalance, CodeInsufficientBalance},
		{"InvalidAmount", ErrInvalidAmount, CodeInvalidAmount},
		{"UserNotFound", ErrUserNotFound, CodeUserNotFound},
		{"BeneficiaryExists", ErrBeneficiaryExists, CodeBeneficiaryExists},
		{"DailyLimit", ErrDailyLimitExceeded, CodeDailyLimitExceeded},
		{"WrappedError", fmt.Errorf("wrapped: %w", ErrAccountExists), CodeAccountExists},
		{"PlainValidation", NewValidationError("username", "too short"), CodeValidation},
		{"FieldErrorWithCause", NewFieldError("account_number", "bad digits", ErrInvalidAccount), CodeInvalidAccount},
		{"StorageWrapsValidation", NewStorageError("users", "update", NewValidationError("column", "unknown")), CodeStorage},
		{"UnknownError", errors.New("unknown error"), CodeInternal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ErrorCode(tc.err))
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewFieldError("amount", "must be positive", ErrInvalidAmount)

	assert.Equal(t, "amount: must be positive", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "amount", ve.Field)
}

func TestInsufficientBalanceError(t *testing.T) {
	err := NewInsufficientBalanceError("USR1234ABCD", "150.00", "100.00")

	assert.True(t, IsInsufficientBalanceError(err))
	assert.Contains(t, err.Error(), "required 150.00, available 100.00")
	assert.Equal(t, CodeInsufficientBalance, LogFields(err)["error_code"])
}

func TestDailyLimitError(t *testing.T) {
	amountErr := &DailyLimitError{UserID: "USR1", Limit: "10000.00", Spent: "9500.00", Requested: "600.00"}
	countErr := &DailyLimitError{UserID: "USR1", CountExceeded: true}

	assert.ErrorIs(t, amountErr, ErrDailyLimitExceeded)
	assert.ErrorIs(t, countErr, ErrDailyLimitExceeded)
	assert.Contains(t, amountErr.Error(), "limit 10000.00")
	assert.Contains(t, countErr.Error(), "count limit")
}

func TestStorageError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("transactions", "write", cause)

	assert.True(t, IsStorageError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `storage write on table "transactions" failed: disk full`, err.Error())

	fields := LogFields(err)
	assert.Equal(t, "transactions", fields["table"])
	assert.Equal(t, "write", fields["operation"])
}

func TestTransferError(t *testing.T) {
	err := NewTransferError("TXN1", "USR1", "10.00", "debit", ErrInsufficientBalance)

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, CodeInsufficientBalance, ErrorCode(err))
	assert.Equal(t, "debit", LogFields(err)["stage"])
}

func TestErrorFamilies(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrBeneficiaryNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", ErrTransactionNotFound)))
	assert.False(t, IsNotFoundError(ErrUsernameExists))

	assert.True(t, IsConflictError(ErrNameExists))
	assert.True(t, IsConflictError(ErrIdempotencyConflict))
	assert.False(t, IsConflictError(ErrUserNotFound))

	assert.True(t, IsUserNotFoundError(fmt.Errorf("x: %w", ErrUserNotFound)))
}

func TestLogFieldsFallback(t *testing.T) {
	fields := LogFields(errors.New("boom"))
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, CodeInternal, fields["error_code"])
}
