package error

import (
	"errors"
	"fmt"
)

// Code is the stable error code returned to API clients
type Code string

// Error codes for standardized API responses
const (
	// Validation family
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeInvalidAmount    Code = "INVALID_AMOUNT"
	CodeAmountTooLow     Code = "AMOUNT_TOO_LOW"
	CodeAmountTooHigh    Code = "AMOUNT_TOO_HIGH"
	CodeInvalidAccount   Code = "INVALID_ACCOUNT"
	CodeInvalidPassword  Code = "INVALID_PASSWORD"
	CodeInvalidDateRange Code = "INVALID_DATE_RANGE"
	CodeNoUpdates        Code = "NO_UPDATES"

	// Authentication family
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeForbidden          Code = "FORBIDDEN"

	// Funds
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"

	// Not found family
	CodeUserNotFound        Code = "USER_NOT_FOUND"
	CodeBeneficiaryNotFound Code = "BENEFICIARY_NOT_FOUND"
	CodeTransactionNotFound Code = "TRANSACTION_NOT_FOUND"

	// Conflict family
	CodeUsernameExists      Code = "USERNAME_EXISTS"
	CodeAccountExists       Code = "ACCOUNT_EXISTS"
	CodeBeneficiaryExists   Code = "BENEFICIARY_EXISTS"
	CodeNameExists          Code = "NAME_EXISTS"
	CodeIdempotencyConflict Code = "IDEMPOTENCY_CONFLICT"

	// Throttling
	CodeDailyLimitExceeded Code = "DAILY_LIMIT_EXCEEDED"
	CodeTooManyAttempts    Code = "TOO_MANY_ATTEMPTS"

	// Server side
	CodeStorage  Code = "STORAGE_ERROR"
	CodeInternal Code = "INTERNAL_ERROR"
)

// Base error types
var (
	// ErrValidation is returned when request data breaks a field rule
	ErrValidation = errors.New("validation failed")

	// ErrInvalidAmount is returned when an amount is not a positive value with at most two decimals
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAmountTooLow is returned when an amount is below the configured minimum
	ErrAmountTooLow = errors.New("amount below minimum")

	// ErrAmountTooHigh is returned when an amount is above the configured maximum
	ErrAmountTooHigh = errors.New("amount above maximum")

	// ErrInvalidAccount is returned when an account number fails the format rules
	ErrInvalidAccount = errors.New("invalid account number")

	// ErrInvalidPassword is returned when the current password does not match
	ErrInvalidPassword = errors.New("current password is incorrect")

	// ErrInvalidDateRange is returned when an end date precedes the start date
	ErrInvalidDateRange = errors.New("end date must not be before start date")

	// ErrNoUpdates is returned when an update request carries no changes
	ErrNoUpdates = errors.New("no fields to update")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("token does not grant access to this user")

	// ErrInsufficientBalance is returned when a user has insufficient funds for an operation
	ErrInsufficientBalance = errors.New("insufficient balance")

	ErrUserNotFound        = errors.New("user not found")
	ErrBeneficiaryNotFound = errors.New("beneficiary not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	ErrUsernameExists      = errors.New("username already exists")
	ErrAccountExists       = errors.New("account number already exists")
	ErrBeneficiaryExists   = errors.New("beneficiary with this name already exists")
	ErrNameExists          = errors.New("another beneficiary already uses this name")
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")

	// ErrDailyLimitExceeded is returned when a transfer would exceed the daily amount or count limit
	ErrDailyLimitExceeded = errors.New("daily transfer limit exceeded")

	// ErrTooManyAttempts is returned while a login lockout is active
	ErrTooManyAttempts = errors.New("too many failed login attempts")

	// ErrStorage is the base for all table storage failures
	ErrStorage = errors.New("storage error")

	// ErrCSVValidation is returned when table data does not fit the table schema
	ErrCSVValidation = errors.New("csv validation error")

	// ErrLeaseUnavailable is returned when a blob lease is held by another writer
	ErrLeaseUnavailable = errors.New("lease held by another writer")

	// ErrConcurrentWrite is returned when a conditional write loses to another writer
	ErrConcurrentWrite = errors.New("table modified by another writer")

	// ErrQueueClosed is returned when work is submitted after shutdown
	ErrQueueClosed = errors.New("transfer queue is shut down")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

var codeTable = []struct {
	err  error
	code Code
}{
	{ErrInvalidAmount, CodeInvalidAmount},
	{ErrAmountTooLow, CodeAmountTooLow},
	{ErrAmountTooHigh, CodeAmountTooHigh},
	{ErrInvalidAccount, CodeInvalidAccount},
	{ErrInvalidPassword, CodeInvalidPassword},
	{ErrInvalidDateRange, CodeInvalidDateRange},
	{ErrNoUpdates, CodeNoUpdates},
	{ErrInvalidCredentials, CodeInvalidCredentials},
	{ErrInvalidToken, CodeInvalidToken},
	{ErrForbidden, CodeForbidden},
	{ErrInsufficientBalance, CodeInsufficientBalance},
	{ErrUserNotFound, CodeUserNotFound},
	{ErrBeneficiaryNotFound, CodeBeneficiaryNotFound},
	{ErrTransactionNotFound, CodeTransactionNotFound},
	{ErrUsernameExists, CodeUsernameExists},
	{ErrAccountExists, CodeAccountExists},
	{ErrBeneficiaryExists, CodeBeneficiaryExists},
	{ErrNameExists, CodeNameExists},
	{ErrIdempotencyConflict, CodeIdempotencyConflict},
	{ErrDailyLimitExceeded, CodeDailyLimitExceeded},
	{ErrTooManyAttempts, CodeTooManyAttempts},
	// storage before validation: schema errors raised inside the storage layer are server faults
	{ErrStorage, CodeStorage},
	{ErrValidation, CodeValidation},
}

// ErrorCode returns the standardized error code for known errors
func ErrorCode(err error) Code {
	if err == nil {
		return ""
	}
	for _, entry := range codeTable {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return CodeInternal
}

// ValidationError describes a single field that failed validation
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap returns the specific cause, falling back to ErrValidation
func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrValidation
}

// Is reports ErrValidation for every validation error
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a field validation error
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewFieldError creates a field validation error carrying a more specific cause
func NewFieldError(field, message string, cause error) error {
	return &ValidationError{Field: field, Message: message, Err: cause}
}

// InsufficientBalanceError provides detailed error information for insufficient balance
type InsufficientBalanceError struct {
	UserID    string
	Amount    string
	Available string
}

// Error implements the error interface
func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for user %s: required %s, available %s",
		e.UserID, e.Amount, e.Available)
}

// Is checks if the target error is an ErrInsufficientBalance
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientBalanceError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "insufficient_balance",
		"user_id":    e.UserID,
		"amount":     e.Amount,
		"available":  e.Available,
		"error_code": CodeInsufficientBalance,
	}
}

// NewInsufficientBalanceError creates a new detailed insufficient balance error
func NewInsufficientBalanceError(userID, amount, available string) error {
	return &InsufficientBalanceError{UserID: userID, Amount: amount, Available: available}
}

// DailyLimitError describes which daily limit a transfer would break
type DailyLimitError struct {
	UserID    string
	Limit     string
	Spent     string
	Requested string
	// CountExceeded is set when the transfer count limit, not the amount, was hit
	CountExceeded bool
}

// Error implements the error interface
func (e *DailyLimitError) Error() string {
	if e.CountExceeded {
		return fmt.Sprintf("daily transaction count limit reached for user %s", e.UserID)
	}
	return fmt.Sprintf("daily limit exceeded for user %s: limit %s, spent %s, requested %s",
		e.UserID, e.Limit, e.Spent, e.Requested)
}

// Is checks if the target error is an ErrDailyLimitExceeded
func (e *DailyLimitError) Is(target error) bool {
	return target == ErrDailyLimitExceeded
}

// LogFields returns a map of fields for structured logging
func (e *DailyLimitError) LogFields() map[string]any {
	return map[string]any{
		"error_type":     "daily_limit",
		"user_id":        e.UserID,
		"limit":          e.Limit,
		"spent":          e.Spent,
		"requested":      e.Requested,
		"count_exceeded": e.CountExceeded,
		"error_code":     CodeDailyLimitExceeded,
	}
}

// StorageError carries the table and operation a storage failure happened in
type StorageError struct {
	Table     string
	Operation string
	Err       error
}

// Error implements the error interface for StorageError
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s on table %q failed: %v", e.Operation, e.Table, e.Err)
}

// Unwrap returns the underlying error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports ErrStorage for every storage error
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// LogFields returns a map of fields for structured logging
func (e *StorageError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "storage_error",
		"table":      e.Table,
		"operation":  e.Operation,
		"error":      e.Err.Error(),
		"error_code": CodeStorage,
	}
}

// NewStorageError wraps err with table and operation context
func NewStorageError(table, operation string, err error) error {
	return &StorageError{Table: table, Operation: operation, Err: err}
}

// TransferError records the state a transfer failed in
type TransferError struct {
	TransactionID string
	UserID        string
	Amount        string
	Stage         string
	Err           error
}

// Error implements the error interface for TransferError
func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s for user %s (amount %s) failed at %s: %v",
		e.TransactionID, e.UserID, e.Amount, e.Stage, e.Err)
}

// Unwrap returns the underlying error
func (e *TransferError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *TransferError) LogFields() map[string]any {
	return map[string]any{
		"error_type":     "transfer_error",
		"transaction_id": e.TransactionID,
		"user_id":        e.UserID,
		"amount":         e.Amount,
		"stage":          e.Stage,
		"error":          e.Err.Error(),
		"error_code":     ErrorCode(e.Err),
	}
}

// NewTransferError creates a detailed transfer error
func NewTransferError(transactionID, userID, amount, stage string, err error) error {
	return &TransferError{
		TransactionID: transactionID,
		UserID:        userID,
		Amount:        amount,
		Stage:         stage,
		Err:           err,
	}
}

// LogFields extracts structured fields from errors that provide them
func LogFields(err error) map[string]any {
	var withFields interface{ LogFields() map[string]any }
	if errors.As(err, &withFields) {
		return withFields.LogFields()
	}
	return map[string]any{"error": err.Error(), "error_code": ErrorCode(err)}
}

// IsInsufficientBalanceError checks if the error is related to insufficient balance
func IsInsufficientBalanceError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance)
}

// IsUserNotFoundError checks if the error is a user not found error
func IsUserNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrBeneficiaryNotFound) ||
		errors.Is(err, ErrTransactionNotFound)
}

// IsConflictError checks if the error reports a uniqueness conflict
func IsConflictError(err error) bool {
	return errors.Is(err, ErrUsernameExists) ||
		errors.Is(err, ErrAccountExists) ||
		errors.Is(err, ErrBeneficiaryExists) ||
		errors.Is(err, ErrNameExists) ||
		errors.Is(err, ErrIdempotencyConflict)
}

// IsStorageError checks if the error came from the storage layer
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorage)
}
