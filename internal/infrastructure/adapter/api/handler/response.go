package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/validation"
)

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "request_id"

// StatusFor maps an error code to its HTTP status
func StatusFor(code errs.Code) int {
	switch code {
	case errs.CodeValidation, errs.CodeInvalidAmount, errs.CodeAmountTooLow, errs.CodeAmountTooHigh,
		errs.CodeInvalidAccount, errs.CodeInvalidPassword, errs.CodeInvalidDateRange, errs.CodeNoUpdates:
		return http.StatusBadRequest
	case errs.CodeInvalidCredentials, errs.CodeInvalidToken:
		return http.StatusUnauthorized
	case errs.CodeInsufficientBalance:
		return http.StatusPaymentRequired
	case errs.CodeForbidden:
		return http.StatusForbidden
	case errs.CodeUserNotFound, errs.CodeBeneficiaryNotFound, errs.CodeTransactionNotFound:
		return http.StatusNotFound
	case errs.CodeUsernameExists, errs.CodeAccountExists, errs.CodeBeneficiaryExists,
		errs.CodeNameExists, errs.CodeIdempotencyConflict:
		return http.StatusConflict
	case errs.CodeDailyLimitExceeded, errs.CodeTooManyAttempts:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// messageFor renders the client-facing message; server faults never expose their cause
func messageFor(err error, code errs.Code) string {
	var insufficient *errs.InsufficientBalanceError
	var daily *errs.DailyLimitError
	var invalid *errs.ValidationError
	switch {
	case errors.As(err, &invalid):
		return invalid.Error()
	case errors.As(err, &insufficient):
		return fmt.Sprintf("Insufficient balance. Available: %s, required: %s", insufficient.Available, insufficient.Amount)
	case errors.As(err, &daily):
		if daily.CountExceeded {
			return "Daily transaction count limit reached"
		}
		return fmt.Sprintf("Daily transfer limit exceeded. Limit: %s, spent today: %s, requested: %s",
			daily.Limit, daily.Spent, daily.Requested)
	}

	switch code {
	case errs.CodeStorage:
		return "Storage is temporarily unavailable"
	case errs.CodeInternal:
		return "Internal server error"
	}
	for _, sentinel := range []error{
		errs.ErrInvalidAmount, errs.ErrAmountTooLow, errs.ErrAmountTooHigh, errs.ErrInvalidAccount,
		errs.ErrInvalidPassword, errs.ErrInvalidDateRange, errs.ErrNoUpdates, errs.ErrInvalidCredentials,
		errs.ErrInvalidToken, errs.ErrForbidden, errs.ErrUserNotFound, errs.ErrBeneficiaryNotFound,
		errs.ErrTransactionNotFound, errs.ErrUsernameExists, errs.ErrAccountExists, errs.ErrBeneficiaryExists,
		errs.ErrNameExists, errs.ErrIdempotencyConflict, errs.ErrTooManyAttempts,
	} {
		if errors.Is(err, sentinel) {
			return capitalize(sentinel.Error())
		}
	}
	return "Request failed"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

// responder writes the response envelopes shared by every handler
type responder struct {
	clock  coreport.TimeProvider
	logger coreport.Logger
}

func (r responder) now() time.Time {
	return r.clock.Now().UTC()
}

func (r responder) success(c *gin.Context, status int, message string, data any) {
	c.JSON(status, dto.NewResponse(message, data, c.GetString(RequestIDKey), r.now()))
}

// fail maps err to its status and envelope; server faults are logged with their structured fields
func (r responder) fail(c *gin.Context, err error) {
	code := errs.ErrorCode(err)
	status := StatusFor(code)

	fields := errs.LogFields(err)
	fields["path"] = c.FullPath()
	fields["request_id"] = c.GetString(RequestIDKey)
	if status >= http.StatusInternalServerError {
		r.logger.Error("Request failed", fields)
	} else {
		r.logger.Debug("Request rejected", fields)
	}

	resp := dto.NewErrorResponse(string(code), messageFor(err, code), c.GetString(RequestIDKey), r.now())
	var invalid *errs.ValidationError
	if errors.As(err, &invalid) {
		resp.Field = invalid.Field
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// bindFailed converts a binding error into a validation failure on the first offending field
func (r responder) bindFailed(c *gin.Context, err error) {
	r.fail(c, bindingError(err))
}

func bindingError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		value, _ := fe.Value().(string)
		message := validation.Explain(fe.Tag(), value)
		if message == "" {
			message = describeTag(fe)
		}
		var cause error
		switch fe.Tag() {
		case validation.TagMoney, validation.TagMoneyNonNeg:
			cause = errs.ErrInvalidAmount
		case validation.TagAccountNumber:
			cause = errs.ErrInvalidAccount
		}
		return errs.NewFieldError(fe.Field(), message, cause)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return errs.NewValidationError("", "Malformed JSON body")
	case errors.As(err, &typeErr):
		return errs.NewValidationError(typeErr.Field, "has the wrong type")
	}
	return errs.NewValidationError("", "Invalid request: "+err.Error())
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
