package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/storage"
)

// Postgres SQLSTATE codes the blob store reacts to
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgTooManyConnections   = "53300"
	pgAdminShutdown        = "57P01"
	pgCannotConnectNow     = "57P03"
)

// ErrorMapper maps database errors to the errors the blob backend understands
type ErrorMapper struct{}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps a database error for one blob operation
func (m *ErrorMapper) MapError(err error, operation, blob string) error {
	if err == nil {
		return nil
	}

	switch {
	case isNotFound(err):
		return storage.ErrBlobNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), pgCode(err) == pgUniqueViolation:
		return fmt.Errorf("%w: %s %s", errs.ErrConcurrentWrite, operation, blob)
	case pgCode(err) == pgLockNotAvailable:
		return fmt.Errorf("%w: %s", errs.ErrLeaseUnavailable, blob)
	default:
		return fmt.Errorf("%s %s: %w", operation, blob, err)
	}
}

// isTransientError checks if an error is transient and the statement can be retried
func isTransientError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	switch pgCode(err) {
	case pgSerializationFailure, pgDeadlockDetected, pgTooManyConnections, pgAdminShutdown, pgCannotConnectNow:
		return true
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "broken pipe") ||
		strings.Contains(errMsg, "server closed") ||
		strings.Contains(errMsg, "unexpected eof")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
