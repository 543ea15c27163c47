package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DailyActivity summarizes a user's successful outgoing transfers on one UTC day
type DailyActivity struct {
	Total decimal.Decimal
	Count int
}

// TransactionRepository defines methods to interact with transaction records
type TransactionRepository interface {
	// Create appends a new transaction record
	Create(ctx context.Context, transaction *entity.Transaction) error

	// UpdateStatus changes the status of a recorded transaction
	//
	// Possible errors:
	// - ErrTransactionNotFound: If no record has the id
	UpdateStatus(ctx context.Context, transactionID string, status entity.TransactionStatus) error

	// GetByID retrieves a transaction by its id
	//
	// Possible errors:
	// - ErrTransactionNotFound: If no record has the id
	GetByID(ctx context.Context, transactionID string) (*entity.Transaction, error)

	// ListByUser returns every record where the user is sender or receiver, in table order
	ListByUser(ctx context.Context, userID string) ([]*entity.Transaction, error)

	// DailyActivity scans the table for the user's successful outgoing transfers on the UTC day of `day`
	DailyActivity(ctx context.Context, userID string, day time.Time) (DailyActivity, error)
}
