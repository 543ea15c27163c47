package usecase

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SendMoneyRequest is a transfer to a saved beneficiary
type SendMoneyRequest struct {
	BeneficiaryID  string
	Amount         decimal.Decimal
	Description    string
	IdempotencyKey string
}

// SendMoneyResult is the outcome of a transfer
type SendMoneyResult struct {
	Transaction     *entity.Transaction
	BeneficiaryName string
	BankName        string
	NewBalance      decimal.Decimal
	// Replayed is set when an idempotency key returned an earlier transfer
	Replayed bool
}

// TransactionHistoryRequest filters transfers
type TransactionHistoryRequest struct {
	Status          entity.TransactionStatus
	StartDate       *time.Time
	EndDate         *time.Time
	BeneficiaryName string
	Page            entity.PageRequest
}

// TransactionView is a transfer as seen by one of its parties
type TransactionView struct {
	Transaction *entity.Transaction
	Direction   string // sent | received
	// CounterpartyName resolves the other account against the viewer's beneficiaries
	CounterpartyName string
}

// TransactionHistoryTotals summarizes every transfer that passed the filters
type TransactionHistoryTotals struct {
	TotalSent        decimal.Decimal
	TotalReceived    decimal.Decimal
	TransactionCount int
}

// TransactionHistory is one page of transfers
type TransactionHistory struct {
	Items   []*TransactionView
	Page    entity.PageInfo
	Summary TransactionHistoryTotals
}

// DailyLimits reports today's transfer allowance
type DailyLimits struct {
	Currency              string
	DailyLimit            decimal.Decimal
	SpentToday            decimal.Decimal
	RemainingAmount       decimal.Decimal
	TransactionsToday     int
	DailyTransactionLimit int
	RemainingTransactions int
	MinTransferAmount     decimal.Decimal
	MaxTransferAmount     decimal.Decimal
}

// TransactionUseCase defines money transfer operations
type TransactionUseCase interface {
	Send(ctx context.Context, userID string, req SendMoneyRequest) (*SendMoneyResult, error)
	History(ctx context.Context, userID string, req TransactionHistoryRequest) (*TransactionHistory, error)
	// Recent returns the newest transfers; limit is clamped to 1..20
	Recent(ctx context.Context, userID string, limit int) ([]*TransactionView, error)
	Status(ctx context.Context, userID, transactionID string) (*TransactionView, error)
	Limits(ctx context.Context, userID string) (*DailyLimits, error)
}
