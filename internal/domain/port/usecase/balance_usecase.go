package usecase

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// BalanceStatus is the current balance of a user together with today's limit usage
type BalanceStatus struct {
	UserID              string
	AccountNumber       string
	Currency            string
	CurrentBalance      decimal.Decimal
	DailyLimit          decimal.Decimal
	DailySpentToday     decimal.Decimal
	AvailableDailyLimit decimal.Decimal
	TransactionsToday   int
	LastTransaction     *entity.Transaction
}

// BalanceChangeResult is the outcome of a deposit or withdrawal
type BalanceChangeResult struct {
	Transaction     *entity.Transaction
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
}

// BalanceHistoryType filters balance movements
type BalanceHistoryType string

// Balance history filters
const (
	HistoryAll      BalanceHistoryType = "all"
	HistoryDeposit  BalanceHistoryType = "deposit"
	HistoryWithdraw BalanceHistoryType = "withdraw"
)

// BalanceHistoryRequest selects deposits and withdrawals
type BalanceHistoryRequest struct {
	Type      BalanceHistoryType
	StartDate *time.Time
	EndDate   *time.Time
	Page      entity.PageRequest
}

// BalanceHistoryTotals summarizes every movement that passed the filters
type BalanceHistoryTotals struct {
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	NetChange        decimal.Decimal
	TransactionCount int
}

// BalanceHistory is one page of balance movements
type BalanceHistory struct {
	Items   []*entity.Transaction
	Page    entity.PageInfo
	Summary BalanceHistoryTotals
}

// BalanceSummary combines the balance with the latest movements
type BalanceSummary struct {
	Status *BalanceStatus
	Recent []*entity.Transaction
}

// BalanceUseCase defines balance inquiry and adjustment operations
type BalanceUseCase interface {
	Check(ctx context.Context, userID string) (*BalanceStatus, error)
	Summary(ctx context.Context, userID string) (*BalanceSummary, error)
	Deposit(ctx context.Context, userID string, amount decimal.Decimal, description string) (*BalanceChangeResult, error)
	Withdraw(ctx context.Context, userID string, amount decimal.Decimal, description string) (*BalanceChangeResult, error)
	History(ctx context.Context, userID string, req BalanceHistoryRequest) (*BalanceHistory, error)
	UpdateDailyLimit(ctx context.Context, userID string, limit decimal.Decimal) (*BalanceStatus, error)
}
