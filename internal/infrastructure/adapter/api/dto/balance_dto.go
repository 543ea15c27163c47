package dto

import (
	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
)

// AmountRequest is the body of deposit and withdraw
type AmountRequest struct {
	Amount      *decimal.Decimal `json:"amount" binding:"required,money"`
	Description string           `json:"description" binding:"max=255"`
}

// DailyLimitRequest is the body of PUT /balance/daily-limit/:user_id
type DailyLimitRequest struct {
	DailyLimit *decimal.Decimal `json:"daily_limit" binding:"required,money"`
}

// BalanceHistoryQuery is the query of GET /balance/history/:user_id
type BalanceHistoryQuery struct {
	Type      string `form:"type" binding:"omitempty,oneof=all deposit withdraw"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

// BalanceResponse is the balance of a user with today's limit usage
type BalanceResponse struct {
	UserID              string               `json:"user_id"`
	AccountNumber       string               `json:"account_number"`
	Currency            string               `json:"currency"`
	CurrentBalance      string               `json:"current_balance"`
	DailyLimit          string               `json:"daily_limit"`
	DailySpentToday     string               `json:"daily_spent_today"`
	AvailableDailyLimit string               `json:"available_daily_limit"`
	TransactionsToday   int                  `json:"transactions_today"`
	LastTransaction     *TransactionResponse `json:"last_transaction"`
}

// NewBalanceResponse maps a balance status
func NewBalanceResponse(s *usecase.BalanceStatus) BalanceResponse {
	return BalanceResponse{
		UserID:              s.UserID,
		AccountNumber:       s.AccountNumber,
		Currency:            s.Currency,
		CurrentBalance:      entity.FormatAmount(s.CurrentBalance),
		DailyLimit:          entity.FormatAmount(s.DailyLimit),
		DailySpentToday:     entity.FormatAmount(s.DailySpentToday),
		AvailableDailyLimit: entity.FormatAmount(s.AvailableDailyLimit),
		TransactionsToday:   s.TransactionsToday,
		LastTransaction:     NewTransactionResponse(s.LastTransaction),
	}
}

// BalanceChangeResponse is the outcome of a deposit or withdrawal
type BalanceChangeResponse struct {
	Transaction     *TransactionResponse `json:"transaction"`
	PreviousBalance string               `json:"previous_balance"`
	NewBalance      string               `json:"new_balance"`
}

// NewBalanceChangeResponse maps a balance change
func NewBalanceChangeResponse(r *usecase.BalanceChangeResult) BalanceChangeResponse {
	return BalanceChangeResponse{
		Transaction:     NewTransactionResponse(r.Transaction),
		PreviousBalance: entity.FormatAmount(r.PreviousBalance),
		NewBalance:      entity.FormatAmount(r.NewBalance),
	}
}

// BalanceHistorySummary totals a filtered balance history
type BalanceHistorySummary struct {
	TotalDeposits    string `json:"total_deposits"`
	TotalWithdrawals string `json:"total_withdrawals"`
	NetChange        string `json:"net_change"`
	TransactionCount int    `json:"transaction_count"`
}

// BalanceHistoryResponse is one page of deposits and withdrawals
type BalanceHistoryResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Pagination   entity.PageInfo        `json:"pagination"`
	Summary      BalanceHistorySummary  `json:"summary"`
}

// NewBalanceHistoryResponse maps a history page
func NewBalanceHistoryResponse(h *usecase.BalanceHistory) BalanceHistoryResponse {
	return BalanceHistoryResponse{
		Transactions: NewTransactionResponses(h.Items),
		Pagination:   h.Page,
		Summary: BalanceHistorySummary{
			TotalDeposits:    entity.FormatAmount(h.Summary.TotalDeposits),
			TotalWithdrawals: entity.FormatAmount(h.Summary.TotalWithdrawals),
			NetChange:        entity.FormatAmount(h.Summary.NetChange),
			TransactionCount: h.Summary.TransactionCount,
		},
	}
}

// BalanceSummaryResponse is the balance with the latest movements
type BalanceSummaryResponse struct {
	Balance            BalanceResponse        `json:"balance"`
	RecentTransactions []*TransactionResponse `json:"recent_transactions"`
}

// NewBalanceSummaryResponse maps a balance summary
func NewBalanceSummaryResponse(s *usecase.BalanceSummary) BalanceSummaryResponse {
	return BalanceSummaryResponse{
		Balance:            NewBalanceResponse(s.Status),
		RecentTransactions: NewTransactionResponses(s.Recent),
	}
}
