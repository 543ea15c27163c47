package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
)

// IdempotencyKeyHeader carries the client's transfer idempotency key
const IdempotencyKeyHeader = "Idempotency-Key"

// SendMoneyRequest is the body of POST /transactions/send/:user_id
type SendMoneyRequest struct {
	BeneficiaryID string           `json:"beneficiary_id" binding:"required"`
	Amount        *decimal.Decimal `json:"amount" binding:"required,money"`
	Description   string           `json:"description" binding:"max=255"`
}

// ToUseCase maps the request to the service input
func (r SendMoneyRequest) ToUseCase(idempotencyKey string) usecase.SendMoneyRequest {
	return usecase.SendMoneyRequest{
		BeneficiaryID:  r.BeneficiaryID,
		Amount:         *r.Amount,
		Description:    r.Description,
		IdempotencyKey: idempotencyKey,
	}
}

// TransactionHistoryQuery is the query of GET /transactions/history/:user_id
type TransactionHistoryQuery struct {
	StatusFilter    string `form:"status_filter" binding:"omitempty,oneof=processing success failed"`
	StartDate       string `form:"start_date"`
	EndDate         string `form:"end_date"`
	BeneficiaryName string `form:"beneficiary_name"`
	Page            int    `form:"page"`
	PageSize        int    `form:"page_size"`
}

// RecentQuery is the query of GET /transactions/recent/:user_id
type RecentQuery struct {
	Limit int `form:"limit"`
}

// TransactionResponse is a stored transaction row
type TransactionResponse struct {
	TransactionID  string    `json:"transaction_id"`
	Type           string    `json:"type"`
	FromUserID     string    `json:"from_user_id"`
	ToUserID       string    `json:"to_user_id"`
	FromAccount    string    `json:"from_account"`
	ToAccount      string    `json:"to_account"`
	Amount         string    `json:"amount"`
	Status         string    `json:"status"`
	Description    string    `json:"description"`
	Timestamp      time.Time `json:"timestamp"`
	DailyTotalSent string    `json:"daily_total_sent,omitempty"`
}

// NewTransactionResponse maps a transaction; nil stays nil
func NewTransactionResponse(txn *entity.Transaction) *TransactionResponse {
	if txn == nil {
		return nil
	}
	resp := &TransactionResponse{
		TransactionID: txn.ID,
		Type:          string(txn.Kind()),
		FromUserID:    txn.FromUserID,
		ToUserID:      txn.ToUserID,
		FromAccount:   txn.FromAccount,
		ToAccount:     txn.ToAccount,
		Amount:        entity.FormatAmount(txn.Amount),
		Status:        string(txn.Status),
		Description:   txn.Description,
		Timestamp:     txn.Timestamp,
	}
	if txn.Kind() == entity.KindTransfer {
		resp.DailyTotalSent = entity.FormatAmount(txn.DailyTotalSent)
	}
	return resp
}

// NewTransactionResponses maps a list, never returning nil
func NewTransactionResponses(txns []*entity.Transaction) []*TransactionResponse {
	out := make([]*TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		out = append(out, NewTransactionResponse(txn))
	}
	return out
}

// TransactionViewResponse is a transfer seen by one of its parties
type TransactionViewResponse struct {
	*TransactionResponse
	Direction        string `json:"direction"`
	CounterpartyName string `json:"counterparty_name,omitempty"`
}

// NewTransactionViewResponse maps a view
func NewTransactionViewResponse(v *usecase.TransactionView) *TransactionViewResponse {
	return &TransactionViewResponse{
		TransactionResponse: NewTransactionResponse(v.Transaction),
		Direction:           v.Direction,
		CounterpartyName:    v.CounterpartyName,
	}
}

// NewTransactionViewResponses maps a list of views
func NewTransactionViewResponses(views []*usecase.TransactionView) []*TransactionViewResponse {
	out := make([]*TransactionViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, NewTransactionViewResponse(v))
	}
	return out
}

// SendMoneyResponse is the outcome of a transfer
type SendMoneyResponse struct {
	*TransactionResponse
	BeneficiaryName  string `json:"beneficiary_name"`
	BankName         string `json:"bank_name"`
	SenderNewBalance string `json:"sender_new_balance"`
	Replayed         bool   `json:"replayed,omitempty"`
}

// NewSendMoneyResponse maps a transfer result
func NewSendMoneyResponse(r *usecase.SendMoneyResult) SendMoneyResponse {
	return SendMoneyResponse{
		TransactionResponse: NewTransactionResponse(r.Transaction),
		BeneficiaryName:     r.BeneficiaryName,
		BankName:            r.BankName,
		SenderNewBalance:    entity.FormatAmount(r.NewBalance),
		Replayed:            r.Replayed,
	}
}

// TransactionSummary totals a filtered transfer history
type TransactionSummary struct {
	TotalSent        string `json:"total_sent"`
	TotalReceived    string `json:"total_received"`
	TransactionCount int    `json:"transaction_count"`
}

// TransactionHistoryResponse is one page of transfers
type TransactionHistoryResponse struct {
	Transactions []*TransactionViewResponse `json:"transactions"`
	Pagination   entity.PageInfo            `json:"pagination"`
	Summary      TransactionSummary         `json:"summary"`
}

// NewTransactionHistoryResponse maps a history page
func NewTransactionHistoryResponse(h *usecase.TransactionHistory) TransactionHistoryResponse {
	return TransactionHistoryResponse{
		Transactions: NewTransactionViewResponses(h.Items),
		Pagination:   h.Page,
		Summary: TransactionSummary{
			TotalSent:        entity.FormatAmount(h.Summary.TotalSent),
			TotalReceived:    entity.FormatAmount(h.Summary.TotalReceived),
			TransactionCount: h.Summary.TransactionCount,
		},
	}
}

// LimitsResponse is today's transfer allowance
type LimitsResponse struct {
	Currency              string `json:"currency"`
	DailyLimit            string `json:"daily_limit"`
	SpentToday            string `json:"spent_today"`
	RemainingAmount       string `json:"remaining_amount"`
	TransactionsToday     int    `json:"transactions_today"`
	DailyTransactionLimit int    `json:"daily_transaction_limit"`
	RemainingTransactions int    `json:"remaining_transactions"`
	MinTransferAmount     string `json:"min_transfer_amount"`
	MaxTransferAmount     string `json:"max_transfer_amount"`
}

// NewLimitsResponse maps the daily limits
func NewLimitsResponse(l *usecase.DailyLimits) LimitsResponse {
	return LimitsResponse{
		Currency:              l.Currency,
		DailyLimit:            entity.FormatAmount(l.DailyLimit),
		SpentToday:            entity.FormatAmount(l.SpentToday),
		RemainingAmount:       entity.FormatAmount(l.RemainingAmount),
		TransactionsToday:     l.TransactionsToday,
		DailyTransactionLimit: l.DailyTransactionLimit,
		RemainingTransactions: l.RemainingTransactions,
		MinTransferAmount:     entity.FormatAmount(l.MinTransferAmount),
		MaxTransferAmount:     entity.FormatAmount(l.MaxTransferAmount),
	}
}
