package balance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
)

// History pages through the user's deposits and withdrawals, newest first
func (b *BalanceUseCase) History(ctx context.Context, userID string, req usecase.BalanceHistoryRequest) (*usecase.BalanceHistory, error) {
	if err := entity.ValidateDateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if req.Type == "" {
		req.Type = usecase.HistoryAll
	}
	switch req.Type {
	case usecase.HistoryAll, usecase.HistoryDeposit, usecase.HistoryWithdraw:
	default:
		return nil, errs.NewValidationError("transaction_type", "must be one of all, deposit, withdraw")
	}

	if _, err := b.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	movements, err := b.movements(ctx, userID, req.Type, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	summary := usecase.BalanceHistoryTotals{
		TotalDeposits:    decimal.Zero,
		TotalWithdrawals: decimal.Zero,
		TransactionCount: len(movements),
	}
	for _, txn := range movements {
		if txn.Kind() == entity.KindDeposit {
			summary.TotalDeposits = summary.TotalDeposits.Add(txn.Amount)
		} else {
			summary.TotalWithdrawals = summary.TotalWithdrawals.Add(txn.Amount)
		}
	}
	summary.NetChange = summary.TotalDeposits.Sub(summary.TotalWithdrawals)

	items, page := entity.Paginate(movements, req.Page)
	return &usecase.BalanceHistory{Items: items, Page: page, Summary: summary}, nil
}

// movements returns the user's SYSTEM counterparty rows, newest first
func (b *BalanceUseCase) movements(
	ctx context.Context,
	userID string,
	kind usecase.BalanceHistoryType,
	start, end *time.Time,
) ([]*entity.Transaction, error) {
	txns, err := b.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.Transaction, 0, len(txns))
	for _, txn := range txns {
		switch txn.Kind() {
		case entity.KindDeposit:
			if kind == usecase.HistoryWithdraw {
				continue
			}
		case entity.KindWithdrawal:
			if kind == usecase.HistoryDeposit {
				continue
			}
		default:
			continue
		}
		if !entity.InRange(txn.Timestamp, start, end) {
			continue
		}
		out = append(out, txn)
	}

	entity.SortNewestFirst(out)
	return out, nil
}
