package repository

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements persistence.TransactionRepository over the transactions table
type TransactionRepository struct {
	store  persistence.TableStore
	logger coreport.Logger
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(store persistence.TableStore, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{store: store, logger: logger}
}

func transactionToRow(t *entity.Transaction) persistence.Row {
	return persistence.Row{
		"transaction_id":   t.ID,
		"from_user_id":     t.FromUserID,
		"to_user_id":       t.ToUserID,
		"from_account":     t.FromAccount,
		"to_account":       t.ToAccount,
		"amount":           formatAmount(t.Amount),
		"status":           string(t.Status),
		"description":      t.Description,
		"timestamp":        formatTime(t.Timestamp),
		"daily_total_sent": formatAmount(t.DailyTotalSent),
	}
}

func rowToTransaction(r persistence.Row) *entity.Transaction {
	return &entity.Transaction{
		ID:             r["transaction_id"],
		FromUserID:     r["from_user_id"],
		ToUserID:       r["to_user_id"],
		FromAccount:    r["from_account"],
		ToAccount:      r["to_account"],
		Amount:         parseAmount(r["amount"]),
		Status:         entity.TransactionStatus(r["status"]),
		Description:    r["description"],
		Timestamp:      parseTime(r["timestamp"]),
		DailyTotalSent: parseAmount(r["daily_total_sent"]),
	}
}

// Create appends a new transaction record
func (r *TransactionRepository) Create(ctx context.Context, txn *entity.Transaction) error {
	r.logger.Debug("Recording transaction", map[string]any{
		"transaction_id": txn.ID,
		"from_user_id":   txn.FromUserID,
		"to_user_id":     txn.ToUserID,
		"status":         txn.Status,
	})
	return r.store.Append(ctx, TransactionsTable, transactionToRow(txn))
}

// UpdateStatus changes the status of a recorded transaction
func (r *TransactionRepository) UpdateStatus(ctx context.Context, transactionID string, status entity.TransactionStatus) error {
	n, err := r.store.Update(ctx, TransactionsTable,
		persistence.Match{"transaction_id": transactionID},
		persistence.Row{"status": string(status)},
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrTransactionNotFound
	}
	return nil
}

// GetByID retrieves a transaction by its id
func (r *TransactionRepository) GetByID(ctx context.Context, transactionID string) (*entity.Transaction, error) {
	t, err := r.store.Read(ctx, TransactionsTable)
	if err != nil {
		return nil, err
	}
	rows := t.Filter(persistence.Match{"transaction_id": transactionID})
	if len(rows) == 0 {
		return nil, errs.ErrTransactionNotFound
	}
	return rowToTransaction(rows[0]), nil
}

// ListByUser returns every record where the user is sender or receiver
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Transaction, error) {
	t, err := r.store.Read(ctx, TransactionsTable)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Transaction, 0)
	for _, row := range t.Rows {
		if row["from_user_id"] == userID || row["to_user_id"] == userID {
			out = append(out, rowToTransaction(row))
		}
	}
	return out, nil
}

// DailyActivity totals the user's successful outgoing transfers on the UTC day of `day`
func (r *TransactionRepository) DailyActivity(ctx context.Context, userID string, day time.Time) (persistence.DailyActivity, error) {
	activity := persistence.DailyActivity{Total: decimal.Zero}

	t, err := r.store.Read(ctx, TransactionsTable)
	if err != nil {
		return activity, err
	}
	for _, row := range t.Filter(persistence.Match{"from_user_id": userID}) {
		txn := rowToTransaction(row)
		if txn.CountsTowardDailyLimit(userID, day) {
			activity.Total = activity.Total.Add(txn.Amount)
			activity.Count++
		}
	}
	return activity, nil
}
