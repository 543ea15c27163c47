package balance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
)

const (
	defaultDepositDescription    = "Balance deposit"
	defaultWithdrawalDescription = "Balance withdrawal"
)

func dailyLimitRangeError(policy entity.BankingPolicy) error {
	return errs.NewValidationError("new_daily_limit", fmt.Sprintf("must be between %s and %s",
		entity.FormatAmount(policy.MinDailyLimit), entity.FormatAmount(policy.MaxDailyLimit)))
}

// validateAmount checks a deposit or withdrawal amount against the policy
func (b *BalanceUseCase) validateAmount(amount decimal.Decimal) error {
	if err := entity.ValidatePositiveAmount(amount); err != nil {
		return err
	}
	if amount.GreaterThan(b.policy.MaxTransactionAmount) {
		return fmt.Errorf("%w: maximum is %s", errs.ErrAmountTooHigh, entity.FormatAmount(b.policy.MaxTransactionAmount))
	}
	return nil
}

// Deposit credits the user and records a SYSTEM to user transaction
func (b *BalanceUseCase) Deposit(ctx context.Context, userID string, amount decimal.Decimal, description string) (*usecase.BalanceChangeResult, error) {
	if description == "" {
		description = defaultDepositDescription
	}
	result, err := b.modifyBalance(ctx, userID, amount, description, true)
	if err != nil {
		return nil, err
	}

	b.audit.Record(ctx, userID, entity.ActionDeposit, changeDetails(result, description))
	b.events.Emit(ctx, coreport.EventBalanceDeposited, userID, map[string]any{
		"transaction_id": result.Transaction.ID,
		"amount":         entity.FormatAmount(amount),
		"new_balance":    entity.FormatAmount(result.NewBalance),
	})
	return result, nil
}

// Withdraw debits the user and records a user to SYSTEM transaction
func (b *BalanceUseCase) Withdraw(ctx context.Context, userID string, amount decimal.Decimal, description string) (*usecase.BalanceChangeResult, error) {
	if description == "" {
		description = defaultWithdrawalDescription
	}
	result, err := b.modifyBalance(ctx, userID, amount, description, false)
	if err != nil {
		if errs.IsInsufficientBalanceError(err) {
			details := errs.LogFields(err)
			details["reason"] = "insufficient funds"
			b.audit.Record(ctx, userID, entity.ActionWithdrawalFailed, details)
		}
		return nil, err
	}

	b.audit.Record(ctx, userID, entity.ActionWithdrawal, changeDetails(result, description))
	b.events.Emit(ctx, coreport.EventBalanceWithdrawn, userID, map[string]any{
		"transaction_id": result.Transaction.ID,
		"amount":         entity.FormatAmount(amount),
		"new_balance":    entity.FormatAmount(result.NewBalance),
	})
	return result, nil
}

// modifyBalance changes the balance in one users table write, then appends the transaction.
// A failed append reverses the balance change.
func (b *BalanceUseCase) modifyBalance(
	ctx context.Context,
	userID string,
	amount decimal.Decimal,
	description string,
	isDeposit bool,
) (*usecase.BalanceChangeResult, error) {
	if err := b.validateAmount(amount); err != nil {
		return nil, err
	}

	var previous, current decimal.Decimal
	var accountNumber string
	err := b.users.UpdateAtomically(ctx, []string{userID}, func(users map[string]*entity.User) error {
		user := users[userID]
		previous = user.Balance
		accountNumber = user.AccountNumber
		if isDeposit {
			if err := user.Credit(amount); err != nil {
				return err
			}
		} else if err := user.Debit(amount); err != nil {
			return err
		}
		current = user.Balance
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := b.clock.Now()
	txn := &entity.Transaction{
		ID:             b.ids.TransactionID(now),
		Amount:         amount,
		Status:         entity.StatusSuccess,
		Description:    description,
		Timestamp:      now,
		DailyTotalSent: decimal.Zero,
	}
	if isDeposit {
		txn.FromUserID, txn.FromAccount = entity.SystemParty, entity.SystemParty
		txn.ToUserID, txn.ToAccount = userID, accountNumber
	} else {
		txn.FromUserID, txn.FromAccount = userID, accountNumber
		txn.ToUserID, txn.ToAccount = entity.SystemParty, entity.SystemParty
	}

	if err := b.transactions.Create(ctx, txn); err != nil {
		b.logger.Error("Failed to record balance change, reversing", map[string]any{
			"user_id":        userID,
			"transaction_id": txn.ID,
			"error":          err.Error(),
		})
		b.reverse(context.WithoutCancel(ctx), userID, amount, isDeposit)
		return nil, err
	}

	b.logger.Info("Balance changed", map[string]any{
		"user_id":          userID,
		"transaction_id":   txn.ID,
		"kind":             txn.Kind(),
		"amount":           entity.FormatAmount(amount),
		"previous_balance": entity.FormatAmount(previous),
		"new_balance":      entity.FormatAmount(current),
	})

	return &usecase.BalanceChangeResult{Transaction: txn, PreviousBalance: previous, NewBalance: current}, nil
}

func (b *BalanceUseCase) reverse(ctx context.Context, userID string, amount decimal.Decimal, wasDeposit bool) {
	err := b.users.UpdateAtomically(ctx, []string{userID}, func(users map[string]*entity.User) error {
		if wasDeposit {
			// the reversal may overdraw when the credited funds were already spent
			users[userID].Balance = users[userID].Balance.Sub(amount)
			return nil
		}
		return users[userID].Credit(amount)
	})
	if err != nil {
		b.logger.Error("Failed to reverse balance change", map[string]any{
			"user_id": userID,
			"amount":  entity.FormatAmount(amount),
			"error":   err.Error(),
		})
	}
}

func changeDetails(result *usecase.BalanceChangeResult, description string) map[string]any {
	return map[string]any{
		"transaction_id":   result.Transaction.ID,
		"amount":           entity.FormatAmount(result.Transaction.Amount),
		"previous_balance": entity.FormatAmount(result.PreviousBalance),
		"new_balance":      entity.FormatAmount(result.NewBalance),
		"description":      description,
	}
}
