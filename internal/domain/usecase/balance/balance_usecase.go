package balance

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/audit"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/event"
)

// summaryRecentCount is the number of movements returned by Summary
const summaryRecentCount = 5

// Dependencies groups the collaborators of BalanceUseCase
type Dependencies struct {
	Users        persistence.UserRepository
	Transactions persistence.TransactionRepository
	IDs          coreport.IDGenerator
	Clock        coreport.TimeProvider
	Audit        *audit.Recorder
	Events       *event.Emitter
	Logger       coreport.Logger
}

// BalanceUseCase handles balance inquiries, deposits, withdrawals and the daily limit
type BalanceUseCase struct {
	users        persistence.UserRepository
	transactions persistence.TransactionRepository
	ids          coreport.IDGenerator
	clock        coreport.TimeProvider
	audit        *audit.Recorder
	events       *event.Emitter
	logger       coreport.Logger
	policy       entity.BankingPolicy
}

var _ usecase.BalanceUseCase = (*BalanceUseCase)(nil)

// NewBalanceUseCase creates a new BalanceUseCase
func NewBalanceUseCase(deps Dependencies, policy entity.BankingPolicy) *BalanceUseCase {
	return &BalanceUseCase{
		users:        deps.Users,
		transactions: deps.Transactions,
		ids:          deps.IDs,
		clock:        deps.Clock,
		audit:        deps.Audit,
		events:       deps.Events,
		logger:       deps.Logger,
		policy:       policy,
	}
}

// Check returns the balance and today's limit usage
func (b *BalanceUseCase) Check(ctx context.Context, userID string) (*usecase.BalanceStatus, error) {
	status, err := b.status(ctx, userID)
	if err != nil {
		return nil, err
	}

	b.audit.Record(ctx, userID, entity.ActionBalanceCheck, map[string]any{
		"current_balance": entity.FormatAmount(status.CurrentBalance),
		"daily_spent":     entity.FormatAmount(status.DailySpentToday),
	})
	return status, nil
}

func (b *BalanceUseCase) status(ctx context.Context, userID string) (*usecase.BalanceStatus, error) {
	user, err := b.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	activity, err := b.transactions.DailyActivity(ctx, userID, b.clock.Now())
	if err != nil {
		return nil, err
	}

	txns, err := b.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	entity.SortNewestFirst(txns)

	status := &usecase.BalanceStatus{
		UserID:              user.ID,
		AccountNumber:       user.AccountNumber,
		Currency:            b.policy.Currency,
		CurrentBalance:      user.Balance,
		DailyLimit:          user.DailyLimit,
		DailySpentToday:     activity.Total,
		AvailableDailyLimit: decimal.Max(user.DailyLimit.Sub(activity.Total), decimal.Zero),
		TransactionsToday:   activity.Count,
	}
	if len(txns) > 0 {
		status.LastTransaction = txns[0]
	}
	return status, nil
}

// Summary returns the balance together with the latest deposits and withdrawals
func (b *BalanceUseCase) Summary(ctx context.Context, userID string) (*usecase.BalanceSummary, error) {
	status, err := b.status(ctx, userID)
	if err != nil {
		return nil, err
	}

	movements, err := b.movements(ctx, userID, usecase.HistoryAll, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(movements) > summaryRecentCount {
		movements = movements[:summaryRecentCount]
	}

	return &usecase.BalanceSummary{Status: status, Recent: movements}, nil
}

// UpdateDailyLimit sets a new per-user daily transfer limit
func (b *BalanceUseCase) UpdateDailyLimit(ctx context.Context, userID string, limit decimal.Decimal) (*usecase.BalanceStatus, error) {
	if !b.policy.DailyLimitInRange(limit) || entity.ValidatePositiveAmount(limit) != nil {
		return nil, dailyLimitRangeError(b.policy)
	}

	var previous decimal.Decimal
	err := b.users.UpdateAtomically(ctx, []string{userID}, func(users map[string]*entity.User) error {
		previous = users[userID].DailyLimit
		users[userID].DailyLimit = limit
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.audit.Record(ctx, userID, entity.ActionDailyLimitUpdated, map[string]any{
		"previous_limit": entity.FormatAmount(previous),
		"new_limit":      entity.FormatAmount(limit),
	})
	b.logger.Info("Daily limit updated", map[string]any{
		"user_id":        userID,
		"previous_limit": entity.FormatAmount(previous),
		"new_limit":      entity.FormatAmount(limit),
	})

	return b.status(ctx, userID)
}
