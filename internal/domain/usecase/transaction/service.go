package transaction

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/audit"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/event"
)

// Recent list bounds
const (
	DefaultRecentLimit = 5
	MaxRecentLimit     = 20
)

// Transfer directions as seen by the viewing user
const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

// Dependencies groups the collaborators of the transaction service
type Dependencies struct {
	Users           persistence.UserRepository
	Beneficiaries   persistence.BeneficiaryRepository
	Transactions    persistence.TransactionRepository
	IdempotencyKeys persistence.IdempotencyRepository
	IDs             coreport.IDGenerator
	Clock           coreport.TimeProvider
	Audit           *audit.Recorder
	Events          *event.Emitter
	Logger          coreport.Logger
	// QueueSize bounds each sender's pending transfers; zero means DefaultQueueSize
	QueueSize int
}

// Service ties the per-sender queue to the transfer processor and serves transfer queries
type Service struct {
	manager       *TransactionManager
	processor     *TransactionProcessor
	validator     *TransactionValidator
	users         persistence.UserRepository
	beneficiaries persistence.BeneficiaryRepository
	transactions  persistence.TransactionRepository
	clock         coreport.TimeProvider
	logger        coreport.Logger
	policy        entity.BankingPolicy
}

var _ usecase.TransactionUseCase = (*Service)(nil)

// NewTransactionService creates a new transaction service
func NewTransactionService(deps Dependencies, policy entity.BankingPolicy) *Service {
	validator := NewTransactionValidator(policy)

	processor := &TransactionProcessor{
		users:         deps.Users,
		beneficiaries: deps.Beneficiaries,
		transactions:  deps.Transactions,
		validator:     validator,
		idempotency:   NewIdempotencyHandler(deps.IdempotencyKeys, deps.Transactions, deps.Clock, deps.Logger),
		ids:           deps.IDs,
		clock:         deps.Clock,
		audit:         deps.Audit,
		events:        deps.Events,
		logger:        deps.Logger,
	}

	return &Service{
		manager:       NewTransactionManager(deps.Logger, deps.QueueSize, processor.Process),
		processor:     processor,
		validator:     validator,
		users:         deps.Users,
		beneficiaries: deps.Beneficiaries,
		transactions:  deps.Transactions,
		clock:         deps.Clock,
		logger:        deps.Logger,
		policy:        policy,
	}
}

// Send queues a transfer behind the sender's earlier transfers and waits for its outcome
func (s *Service) Send(ctx context.Context, userID string, req usecase.SendMoneyRequest) (*usecase.SendMoneyResult, error) {
	req.BeneficiaryID = strings.TrimSpace(req.BeneficiaryID)
	req.Description = strings.TrimSpace(req.Description)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)

	if req.BeneficiaryID == "" {
		return nil, errs.NewValidationError("beneficiary_id", "is required")
	}
	if err := entity.ValidateTransferDescription(req.Description); err != nil {
		return nil, err
	}
	if req.IdempotencyKey != "" {
		if err := ValidateKey(req.IdempotencyKey); err != nil {
			return nil, err
		}
	}

	return s.manager.EnqueueTransaction(ctx, userID, req)
}

// History returns the user's sent and received transfers, newest first
func (s *Service) History(
	ctx context.Context,
	userID string,
	req usecase.TransactionHistoryRequest,
) (*usecase.TransactionHistory, error) {
	if err := entity.ValidateDateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if req.Status != "" && !req.Status.IsValid() {
		return nil, errs.NewValidationError("status", "must be one of processing, success, failed")
	}

	views, err := s.views(ctx, userID)
	if err != nil {
		return nil, err
	}

	nameFilter := strings.ToLower(strings.TrimSpace(req.BeneficiaryName))
	filtered := make([]*usecase.TransactionView, 0, len(views))
	summary := usecase.TransactionHistoryTotals{
		TotalSent:     decimal.Zero,
		TotalReceived: decimal.Zero,
	}
	for _, view := range views {
		txn := view.Transaction
		if req.Status != "" && txn.Status != req.Status {
			continue
		}
		if !entity.InRange(txn.Timestamp, req.StartDate, req.EndDate) {
			continue
		}
		if nameFilter != "" && !strings.Contains(strings.ToLower(view.CounterpartyName), nameFilter) {
			continue
		}

		filtered = append(filtered, view)
		if txn.Status != entity.StatusSuccess {
			continue
		}
		if view.Direction == DirectionSent {
			summary.TotalSent = summary.TotalSent.Add(txn.Amount)
		} else {
			summary.TotalReceived = summary.TotalReceived.Add(txn.Amount)
		}
	}
	summary.TransactionCount = len(filtered)

	items, info := entity.Paginate(filtered, req.Page)

	return &usecase.TransactionHistory{
		Items:   items,
		Page:    info,
		Summary: summary,
	}, nil
}

// Recent returns the newest transfers; limit is clamped to 1..20 and defaults to 5
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]*usecase.TransactionView, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	views, err := s.views(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(views) > limit {
		views = views[:limit]
	}
	return views, nil
}

// Status returns one transfer if the user is a party to it
func (s *Service) Status(ctx context.Context, userID, transactionID string) (*usecase.TransactionView, error) {
	txn, err := s.transactions.GetByID(ctx, strings.TrimSpace(transactionID))
	if err != nil {
		return nil, err
	}
	if !txn.InvolvesUser(userID) || txn.Kind() != entity.KindTransfer {
		return nil, errs.ErrTransactionNotFound
	}

	names, err := s.beneficiaryNames(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(userID, txn, names), nil
}

// Limits reports today's transfer allowance
func (s *Service) Limits(ctx context.Context, userID string) (*usecase.DailyLimits, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	today, err := s.transactions.DailyActivity(ctx, userID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	remainingAmount, remainingCount := s.validator.Limits(user, today)
	return &usecase.DailyLimits{
		Currency:              s.policy.Currency,
		DailyLimit:            user.DailyLimit,
		SpentToday:            today.Total,
		RemainingAmount:       remainingAmount,
		TransactionsToday:     today.Count,
		DailyTransactionLimit: s.policy.DailyTransactionLimit,
		RemainingTransactions: remainingCount,
		MinTransferAmount:     s.policy.MinTransactionAmount,
		MaxTransferAmount:     s.policy.MaxTransactionAmount,
	}, nil
}

// Shutdown stops accepting transfers and waits for queued ones to finish
func (s *Service) Shutdown() {
	s.manager.Shutdown()
}

// views lists every transfer the user is a party to, deposits and withdrawals excluded
func (s *Service) views(ctx context.Context, userID string) ([]*usecase.TransactionView, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	txns, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	names, err := s.beneficiaryNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	transfers := make([]*entity.Transaction, 0, len(txns))
	for _, txn := range txns {
		if txn.Kind() == entity.KindTransfer {
			transfers = append(transfers, txn)
		}
	}
	entity.SortNewestFirst(transfers)

	views := make([]*usecase.TransactionView, len(transfers))
	for i, txn := range transfers {
		views[i] = s.view(userID, txn, names)
	}
	return views, nil
}

func (s *Service) view(userID string, txn *entity.Transaction, names map[string]string) *usecase.TransactionView {
	view := &usecase.TransactionView{Transaction: txn, Direction: DirectionReceived}
	counterparty := txn.FromAccount
	if txn.FromUserID == userID {
		view.Direction = DirectionSent
		counterparty = txn.ToAccount
	}
	view.CounterpartyName = names[counterparty]
	return view
}

// beneficiaryNames maps the viewer's saved account numbers to payee names
func (s *Service) beneficiaryNames(ctx context.Context, userID string) (map[string]string, error) {
	beneficiaries, err := s.beneficiaries.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(beneficiaries))
	for _, b := range beneficiaries {
		names[b.AccountNumber] = b.Name
	}
	return names, nil
}
