package transaction

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/audit"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/event"
)

// Transfer stages reported in TransferError
const (
	stageRecord   = "record"
	stageBalance  = "balance"
	stageFinalize = "finalize"
)

// TransactionProcessor runs one transfer: checks, record, balance change, finalization
type TransactionProcessor struct {
	users         persistence.UserRepository
	beneficiaries persistence.BeneficiaryRepository
	transactions  persistence.TransactionRepository
	validator     *TransactionValidator
	idempotency   *IdempotencyHandler
	ids           coreport.IDGenerator
	clock         coreport.TimeProvider
	audit         *audit.Recorder
	events        *event.Emitter
	logger        coreport.Logger
}

// Process executes a transfer. It must only run from the sender's queue worker.
func (p *TransactionProcessor) Process(ctx context.Context, userID string, req usecase.SendMoneyRequest) (*usecase.SendMoneyResult, error) {
	var requestHash string
	if req.IdempotencyKey != "" {
		requestHash = RequestHash(req)
		prior, err := p.idempotency.CheckIdempotency(ctx, userID, req.IdempotencyKey, requestHash)
		if err != nil {
			return nil, err
		}
		if prior != nil {
			return p.replay(ctx, userID, req, prior)
		}
	}

	sender, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	beneficiary, err := p.beneficiaries.GetByID(ctx, userID, req.BeneficiaryID)
	if err != nil {
		return nil, err
	}

	today, err := p.precheck(ctx, sender, req.Amount)
	if err != nil {
		p.rejected(ctx, sender.ID, req, err)
		return nil, err
	}

	receiverID := entity.ExternalParty
	receiver, err := p.users.GetByAccountNumber(ctx, beneficiary.AccountNumber)
	switch {
	case err == nil && receiver.ID == sender.ID:
		err = errs.NewFieldError("account_number", "cannot transfer to your own account", errs.ErrInvalidAccount)
		p.rejected(ctx, sender.ID, req, err)
		return nil, err
	case err == nil:
		receiverID = receiver.ID
	case !errs.IsUserNotFoundError(err):
		return nil, err
	}

	now := p.clock.Now()
	txn := &entity.Transaction{
		ID:             p.ids.TransactionID(now),
		FromUserID:     sender.ID,
		ToUserID:       receiverID,
		FromAccount:    sender.AccountNumber,
		ToAccount:      beneficiary.AccountNumber,
		Amount:         req.Amount,
		Status:         entity.StatusProcessing,
		Description:    req.Description,
		Timestamp:      now,
		DailyTotalSent: today.Total.Add(req.Amount),
	}

	if err := p.transactions.Create(ctx, txn); err != nil {
		return nil, errs.NewTransferError(txn.ID, sender.ID, entity.FormatAmount(req.Amount), stageRecord, err)
	}

	newBalance, err := p.moveFunds(ctx, txn)
	if err != nil {
		p.fail(ctx, txn, stageBalance, err)
		if errs.IsInsufficientBalanceError(err) || errs.IsUserNotFoundError(err) {
			return nil, err
		}
		return nil, errs.NewTransferError(txn.ID, sender.ID, entity.FormatAmount(req.Amount), stageBalance, err)
	}

	if err := p.transactions.UpdateStatus(ctx, txn.ID, entity.StatusSuccess); err != nil {
		p.compensate(ctx, txn)
		p.fail(ctx, txn, stageFinalize, err)
		return nil, errs.NewTransferError(txn.ID, sender.ID, entity.FormatAmount(req.Amount), stageFinalize, err)
	}
	txn.Status = entity.StatusSuccess

	if req.IdempotencyKey != "" {
		p.idempotency.Remember(ctx, sender.ID, req.IdempotencyKey, requestHash, txn.ID)
	}

	p.audit.Record(ctx, sender.ID, entity.ActionMoneySent, map[string]any{
		"transaction_id":   txn.ID,
		"beneficiary_id":   beneficiary.ID,
		"beneficiary_name": beneficiary.Name,
		"to_account":       txn.ToAccount,
		"amount":           entity.FormatAmount(txn.Amount),
		"new_balance":      entity.FormatAmount(newBalance),
		"internal":         receiverID != entity.ExternalParty,
	})
	p.events.Emit(ctx, coreport.EventTransferCompleted, sender.ID, map[string]any{
		"transaction_id": txn.ID,
		"to_user_id":     txn.ToUserID,
		"to_account":     txn.ToAccount,
		"amount":         entity.FormatAmount(txn.Amount),
	})
	p.logger.Info("Transfer completed", map[string]any{
		"user_id":        sender.ID,
		"transaction_id": txn.ID,
		"amount":         entity.FormatAmount(txn.Amount),
		"to_user_id":     txn.ToUserID,
	})

	return &usecase.SendMoneyResult{
		Transaction:     txn,
		BeneficiaryName: beneficiary.Name,
		BankName:        beneficiary.BankName,
		NewBalance:      newBalance,
	}, nil
}

// precheck validates the amount, the balance and today's limits in that order
func (p *TransactionProcessor) precheck(
	ctx context.Context,
	sender *entity.User,
	amount decimal.Decimal,
) (persistence.DailyActivity, error) {
	if err := p.validator.ValidateAmount(amount); err != nil {
		return persistence.DailyActivity{}, err
	}
	if !sender.CanDebit(amount) {
		return persistence.DailyActivity{}, errs.NewInsufficientBalanceError(
			sender.ID, entity.FormatAmount(amount), entity.FormatAmount(sender.Balance))
	}

	today, err := p.transactions.DailyActivity(ctx, sender.ID, p.clock.Now())
	if err != nil {
		return persistence.DailyActivity{}, err
	}
	return today, p.validator.CheckDailyLimit(sender, today, amount)
}

// moveFunds debits the sender and credits an internal receiver in one users table write
func (p *TransactionProcessor) moveFunds(ctx context.Context, txn *entity.Transaction) (decimal.Decimal, error) {
	ids := []string{txn.FromUserID}
	if txn.ToUserID != entity.ExternalParty {
		ids = append(ids, txn.ToUserID)
	}

	var newBalance decimal.Decimal
	err := p.users.UpdateAtomically(ctx, ids, func(users map[string]*entity.User) error {
		if err := users[txn.FromUserID].Debit(txn.Amount); err != nil {
			return err
		}
		if receiver, ok := users[txn.ToUserID]; ok {
			if err := receiver.Credit(txn.Amount); err != nil {
				return err
			}
		}
		newBalance = users[txn.FromUserID].Balance
		return nil
	})
	return newBalance, err
}

// compensate reverses a balance change whose record could not be finalized
func (p *TransactionProcessor) compensate(ctx context.Context, txn *entity.Transaction) {
	ctx = context.WithoutCancel(ctx)

	ids := []string{txn.FromUserID}
	if txn.ToUserID != entity.ExternalParty {
		ids = append(ids, txn.ToUserID)
	}
	err := p.users.UpdateAtomically(ctx, ids, func(users map[string]*entity.User) error {
		if receiver, ok := users[txn.ToUserID]; ok {
			// the receiver may have spent the funds already; the reversal can overdraw
			receiver.Balance = receiver.Balance.Sub(txn.Amount)
		}
		return users[txn.FromUserID].Credit(txn.Amount)
	})
	if err != nil {
		p.logger.Error("Failed to compensate transfer, manual reconciliation required", map[string]any{
			"transaction_id": txn.ID,
			"user_id":        txn.FromUserID,
			"to_user_id":     txn.ToUserID,
			"amount":         entity.FormatAmount(txn.Amount),
			"error":          err.Error(),
		})
		return
	}
	p.logger.Warn("Transfer compensated", map[string]any{
		"transaction_id": txn.ID,
		"user_id":        txn.FromUserID,
	})
}

// fail marks the record failed and reports the failure
func (p *TransactionProcessor) fail(ctx context.Context, txn *entity.Transaction, stage string, cause error) {
	ctx = context.WithoutCancel(ctx)

	if err := p.transactions.UpdateStatus(ctx, txn.ID, entity.StatusFailed); err != nil {
		p.logger.Error("Failed to mark transfer as failed", map[string]any{
			"transaction_id": txn.ID,
			"error":          err.Error(),
		})
	}
	txn.Status = entity.StatusFailed

	fields := errs.LogFields(errs.NewTransferError(txn.ID, txn.FromUserID, entity.FormatAmount(txn.Amount), stage, cause))
	p.logger.Error("Transfer failed", fields)

	p.audit.Record(ctx, txn.FromUserID, entity.ActionTransferFailed, map[string]any{
		"transaction_id": txn.ID,
		"amount":         entity.FormatAmount(txn.Amount),
		"stage":          stage,
		"error_code":     errs.ErrorCode(cause),
	})
	p.events.Emit(ctx, coreport.EventTransferFailed, txn.FromUserID, map[string]any{
		"transaction_id": txn.ID,
		"amount":         entity.FormatAmount(txn.Amount),
		"error_code":     errs.ErrorCode(cause),
	})
}

// rejected reports a transfer refused before anything was recorded
func (p *TransactionProcessor) rejected(ctx context.Context, userID string, req usecase.SendMoneyRequest, cause error) {
	p.audit.Record(ctx, userID, entity.ActionTransferFailed, map[string]any{
		"beneficiary_id": req.BeneficiaryID,
		"amount":         entity.FormatAmount(req.Amount),
		"reason":         cause.Error(),
		"error_code":     errs.ErrorCode(cause),
	})

	fields := errs.LogFields(cause)
	fields["user_id"] = userID
	fields["beneficiary_id"] = req.BeneficiaryID
	p.logger.Warn("Transfer rejected", fields)
}

// replay answers a repeated request with the transfer the key produced
func (p *TransactionProcessor) replay(
	ctx context.Context,
	userID string,
	req usecase.SendMoneyRequest,
	prior *entity.Transaction,
) (*usecase.SendMoneyResult, error) {
	sender, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &usecase.SendMoneyResult{
		Transaction: prior,
		NewBalance:  sender.Balance,
		Replayed:    true,
	}
	beneficiary, err := p.beneficiaries.GetByID(ctx, userID, req.BeneficiaryID)
	switch {
	case err == nil:
		result.BeneficiaryName = beneficiary.Name
		result.BankName = beneficiary.BankName
	case !errors.Is(err, errs.ErrBeneficiaryNotFound):
		return nil, err
	}

	p.logger.Info("Replayed transfer for idempotency key", map[string]any{
		"user_id":        userID,
		"transaction_id": prior.ID,
	})
	return result, nil
}
