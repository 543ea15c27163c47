package transaction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
)

// MaxIdempotencyKeyLength bounds client supplied keys
const MaxIdempotencyKeyLength = 128

// IdempotencyHandler binds client keys to the transfers they produced
type IdempotencyHandler struct {
	keys            persistence.IdempotencyRepository
	transactionRepo persistence.TransactionRepository
	clock           coreport.TimeProvider
	logger          coreport.Logger
}

// NewIdempotencyHandler creates a new IdempotencyHandler
func NewIdempotencyHandler(
	keys persistence.IdempotencyRepository,
	transactionRepo persistence.TransactionRepository,
	clock coreport.TimeProvider,
	logger coreport.Logger,
) *IdempotencyHandler {
	return &IdempotencyHandler{
		keys:            keys,
		transactionRepo: transactionRepo,
		clock:           clock,
		logger:          logger,
	}
}

// RequestHash fingerprints the fields that define a transfer
func RequestHash(req usecase.SendMoneyRequest) string {
	canonical := strings.Join([]string{
		req.BeneficiaryID,
		entity.FormatAmount(req.Amount),
		strings.TrimSpace(req.Description),
	}, "\x1f")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// ValidateKey checks the shape of a client key
func ValidateKey(key string) error {
	if len(key) > MaxIdempotencyKeyLength {
		return errs.NewValidationError("idempotency_key", fmt.Sprintf("must be at most %d characters", MaxIdempotencyKeyLength))
	}
	return nil
}

// CheckIdempotency returns the transfer an earlier request with the same key produced.
// Returns nil when the key is unused and ErrIdempotencyConflict when it was used for another request.
func (h *IdempotencyHandler) CheckIdempotency(
	ctx context.Context,
	userID, key, requestHash string,
) (*entity.Transaction, error) {
	record, err := h.keys.Get(ctx, userID, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if record == nil {
		return nil, nil
	}
	if record.RequestHash != requestHash {
		return nil, errs.ErrIdempotencyConflict
	}

	txn, err := h.transactionRepo.GetByID(ctx, record.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve existing transaction: %w", err)
	}
	return txn, nil
}

// Remember stores the key after the transfer finished; a failure only loses replay protection
func (h *IdempotencyHandler) Remember(ctx context.Context, userID, key, requestHash, transactionID string) {
	err := h.keys.Save(ctx, &entity.IdempotencyRecord{
		Key:           key,
		UserID:        userID,
		RequestHash:   requestHash,
		TransactionID: transactionID,
		CreatedAt:     h.clock.Now(),
	})
	if err != nil {
		h.logger.Warn("Failed to store idempotency key", map[string]any{
			"user_id":        userID,
			"transaction_id": transactionID,
			"error":          err.Error(),
		})
	}
}
