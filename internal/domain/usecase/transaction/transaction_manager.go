package transaction

import (
	"context"
	"sync"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
)

// DefaultQueueSize bounds the pending transfers of one sender
const DefaultQueueSize = 100

// TransactionManager provides sequential processing of transfers per sender
type TransactionManager struct {
	logger    coreport.Logger
	queueSize int

	// mu guards userQueues and closed
	mu             sync.RWMutex
	userQueues     map[string]chan *transferRequest
	closed         bool
	queueWaitGroup sync.WaitGroup

	// Function to process transfers
	processor TransferProcessorFunc
}

// TransferProcessorFunc is the function signature for processing one transfer
type TransferProcessorFunc func(ctx context.Context, userID string, req usecase.SendMoneyRequest) (*usecase.SendMoneyResult, error)

// transferRequest represents a queued transfer
type transferRequest struct {
	ctx        context.Context
	userID     string
	req        usecase.SendMoneyRequest
	resultChan chan *transferResult
}

// transferResult represents the outcome of a processed transfer
type transferResult struct {
	result *usecase.SendMoneyResult
	err    error
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(logger coreport.Logger, queueSize int, processor TransferProcessorFunc) *TransactionManager {
	if processor == nil {
		panic("Transfer processor function cannot be nil")
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	return &TransactionManager{
		logger:     logger,
		queueSize:  queueSize,
		userQueues: make(map[string]chan *transferRequest),
		processor:  processor,
	}
}

// queueFor returns the sender's queue, starting its worker on first use
func (m *TransactionManager) queueFor(userID string) (chan *transferRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errs.ErrQueueClosed
	}
	if queue, ok := m.userQueues[userID]; ok {
		return queue, nil
	}

	queue := make(chan *transferRequest, m.queueSize)
	m.userQueues[userID] = queue
	m.logger.Info("Starting new transfer queue worker for user", map[string]any{
		"user_id": userID,
	})
	m.queueWaitGroup.Add(1)
	go m.processUserTransfers(userID, queue)
	return queue, nil
}

// EnqueueTransaction adds a transfer to the sender's queue and waits for its result
func (m *TransactionManager) EnqueueTransaction(
	ctx context.Context,
	userID string,
	req usecase.SendMoneyRequest,
) (*usecase.SendMoneyResult, error) {
	m.logger.Debug("Enqueuing transfer for sequential processing", map[string]any{
		"user_id":        userID,
		"beneficiary_id": req.BeneficiaryID,
	})

	resultChan := make(chan *transferResult, 1)

	queue, err := m.queueFor(userID)
	if err != nil {
		return nil, err
	}

	// the read lock keeps Shutdown from closing the queue during the send
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, errs.ErrQueueClosed
	}

	txnReq := &transferRequest{
		ctx:        ctx,
		userID:     userID,
		req:        req,
		resultChan: resultChan,
	}

	// Send request to queue
	select {
	case queue <- txnReq:
		m.mu.RUnlock()
	case <-ctx.Done():
		m.mu.RUnlock()
		m.logger.Warn("Context canceled while enqueueing transfer", map[string]any{
			"user_id": userID,
			"error":   ctx.Err().Error(),
		})
		return nil, ctx.Err()
	}

	// Wait for result
	select {
	case result := <-resultChan:
		return result.result, result.err
	case <-ctx.Done():
		m.logger.Warn("Context canceled while waiting for transfer result", map[string]any{
			"user_id": userID,
			"error":   ctx.Err().Error(),
		})
		return nil, ctx.Err()
	}
}

// processUserTransfers handles the worker goroutine for a sender's queue
func (m *TransactionManager) processUserTransfers(userID string, queue chan *transferRequest) {
	defer m.queueWaitGroup.Done()

	for txnReq := range queue {
		// the caller gave up before its turn came
		if err := txnReq.ctx.Err(); err != nil {
			txnReq.resultChan <- &transferResult{err: err}
			continue
		}

		result, err := m.processor(txnReq.ctx, userID, txnReq.req)
		txnReq.resultChan <- &transferResult{result: result, err: err}
	}

	m.logger.Info("Transfer queue worker stopped", map[string]any{
		"user_id": userID,
	})
}

// Shutdown stops accepting transfers, lets queued ones finish and waits for the workers
func (m *TransactionManager) Shutdown() {
	m.logger.Info("Shutting down transaction manager", nil)

	m.mu.Lock()
	if !m.closed {
		m.closed = true
		for _, queue := range m.userQueues {
			close(queue)
		}
	}
	m.mu.Unlock()

	m.queueWaitGroup.Wait()
	m.logger.Info("Transaction manager shut down successfully", nil)
}
