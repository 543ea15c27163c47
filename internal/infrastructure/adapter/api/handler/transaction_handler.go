package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/dto"
)

// TransactionHandler handles money transfer requests
type TransactionHandler struct {
	responder
	transactions usecase.TransactionUseCase
	sendTimeout  time.Duration
}

// NewTransactionHandler creates a new transaction handler instance.
// sendTimeout bounds the time a transfer may wait in the sender's queue; zero disables it.
func NewTransactionHandler(
	transactions usecase.TransactionUseCase,
	sendTimeout time.Duration,
	clock coreport.TimeProvider,
	logger coreport.Logger,
) *TransactionHandler {
	return &TransactionHandler{
		responder:    responder{clock: clock, logger: logger},
		transactions: transactions,
		sendTimeout:  sendTimeout,
	}
}

// Send handles POST /transactions/send/:user_id
func (h *TransactionHandler) Send(c *gin.Context) {
	var req dto.SendMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	ctx := c.Request.Context()
	if h.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.sendTimeout)
		defer cancel()
	}

	key := strings.TrimSpace(c.GetHeader(dto.IdempotencyKeyHeader))
	result, err := h.transactions.Send(ctx, c.Param("user_id"), req.ToUseCase(key))
	if err != nil {
		h.fail(c, err)
		return
	}

	if result.Replayed {
		h.success(c, http.StatusOK, "Transaction already processed", dto.NewSendMoneyResponse(result))
		return
	}
	h.success(c, http.StatusCreated, "Transaction completed successfully", dto.NewSendMoneyResponse(result))
}

// History handles GET /transactions/history/:user_id
func (h *TransactionHandler) History(c *gin.Context) {
	var query dto.TransactionHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.bindFailed(c, err)
		return
	}
	start, end, err := parseDateRange(query.StartDate, query.EndDate)
	if err != nil {
		h.fail(c, err)
		return
	}
	page, err := entity.NewPageRequest(query.Page, query.PageSize)
	if err != nil {
		h.fail(c, err)
		return
	}

	history, err := h.transactions.History(c.Request.Context(), c.Param("user_id"), usecase.TransactionHistoryRequest{
		Status:          entity.TransactionStatus(query.StatusFilter),
		StartDate:       start,
		EndDate:         end,
		BeneficiaryName: query.BeneficiaryName,
		Page:            page,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Transaction history retrieved", dto.NewTransactionHistoryResponse(history))
}

// Recent handles GET /transactions/recent/:user_id
func (h *TransactionHandler) Recent(c *gin.Context) {
	var query dto.RecentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.bindFailed(c, err)
		return
	}

	views, err := h.transactions.Recent(c.Request.Context(), c.Param("user_id"), query.Limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Recent transactions retrieved", gin.H{
		"transactions": dto.NewTransactionViewResponses(views),
		"count":        len(views),
	})
}

// Status handles GET /transactions/status/:user_id/:transaction_id
func (h *TransactionHandler) Status(c *gin.Context) {
	view, err := h.transactions.Status(c.Request.Context(), c.Param("user_id"), c.Param("transaction_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Transaction status retrieved", dto.NewTransactionViewResponse(view))
}

// Limits handles GET /transactions/limits/:user_id
func (h *TransactionHandler) Limits(c *gin.Context) {
	limits, err := h.transactions.Limits(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Transaction limits retrieved", dto.NewLimitsResponse(limits))
}
