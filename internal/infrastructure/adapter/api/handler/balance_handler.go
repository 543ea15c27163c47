package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/dto"
)

// BalanceHandler handles balance inquiries and adjustments
type BalanceHandler struct {
	responder
	balance usecase.BalanceUseCase
}

// NewBalanceHandler creates a new balance handler instance
func NewBalanceHandler(balance usecase.BalanceUseCase, clock coreport.TimeProvider, logger coreport.Logger) *BalanceHandler {
	return &BalanceHandler{responder: responder{clock: clock, logger: logger}, balance: balance}
}

// Check handles GET /balance/check/:user_id
func (h *BalanceHandler) Check(c *gin.Context) {
	status, err := h.balance.Check(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Balance retrieved", dto.NewBalanceResponse(status))
}

// Summary handles GET /balance/summary/:user_id
func (h *BalanceHandler) Summary(c *gin.Context) {
	summary, err := h.balance.Summary(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Balance summary retrieved", dto.NewBalanceSummaryResponse(summary))
}

// Deposit handles POST /balance/deposit/:user_id
func (h *BalanceHandler) Deposit(c *gin.Context) {
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	result, err := h.balance.Deposit(c.Request.Context(), c.Param("user_id"), *req.Amount, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Deposit successful", dto.NewBalanceChangeResponse(result))
}

// Withdraw handles POST /balance/withdraw/:user_id
func (h *BalanceHandler) Withdraw(c *gin.Context) {
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	result, err := h.balance.Withdraw(c.Request.Context(), c.Param("user_id"), *req.Amount, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Withdrawal successful", dto.NewBalanceChangeResponse(result))
}

// History handles GET /balance/history/:user_id
func (h *BalanceHandler) History(c *gin.Context) {
	var query dto.BalanceHistoryQuery
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

	historyType := usecase.BalanceHistoryType(query.Type)
	if historyType == "" {
		historyType = usecase.HistoryAll
	}
	history, err := h.balance.History(c.Request.Context(), c.Param("user_id"), usecase.BalanceHistoryRequest{
		Type:      historyType,
		StartDate: start,
		EndDate:   end,
		Page:      page,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Balance history retrieved", dto.NewBalanceHistoryResponse(history))
}

// UpdateDailyLimit handles PUT /balance/daily-limit/:user_id
func (h *BalanceHandler) UpdateDailyLimit(c *gin.Context) {
	var req dto.DailyLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	status, err := h.balance.UpdateDailyLimit(c.Request.Context(), c.Param("user_id"), *req.DailyLimit)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Daily limit updated", dto.NewBalanceResponse(status))
}
