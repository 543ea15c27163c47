package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/dto"
)

// BeneficiaryHandler handles payee management requests
type BeneficiaryHandler struct {
	responder
	beneficiaries usecase.BeneficiaryUseCase
}

// NewBeneficiaryHandler creates a new beneficiary handler instance
func NewBeneficiaryHandler(beneficiaries usecase.BeneficiaryUseCase, clock coreport.TimeProvider, logger coreport.Logger) *BeneficiaryHandler {
	return &BeneficiaryHandler{responder: responder{clock: clock, logger: logger}, beneficiaries: beneficiaries}
}

// Add handles POST /beneficiaries/add/:user_id
func (h *BeneficiaryHandler) Add(c *gin.Context) {
	var req dto.AddBeneficiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	result, err := h.beneficiaries.Add(c.Request.Context(), c.Param("user_id"), req.ToUseCase())
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := dto.NewBeneficiaryResponse(result.Beneficiary)
	resp.Warning = result.Warning
	h.success(c, http.StatusCreated, "Beneficiary added successfully", resp)
}

// List handles GET /beneficiaries/list/:user_id
func (h *BeneficiaryHandler) List(c *gin.Context) {
	var query dto.ListBeneficiariesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.bindFailed(c, err)
		return
	}
	page, err := entity.NewPageRequest(query.Page, query.PageSize)
	if err != nil {
		h.fail(c, err)
		return
	}

	list, err := h.beneficiaries.List(c.Request.Context(), c.Param("user_id"), usecase.ListBeneficiariesRequest{
		SearchName: query.SearchName,
		BankFilter: query.BankFilter,
		Page:       page,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Beneficiaries retrieved", dto.BeneficiaryListResponse{
		Beneficiaries: dto.NewBeneficiaryResponses(list.Items),
		Pagination:    list.Page,
	})
}

// Search handles GET /beneficiaries/search/:user_id
func (h *BeneficiaryHandler) Search(c *gin.Context) {
	var query dto.SearchBeneficiariesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.bindFailed(c, err)
		return
	}

	matches, err := h.beneficiaries.Search(c.Request.Context(), c.Param("user_id"), query.Query, query.ExactMatch)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Search completed", dto.BeneficiarySearchResponse{
		Query:   query.Query,
		Results: dto.NewBeneficiaryResponses(matches),
		Count:   len(matches),
	})
}

// Get handles GET /beneficiaries/:user_id/:beneficiary_id
func (h *BeneficiaryHandler) Get(c *gin.Context) {
	b, err := h.beneficiaries.Get(c.Request.Context(), c.Param("user_id"), c.Param("beneficiary_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Beneficiary retrieved", dto.NewBeneficiaryResponse(b))
}

// Update handles PUT /beneficiaries/update/:user_id/:beneficiary_id
func (h *BeneficiaryHandler) Update(c *gin.Context) {
	var req dto.UpdateBeneficiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	b, err := h.beneficiaries.Update(c.Request.Context(), c.Param("user_id"), c.Param("beneficiary_id"), req.ToUseCase())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Beneficiary updated successfully", dto.NewBeneficiaryResponse(b))
}

// Remove handles DELETE /beneficiaries/remove/:user_id/:beneficiary_id
func (h *BeneficiaryHandler) Remove(c *gin.Context) {
	if err := h.beneficiaries.Remove(c.Request.Context(), c.Param("user_id"), c.Param("beneficiary_id")); err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Beneficiary removed successfully", gin.H{"beneficiary_id": c.Param("beneficiary_id")})
}
