package dto

import (
	"time"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
)

// AddBeneficiaryRequest is the body of POST /beneficiaries/add/:user_id
type AddBeneficiaryRequest struct {
	Name          string `json:"name" binding:"required,min=2,max=100"`
	BankName      string `json:"bank_name" binding:"required,min=3,max=100"`
	AccountNumber string `json:"account_number" binding:"required,account_number"`
}

// ToUseCase maps the request to the service input
func (r AddBeneficiaryRequest) ToUseCase() usecase.AddBeneficiaryRequest {
	return usecase.AddBeneficiaryRequest{
		Name:          r.Name,
		BankName:      r.BankName,
		AccountNumber: r.AccountNumber,
	}
}

// UpdateBeneficiaryRequest is the body of PUT /beneficiaries/update/:user_id/:beneficiary_id
type UpdateBeneficiaryRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=2,max=100"`
	BankName      *string `json:"bank_name" binding:"omitempty,min=3,max=100"`
	AccountNumber *string `json:"account_number" binding:"omitempty,account_number"`
}

// ToUseCase maps the request to the service input
func (r UpdateBeneficiaryRequest) ToUseCase() usecase.UpdateBeneficiaryRequest {
	return usecase.UpdateBeneficiaryRequest{
		Name:          r.Name,
		BankName:      r.BankName,
		AccountNumber: r.AccountNumber,
	}
}

// ListBeneficiariesQuery is the query of GET /beneficiaries/list/:user_id
type ListBeneficiariesQuery struct {
	SearchName string `form:"search_name"`
	BankFilter string `form:"bank_filter"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// SearchBeneficiariesQuery is the query of GET /beneficiaries/search/:user_id
type SearchBeneficiariesQuery struct {
	Query      string `form:"query" binding:"required"`
	ExactMatch bool   `form:"exact_match"`
}

// BeneficiaryResponse is a saved payee
type BeneficiaryResponse struct {
	BeneficiaryID string    `json:"beneficiary_id"`
	Name          string    `json:"name"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	AddedAt       time.Time `json:"added_at"`
	Warning       string    `json:"warning,omitempty"`
}

// NewBeneficiaryResponse maps a payee
func NewBeneficiaryResponse(b *entity.Beneficiary) *BeneficiaryResponse {
	return &BeneficiaryResponse{
		BeneficiaryID: b.ID,
		Name:          b.Name,
		BankName:      b.BankName,
		AccountNumber: b.AccountNumber,
		AddedAt:       b.AddedAt,
	}
}

// NewBeneficiaryResponses maps a list, never returning nil
func NewBeneficiaryResponses(items []*entity.Beneficiary) []*BeneficiaryResponse {
	out := make([]*BeneficiaryResponse, 0, len(items))
	for _, b := range items {
		out = append(out, NewBeneficiaryResponse(b))
	}
	return out
}

// BeneficiaryListResponse is one page of payees
type BeneficiaryListResponse struct {
	Beneficiaries []*BeneficiaryResponse `json:"beneficiaries"`
	Pagination    entity.PageInfo        `json:"pagination"`
}

// BeneficiarySearchResponse lists search matches
type BeneficiarySearchResponse struct {
	Query   string                 `json:"query"`
	Results []*BeneficiaryResponse `json:"results"`
	Count   int                    `json:"count"`
}
