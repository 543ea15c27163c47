package entity

import (
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
)

// Page size bounds
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest selects one page of an ordered result
type PageRequest struct {
	Page     int
	PageSize int
}

// NewPageRequest applies defaults to zero values and rejects out-of-range input
func NewPageRequest(page, pageSize int) (PageRequest, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		return PageRequest{}, errs.NewValidationError("page", "must be at least 1")
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return PageRequest{}, errs.NewValidationError("page_size", "must be between 1 and 100")
	}
	return PageRequest{Page: page, PageSize: pageSize}, nil
}

// PageInfo describes the position of a page within the full result
type PageInfo struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// Paginate slices an already ordered list; pages past the end are empty.
// A zero page or page size falls back to the first page of DefaultPageSize.
func Paginate[T any](items []T, req PageRequest) ([]T, PageInfo) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = DefaultPageSize
	}

	total := len(items)
	totalPages := (total + req.PageSize - 1) / req.PageSize

	info := PageInfo{
		Page:        req.Page,
		PageSize:    req.PageSize,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNext:     req.Page < totalPages,
		HasPrevious: req.Page > 1,
	}

	if req.Page > totalPages {
		return []T{}, info
	}
	start := (req.Page - 1) * req.PageSize
	end := start + req.PageSize
	if end > total {
		end = total
	}
	return items[start:end], info
}
