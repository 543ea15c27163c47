package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
)

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Username       string           `json:"username" binding:"required,username"`
	Password       string           `json:"password" binding:"required,strong_password"`
	AccountNumber  string           `json:"account_number" binding:"required,account_number"`
	InitialBalance *decimal.Decimal `json:"initial_balance" binding:"omitempty,money_nonneg"`
	DailyLimit     *decimal.Decimal `json:"daily_limit" binding:"omitempty,money"`
}

// ToUseCase maps the request to the service input
func (r RegisterRequest) ToUseCase() usecase.RegisterRequest {
	return usecase.RegisterRequest{
		Username:       r.Username,
		Password:       r.Password,
		AccountNumber:  r.AccountNumber,
		InitialBalance: r.InitialBalance,
		DailyLimit:     r.DailyLimit,
	}
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the body of POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// VerifyTokenRequest is the body of POST /auth/verify-token
type VerifyTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// ChangePasswordRequest is the body of POST /auth/change-password/:user_id
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,strong_password"`
}

// UserProfileResponse is the public view of a user
type UserProfileResponse struct {
	UserID        string     `json:"user_id"`
	Username      string     `json:"username"`
	AccountNumber string     `json:"account_number"`
	Balance       string     `json:"balance"`
	DailyLimit    string     `json:"daily_limit"`
	Currency      string     `json:"currency"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLogin     *time.Time `json:"last_login"`
}

// NewUserProfileResponse maps a profile
func NewUserProfileResponse(p *usecase.UserProfile) *UserProfileResponse {
	if p == nil {
		return nil
	}
	return &UserProfileResponse{
		UserID:        p.UserID,
		Username:      p.Username,
		AccountNumber: p.AccountNumber,
		Balance:       entity.FormatAmount(p.Balance),
		DailyLimit:    entity.FormatAmount(p.DailyLimit),
		Currency:      p.Currency,
		CreatedAt:     p.CreatedAt,
		LastLogin:     p.LastLogin,
	}
}

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token,omitempty"`
	TokenType    string               `json:"token_type"`
	ExpiresIn    int64                `json:"expires_in"`
	User         *UserProfileResponse `json:"user,omitempty"`
}

// NewTokenResponse maps issued tokens; expires_in is in seconds
func NewTokenResponse(t *usecase.AuthTokens) TokenResponse {
	return TokenResponse{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		ExpiresIn:    int64(t.ExpiresIn.Seconds()),
		User:         NewUserProfileResponse(t.User),
	}
}

// VerifyTokenResponse reports the state of a token
type VerifyTokenResponse struct {
	Valid     bool       `json:"valid"`
	UserID    string     `json:"user_id,omitempty"`
	Username  string     `json:"username,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// NewVerifyTokenResponse maps a token check
func NewVerifyTokenResponse(info *usecase.TokenInfo) VerifyTokenResponse {
	resp := VerifyTokenResponse{Valid: info.Valid, UserID: info.UserID, Username: info.Username}
	if info.Valid {
		expires := info.ExpiresAt
		resp.ExpiresAt = &expires
	}
	return resp
}
