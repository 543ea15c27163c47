package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RegisterRequest carries the registration form; nil amounts take the configured defaults
type RegisterRequest struct {
	Username       string
	Password       string
	AccountNumber  string
	InitialBalance *decimal.Decimal
	DailyLimit     *decimal.Decimal
}

// UserProfile is the public view of a user
type UserProfile struct {
	UserID        string
	Username      string
	AccountNumber string
	Balance       decimal.Decimal
	DailyLimit    decimal.Decimal
	Currency      string
	CreatedAt     time.Time
	LastLogin     *time.Time
}

// AuthTokens is the result of a successful login or refresh
type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    time.Duration
	User         *UserProfile
}

// TokenInfo describes a verified token
type TokenInfo struct {
	Valid     bool
	UserID    string
	Username  string
	ExpiresAt time.Time
}

// AuthUseCase defines registration, authentication and account security operations
type AuthUseCase interface {
	Register(ctx context.Context, req RegisterRequest) (*UserProfile, error)
	Login(ctx context.Context, username, password string) (*AuthTokens, error)
	// Refresh exchanges a refresh token for a new access token
	Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error)
	// VerifyToken never fails for bad tokens; it reports Valid=false instead
	VerifyToken(ctx context.Context, token string) (*TokenInfo, error)
	Profile(ctx context.Context, userID string) (*UserProfile, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	Logout(ctx context.Context, userID string) error
}
