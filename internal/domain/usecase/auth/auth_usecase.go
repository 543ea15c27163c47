package auth

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/audit"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/event"
)

// TokenTypeBearer is reported with issued tokens
const TokenTypeBearer = "bearer"

// Dependencies groups the collaborators of AuthUseCase
type Dependencies struct {
	Users   persistence.UserRepository
	Hasher  coreport.PasswordHasher
	Tokens  coreport.TokenManager
	Limiter coreport.AttemptLimiter
	IDs     coreport.IDGenerator
	Clock   coreport.TimeProvider
	Audit   *audit.Recorder
	Events  *event.Emitter
	Logger  coreport.Logger
}

// AuthUseCase handles registration, login and account security
type AuthUseCase struct {
	users   persistence.UserRepository
	hasher  coreport.PasswordHasher
	tokens  coreport.TokenManager
	limiter coreport.AttemptLimiter
	ids     coreport.IDGenerator
	clock   coreport.TimeProvider
	audit   *audit.Recorder
	events  *event.Emitter
	logger  coreport.Logger
	policy  entity.BankingPolicy
}

var _ usecase.AuthUseCase = (*AuthUseCase)(nil)

// NewAuthUseCase creates a new AuthUseCase
func NewAuthUseCase(deps Dependencies, policy entity.BankingPolicy) *AuthUseCase {
	return &AuthUseCase{
		users:   deps.Users,
		hasher:  deps.Hasher,
		tokens:  deps.Tokens,
		limiter: deps.Limiter,
		ids:     deps.IDs,
		clock:   deps.Clock,
		audit:   deps.Audit,
		events:  deps.Events,
		logger:  deps.Logger,
		policy:  policy,
	}
}

func (a *AuthUseCase) profile(user *entity.User, lastLogin *time.Time) *usecase.UserProfile {
	return &usecase.UserProfile{
		UserID:        user.ID,
		Username:      user.Username,
		AccountNumber: user.AccountNumber,
		Balance:       user.Balance,
		DailyLimit:    user.DailyLimit,
		Currency:      a.policy.Currency,
		CreatedAt:     user.CreatedAt,
		LastLogin:     lastLogin,
	}
}

// Profile returns the user's public data with the time of the latest successful login
func (a *AuthUseCase) Profile(ctx context.Context, userID string) (*usecase.UserProfile, error) {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var lastLogin *time.Time
	if entry := a.audit.LastLogin(ctx, userID); entry != nil {
		at := entry.Timestamp
		lastLogin = &at
	}
	return a.profile(user, lastLogin), nil
}

// Logout records the logout; it succeeds even for unknown users
func (a *AuthUseCase) Logout(ctx context.Context, userID string) error {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		a.logger.Warn("Logout for unknown user", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil
	}

	a.audit.Record(ctx, user.ID, entity.ActionLogout, map[string]any{"username": user.Username})
	a.logger.Info("User logged out", map[string]any{"user_id": user.ID})
	return nil
}
