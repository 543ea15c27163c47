package auth

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
)

// Register validates the form and creates a user with a fresh account
func (a *AuthUseCase) Register(ctx context.Context, req usecase.RegisterRequest) (*usecase.UserProfile, error) {
	username := entity.NormalizeUsername(req.Username)
	accountNumber := entity.NormalizeAccountNumber(req.AccountNumber)

	balance := a.policy.DefaultStartingBalance
	if req.InitialBalance != nil {
		balance = *req.InitialBalance
	}
	dailyLimit := a.policy.DefaultDailyLimit
	if req.DailyLimit != nil {
		dailyLimit = *req.DailyLimit
	}

	if err := a.validateRegistration(username, req.Password, accountNumber, balance, dailyLimit); err != nil {
		a.registrationFailed(ctx, username, err)
		return nil, err
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		a.logger.Error("Failed to hash password", map[string]any{
			"username": username,
			"error":    err.Error(),
		})
		return nil, errs.ErrInternalServer
	}

	user := &entity.User{
		ID:            a.ids.UserID(),
		Username:      username,
		PasswordHash:  hash,
		AccountNumber: accountNumber,
		Balance:       balance,
		DailyLimit:    dailyLimit,
		CreatedAt:     a.clock.Now(),
	}

	// Uniqueness of username and account is checked inside the users table write
	if err := a.users.Create(ctx, user); err != nil {
		a.registrationFailed(ctx, username, err)
		return nil, err
	}

	a.audit.Record(ctx, user.ID, entity.ActionUserRegistered, map[string]any{
		"username":        user.Username,
		"account_number":  user.AccountNumber,
		"initial_balance": entity.FormatAmount(user.Balance),
	})
	a.events.Emit(ctx, coreport.EventUserRegistered, user.ID, map[string]any{
		"username":       user.Username,
		"account_number": user.AccountNumber,
	})

	a.logger.Info("User registered", map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	})

	return a.profile(user, nil), nil
}

func (a *AuthUseCase) validateRegistration(
	username, password, accountNumber string,
	balance, dailyLimit decimal.Decimal,
) error {
	if err := entity.ValidateUsername(username); err != nil {
		return err
	}
	if err := entity.ValidatePasswordStrength(password); err != nil {
		return err
	}
	if err := entity.ValidateAccountNumber(accountNumber); err != nil {
		return err
	}
	if err := entity.ValidateNonNegativeAmount(balance); err != nil {
		return errs.NewFieldError("initial_balance", err.Error(), errs.ErrInvalidAmount)
	}
	if !a.policy.DailyLimitInRange(dailyLimit) {
		return errs.NewValidationError("daily_limit", fmt.Sprintf("must be between %s and %s",
			entity.FormatAmount(a.policy.MinDailyLimit), entity.FormatAmount(a.policy.MaxDailyLimit)))
	}
	return nil
}

func (a *AuthUseCase) registrationFailed(ctx context.Context, username string, err error) {
	a.audit.Record(ctx, entity.SystemActor, entity.ActionRegistrationFailed, map[string]any{
		"username":   username,
		"reason":     err.Error(),
		"error_code": errs.ErrorCode(err),
	})
	a.logger.Warn("Registration rejected", map[string]any{
		"username":   username,
		"error":      err.Error(),
		"error_code": errs.ErrorCode(err),
	})
}
