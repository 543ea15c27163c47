package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
)

func loginKey(username string) string {
	return "login:" + username
}

// Login verifies the credentials and issues an access and a refresh token.
// Repeated failures lock the username out for the limiter window.
func (a *AuthUseCase) Login(ctx context.Context, username, password string) (*usecase.AuthTokens, error) {
	username = entity.NormalizeUsername(username)
	key := loginKey(username)

	if locked, retryAfter := a.lockedOut(ctx, key); locked {
		a.audit.Record(ctx, entity.SystemActor, entity.ActionLoginFailed, map[string]any{
			"username": username,
			"reason":   "locked out",
		})
		return nil, fmt.Errorf("%w: try again in %s", errs.ErrTooManyAttempts, retryAfter.Round(time.Second))
	}

	user, err := a.users.GetByUsername(ctx, username)
	if err != nil && !errs.IsUserNotFoundError(err) {
		return nil, err
	}

	if user == nil || !a.hasher.Verify(user.PasswordHash, password) {
		actor, reason := entity.SystemActor, "user not found"
		if user != nil {
			actor, reason = user.ID, "invalid password"
		}
		a.recordFailure(ctx, key)
		a.audit.Record(ctx, actor, entity.ActionLoginFailed, map[string]any{
			"username": username,
			"reason":   reason,
		})
		return nil, errs.ErrInvalidCredentials
	}

	if err := a.limiter.Reset(ctx, key); err != nil {
		a.logger.Warn("Failed to reset login attempts", map[string]any{
			"username": username,
			"error":    err.Error(),
		})
	}

	subject := coreport.TokenSubject{UserID: user.ID, Username: user.Username, AccountNumber: user.AccountNumber}
	access, err := a.tokens.Issue(subject, coreport.AccessToken)
	if err != nil {
		return nil, a.tokenFailure(user.ID, err)
	}
	refresh, err := a.tokens.Issue(subject, coreport.RefreshToken)
	if err != nil {
		return nil, a.tokenFailure(user.ID, err)
	}

	now := a.clock.Now()
	a.audit.Record(ctx, user.ID, entity.ActionLoginSuccess, map[string]any{"username": user.Username})
	a.logger.Info("User logged in", map[string]any{"user_id": user.ID})

	return &usecase.AuthTokens{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    access.ExpiresIn,
		User:         a.profile(user, &now),
	}, nil
}

// lockedOut fails open: a broken limiter must not block every login
func (a *AuthUseCase) lockedOut(ctx context.Context, key string) (bool, time.Duration) {
	locked, retryAfter, err := a.limiter.Locked(ctx, key)
	if err != nil {
		a.logger.Warn("Login limiter unavailable", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
		return false, 0
	}
	return locked, retryAfter
}

func (a *AuthUseCase) recordFailure(ctx context.Context, key string) {
	attempts, err := a.limiter.RecordFailure(ctx, key)
	if err != nil {
		a.logger.Warn("Failed to record login attempt", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
		return
	}
	a.logger.Debug("Failed login attempt", map[string]any{
		"key":      key,
		"attempts": attempts,
	})
}

func (a *AuthUseCase) tokenFailure(userID string, err error) error {
	a.logger.Error("Failed to issue token", map[string]any{
		"user_id": userID,
		"error":   err.Error(),
	})
	return errs.ErrInternalServer
}

// Refresh exchanges a valid refresh token for a new access token; the refresh token is returned unchanged
func (a *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (*usecase.AuthTokens, error) {
	claims, err := a.tokens.Validate(refreshToken, coreport.RefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errs.IsUserNotFoundError(err) {
			return nil, fmt.Errorf("%w: subject no longer exists", errs.ErrInvalidToken)
		}
		return nil, err
	}

	subject := coreport.TokenSubject{UserID: user.ID, Username: user.Username, AccountNumber: user.AccountNumber}
	access, err := a.tokens.Issue(subject, coreport.AccessToken)
	if err != nil {
		return nil, a.tokenFailure(user.ID, err)
	}

	a.audit.Record(ctx, user.ID, entity.ActionTokenRefreshed, map[string]any{"refresh_token_id": claims.TokenID})

	return &usecase.AuthTokens{
		AccessToken:  access.Token,
		RefreshToken: refreshToken,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    access.ExpiresIn,
		User:         a.profile(user, nil),
	}, nil
}

// VerifyToken checks an access token and that its subject still exists
func (a *AuthUseCase) VerifyToken(ctx context.Context, token string) (*usecase.TokenInfo, error) {
	claims, err := a.tokens.Validate(token, coreport.AccessToken)
	if err != nil {
		return &usecase.TokenInfo{Valid: false}, nil
	}

	user, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errs.IsUserNotFoundError(err) {
			return &usecase.TokenInfo{Valid: false}, nil
		}
		return nil, err
	}

	return &usecase.TokenInfo{
		Valid:     true,
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// ChangePassword replaces the password after checking the current one
func (a *AuthUseCase) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !a.hasher.Verify(user.PasswordHash, currentPassword) {
		a.audit.Record(ctx, user.ID, entity.ActionPasswordChangeFail, map[string]any{
			"reason": "invalid current password",
		})
		return errs.ErrInvalidPassword
	}
	if err := entity.ValidatePasswordStrength(newPassword); err != nil {
		return errs.NewValidationError("new_password", validationMessage(err))
	}

	hash, err := a.hasher.Hash(newPassword)
	if err != nil {
		a.logger.Error("Failed to hash password", map[string]any{
			"user_id": user.ID,
			"error":   err.Error(),
		})
		return errs.ErrInternalServer
	}

	err = a.users.UpdateAtomically(ctx, []string{user.ID}, func(users map[string]*entity.User) error {
		users[user.ID].PasswordHash = hash
		return nil
	})
	if err != nil {
		return err
	}

	a.audit.Record(ctx, user.ID, entity.ActionPasswordChanged, map[string]any{"username": user.Username})
	a.logger.Info("Password changed", map[string]any{"user_id": user.ID})
	return nil
}

func validationMessage(err error) string {
	var verr *errs.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}
