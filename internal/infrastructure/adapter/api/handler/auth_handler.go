package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/dto"
)

// AuthHandler handles registration, login and account security requests
type AuthHandler struct {
	responder
	auth usecase.AuthUseCase
}

// NewAuthHandler creates a new auth handler instance
func NewAuthHandler(auth usecase.AuthUseCase, clock coreport.TimeProvider, logger coreport.Logger) *AuthHandler {
	return &AuthHandler{responder: responder{clock: clock, logger: logger}, auth: auth}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	profile, err := h.auth.Register(c.Request.Context(), req.ToUseCase())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusCreated, "User registered successfully", dto.NewUserProfileResponse(profile))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	tokens, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Login successful", dto.NewTokenResponse(tokens))
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	tokens, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Token refreshed", dto.NewTokenResponse(tokens))
}

// VerifyToken handles POST /auth/verify-token
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	var req dto.VerifyTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	info, err := h.auth.VerifyToken(c.Request.Context(), req.Token)
	if err != nil {
		h.fail(c, err)
		return
	}
	message := "Token is valid"
	if !info.Valid {
		message = "Token is invalid or expired"
	}
	h.success(c, http.StatusOK, message, dto.NewVerifyTokenResponse(info))
}

// Profile handles GET /auth/profile/:user_id
func (h *AuthHandler) Profile(c *gin.Context) {
	profile, err := h.auth.Profile(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Profile retrieved", dto.NewUserProfileResponse(profile))
}

// ChangePassword handles POST /auth/change-password/:user_id
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), c.Param("user_id"), req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Password changed successfully", nil)
}

// Logout handles POST /auth/logout/:user_id
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), c.Param("user_id")); err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, "Logged out successfully", nil)
}
