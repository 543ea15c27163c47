package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/handler"
)

// ClaimsKey is the gin context key holding validated token claims
const ClaimsKey = "token_claims"

// Auth requires a bearer access token whose subject is the :user_id of the route.
// When required is false every request passes through untouched.
func Auth(tokens coreport.TokenManager, required bool, clock coreport.TimeProvider, logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !required {
			c.Next()
			return
		}

		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, clock, http.StatusUnauthorized, errs.CodeInvalidToken, "Missing bearer token")
			return
		}

		claims, err := tokens.Validate(raw, coreport.AccessToken)
		if err != nil {
			abort(c, clock, http.StatusUnauthorized, errs.CodeInvalidToken, "Invalid or expired token")
			return
		}

		if userID := c.Param("user_id"); userID != "" && userID != claims.UserID {
			logger.Warn("Token subject does not match requested user", map[string]any{
				"token_user_id": claims.UserID,
				"path_user_id":  userID,
				"request_id":    c.GetString(handler.RequestIDKey),
			})
			abort(c, clock, http.StatusForbidden, errs.CodeForbidden, "Token does not grant access to this user")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abort(c *gin.Context, clock coreport.TimeProvider, status int, code errs.Code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(string(code), message, c.GetString(handler.RequestIDKey), clock.Now()))
}
