package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/handler"
)

// ErrorHandler middleware recovers from panics and returns an INTERNAL_ERROR envelope
func ErrorHandler(clock coreport.TimeProvider, logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error("Panic recovered in API request", map[string]any{
					"error":      fmt.Sprint(recovered),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
					"client_ip":  c.ClientIP(),
					"request_id": c.GetString(handler.RequestIDKey),
					"stack":      string(debug.Stack()),
				})

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(
					string(errs.CodeInternal),
					"Internal server error",
					c.GetString(handler.RequestIDKey),
					clock.Now(),
				))
			}
		}()

		c.Next()
	}
}

// NotFound answers unknown routes with the standard envelope
func NotFound(clock coreport.TimeProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			"NOT_FOUND",
			"Route not found",
			c.GetString(handler.RequestIDKey),
			clock.Now(),
		))
	}
}
