package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/storage"
)

// StorageHealthChecker reports the health of the table store
type StorageHealthChecker interface {
	Health(ctx context.Context, now time.Time) *storage.HealthReport
}

// HealthHandler serves liveness and storage health
type HealthHandler struct {
	responder
	storage StorageHealthChecker
	version string
}

// NewHealthHandler creates a new health handler instance
func NewHealthHandler(checker StorageHealthChecker, version string, clock coreport.TimeProvider, logger coreport.Logger) *HealthHandler {
	return &HealthHandler{responder: responder{clock: clock, logger: logger}, storage: checker, version: version}
}

// Live handles GET /health
func (h *HealthHandler) Live(c *gin.Context) {
	h.success(c, http.StatusOK, "Service is running", gin.H{
		"service": "plutus",
		"version": h.version,
	})
}

// Storage handles GET /health/storage; a degraded store answers 503
func (h *HealthHandler) Storage(c *gin.Context) {
	report := h.storage.Health(c.Request.Context(), h.now())
	if report.Status != storage.StatusHealthy {
		h.logger.Warn("Storage health check degraded", map[string]any{
			"backend": report.Backend,
			"errors":  report.Errors,
		})
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Status:    dto.StatusFailed,
			Message:   "Storage is degraded",
			Data:      report,
			RequestID: c.GetString(RequestIDKey),
			Timestamp: h.now(),
		})
		return
	}
	h.success(c, http.StatusOK, "Storage is healthy", report)
}
