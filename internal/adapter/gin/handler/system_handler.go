package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-crud-service/internal/adapter/gin/response"
)

const readinessTimeout = 2 * time.Second

// HealthChecker reports whether the primary store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the welcome, liveness and readiness endpoints.
type SystemHandler struct {
	store     HealthChecker
	service   string
	version   string
	startedAt time.Time
	log       *zap.Logger
}

// NewSystemHandler creates a SystemHandler. The uptime clock starts now.
func NewSystemHandler(store HealthChecker, service, version string, log *zap.Logger) *SystemHandler {
	return &SystemHandler{
		store:     store,
		service:   service,
		version:   version,
		startedAt: time.Now(),
		log:       log,
	}
}

// Welcome handles GET /
func (h *SystemHandler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to " + h.service,
		"status":  "Server is running",
		"version": h.version,
		"endpoints": gin.H{
			"health":   "/health",
			"ready":    "/ready",
			"users":    "/api/users (GET, POST)",
			"userById": "/api/users/:id (GET, PUT, DELETE)",
		},
	})
}

// Health handles GET /health. It reports liveness only.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"uptime":    time.Since(h.startedAt).Seconds(),
	})
}

// Ready handles GET /ready by pinging the primary store.
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.store == nil {
		response.OK(c, http.StatusOK, "ready", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("readiness check failed", zap.Error(err))
		response.Fail(c, http.StatusServiceUnavailable, "Store unavailable", err.Error())
		return
	}

	response.OK(c, http.StatusOK, "ready", nil)
}
