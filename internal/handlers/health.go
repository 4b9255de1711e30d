package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

func (h *Handler) HealthCheck(c *gin.Context) {
	status, code := "ok", http.StatusOK
	database := "skipped"
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			h.logger.Warn("health check: database ping failed", zap.Error(err))
			status, code, database = "degraded", http.StatusServiceUnavailable, "unreachable"
		} else {
			database = "ok"
		}
	}
	c.JSON(code, gin.H{
		"status":    status,
		"message":   "house admin is running",
		"database":  database,
		"timestamp": h.now().Format(time.RFC3339),
	})
}
