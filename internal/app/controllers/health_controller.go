package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models/dto"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/logger"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports service liveness
type HealthController struct {
	db Pinger
}

// NewHealthController creates a new HealthController. db may be nil when
// the service runs without a database.
func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

// Health handles the health check
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.StructuredResponse "Service healthy"
// @Failure 503 {object} dto.StructuredResponse "Database unreachable"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	status := gin.H{"status": "ok", "database": "skipped"}
	if c.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.db.Ping(pingCtx); err != nil {
			logger.Warn().Err(err).Msg("Health check database ping failed")
			status["status"] = "degraded"
			status["database"] = "unreachable"
			ctx.JSON(http.StatusServiceUnavailable, dto.NewStructuredResponse(status, "Service degraded"))
			return
		}
		status["database"] = "ok"
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(status, "Service healthy"))
}
