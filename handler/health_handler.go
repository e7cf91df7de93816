package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aashish23092/vision-text-ocr/dto"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context, timeout time.Duration) error
}

type HealthHandler struct {
	pinger  Pinger
	service string
	timeout time.Duration
	logger  *zap.Logger
}

func NewHealthHandler(pinger Pinger, service string, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{pinger: pinger, service: service, timeout: 2 * time.Second, logger: logger}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.pinger.Ping(c.Request.Context(), h.timeout); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unhealthy", Service: h.service})
		return
	}
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "healthy", Service: h.service})
}
