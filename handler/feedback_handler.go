package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aashish23092/vision-text-ocr/dto"
)

type FeedbackService interface {
	Submit(ctx context.Context, comment string) (*dto.Feedback, error)
	List(ctx context.Context, page dto.Page) ([]dto.Feedback, error)
}

type FeedbackHandler struct {
	service FeedbackService
	logger  *zap.Logger
}

func NewFeedbackHandler(service FeedbackService, logger *zap.Logger) *FeedbackHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackHandler{service: service, logger: logger}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	fb, err := h.service.Submit(c.Request.Context(), req.Comment)
	if err != nil {
		respondError(c, h.logger, "Failed to save feedback", err)
		return
	}
	c.JSON(http.StatusCreated, fb)
}

// List handles GET /api/v1/feedback
func (h *FeedbackHandler) List(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	items, err := h.service.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, h.logger, "Failed to load feedback", err)
		return
	}
	c.JSON(http.StatusOK, items)
}
