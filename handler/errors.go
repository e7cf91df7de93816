package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aashish23092/vision-text-ocr/dto"
)

const (
	codeBadRequest   = "BAD_REQUEST"
	codeNotFound     = "NOT_FOUND"
	codeNotSaved     = "NOT_SAVED"
	codeBatchAborted = "BATCH_ABORTED"
	codeInternal     = "INTERNAL_ERROR"
)

// statusFor maps service errors onto an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, dto.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, dto.ErrNoImages), errors.Is(err, dto.ErrInvalidPagination):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, dto.ErrNotSaved):
		return http.StatusInternalServerError, codeNotSaved
	case errors.Is(err, dto.ErrBatchAborted):
		return http.StatusServiceUnavailable, codeBatchAborted
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// respondError writes the error envelope for err. message prefixes the
// error text.
func respondError(c *gin.Context, logger *zap.Logger, message string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		logger.Debug(message, zap.String("path", c.FullPath()), zap.Error(err))
	}
	sendError(c, status, code, message+": "+err.Error())
}

// sendError sends a structured error response
func sendError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
	})
}
