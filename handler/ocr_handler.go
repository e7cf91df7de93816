package handler

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aashish23092/vision-text-ocr/dto"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// OCRService is the orchestration consumed by OCRHandler.
type OCRService interface {
	ExtractText(ctx context.Context, files []*multipart.FileHeader) (*dto.ExtractTextResponse, error)
	ExtractAndSave(ctx context.Context, files []*multipart.FileHeader) ([]dto.OCRResult, error)
	List(ctx context.Context, page dto.Page) ([]dto.OCRResult, error)
	Get(ctx context.Context, id int64) (*dto.OCRResult, error)
	SaveText(ctx context.Context, req dto.SaveTextRequest) (*dto.OCRResult, error)
}

type Exporter interface {
	ExportXLSX(ctx context.Context, page dto.Page) ([]byte, error)
}

type OCRHandler struct {
	service  OCRService
	exporter Exporter
	logger   *zap.Logger
}

func NewOCRHandler(service OCRService, exporter Exporter, logger *zap.Logger) *OCRHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OCRHandler{service: service, exporter: exporter, logger: logger}
}

// ExtractText handles POST /api/v1/extract_text
func (h *OCRHandler) ExtractText(c *gin.Context) {
	files, err := uploadedImages(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	resp, err := h.service.ExtractText(c.Request.Context(), files)
	if err != nil {
		respondError(c, h.logger, "Failed to extract text", err)
		return
	}
	c.JSON(http.StatusOK, resp.AsMap())
}

// ExtractTextAsync handles POST /api/v1/extract_text_async
func (h *OCRHandler) ExtractTextAsync(c *gin.Context) {
	files, err := uploadedImages(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	saved, err := h.service.ExtractAndSave(c.Request.Context(), files)
	if err != nil {
		respondError(c, h.logger, "Failed to extract and save text", err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// LoadSavedText handles GET /api/v1/load_saved_text_from_db
func (h *OCRHandler) LoadSavedText(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	results, err := h.service.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, h.logger, "Failed to load saved text", err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// LoadSavedTextByID handles GET /api/v1/load_saved_text_from_db/:id
func (h *OCRHandler) LoadSavedTextByID(c *gin.Context) {
	id, ok := idFromPath(c)
	if !ok {
		sendError(c, http.StatusBadRequest, codeBadRequest, "id must be a positive integer")
		return
	}

	result, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Failed to load saved text", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SaveText handles POST /api/v1/save_text_to_db
func (h *OCRHandler) SaveText(c *gin.Context) {
	var req dto.SaveTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	saved, err := h.service.SaveText(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "Failed to save text to database", err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// ExportSavedText handles GET /api/v1/export_saved_text
func (h *OCRHandler) ExportSavedText(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	data, err := h.exporter.ExportXLSX(c.Request.Context(), page)
	if err != nil {
		respondError(c, h.logger, "Failed to export saved text", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="ocr_results.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
