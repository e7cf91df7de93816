package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aashish23092/vision-text-ocr/middleware"
)

// OCRHandler defines the OCR endpoints.
type OCRHandler interface {
	ExtractText(c *gin.Context)
	ExtractTextAsync(c *gin.Context)
	LoadSavedText(c *gin.Context)
	LoadSavedTextByID(c *gin.Context)
	SaveText(c *gin.Context)
	ExportSavedText(c *gin.Context)
}

type FeedbackHandler interface {
	Submit(c *gin.Context)
	List(c *gin.Context)
}

type HealthHandler interface {
	Check(c *gin.Context)
}

type Options struct {
	AllowedOrigins     []string
	MaxMultipartMemory int64
}

const rootMessage = "Visit the endpoint: /api/v1/extract_text to perform OCR."

// New wires up handlers to the Gin engine.
func New(opts Options, logger *zap.Logger, ocr OCRHandler, feedback FeedbackHandler, health HealthHandler) *gin.Engine {
	r := gin.New()
	if opts.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = opts.MaxMultipartMemory
	}

	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(logger))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": rootMessage})
	})
	r.GET("/health", health.Check)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/extract_text", ocr.ExtractText)
		v1.POST("/extract_text_async", ocr.ExtractTextAsync)
		v1.GET("/load_saved_text_from_db", ocr.LoadSavedText)
		v1.GET("/load_saved_text_from_db/:id", ocr.LoadSavedTextByID)
		v1.POST("/save_text_to_db", ocr.SaveText)
		v1.GET("/export_saved_text", ocr.ExportSavedText)

		v1.POST("/feedback", feedback.Submit)
		v1.GET("/feedback", feedback.List)
	}

	return r
}
