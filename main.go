package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aashish23092/vision-text-ocr/client"
	"github.com/Aashish23092/vision-text-ocr/config"
	"github.com/Aashish23092/vision-text-ocr/handler"
	"github.com/Aashish23092/vision-text-ocr/repository"
	"github.com/Aashish23092/vision-text-ocr/router"
	"github.com/Aashish23092/vision-text-ocr/service"
	"github.com/Aashish23092/vision-text-ocr/utils"
)

const serviceName = "Vision Text OCR Service"

func main() {
	// Initialize configuration
	cfg := config.LoadConfig()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("service stopped with error", zap.Error(err))
	}
	logger.Info("service stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		return zap.NewProduction()
	}
	gin.SetMode(gin.DebugMode)
	return zap.NewDevelopment()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting service", zap.String("service", serviceName), zap.String("mode", cfg.Mode))

	temp := utils.NewTempStore(cfg.TempDir)
	if err := temp.EnsureDir(); err != nil {
		return err
	}

	// Initialize database pool and schema
	store, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN(),
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	// Initialize Tesseract client
	tesseractClient := client.NewTesseractClient(client.Options{
		DataPath:   cfg.OCR.TesseractDataPath,
		Language:   cfg.OCR.Language,
		Timeout:    cfg.OCR.Timeout,
		MaxRunning: cfg.OCR.Concurrency,
	}, logger)
	defer tesseractClient.Close()

	// Initialize service layer
	ocrService := service.NewOCRService(tesseractClient, store, temp, service.Options{
		Language:    cfg.OCR.Language,
		Concurrency: cfg.OCR.Concurrency,
	}, logger)
	feedbackService := service.NewFeedbackService(store, logger)
	exportService := service.NewExportService(ocrService, logger)

	// Initialize handler layer
	r := router.New(
		router.Options{AllowedOrigins: cfg.AllowedOrigins, MaxMultipartMemory: cfg.MaxUploadBytes},
		logger,
		handler.NewOCRHandler(ocrService, exportService, logger),
		handler.NewFeedbackHandler(feedbackService, logger),
		handler.NewHealthHandler(store, serviceName, logger),
	)

	srv := newHTTPServer(ctx, ":"+cfg.ServerPort, r)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newHTTPServer derives every request context from ctx, so cancelling ctx
// aborts in-flight batches and lets them clean up before Shutdown returns.
func newHTTPServer(ctx context.Context, addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:        addr,
		Handler:     h,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
}
