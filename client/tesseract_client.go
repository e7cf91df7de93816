package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"

	"github.com/Aashish23092/vision-text-ocr/dto"
)

const defaultLanguage = "eng"

// engine is the raw text-recognition backend.
type engine interface {
	TextFromFile(path, lang string) (string, error)
	TextFromImage(data []byte, lang string) (string, error)
}

type gosseractEngine struct {
	dataPath string
}

func (e gosseractEngine) newClient(lang string) (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if e.dataPath != "" {
		client.SetTessdataPrefix(e.dataPath)
	}
	if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	return client, nil
}

func (e gosseractEngine) TextFromFile(path, lang string) (string, error) {
	client, err := e.newClient(lang)
	if err != nil {
		return "", err
	}
	defer client.Close()

	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	return client.Text()
}

func (e gosseractEngine) TextFromImage(data []byte, lang string) (string, error) {
	client, err := e.newClient(lang)
	if err != nil {
		return "", err
	}
	defer client.Close()

	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	return client.Text()
}

// Options configures a TesseractClient.
type Options struct {
	DataPath string
	Language string
	Timeout  time.Duration
	// MaxRunning bounds engine runs alive at once, including runs whose
	// caller already gave up. Defaults to runtime.NumCPU().
	MaxRunning int
}

// TesseractClient recognizes text in images (and PDFs) on local disk.
type TesseractClient struct {
	engine   engine
	pdf      PDFProcessor
	language string
	timeout  time.Duration
	slots    chan struct{}
	running  sync.WaitGroup
	logger   *zap.Logger
}

func NewTesseractClient(opts Options, logger *zap.Logger) *TesseractClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	lang := opts.Language
	if lang == "" {
		lang = defaultLanguage
	}
	maxRunning := opts.MaxRunning
	if maxRunning <= 0 {
		maxRunning = runtime.NumCPU()
	}
	return &TesseractClient{
		engine:   gosseractEngine{dataPath: opts.DataPath},
		pdf:      NewPDFProcessor(),
		language: lang,
		timeout:  opts.Timeout,
		slots:    make(chan struct{}, maxRunning),
		logger:   logger,
	}
}

// Language is the language used when Recognize is called with an empty one.
func (tc *TesseractClient) Language() string {
	return tc.language
}

// Recognize runs OCR on the file at path. It never returns an error: any
// failure, including a timeout or ctx cancellation, comes back as a failed
// Recognition. The engine call runs on its own goroutine so a slow file
// does not hold up the caller past the deadline.
func (tc *TesseractClient) Recognize(ctx context.Context, path, lang string) dto.Recognition {
	if lang == "" {
		lang = tc.language
	}
	if tc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tc.timeout)
		defer cancel()
	}

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	start := time.Now()

	// The slot is released by the engine goroutine, not by this call, so an
	// abandoned run keeps counting against the limit until it finishes.
	select {
	case tc.slots <- struct{}{}:
	case <-ctx.Done():
		tc.logger.Warn("recognition not started", zap.String("path", path), zap.Error(ctx.Err()))
		return dto.Failed(path, ctx.Err())
	}
	tc.running.Add(1)

	go func() {
		defer func() {
			<-tc.slots
			tc.running.Done()
		}()
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("ocr engine panic: %v", r)}
			}
		}()
		text, err := tc.extract(path, lang)
		done <- outcome{text: text, err: err}
	}()

	var res outcome
	select {
	case res = <-done:
	case <-ctx.Done():
		// The engine cannot be interrupted; its goroutine finishes on its own.
		res = outcome{err: ctx.Err()}
	}

	if res.err != nil {
		tc.logger.Warn("recognition failed",
			zap.String("path", path),
			zap.String("lang", lang),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(res.err),
		)
		return dto.Failed(path, res.err)
	}

	tc.logger.Debug("recognition finished",
		zap.String("path", path),
		zap.Int("chars", len(res.text)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return dto.Recognized(path, res.text)
}

func (tc *TesseractClient) extract(path, lang string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return tc.extractPDF(path, lang)
	}
	return tc.engine.TextFromFile(path, lang)
}

// extractPDF prefers the embedded text layer and falls back to OCR of the
// page images for scanned documents.
func (tc *TesseractClient) extractPDF(path, lang string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	text, err := tc.pdf.ExtractText(data)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if err != nil {
		tc.logger.Debug("pdf text layer unavailable", zap.String("path", path), zap.Error(err))
	}

	images, err := tc.pdf.ExtractImages(data)
	if err != nil {
		return "", err
	}
	if len(images) == 0 {
		return "", errors.New("pdf has no text layer and no page images")
	}

	var pages []string
	for i, img := range images {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("failed to encode page image %d: %w", i+1, err)
		}
		pageText, err := tc.engine.TextFromImage(buf.Bytes(), lang)
		if err != nil {
			return "", fmt.Errorf("page image %d: %w", i+1, err)
		}
		pages = append(pages, pageText)
	}
	return strings.Join(pages, "\n"), nil
}

// Close waits for engine runs still in flight, including abandoned ones.
func (tc *TesseractClient) Close() {
	tc.running.Wait()
	tc.logger.Info("tesseract client closed")
}
