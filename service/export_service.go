package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Aashish23092/vision-text-ocr/dto"
)

const exportSheet = "OCR Results"

var columnWidths = map[string]float64{"A": 8, "B": 32, "C": 80, "D": 26}

// ResultLister is the read side of OCRService used by exports.
type ResultLister interface {
	List(ctx context.Context, page dto.Page) ([]dto.OCRResult, error)
}

// ExportService renders saved OCR results as an XLSX workbook.
type ExportService struct {
	results ResultLister
	logger  *zap.Logger
}

func NewExportService(results ResultLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{results: results, logger: logger}
}

// ExportXLSX returns one row per result in the page, newest first, under a
// header row.
func (s *ExportService) ExportXLSX(ctx context.Context, page dto.Page) ([]byte, error) {
	start := time.Now()

	results, err := s.results.List(ctx, page)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	headers := []any{"ID", "Filename", "Extracted Text", "Created At"}
	if err := f.SetSheetRow(exportSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("xlsx header: %w", err)
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{r.ID, r.Filename, r.ExtractedText, r.CreatedAt.UTC().Format(time.RFC3339)}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", r.ID, err)
		}
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(exportSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("xlsx column %s: %w", col, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("exported ocr results",
		zap.Int("rows", len(results)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return buf.Bytes(), nil
}
