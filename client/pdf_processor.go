package client

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	_ "golang.org/x/image/tiff"
)

type PDFProcessor interface {
	ExtractText(pdfData []byte) (string, error)
	ExtractImages(pdfData []byte) ([]image.Image, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

// ExtractText reads the text layer row by row, one line per row.
func (p *pdfProcessor) ExtractText(pdfData []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var textBuilder bytes.Buffer
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", pageIndex, err)
		}
		for _, row := range rows {
			for _, word := range row.Content {
				textBuilder.WriteString(word.S)
			}
			textBuilder.WriteString("\n")
		}
	}
	return textBuilder.String(), nil
}

// ExtractImages pulls embedded page images out with pdfcpu, in file-name order.
func (p *pdfProcessor) ExtractImages(pdfData []byte) ([]image.Image, error) {
	tempDir, err := os.MkdirTemp("", "pdf-images-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	inFile := filepath.Join(tempDir, "input.pdf")
	if err := os.WriteFile(inFile, pdfData, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}
	outDir := filepath.Join(tempDir, "out")
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractImagesFile(inFile, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted images: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var images []image.Image
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		img, err := decodeImageFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			// pdfcpu also emits formats image.Decode does not know; skip those.
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}
