package dto

import "time"

// OCRResult is a persisted row of the OCR results table.
type OCRResult struct {
	ID            int64     `json:"id"`
	Filename      string    `json:"filename"`
	ExtractedText string    `json:"extracted_text"`
	CreatedAt     time.Time `json:"created_at"`
}

// Feedback is a persisted row of the feedback table.
type Feedback struct {
	ID        int64     `json:"id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Page selects a window of rows ordered newest first.
type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageLimit  = 100
	DefaultPageOffset = 0
)

// DefaultPage is used when the client sends no pagination parameters.
func DefaultPage() Page {
	return Page{Limit: DefaultPageLimit, Offset: DefaultPageOffset}
}

// Validate rejects negative windows.
func (p Page) Validate() error {
	if p.Limit < 0 || p.Offset < 0 {
		return ErrInvalidPagination
	}
	return nil
}
