package dto

// SaveTextRequest is the body of POST /api/v1/save_text_to_db.
// ExtractedText must be present but may be empty.
type SaveTextRequest struct {
	Filename      string  `json:"filename" binding:"required"`
	ExtractedText *string `json:"extracted_text" binding:"required"`
}

// Text returns the extracted text, or "" when it was not set.
func (r SaveTextRequest) Text() string {
	if r.ExtractedText == nil {
		return ""
	}
	return *r.ExtractedText
}

// FeedbackRequest is the body of POST /api/v1/feedback.
type FeedbackRequest struct {
	Comment string `json:"comment" binding:"required"`
}
