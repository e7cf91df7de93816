package dto

import (
	"errors"
	"math"
	"time"
)

// Custom errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrNotSaved          = errors.New("insert returned no row")
	ErrNoImages          = errors.New("at least one image is required")
	ErrBatchAborted      = errors.New("batch aborted before persistence")
	ErrInvalidPagination = errors.New("limit and offset must be non-negative integers")
)

// TimeTakenKey is the extra key added to the synchronous extraction mapping.
// It shares the namespace with filenames: an upload named "Time Taken" is
// replaced by the timing in AsMap.
const TimeTakenKey = "Time Taken"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ImageText is the recognition outcome for one uploaded image.
type ImageText struct {
	Filename    string
	Recognition Recognition
}

// ExtractTextResponse is the result of the synchronous batch extraction.
type ExtractTextResponse struct {
	Results []ImageText
	Elapsed time.Duration
}

// AsMap renders the response as filename -> text plus the elapsed seconds.
// A filename that appears twice keeps the last recognition, and the timing
// always wins over an upload named TimeTakenKey.
func (r *ExtractTextResponse) AsMap() map[string]any {
	out := make(map[string]any, len(r.Results)+1)
	for _, res := range r.Results {
		out[res.Filename] = res.Recognition.Value()
	}
	out[TimeTakenKey] = math.Round(r.Elapsed.Seconds()*100) / 100
	return out
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
