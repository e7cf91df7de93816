package dto

import "fmt"

// Recognition is the tagged outcome of one OCR call: either recognized text
// or a description of why the file could not be processed.
type Recognition struct {
	Path    string
	Text    string
	Failure string
}

// Recognized builds a successful recognition.
func Recognized(path, text string) Recognition {
	return Recognition{Path: path, Text: text}
}

// Failed builds a failed recognition for path.
func Failed(path string, err error) Recognition {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Recognition{Path: path, Failure: msg}
}

// OK reports whether the engine returned text.
func (r Recognition) OK() bool {
	return r.Failure == ""
}

// Value is the text clients see: the recognized text, or the error marker.
func (r Recognition) Value() string {
	if r.OK() {
		return r.Text
	}
	return fmt.Sprintf("[ERROR] Unable to process file: %s. Exception: %s", r.Path, r.Failure)
}
