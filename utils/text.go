package utils

import "strings"

var lineBreaks = strings.NewReplacer("\n", " ", "\r", " ")

// NormalizeText turns recognized text into a single line: line breaks
// become spaces (one per character) and surrounding whitespace is trimmed.
func NormalizeText(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(s))
}
