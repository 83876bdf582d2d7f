package reports

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText cleans up detector-extracted OCR/QR text before storage:
// NFC normalization (OCR engines emit combining sequences for Indic scripts),
// control characters stripped, surrounding whitespace trimmed.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
