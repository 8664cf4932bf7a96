package util

import (
	"regexp"
	"strings"
)

// SanitizeText drops NUL bytes and non-printing controls that text
// columns and markdown output reject, keeping common whitespace.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x00", "")
	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a note title into a filesystem-safe artifact name.
func Slugify(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = slugPattern.ReplaceAllString(value, "-")
	value = strings.Trim(value, "-")
	if value == "" {
		return fallback
	}
	return value
}
