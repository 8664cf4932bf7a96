package util

import "strings"

// WindowText splits a long transcript into overlapping rune windows so
// each window fits a single model context. Returns the original text as
// one window when it already fits.
func WindowText(text string, windowSize, overlap int) []string {
	if windowSize <= 0 {
		windowSize = 24000
	}
	if overlap < 0 || overlap >= windowSize {
		overlap = 0
	}
	runes := []rune(text)
	if len(runes) <= windowSize {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}
	step := windowSize - overlap
	out := make([]string, 0, len(runes)/step+1)
	for i := 0; i < len(runes); i += step {
		end := i + windowSize
		if end > len(runes) {
			end = len(runes)
		}
		part := strings.TrimSpace(string(runes[i:end]))
		if part != "" {
			out = append(out, part)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
