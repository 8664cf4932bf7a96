// Package transcribe wraps the external speech-to-text engine and
// normalizes its output into ordered, non-overlapping timed segments.
package transcribe

import (
	"context"
	"sort"
	"strings"

	"whispr/internal/models"
)

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, formatHint string) ([]models.TranscriptSegment, error)
}

// Normalize orders segments by start time, clamps overlapping spans and
// drops segments that are empty after whitespace trimming. Times never
// decrease in the result.
func Normalize(segments []models.TranscriptSegment) []models.TranscriptSegment {
	out := make([]models.TranscriptSegment, 0, len(segments))
	for _, s := range segments {
		s.Text = strings.TrimSpace(s.Text)
		if s.Text == "" {
			continue
		}
		if s.EndTime < s.StartTime {
			s.EndTime = s.StartTime
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	for i := 1; i < len(out); i++ {
		if out[i].StartTime < out[i-1].EndTime {
			out[i].StartTime = out[i-1].EndTime
			if out[i].EndTime < out[i].StartTime {
				out[i].EndTime = out[i].StartTime
			}
		}
	}
	return out
}

// JoinText concatenates segment text in order, for prompt embedding.
func JoinText(segments []models.TranscriptSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
