package transcribe

import (
	"testing"

	"whispr/internal/models"
)

func TestNormalizeOrdersAndClamps(t *testing.T) {
	in := []models.TranscriptSegment{
		{StartTime: 5, EndTime: 9, Text: "second"},
		{StartTime: 0, EndTime: 6, Text: "first"},
		{StartTime: 2, EndTime: 1, Text: "  "},
	}
	out := Normalize(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(out))
	}
	if out[0].Text != "first" || out[1].Text != "second" {
		t.Fatalf("unexpected order: %+v", out)
	}
	// Overlap with the first segment's end is clamped away.
	if out[1].StartTime < out[0].EndTime {
		t.Fatalf("segments overlap after normalize: %+v", out)
	}
	for i := 1; i < len(out); i++ {
		if out[i].StartTime < out[i-1].StartTime {
			t.Fatalf("start times not monotonic: %+v", out)
		}
	}
}

func TestJoinText(t *testing.T) {
	segs := []models.TranscriptSegment{
		{Text: " Redfish is "},
		{Text: ""},
		{Text: "a REST API"},
	}
	if got := JoinText(segs); got != "Redfish is a REST API" {
		t.Fatalf("unexpected join: %q", got)
	}
}
