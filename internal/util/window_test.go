package util

import "testing"

func TestWindowTextSingleWindow(t *testing.T) {
	out := WindowText("short transcript", 100, 10)
	if len(out) != 1 || out[0] != "short transcript" {
		t.Fatalf("unexpected windows: %v", out)
	}
}

func TestWindowTextOverlap(t *testing.T) {
	text := "abcdefghijklmnopqrstuvwxyz"
	out := WindowText(text, 10, 2)
	if len(out) < 3 {
		t.Fatalf("expected at least 3 windows, got %d", len(out))
	}
	if out[0] != "abcdefghij" {
		t.Fatalf("unexpected first window: %s", out[0])
	}
}

func TestWindowTextEmpty(t *testing.T) {
	if out := WindowText("   ", 10, 0); out != nil {
		t.Fatalf("expected nil windows for blank text, got %v", out)
	}
}

func TestSlugify(t *testing.T) {
	if got := Slugify("Redfish: A REST API!", "untitled"); got != "redfish-a-rest-api" {
		t.Fatalf("unexpected slug: %s", got)
	}
	if got := Slugify("***", "untitled"); got != "untitled" {
		t.Fatalf("expected fallback, got %s", got)
	}
}
