package providers

import (
	"errors"
	"testing"
)

func TestClassifyError(t *testing.T) {
	cases := map[string]ErrorType{
		"context deadline exceeded":        ErrorTimeout,
		"dial tcp: connection refused":     ErrorConnection,
		"429 rate limit":                   ErrorRate,
		"server returned 503":              ErrorServer,
		"invalid request: unknown model":   ErrorPermanent,
		"request timeout while completing": ErrorTimeout,
	}
	for msg, want := range cases {
		if got := ClassifyError(errors.New(msg)); got != want {
			t.Fatalf("classify %q: got %s want %s", msg, got, want)
		}
	}
}

func TestUnavailable(t *testing.T) {
	if !Unavailable(errors.New("connection refused")) {
		t.Fatal("connection failure should be unavailable")
	}
	if Unavailable(errors.New("bad request")) {
		t.Fatal("permanent failure should not be unavailable")
	}
}

func TestParseProviderListTrimming(t *testing.T) {
	refs := ParseProviderList(" vllm | mock ")
	if len(refs) != 2 || refs[0] != "vllm" || refs[1] != "mock" {
		t.Fatalf("unexpected parse result: %v", refs)
	}
	if refs := ParseProviderList(""); len(refs) != 1 || refs[0] != "mock" {
		t.Fatalf("expected mock fallback, got %v", refs)
	}
}
