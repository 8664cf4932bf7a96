package summary

import (
	"context"
	"errors"
	"testing"

	"whispr/internal/depth"
	"whispr/internal/models"
	"whispr/internal/providers"
)

type scriptedCompleter struct {
	responses []string
	errs      []error
	calls     int
	requests  []providers.CompletionRequest
}

func (s *scriptedCompleter) Complete(ctx context.Context, req providers.CompletionRequest) (providers.CompletionResponse, providers.ProviderInfo, error) {
	_ = ctx
	i := s.calls
	s.calls++
	s.requests = append(s.requests, req)
	info := providers.ProviderInfo{Name: "scripted", Model: "test"}
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return providers.CompletionResponse{}, info, err
	}
	resp := ""
	if i < len(s.responses) {
		resp = s.responses[i]
	}
	return providers.CompletionResponse{Text: resp}, info, nil
}

const goodDoc = `{"overview":"x","sections":[{"title":"A","body_text":"b","key_points":[]}],"glossary":{},"follow_up_questions":[]}`

func segments(texts ...string) []models.TranscriptSegment {
	out := make([]models.TranscriptSegment, 0, len(texts))
	for i, t := range texts {
		out = append(out, models.TranscriptSegment{StartTime: float64(i), EndTime: float64(i + 1), Text: t})
	}
	return out
}

func profile(t *testing.T) depth.Profile {
	t.Helper()
	p, err := depth.Resolve(3)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSummarizeSuccess(t *testing.T) {
	c := &scriptedCompleter{responses: []string{"```json\n" + goodDoc + "\n```"}}
	o := New(c, Options{})
	doc, err := o.Summarize(context.Background(), segments("some talk"), profile(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Title != "A" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.Sections[0].ID == "" || doc.Sections[0].OrderIndex != 0 {
		t.Fatalf("section not finalized: %+v", doc.Sections[0])
	}
	if c.calls != 1 {
		t.Fatalf("expected 1 call, got %d", c.calls)
	}
}

func TestSummarizeStrictRetryRecovers(t *testing.T) {
	c := &scriptedCompleter{responses: []string{"sorry, here is prose", goodDoc}}
	o := New(c, Options{})
	doc, err := o.Summarize(context.Background(), segments("some talk"), profile(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if c.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", c.calls)
	}
	if !c.requests[1].JSONOnly {
		t.Fatal("retry should request JSON-only output")
	}
}

func TestSummarizeMalformedTwice(t *testing.T) {
	c := &scriptedCompleter{responses: []string{"prose", "still prose"}}
	o := New(c, Options{})
	_, err := o.Summarize(context.Background(), segments("some talk"), profile(t))
	if !errors.Is(err, ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
}

func TestSummarizeModelUnavailable(t *testing.T) {
	transport := errors.New("dial tcp: connection refused")
	c := &scriptedCompleter{errs: []error{transport, transport}}
	o := New(c, Options{})
	_, err := o.Summarize(context.Background(), segments("some talk"), profile(t))
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestSummarizeEmptyTranscript(t *testing.T) {
	c := &scriptedCompleter{}
	o := New(c, Options{})
	if _, err := o.Summarize(context.Background(), nil, profile(t)); !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("expected ErrEmptyTranscript, got %v", err)
	}
	if _, err := o.Summarize(context.Background(), segments("   ", ""), profile(t)); !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("expected ErrEmptyTranscript, got %v", err)
	}
	if c.calls != 0 {
		t.Fatalf("no model call may happen for empty input, got %d", c.calls)
	}
}

func TestSummarizeWindowedMerge(t *testing.T) {
	winDoc1 := `{"overview":"first part","sections":[{"title":"A","body_text":"a","key_points":[]}],"glossary":{"X":"first"},"follow_up_questions":["q1"]}`
	winDoc2 := `{"overview":"second part","sections":[{"title":"B","body_text":"b","key_points":[]}],"glossary":{"X":"second","Y":"y"},"follow_up_questions":["q1","q2"]}`
	c := &scriptedCompleter{responses: []string{winDoc1, winDoc2}}
	o := New(c, Options{WindowSize: 30, WindowOverlap: 5})

	long := segments("aaaaaaaaaaaaaaaaaaaaaaaaa bbbbbbbbbbbbbbbbbbbbbbbbb")
	doc, err := o.Summarize(context.Background(), long, profile(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Sections) != 2 || doc.Sections[0].Title != "A" || doc.Sections[1].Title != "B" {
		t.Fatalf("sections not merged in window order: %+v", doc.Sections)
	}
	if doc.Sections[0].OrderIndex != 0 || doc.Sections[1].OrderIndex != 1 {
		t.Fatalf("order indexes wrong: %+v", doc.Sections)
	}
	if doc.Glossary["X"] != "first" || doc.Glossary["Y"] != "y" {
		t.Fatalf("glossary union wrong: %v", doc.Glossary)
	}
	if len(doc.FollowUpQuestions) != 2 {
		t.Fatalf("follow-ups not deduplicated: %v", doc.FollowUpQuestions)
	}
}
