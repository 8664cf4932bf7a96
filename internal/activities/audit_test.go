package activities

import (
	"context"
	"errors"
	"testing"

	"whispr/internal/providers"
	"whispr/internal/storage"
)

type fakeCallLog struct {
	records []storage.LLMCallRecord
	err     error
}

func (f *fakeCallLog) Insert(ctx context.Context, rec storage.LLMCallRecord) error {
	_ = ctx
	f.records = append(f.records, rec)
	return f.err
}

type stubCompleter struct {
	text string
	err  error
}

func (s stubCompleter) Complete(ctx context.Context, req providers.CompletionRequest) (providers.CompletionResponse, providers.ProviderInfo, error) {
	_ = ctx
	_ = req
	return providers.CompletionResponse{Text: s.text}, providers.ProviderInfo{Name: "stub", Model: "stub-v1"}, s.err
}

func TestAuditedCompleterRecordsSuccess(t *testing.T) {
	audit := &fakeCallLog{}
	c := auditedCompleter{inner: stubCompleter{text: "ok"}, audit: audit, jobID: "job-1"}

	resp, _, err := c.Complete(context.Background(), providers.CompletionRequest{Operation: "summarize"})
	if err != nil || resp.Text != "ok" {
		t.Fatalf("unexpected completion result: %v %+v", err, resp)
	}
	if len(audit.records) != 1 {
		t.Fatalf("expected one audit record, got %d", len(audit.records))
	}
	rec := audit.records[0]
	if rec.JobID != "job-1" || rec.Operation != "summarize" || rec.Status != "ok" || rec.ProviderName != "stub" || rec.Model != "stub-v1" {
		t.Fatalf("unexpected audit record: %+v", rec)
	}
	if rec.ErrorType != "" {
		t.Fatalf("success must not carry an error type: %+v", rec)
	}
}

func TestAuditedCompleterClassifiesFailure(t *testing.T) {
	audit := &fakeCallLog{}
	c := auditedCompleter{inner: stubCompleter{err: errors.New("dial tcp: connection refused")}, audit: audit, jobID: "job-2"}

	_, _, err := c.Complete(context.Background(), providers.CompletionRequest{Operation: "placement_adjudication"})
	if err == nil {
		t.Fatalf("expected completion error to surface")
	}
	if len(audit.records) != 1 {
		t.Fatalf("expected one audit record, got %d", len(audit.records))
	}
	rec := audit.records[0]
	if rec.Status != "error" || rec.ErrorType != string(providers.ErrorConnection) {
		t.Fatalf("unexpected classification: %+v", rec)
	}
}

// A broken audit sink must not break the completion itself.
func TestAuditedCompleterToleratesInsertFailure(t *testing.T) {
	audit := &fakeCallLog{err: errors.New("relation llm_calls does not exist")}
	c := auditedCompleter{inner: stubCompleter{text: "ok"}, audit: audit, jobID: "job-3"}

	resp, _, err := c.Complete(context.Background(), providers.CompletionRequest{Operation: "vision_analysis"})
	if err != nil || resp.Text != "ok" {
		t.Fatalf("completion must survive audit failure: %v %+v", err, resp)
	}
}
