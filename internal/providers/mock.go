package providers

import (
	"context"
	"strings"
)

// MockProvider returns deterministic canned output per operation so the
// pipeline and its tests run without an inference endpoint.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, ProviderInfo, error) {
	_ = ctx
	info := ProviderInfo{Name: "mock", Model: "mock-llm-v1"}
	op := strings.ToLower(req.Operation)
	switch {
	case strings.Contains(op, "summar"):
		return CompletionResponse{Text: mockSummaryJSON}, info, nil
	case strings.Contains(op, "vision"), strings.Contains(op, "image_analysis"):
		return CompletionResponse{Text: mockVisionJSON}, info, nil
	case strings.Contains(op, "placement"), strings.Contains(op, "adjudicat"):
		return CompletionResponse{Text: mockPlacementJSON}, info, nil
	default:
		return CompletionResponse{Text: "Mock response."}, info, nil
	}
}

const mockSummaryJSON = `{
  "title": "Mock Session",
  "overview": "Deterministic mock overview of the transcript.",
  "sections": [
    {"title": "Introduction", "body_text": "Deterministic mock section body.", "key_points": ["mock point"]}
  ],
  "glossary": {"mock": "a deterministic stand-in"},
  "follow_up_questions": ["What would a real model have said?"]
}`

const mockVisionJSON = `{
  "description": "Deterministic mock image description.",
  "keywords": ["mock", "slide"],
  "category": "slide",
  "confidence": 0.9
}`

const mockPlacementJSON = `{"section_id": "", "no_fit": true, "reason": "mock adjudicator declares no fit"}`
