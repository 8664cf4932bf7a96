package providers

import "context"

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
}

// CompletionRequest is one chat-completion call. Operation tags the
// pipeline stage for audit logging and mock routing.
type CompletionRequest struct {
	Operation   string  `json:"operation"`
	System      string  `json:"system"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	// JSONOnly asks the endpoint for a JSON-object response format where
	// the backend supports it; the extraction layer still tolerates
	// backends that ignore the hint.
	JSONOnly bool `json:"json_only"`
}

type CompletionResponse struct {
	Text string `json:"text"`
}

type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, ProviderInfo, error)
}
