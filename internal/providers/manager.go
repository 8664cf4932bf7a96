package providers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"whispr/internal/config"
)

type NamedCompleter struct {
	Name     string
	Provider Completer
}

// Manager holds the configured completion providers in failover order.
// The list comes from WHISPR_LLM_PROVIDERS, e.g. "vllm|openai|mock".
type Manager struct {
	completers []NamedCompleter
}

func NewManager(cfg config.Config) (*Manager, error) {
	names := ParseProviderList(cfg.LLMProviders)
	timeout := time.Duration(cfg.CallTimeoutSecs) * time.Second

	m := &Manager{}
	for _, name := range names {
		p, err := buildProvider(name, cfg, timeout)
		if err != nil {
			return nil, err
		}
		m.completers = append(m.completers, NamedCompleter{Name: name, Provider: p})
	}
	if len(m.completers) == 0 {
		m.completers = []NamedCompleter{{Name: "mock", Provider: NewMockProvider()}}
	}
	return m, nil
}

func (m *Manager) ByIndex(i int) (Completer, string) {
	if i < 0 || i >= len(m.completers) {
		i = 0
	}
	return m.completers[i].Provider, m.completers[i].Name
}

func (m *Manager) Count() int {
	return len(m.completers)
}

// Complete runs the request against the providers in configured order,
// failing over to the next one when the error is transient (timeout,
// connection, server-side). Permanent errors return immediately: a
// malformed request will not get better on another backend.
func (m *Manager) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, ProviderInfo, error) {
	var lastErr error
	var lastInfo ProviderInfo
	for i := 0; i < m.Count(); i++ {
		p, name := m.ByIndex(i)
		resp, info, err := p.Complete(ctx, req)
		if info.Name == "" {
			info.Name = name
		}
		if err == nil {
			return resp, info, nil
		}
		if !Unavailable(err) {
			return CompletionResponse{}, info, err
		}
		log.Printf("providers: %s unavailable for %s (%s), trying next: %v", name, req.Operation, ClassifyError(err), err)
		lastErr = err
		lastInfo = info
	}
	return CompletionResponse{}, lastInfo, lastErr
}

func ParseProviderList(raw string) []string {
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		out = append(out, "mock")
	}
	return out
}

func buildProvider(name string, cfg config.Config, timeout time.Duration) (Completer, error) {
	switch name {
	case "mock":
		return NewMockProvider(), nil
	case "vllm", "openai":
		// Same wire protocol; the base URL decides which backend answers.
		return NewOpenAIProvider(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", name)
	}
}
