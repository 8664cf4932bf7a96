package activities

import (
	"context"
	"log"

	"whispr/internal/providers"
	"whispr/internal/storage"
)

type callLogger interface {
	Insert(ctx context.Context, rec storage.LLMCallRecord) error
}

// auditedCompleter records every model call for one job in the audit
// log: operation, provider, model and a classified error type on
// failure. Logging is best-effort and never blocks the completion
// result.
type auditedCompleter struct {
	inner providers.Completer
	audit callLogger
	jobID string
}

func (c auditedCompleter) Complete(ctx context.Context, req providers.CompletionRequest) (providers.CompletionResponse, providers.ProviderInfo, error) {
	resp, info, err := c.inner.Complete(ctx, req)

	rec := storage.LLMCallRecord{
		Operation:    req.Operation,
		JobID:        c.jobID,
		ProviderName: info.Name,
		Model:        info.Model,
		Status:       "ok",
	}
	if err != nil {
		rec.Status = "error"
		rec.ErrorType = string(providers.ClassifyError(err))
	}
	if logErr := c.audit.Insert(ctx, rec); logErr != nil {
		log.Printf("activities: audit log insert failed for %s/%s: %v", c.jobID, req.Operation, logErr)
	}
	return resp, info, err
}
