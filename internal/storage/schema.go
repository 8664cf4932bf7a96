package storage

import (
	"context"
	"fmt"
)

// EnsureSchema creates the tables the service needs if they do not
// exist yet, so a fresh database works without a separate migration
// step.
func (d *DB) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS jobs (
  job_id TEXT PRIMARY KEY,
  workflow_id TEXT,
  title TEXT,
  understanding_level INT NOT NULL DEFAULT 2 CHECK (understanding_level BETWEEN 0 AND 5),
  status TEXT NOT NULL CHECK (status IN ('queued','processing','completed','failed')),
  fail_reason TEXT,
  note_path TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_jobs_created ON jobs(created_at DESC);

CREATE TABLE IF NOT EXISTS llm_calls (
  call_id UUID PRIMARY KEY,
  operation TEXT NOT NULL,
  job_id TEXT REFERENCES jobs(job_id) ON DELETE CASCADE,
  provider_name TEXT NOT NULL,
  model TEXT NOT NULL,
  request_id TEXT,
  status TEXT NOT NULL,
  error_type TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_llm_calls_job ON llm_calls(job_id, created_at DESC);
`
	if _, err := d.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
