package storage

import (
	"context"
	"fmt"

	"whispr/internal/models"
)

type JobRepo struct {
	db *DB
}

func NewJobRepo(db *DB) *JobRepo {
	return &JobRepo{db: db}
}

func (r *JobRepo) UpsertJob(ctx context.Context, j models.Job) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO jobs (job_id, workflow_id, title, understanding_level, status, fail_reason, note_path)
VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4, $5, NULLIF($6,''), NULLIF($7,''))
ON CONFLICT (job_id)
DO UPDATE SET
  workflow_id = COALESCE(EXCLUDED.workflow_id, jobs.workflow_id),
  title = COALESCE(EXCLUDED.title, jobs.title),
  understanding_level = EXCLUDED.understanding_level,
  status = EXCLUDED.status,
  fail_reason = EXCLUDED.fail_reason,
  note_path = COALESCE(EXCLUDED.note_path, jobs.note_path),
  updated_at = NOW()`,
		j.JobID, j.WorkflowID, j.Title, j.Level, j.Status, j.FailReason, j.NotePath,
	)
	if err != nil {
		return fmt.Errorf("upsert job: %w", err)
	}
	return nil
}

func (r *JobRepo) UpdateJobStatus(ctx context.Context, jobID, status, failReason string) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE jobs SET status=$2, fail_reason=NULLIF($3,''), updated_at=NOW() WHERE job_id=$1`, jobID, status, failReason)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

func (r *JobRepo) SetNotePath(ctx context.Context, jobID, notePath string) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE jobs SET note_path=$2, updated_at=NOW() WHERE job_id=$1`, jobID, notePath)
	if err != nil {
		return fmt.Errorf("set note path: %w", err)
	}
	return nil
}

func (r *JobRepo) GetJobByID(ctx context.Context, jobID string) (models.Job, error) {
	var j models.Job
	err := r.db.Pool.QueryRow(ctx, `
SELECT job_id, COALESCE(workflow_id,''), COALESCE(title,''), understanding_level, status,
       COALESCE(fail_reason,''), COALESCE(note_path,''), created_at, updated_at
FROM jobs
WHERE job_id=$1`, jobID).
		Scan(&j.JobID, &j.WorkflowID, &j.Title, &j.Level, &j.Status, &j.FailReason, &j.NotePath, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return models.Job{}, fmt.Errorf("get job by id: %w", err)
	}
	return j, nil
}

func (r *JobRepo) ListRecentJobs(ctx context.Context, limit int) ([]models.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT job_id, COALESCE(workflow_id,''), COALESCE(title,''), understanding_level, status,
       COALESCE(fail_reason,''), COALESCE(note_path,''), created_at, updated_at
FROM jobs
ORDER BY created_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	out := make([]models.Job, 0)
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(&j.JobID, &j.WorkflowID, &j.Title, &j.Level, &j.Status, &j.FailReason, &j.NotePath, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return out, nil
}
