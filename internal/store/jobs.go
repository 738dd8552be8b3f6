package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UpsertJob inserts or merges a job keyed by its deterministic id.
// Merge keeps existing non-empty fields when the new detection is
// sparser; a richer re-detection overwrites.
func (s *Store) UpsertJob(ctx context.Context, job *Job) error {
	if job.JobID == "" {
		return fmt.Errorf("job id is required")
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (job_id, title, company, location, jd_text, apply_url, page_url, origin, first_seen_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())
		 ON CONFLICT (job_id) DO UPDATE SET
		   title     = COALESCE(NULLIF(EXCLUDED.title, ''), jobs.title),
		   company   = COALESCE(NULLIF(EXCLUDED.company, ''), jobs.company),
		   location  = COALESCE(NULLIF(EXCLUDED.location, ''), jobs.location),
		   jd_text   = COALESCE(NULLIF(EXCLUDED.jd_text, ''), jobs.jd_text),
		   apply_url = COALESCE(NULLIF(EXCLUDED.apply_url, ''), jobs.apply_url),
		   page_url  = COALESCE(NULLIF(EXCLUDED.page_url, ''), jobs.page_url),
		   updated_at = NOW()`,
		job.JobID, job.Title, job.Company, job.Location, job.JDText,
		job.ApplyURL, job.PageURL, job.Origin,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert job %s: %w", job.JobID, err)
	}
	return nil
}

// GetJob retrieves a job by id.
func (s *Store) GetJob(ctx context.Context, jobID string) (*Job, error) {
	var j Job
	err := s.pool.QueryRow(ctx,
		`SELECT job_id, title, company, location, jd_text, apply_url, page_url,
		        origin, first_seen_at, updated_at
		 FROM jobs WHERE job_id = $1`,
		jobID,
	).Scan(&j.JobID, &j.Title, &j.Company, &j.Location, &j.JDText, &j.ApplyURL,
		&j.PageURL, &j.Origin, &j.FirstSeenAt, &j.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &j, nil
}

// ListJobs returns recent jobs, newest first.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT job_id, title, company, location, jd_text, apply_url, page_url,
		        origin, first_seen_at, updated_at
		 FROM jobs ORDER BY updated_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.JobID, &j.Title, &j.Company, &j.Location, &j.JDText,
			&j.ApplyURL, &j.PageURL, &j.Origin, &j.FirstSeenAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
