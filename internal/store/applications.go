package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UpsertApplicationStatus creates or updates the one application row for
// a user+job pair and returns it.
func (s *Store) UpsertApplicationStatus(ctx context.Context, userID uuid.UUID, jobID, status, origin string) (*Application, error) {
	var a Application
	err := s.pool.QueryRow(ctx,
		`INSERT INTO applications (user_id, job_id, status, origin)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, job_id) DO UPDATE SET
		   status = $3, origin = $4, updated_at = NOW()
		 RETURNING id, user_id, job_id, status, origin, gen_id, created_at, updated_at`,
		userID, jobID, status, origin,
	).Scan(&a.ID, &a.UserID, &a.JobID, &a.Status, &a.Origin, &a.GenID,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert application status: %w", err)
	}
	return &a, nil
}

// SetApplicationGeneration records the resume generation attached to an
// application.
func (s *Store) SetApplicationGeneration(ctx context.Context, appID, genID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE applications SET gen_id = $1, updated_at = NOW() WHERE id = $2`,
		genID, appID,
	)
	if err != nil {
		return fmt.Errorf("failed to set application generation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: application %s", ErrNotFound, appID)
	}
	return nil
}

// GetApplication retrieves one application by id.
func (s *Store) GetApplication(ctx context.Context, appID uuid.UUID) (*Application, error) {
	var a Application
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, job_id, status, origin, gen_id, created_at, updated_at
		 FROM applications WHERE id = $1`,
		appID,
	).Scan(&a.ID, &a.UserID, &a.JobID, &a.Status, &a.Origin, &a.GenID,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: application %s", ErrNotFound, appID)
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &a, nil
}

// ListApplications returns a user's applications, newest first.
func (s *Store) ListApplications(ctx context.Context, userID uuid.UUID) ([]Application, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, job_id, status, origin, gen_id, created_at, updated_at
		 FROM applications WHERE user_id = $1 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.ID, &a.UserID, &a.JobID, &a.Status, &a.Origin,
			&a.GenID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}
