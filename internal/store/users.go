package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/job-agent/internal/profile"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = fmt.Errorf("not found")

// GetUser retrieves a user by id.
func (s *Store) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, created_at, updated_at FROM users WHERE id = $1`,
		userID,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetCandidateProfile retrieves a user's stored profile document.
func (s *Store) GetCandidateProfile(ctx context.Context, userID uuid.UUID) (*CandidateProfile, error) {
	var p CandidateProfile
	var skillsJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT user_id, full_name, first_name, last_name, email, phone, location,
		        linkedin, github, portfolio, college, degree, branch, end_year,
		        skills, summary, updated_at
		 FROM candidate_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.FullName, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&p.Location, &p.LinkedIn, &p.GitHub, &p.Portfolio, &p.College, &p.Degree,
		&p.Branch, &p.EndYear, &skillsJSON, &p.Summary, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: profile for user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get candidate profile: %w", err)
	}

	if skillsJSON != nil {
		_ = json.Unmarshal(skillsJSON, &p.Skills)
	}

	return &p, nil
}

// UpsertCandidateProfile stores a user's profile document.
func (s *Store) UpsertCandidateProfile(ctx context.Context, p *CandidateProfile) error {
	skillsJSON, err := json.Marshal(p.Skills)
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO candidate_profiles
		 (user_id, full_name, first_name, last_name, email, phone, location,
		  linkedin, github, portfolio, college, degree, branch, end_year, skills, summary, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
		   full_name=$2, first_name=$3, last_name=$4, email=$5, phone=$6, location=$7,
		   linkedin=$8, github=$9, portfolio=$10, college=$11, degree=$12, branch=$13,
		   end_year=$14, skills=$15, summary=$16, updated_at=NOW()`,
		p.UserID, p.FullName, p.FirstName, p.LastName, p.Email, p.Phone, p.Location,
		p.LinkedIn, p.GitHub, p.Portfolio, p.College, p.Degree, p.Branch, p.EndYear,
		skillsJSON, p.Summary,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert candidate profile: %w", err)
	}
	return nil
}

// ProfileView projects a stored profile into the flat view that the page
// agent receives. This projection is the only path from the store to the
// agent.
func (s *Store) ProfileView(ctx context.Context, userID uuid.UUID) (*profile.View, error) {
	p, err := s.GetCandidateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ViewFromProfile(p), nil
}

// ViewFromProfile flattens a stored profile document.
func ViewFromProfile(p *CandidateProfile) *profile.View {
	view := &profile.View{
		FullName:  p.FullName,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		Location:  p.Location,
		LinkedIn:  p.LinkedIn,
		GitHub:    p.GitHub,
		Portfolio: p.Portfolio,
		College:   p.College,
		Degree:    p.Degree,
		Branch:    p.Branch,
		EndYear:   p.EndYear,
		Skills:    profile.JoinSkills(p.Skills),
		Summary:   p.Summary,
	}
	view.Normalize()
	return view
}
