package store

import (
	"time"

	"github.com/google/uuid"
)

// Application status values. Free-form strings are rejected at the API
// boundary; the store trusts its callers.
const (
	StatusSaved        = "saved"
	StatusApplied      = "applied"
	StatusInterviewing = "interviewing"
	StatusOffer        = "offer"
	StatusRejected     = "rejected"
)

// ValidStatus reports whether s is one of the known application statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusSaved, StatusApplied, StatusInterviewing, StatusOffer, StatusRejected:
		return true
	}
	return false
}

// Origin values record which surface produced a row.
const (
	OriginExtension = "extension"
	OriginTracker   = "tracker"
	OriginImport    = "import"
)

// User is an account row.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CandidateProfile is the stored profile document backing the flat view.
type CandidateProfile struct {
	UserID    uuid.UUID `json:"user_id"`
	FullName  string    `json:"full_name"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Location  string    `json:"location"`
	LinkedIn  string    `json:"linkedin"`
	GitHub    string    `json:"github"`
	Portfolio string    `json:"portfolio"`
	College   string    `json:"college"`
	Degree    string    `json:"degree"`
	Branch    string    `json:"branch"`
	EndYear   string    `json:"end_year"`
	Skills    []string  `json:"skills"`
	Summary   string    `json:"summary"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Job is one deduplicated posting, keyed by the deterministic job id so
// repeated detections and other ingestion paths merge into one row.
type Job struct {
	JobID       string    `json:"job_id"`
	Title       string    `json:"title,omitempty"`
	Company     string    `json:"company,omitempty"`
	Location    string    `json:"location,omitempty"`
	JDText      string    `json:"jd_text,omitempty"`
	ApplyURL    string    `json:"apply_url,omitempty"`
	PageURL     string    `json:"page_url,omitempty"`
	Origin      string    `json:"origin"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Application tracks one user's progress on one job.
type Application struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	JobID     string     `json:"job_id"`
	Status    string     `json:"status"`
	Origin    string     `json:"origin"`
	GenID     *uuid.UUID `json:"gen_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Notification is one user-facing event.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
