package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jonathan/job-agent/internal/jobid"
	"github.com/jonathan/job-agent/internal/store"
)

// decodeJSON decodes a JSON request body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// parseQueryInt parses an integer query parameter with a default and an
// optional maximum (0 means no cap).
func parseQueryInt(r *http.Request, name string, def, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

// SaveJobRequest represents a posting to persist. The job id is always
// derived server-side from the page URL.
type SaveJobRequest struct {
	PageURL  string `json:"page_url" validate:"required,url"`
	Title    string `json:"title,omitempty"`
	Company  string `json:"company,omitempty"`
	Location string `json:"location,omitempty"`
	JDText   string `json:"jd_text,omitempty"`
	ApplyURL string `json:"apply_url,omitempty"`
	Origin   string `json:"origin,omitempty"`
}

// handleSaveJob persists a detected posting under its deterministic id.
func (s *Server) handleSaveJob(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "No database configured")
		return
	}

	var req SaveJobRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validateRequest(&req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	id, err := jobid.FromURL(req.PageURL)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Unusable page_url: "+err.Error())
		return
	}

	origin := req.Origin
	if origin == "" {
		origin = store.OriginExtension
	}

	job := &store.Job{
		JobID:    id,
		Title:    req.Title,
		Company:  req.Company,
		Location: req.Location,
		JDText:   req.JDText,
		ApplyURL: req.ApplyURL,
		PageURL:  req.PageURL,
		Origin:   origin,
	}
	if err := s.store.UpsertJob(r.Context(), job); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	saved, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, saved)
}

// ListJobsResponse represents the response for listing saved jobs.
type ListJobsResponse struct {
	Jobs  []store.Job `json:"jobs"`
	Count int         `json:"count"`
}

// handleListJobs lists saved jobs, newest first.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "No database configured")
		return
	}

	limit := parseQueryInt(r, "limit", 50, 200)
	jobs, err := s.store.ListJobs(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, ListJobsResponse{Jobs: jobs, Count: len(jobs)})
}

// handleGetJob retrieves one saved job by its id.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "No database configured")
		return
	}

	job, err := s.store.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, job)
}
