package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jonathan/job-agent/internal/resume"
	"github.com/jonathan/job-agent/internal/store"
)

// StatusRequest records a user's progress on a job.
type StatusRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	JobID  string    `json:"job_id" validate:"required"`
	Status string    `json:"status" validate:"required"`
	Origin string    `json:"origin,omitempty"`
}

// handleApplicationStatus upserts one application row.
func (s *Server) handleApplicationStatus(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "No database configured")
		return
	}

	var req StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validateRequest(&req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if !store.ValidStatus(req.Status) {
		s.errorResponse(w, http.StatusBadRequest, "Unknown status: "+req.Status)
		return
	}

	origin := req.Origin
	if origin == "" {
		origin = store.OriginTracker
	}

	app, err := s.store.UpsertApplicationStatus(r.Context(), req.UserID, req.JobID, req.Status, origin)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, app)
}

// handleListApplications lists a user's applications.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "No database configured")
		return
	}

	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user_id")
		return
	}

	apps, err := s.store.ListApplications(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applications": apps,
		"count":        len(apps),
	})
}

// GenerateRequest selects the application to generate a document for.
type GenerateRequest struct {
	ApplicationID uuid.UUID `json:"application_id" validate:"required"`
}

// GenerateResponse reports the generation outcome.
type GenerateResponse struct {
	GenID   uuid.UUID `json:"gen_id"`
	Score   int       `json:"score"`
	Reasons []string  `json:"reasons,omitempty"`
}

// handleGenerate scores the fit, generates a tailored document, compiles it
// to PDF and records the generation on the application.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "No database configured")
		return
	}
	if s.resume == nil || s.compiler == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Generation is not configured")
		return
	}

	var req GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validateRequest(&req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	ctx := r.Context()
	app, err := s.store.GetApplication(ctx, req.ApplicationID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	job, err := s.store.GetJob(ctx, app.JobID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	view, err := s.store.ProfileView(ctx, app.UserID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	match, err := s.resume.Score(ctx, job.JDText, view)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Scoring failed: "+err.Error())
		return
	}

	gen, err := s.resume.Generate(ctx, &resume.GenerateRequest{
		JobID:        job.JobID,
		Title:        job.Title,
		Company:      job.Company,
		JDText:       job.JDText,
		Profile:      view,
		MatchScore:   &match.Score,
		MatchReasons: match.Reasons,
	})
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Generation failed: "+err.Error())
		return
	}

	pdf, err := s.compiler.Compile(ctx, gen.LaTeX)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Compilation failed: "+err.Error())
		return
	}

	pdfPath := filepath.Join(s.documentsDir, gen.GenID.String()+".pdf")
	if err := os.WriteFile(pdfPath, pdf, 0644); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to store document: "+err.Error())
		return
	}

	if err := s.store.SetApplicationGeneration(ctx, app.ID, gen.GenID); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	message := fmt.Sprintf("Document ready for %s at %s (fit %d/100)", job.Title, job.Company, match.Score)
	if _, err := s.store.CreateNotification(ctx, app.UserID, "document_ready", message); err != nil && s.verbose {
		// The document exists either way; a lost notification is not fatal.
		log.Printf("notification failed: %v", err)
	}

	s.jsonResponse(w, http.StatusOK, GenerateResponse{
		GenID:   gen.GenID,
		Score:   match.Score,
		Reasons: match.Reasons,
	})
}

// handleGetDocument streams the compiled PDF for an application.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "No database configured")
		return
	}

	appID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	app, err := s.store.GetApplication(r.Context(), appID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if app.GenID == nil {
		s.errorResponse(w, http.StatusNotFound, "No document generated for this application")
		return
	}

	pdfPath := filepath.Join(s.documentsDir, app.GenID.String()+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		s.errorResponse(w, http.StatusNotFound, "Document file is missing")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", app.GenID.String()+".pdf"))
	http.ServeFile(w, r, pdfPath)
}
