package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-agent/internal/messaging"
	"github.com/jonathan/job-agent/internal/registry"
)

// ListTabsResponse represents the response for listing tracked tabs.
type ListTabsResponse struct {
	Tabs  map[string]registry.TabState `json:"tabs"`
	Count int                          `json:"count"`
}

// handleListTabs returns the registry snapshot.
func (s *Server) handleListTabs(w http.ResponseWriter, _ *http.Request) {
	tabs := s.registry.Snapshot()
	s.jsonResponse(w, http.StatusOK, ListTabsResponse{Tabs: tabs, Count: len(tabs)})
}

// handleTabEvents streams tab signal events over SSE until the client
// disconnects.
func (s *Server) handleTabEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	events, cancel := s.registry.Subscribe()
	defer cancel()

	// Replay the current snapshot so late subscribers start consistent.
	for id, state := range s.registry.Snapshot() {
		_ = sse.WriteEvent("tab", registry.Event{
			TargetID:   id,
			IsJob:      state.IsJob,
			ObservedAt: state.ObservedAt,
		})
	}

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if err := sse.WriteHeartbeat(); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := sse.WriteEvent("tab", event); err != nil {
				return
			}
		}
	}
}

// handleGetPage returns the page agent's current state for one tab.
func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")

	resp, err := s.messenger.Send(r.Context(), targetID, messaging.Request{
		Command: messaging.CmdGetPageInfo,
	})
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleDetect forces a fresh detection pass on one tab.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")

	resp, err := s.messenger.Send(r.Context(), targetID, messaging.Request{
		Command: messaging.CmdForceDetect,
	})
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// AutofillRequest selects whose profile to fill with.
type AutofillRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// handleAutofill loads the user's profile and fills the tab's form.
func (s *Server) handleAutofill(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")

	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "No database configured")
		return
	}

	var req AutofillRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validateRequest(&req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	view, err := s.store.ProfileView(r.Context(), req.UserID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	resp, err := s.messenger.Send(r.Context(), targetID, messaging.Request{
		Command: messaging.CmdAutofill,
		Profile: view,
	})
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, resp)
}
