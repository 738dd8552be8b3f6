// Package server provides the control surface REST API: tab inspection,
// detection and autofill commands, and the application tracker endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/job-agent/internal/compilesvc"
	"github.com/jonathan/job-agent/internal/config"
	"github.com/jonathan/job-agent/internal/messaging"
	"github.com/jonathan/job-agent/internal/registry"
	"github.com/jonathan/job-agent/internal/resume"
	"github.com/jonathan/job-agent/internal/server/ratelimit"
	"github.com/jonathan/job-agent/internal/store"
)

// Server is the HTTP control surface.
type Server struct {
	httpServer *http.Server

	store        *store.Store
	messenger    *messaging.Client
	registry     *registry.Registry
	resume       *resume.Client
	compiler     *compilesvc.Client
	jwtService   *JWTService
	rateLimiter  *ratelimit.Limiter
	documentsDir string
	verbose      bool
}

// Config holds server configuration.
type Config struct {
	Port         int
	DocumentsDir string
	Verbose      bool
}

// Deps are the collaborators the server fronts. Store, Resume and Compiler
// may be nil; the endpoints that need them respond 503.
type Deps struct {
	Store     *store.Store
	Messenger *messaging.Client
	Registry  *registry.Registry
	Resume    *resume.Client
	Compiler  *compilesvc.Client
}

// New creates a new server instance.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Messenger == nil || deps.Registry == nil {
		return nil, fmt.Errorf("messenger and registry are required")
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	devToken, err := config.NewDevTokenConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create dev token config: %w", err)
	}

	documentsDir := cfg.DocumentsDir
	if documentsDir == "" {
		documentsDir = "documents"
	}
	if err := os.MkdirAll(documentsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create documents dir: %w", err)
	}

	s := &Server{
		store:        deps.Store,
		messenger:    deps.Messenger,
		registry:     deps.Registry,
		resume:       deps.Resume,
		compiler:     deps.Compiler,
		jwtService:   NewJWTService(jwtConfig, devToken),
		rateLimiter:  ratelimit.NewLimiter(ratelimit.LoadConfig()),
		documentsDir: documentsDir,
		verbose:      cfg.Verbose,
	}

	mux := http.NewServeMux()

	// Tab endpoints
	mux.HandleFunc("GET /tabs", s.handleListTabs)
	mux.HandleFunc("GET /tabs/events", s.handleTabEvents)
	mux.HandleFunc("GET /tabs/{id}/page", s.handleGetPage)
	mux.HandleFunc("POST /tabs/{id}/detect", s.handleDetect)
	mux.HandleFunc("POST /tabs/{id}/autofill", s.handleAutofill)

	// Job endpoints
	mux.HandleFunc("POST /jobs", s.handleSaveJob)
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)

	// Application endpoints
	mux.HandleFunc("POST /applications/status", s.handleApplicationStatus)
	mux.HandleFunc("GET /applications", s.handleListApplications)
	mux.HandleFunc("POST /applications/generate", s.handleGenerate)
	mux.HandleFunc("GET /applications/{id}/document", s.handleGetDocument)

	authed := s.withAuth(mux)

	root := http.NewServeMux()
	root.HandleFunc("GET /health", s.handleHealth)
	root.Handle("/", authed)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(root))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // generation holds the connection
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	log.Println("Server stopped")
	return nil
}

// Handler exposes the full middleware chain for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withAuth requires a bearer token on every request it fronts.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.jwtService.Authenticate(r); err != nil {
			s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// Uses the IP from RemoteAddr; X-Forwarded-For is deliberately ignored
// since the server fronts a local browser session, not a proxy fleet.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
