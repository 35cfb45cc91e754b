// Package server provides the HTTP REST API for the job board.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/jobboard/internal/jobboard"
	"github.com/jonathan/jobboard/internal/sanitize"
	"github.com/jonathan/jobboard/internal/server/middleware"
	"github.com/jonathan/jobboard/internal/server/ratelimit"
	"github.com/jonathan/jobboard/internal/session"
	"github.com/jonathan/jobboard/internal/types"
	"github.com/rs/cors"
)

// AuditReader lists recorded board events, newest first.
type AuditReader interface {
	ListEvents(ctx context.Context, limit int) ([]jobboard.Event, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	board       *jobboard.Board
	users       *session.Directory
	jwtService  *JWTService
	audit       AuditReader
	rateLimiter *ratelimit.Limiter
	sanitizer   *sanitize.Sanitizer
	validate    *validator.Validate
}

// Config holds server configuration
type Config struct {
	Port        int
	CORSOrigins []string
	// RateLimit overrides the limiter configuration read from the environment.
	RateLimit *ratelimit.Config
}

// Deps are the components the handlers serve. Audit may be nil.
type Deps struct {
	Board *jobboard.Board
	Users *session.Directory
	JWT   *JWTService
	Audit AuditReader
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Board == nil || deps.Users == nil || deps.JWT == nil {
		return nil, fmt.Errorf("server requires a board, a user directory and a JWT service")
	}

	s := &Server{
		board:      deps.Board,
		users:      deps.Users,
		jwtService: deps.JWT,
		audit:      deps.Audit,
		sanitizer:  sanitize.New(),
		validate:   validator.New(),
	}

	rlConfig := cfg.RateLimit
	if rlConfig == nil {
		rlConfig = ratelimit.LoadConfig()
	}
	s.rateLimiter = ratelimit.NewLimiter(rlConfig)

	auth := middleware.AuthMiddleware(deps.JWT.AsTokenValidator(), deps.Users)
	authed := func(h http.HandlerFunc, roles ...types.Role) http.Handler {
		var next http.Handler = h
		if len(roles) > 0 {
			next = middleware.RequireRole(roles...)(next)
		}
		return auth(next)
	}

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Authentication
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.Handle("POST /auth/logout", authed(s.handleLogout))
	mux.Handle("GET /auth/me", authed(s.handleMe))

	// Public job browsing
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)

	// Postings; ownership on update is checked by the board
	mux.Handle("POST /jobs", authed(s.handleCreateJob, types.RoleEmployer))
	mux.Handle("PUT /jobs/{id}", authed(s.handleUpdateJob))

	// Job seeker actions
	mux.Handle("POST /jobs/{id}/save", authed(s.handleSaveJob, types.RoleJobSeeker))
	mux.Handle("DELETE /jobs/{id}/save", authed(s.handleUnsaveJob, types.RoleJobSeeker))
	mux.Handle("POST /jobs/{id}/apply", authed(s.handleApply, types.RoleJobSeeker))

	// The caller's own records
	mux.Handle("GET /me/jobs", authed(s.handleMyJobs))
	mux.Handle("GET /me/applications", authed(s.handleMyApplications))
	mux.Handle("GET /me/saved-jobs", authed(s.handleMySavedJobs))

	// Employer review
	mux.Handle("GET /employer/applications", authed(s.handleReceivedApplications, types.RoleEmployer, types.RoleAdmin))
	mux.Handle("PUT /applications/{id}/status", authed(s.handleTransition))

	// Admin
	mux.Handle("GET /admin/stats", authed(s.handleStats, types.RoleAdmin))
	mux.Handle("GET /admin/audit", authed(s.handleAudit, types.RoleAdmin))

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(cfg.CORSOrigins, mux))),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens for requests until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("[server] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	// Stop rate limiter cleanup goroutine
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Println("[server] stopped")
	return nil
}

// withCORS answers preflight requests and adds CORS headers for the allowed origins.
func (s *Server) withCORS(origins []string, next http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	})
	return c.Handler(next)
}

// withRateLimit adds rate limiting middleware
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

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging tags each request with an id and logs its outcome
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[server] %s %s %s -> %d in %v (request_id=%s)",
			r.Method, r.URL.Path, r.RemoteAddr, rec.status, time.Since(start), requestID)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
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

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		// Round up so clients never retry early.
		retry := int((info.RetryAfter + time.Second - 1) / time.Second)
		response["retry_after"] = retry
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
	}

	log.Printf("[rate-limit] limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
