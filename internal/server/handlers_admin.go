package server

import (
	"net/http"
	"strconv"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

// handleStats returns job and application counts by status, plus the number
// of known users.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"board": s.board.Stats(),
		"users": len(s.users.List()),
	})
}

// handleAudit returns recent board events, newest first.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "audit log is not configured")
		return
	}

	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.handleError(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = min(n, maxAuditLimit)
	}

	events, err := s.audit.ListEvents(r.Context(), limit)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}
