package server

import (
	"net/http"

	"github.com/jonathan/jobboard/internal/types"
)

// handleApply submits an application from the calling job seeker. The body
// is optional and may carry a cover letter.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	var req types.ApplyRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.handleError(w, err)
		return
	}
	req.CoverLetter = s.sanitizer.Text(req.CoverLetter)
	if err := req.Validate(); err != nil {
		s.handleError(w, err)
		return
	}

	app, err := s.board.ApplyToJob(user, r.PathValue("id"), req.CoverLetter)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, app)
}

func (s *Server) handleMyApplications(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, s.board.UserApplications(user))
}

// handleReceivedApplications lists applications to the employer's postings,
// or all of them for an admin.
func (s *Server) handleReceivedApplications(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}
	apps, err := s.board.ReceivedApplications(user)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, apps)
}

// handleTransition moves an application to a new status. A "from" field
// makes the move conditional on the current status.
func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	var req types.TransitionRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.handleError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.handleError(w, err)
		return
	}

	id := r.PathValue("id")
	var (
		app types.Application
		err error
	)
	if req.From != "" {
		app, err = s.board.TransitionApplication(user, id, req.From, req.Status)
	} else {
		app, err = s.board.UpdateApplicationStatus(user, id, req.Status)
	}
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}
