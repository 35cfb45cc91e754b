package server

import (
	"net/http"

	"github.com/jonathan/jobboard/internal/jobboard"
	"github.com/jonathan/jobboard/internal/types"
)

// handleListJobs returns the jobs matching q, location, type and
// experience_level. Filters are scoped to the request.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	param := func(name string) *string {
		if !query.Has(name) {
			return nil
		}
		v := s.sanitizer.Text(query.Get(name))
		return &v
	}

	filters := jobboard.Filters{}.Merge(jobboard.FilterUpdate{
		SearchTerm:      param("q"),
		Location:        param("location"),
		Type:            param("type"),
		ExperienceLevel: param("experience_level"),
	})
	if filters.Type != "" && !filters.Type.Valid() {
		s.handleError(w, &ErrValidation{Field: "type", Message: "unknown job type " + string(filters.Type)})
		return
	}
	if filters.ExperienceLevel != "" && !filters.ExperienceLevel.Valid() {
		s.handleError(w, &ErrValidation{Field: "experience_level", Message: "unknown experience level " + string(filters.ExperienceLevel)})
		return
	}

	jobs := s.board.Search(filters)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":    jobs,
		"total":   len(jobs),
		"filters": filters,
	})
}

// handleGetJob returns a single posting.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, ok := s.board.GetJob(id)
	if !ok {
		s.handleError(w, &jobboard.NotFoundError{Kind: "job", ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleCreateJob publishes a posting for the calling employer.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	var draft types.JobDraft
	if err := decodeJSON(w, r, &draft, false); err != nil {
		s.handleError(w, err)
		return
	}
	draft = s.sanitizer.Draft(draft)
	if err := s.validate.Struct(draft); err != nil {
		s.handleError(w, err)
		return
	}

	job, err := s.board.PostJob(user, draft)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

// handleUpdateJob merges the supplied fields into a posting.
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	var patch types.JobPatch
	if err := decodeJSON(w, r, &patch, false); err != nil {
		s.handleError(w, err)
		return
	}
	patch = s.sanitizer.Patch(patch)
	if err := s.validate.Struct(patch); err != nil {
		s.handleError(w, err)
		return
	}

	job, err := s.board.UpdateJob(user, r.PathValue("id"), patch)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleSaveJob bookmarks a posting and returns the caller's saved jobs.
func (s *Server) handleSaveJob(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}
	if err := s.board.SaveJob(user, r.PathValue("id")); err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.board.SavedJobs(user))
}

// handleUnsaveJob removes a bookmark and returns the caller's saved jobs.
func (s *Server) handleUnsaveJob(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}
	if err := s.board.UnsaveJob(user, r.PathValue("id")); err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.board.SavedJobs(user))
}

func (s *Server) handleMyJobs(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, s.board.UserJobs(user))
}

func (s *Server) handleMySavedJobs(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, s.board.SavedJobs(user))
}
