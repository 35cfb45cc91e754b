package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/jonathan/jobboard/internal/server/middleware"
	"github.com/jonathan/jobboard/internal/session"
	"github.com/jonathan/jobboard/internal/types"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into dst. An empty body is accepted when
// allowEmpty is set and leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// handleLogin resolves credentials through a fresh session and issues a token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.handleError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.handleError(w, err)
		return
	}

	sess := session.New(s.users)
	user, err := sess.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.issueToken(w, http.StatusOK, user)
}

// handleRegister creates a job seeker or employer account and signs it in.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.handleError(w, err)
		return
	}
	req.Name = s.sanitizer.Text(req.Name)
	req.Company = s.sanitizer.Text(req.Company)
	req.Industry = s.sanitizer.Text(req.Industry)
	req.Skills = s.sanitizer.Strings(req.Skills)
	if err := req.Validate(); err != nil {
		s.handleError(w, err)
		return
	}

	user, err := s.users.Register(r.Context(), &req)
	if err != nil {
		s.handleError(w, err)
		return
	}
	log.Printf("[server] registered %s", user.Key())
	s.issueToken(w, http.StatusCreated, user)
}

func (s *Server) issueToken(w http.ResponseWriter, status int, user *types.User) {
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, status, types.LoginResponse{
		User:  s.board.Profile(user),
		Token: token,
	})
}

// handleLogout revokes the presented token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r)
	if !ok {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := s.jwtService.Revoke(r.Context(), principal); err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// handleMe returns the caller with saved, applied or owned job ids filled in.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, s.board.Profile(user))
}

// caller returns the authenticated user or writes 401.
func (s *Server) caller(w http.ResponseWriter, r *http.Request) (*types.User, bool) {
	user, err := middleware.GetUser(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return user, true
}
