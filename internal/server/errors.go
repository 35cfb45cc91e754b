package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/jobboard/internal/jobboard"
	"github.com/jonathan/jobboard/internal/session"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists  *session.ErrEmailAlreadyExists
		invalidCreds *session.ErrInvalidCredentials
		revoked      *session.ErrTokenRevoked
		requestErr   *ErrValidation
		fieldErrs    validator.ValidationErrors
	)

	switch {
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &invalidCreds), errors.As(err, &revoked):
		return http.StatusUnauthorized
	case errors.Is(err, jobboard.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, jobboard.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, jobboard.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, jobboard.ErrInvalid), errors.As(err, &requestErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		// Return first validation error for simplicity
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}

// handleError writes err with the status HTTPStatus picks. Internal errors are
// logged and reported without detail.
func (s *Server) handleError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)

	var fieldErrs validator.ValidationErrors
	switch {
	case status == http.StatusInternalServerError:
		log.Printf("[server] internal error: %v", err)
		s.errorResponse(w, status, "internal server error")
	case errors.As(err, &fieldErrs):
		s.errorResponse(w, status, extractValidationErrors(err))
	default:
		s.errorResponse(w, status, err.Error())
	}
}
