package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/jonathan/jobboard/internal/jobboard"
	"github.com/jonathan/jobboard/internal/session"
	"github.com/jonathan/jobboard/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "email", Message: "invalid format"}
	assert.Equal(t, "validation error: email - invalid format", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "ErrEmailAlreadyExists",
			err:      &session.ErrEmailAlreadyExists{Email: "test@example.com"},
			expected: http.StatusConflict,
		},
		{
			name:     "ErrInvalidCredentials",
			err:      &session.ErrInvalidCredentials{},
			expected: http.StatusUnauthorized,
		},
		{
			name:     "ErrTokenRevoked",
			err:      &session.ErrTokenRevoked{TokenID: "abc"},
			expected: http.StatusUnauthorized,
		},
		{
			name:     "NotFoundError",
			err:      &jobboard.NotFoundError{Kind: "job", ID: "42"},
			expected: http.StatusNotFound,
		},
		{
			name:     "UnauthorizedError",
			err:      &jobboard.UnauthorizedError{Op: "postJob", Role: types.RoleJobSeeker},
			expected: http.StatusForbidden,
		},
		{
			name:     "InvalidTransitionError",
			err:      &jobboard.InvalidTransitionError{ApplicationID: "1", From: types.ApplicationHired, To: types.ApplicationPending},
			expected: http.StatusConflict,
		},
		{
			name:     "board ValidationError",
			err:      &jobboard.ValidationError{Field: "type", Message: "unknown"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "wrapped NotFoundError",
			err:      fmt.Errorf("lookup: %w", &jobboard.NotFoundError{Kind: "application", ID: "9"}),
			expected: http.StatusNotFound,
		},
		{
			name:     "validator errors",
			err:      (&types.LoginRequest{Email: "not-an-email"}).Validate(),
			expected: http.StatusBadRequest,
		},
		{
			name:     "Unknown error",
			err:      assert.AnError,
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestExtractValidationErrors(t *testing.T) {
	err := (&types.LoginRequest{Email: "not-an-email"}).Validate()
	assert.Equal(t, "validation error: Email - email", extractValidationErrors(err))
	assert.Equal(t, "validation error: invalid request", extractValidationErrors(assert.AnError))
}
