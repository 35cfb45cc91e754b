// Package types provides the domain and request types shared across the job board.
package types

import (
	"github.com/go-playground/validator/v10"
)

// RegisterRequest represents the request to create a new account with password authentication.
// Admin accounts cannot be self-registered.
type RegisterRequest struct {
	Name     string   `json:"name" validate:"required,min=1"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Role     Role     `json:"role" validate:"required,oneof=jobSeeker employer"`
	Company  string   `json:"company,omitempty" validate:"required_if=Role employer"`
	Industry string   `json:"industry,omitempty"`
	Skills   []string `json:"skills,omitempty"`
}

// LoginRequest represents the login request. Seed accounts have no password
// and sign in by email alone.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password,omitempty"`
}

// LoginResponse represents the login/register response with user data and authentication token.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// ApplyRequest is the body of an application submission.
type ApplyRequest struct {
	CoverLetter string `json:"coverLetter" validate:"max=10000"`
}

// TransitionRequest moves an application to a new status. When From is set
// the move only happens if the application is still in that status.
type TransitionRequest struct {
	From   ApplicationStatus `json:"from,omitempty" validate:"omitempty,oneof=pending reviewed rejected shortlisted hired"`
	Status ApplicationStatus `json:"status" validate:"required,oneof=pending reviewed rejected shortlisted hired"`
}

// Validate validates the RegisterRequest using the validator.
func (r *RegisterRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the TransitionRequest using the validator.
func (r *TransitionRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ApplyRequest using the validator.
func (r *ApplyRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
