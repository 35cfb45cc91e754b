package jobboard

import (
	"errors"
	"fmt"

	"github.com/jonathan/jobboard/internal/types"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalid           = errors.New("invalid input")
)

// UnauthorizedError is returned when the caller's role or ownership does not
// permit the operation.
type UnauthorizedError struct {
	Op     string
	Role   types.Role
	Reason string
}

func (e *UnauthorizedError) Error() string {
	role := string(e.Role)
	if role == "" {
		role = "anonymous"
	}
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s not permitted: %s", e.Op, role, e.Reason)
	}
	return fmt.Sprintf("%s: %s not permitted", e.Op, role)
}

func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// NotFoundError is returned when a referenced job or application does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidTransitionError is returned when an application status move is not
// allowed by the state machine or the expected current status is stale.
type InvalidTransitionError struct {
	ApplicationID string
	From          types.ApplicationStatus
	To            types.ApplicationStatus
	Current       types.ApplicationStatus
}

func (e *InvalidTransitionError) Error() string {
	if e.Current != "" && e.Current != e.From {
		return fmt.Sprintf("application %s is %s, not %s", e.ApplicationID, e.Current, e.From)
	}
	return fmt.Sprintf("application %s cannot move from %s to %s", e.ApplicationID, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// ValidationError is returned for field values the board refuses to store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }
