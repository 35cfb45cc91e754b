package session

import "fmt"

// ErrInvalidCredentials is returned when the email is unknown or the password
// does not match. It deliberately does not say which.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrEmailAlreadyExists is returned when registering an email that is taken.
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already exists: %s", e.Email)
}

// ErrTokenRevoked is returned when a token id has been logged out.
type ErrTokenRevoked struct {
	TokenID string
}

func (e *ErrTokenRevoked) Error() string {
	return fmt.Sprintf("token revoked: %s", e.TokenID)
}
