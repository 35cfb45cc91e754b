package session

import (
	"context"
	"sync"

	"github.com/jonathan/jobboard/internal/types"
)

// Authenticator resolves credentials to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*types.User, error)
}

// Session holds the identity of one client. The zero value is not usable;
// create one with New.
type Session struct {
	auth Authenticator

	mu      sync.RWMutex
	user    *types.User
	loading bool
}

// New creates an anonymous session.
func New(auth Authenticator) *Session {
	return &Session{auth: auth}
}

// Login resolves the identity for email and holds it. IsLoading reports true
// until Login returns. A failed login leaves the previous identity in place.
func (s *Session) Login(ctx context.Context, email, password string) (*types.User, error) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	u, err := s.auth.Authenticate(ctx, email, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		return nil, err
	}
	s.user = u.Clone()
	return u, nil
}

// Restore holds u as the current identity without authenticating, as when a
// bearer token has already been verified.
func (s *Session) Restore(u *types.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u.Clone()
}

// Logout clears the held identity.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

// User returns a copy of the held identity, or nil.
func (s *Session) User() *types.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// IsAuthenticated reports whether an identity is held.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// IsLoading reports whether a Login is in flight.
func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Role returns the held identity's role, or "" when anonymous.
func (s *Session) Role() types.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Role()
}
