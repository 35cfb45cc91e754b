// Package session resolves identities for the job board: the user directory
// that login checks against, the per-client Session holding the current
// identity, and the revocation list consulted for logged-out tokens.
package session

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/jobboard/internal/config"
	"github.com/jonathan/jobboard/internal/types"
)

type account struct {
	user         *types.User
	passwordHash string
}

// Directory is the set of known users, indexed by (role, id) and by email.
type Directory struct {
	mu        sync.RWMutex
	accounts  map[types.UserKey]*account
	byEmail   map[string]types.UserKey
	order     []types.UserKey
	passwords *config.PasswordConfig
	now       func() time.Time
}

// NewDirectory indexes users. Seed users carry no password and sign in by
// email alone. passwords may be nil, in which case Register is refused.
func NewDirectory(users []*types.User, passwords *config.PasswordConfig) (*Directory, error) {
	d := &Directory{
		accounts:  make(map[types.UserKey]*account, len(users)),
		byEmail:   make(map[string]types.UserKey, len(users)),
		passwords: passwords,
		now:       time.Now,
	}
	for _, u := range users {
		if err := d.add(u.Clone(), ""); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// add must be called with d.mu held for writing, or before d is shared.
func (d *Directory) add(u *types.User, hash string) error {
	if u == nil || !u.Role().Valid() {
		return fmt.Errorf("user has no valid role")
	}
	key := u.Key()
	email := normalizeEmail(u.Email)
	if _, ok := d.accounts[key]; ok {
		return fmt.Errorf("duplicate user %s", key)
	}
	if _, ok := d.byEmail[email]; ok {
		return &ErrEmailAlreadyExists{Email: u.Email}
	}
	d.accounts[key] = &account{user: u, passwordHash: hash}
	d.byEmail[email] = key
	d.order = append(d.order, key)
	return nil
}

// Lookup returns the user with the given key.
func (d *Directory) Lookup(key types.UserKey) (*types.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	acct, ok := d.accounts[key]
	if !ok {
		return nil, false
	}
	return acct.user.Clone(), true
}

// ByEmail returns the user registered under email, ignoring case.
func (d *Directory) ByEmail(email string) (*types.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	key, ok := d.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, false
	}
	return d.accounts[key].user.Clone(), true
}

// List returns every user in registration order.
func (d *Directory) List() []*types.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*types.User, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, d.accounts[key].user.Clone())
	}
	return out
}

// Authenticate resolves the user for an email and password. Accounts without
// a password hash accept any password.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (*types.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	key, ok := d.byEmail[normalizeEmail(email)]
	var acct *account
	if ok {
		acct = d.accounts[key]
	}
	d.mu.RUnlock()

	if acct == nil {
		return nil, &ErrInvalidCredentials{}
	}
	if acct.passwordHash != "" {
		if d.passwords == nil || !d.passwords.VerifyPassword(password, acct.passwordHash) {
			return nil, &ErrInvalidCredentials{}
		}
	}
	return acct.user.Clone(), nil
}

// Register creates a job seeker or employer account with a hashed password.
func (d *Directory) Register(ctx context.Context, req *types.RegisterRequest) (*types.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.passwords == nil {
		return nil, fmt.Errorf("registration is disabled: no password configuration")
	}
	if _, exists := d.ByEmail(req.Email); exists {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	hash, err := d.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := uuid.NewString()
	now := d.now()
	var u *types.User
	switch req.Role {
	case types.RoleJobSeeker:
		u = types.NewJobSeeker(id, req.Name, req.Email, now, types.JobSeekerProfile{
			Skills:      slices.Clone(req.Skills),
			SavedJobs:   []string{},
			AppliedJobs: []string{},
		})
	case types.RoleEmployer:
		u = types.NewEmployer(id, req.Name, req.Email, now, types.EmployerProfile{
			Company:  req.Company,
			Industry: req.Industry,
			Jobs:     []string{},
		})
	default:
		return nil, fmt.Errorf("cannot register role %q", req.Role)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.add(u, hash); err != nil {
		return nil, err
	}
	return u.Clone(), nil
}
