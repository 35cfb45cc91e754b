package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonathan/jobboard/internal/config"
	"github.com/jonathan/jobboard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func seedUsers() []*types.User {
	created := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	return []*types.User{
		types.NewJobSeeker("1", "Alex Johnson", "alex@example.com", created, types.JobSeekerProfile{SavedJobs: []string{"1"}}),
		types.NewEmployer("1", "Tech Innovations Inc.", "hr@techinnovations.com", created, types.EmployerProfile{Company: "Tech Innovations Inc."}),
		types.NewAdmin("1", "Admin User", "admin@jobboard.com", created),
	}
}

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	d, err := NewDirectory(seedUsers(), &config.PasswordConfig{BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	return d
}

func TestNewDirectory_SameIDAcrossRoles(t *testing.T) {
	d := newTestDirectory(t)

	seeker, ok := d.Lookup(types.UserKey{Role: types.RoleJobSeeker, ID: "1"})
	require.True(t, ok)
	assert.Equal(t, "Alex Johnson", seeker.Name)

	employer, ok := d.Lookup(types.UserKey{Role: types.RoleEmployer, ID: "1"})
	require.True(t, ok)
	assert.Equal(t, "Tech Innovations Inc.", employer.Employer.Company)

	_, ok = d.Lookup(types.UserKey{Role: types.RoleEmployer, ID: "9"})
	assert.False(t, ok)
	assert.Len(t, d.List(), 3)
}

func TestNewDirectory_RejectsDuplicates(t *testing.T) {
	users := append(seedUsers(), types.NewAdmin("2", "Other", "ALEX@example.com", time.Time{}))
	_, err := NewDirectory(users, nil)
	require.Error(t, err)

	var exists *ErrEmailAlreadyExists
	assert.True(t, errors.As(err, &exists))
}

func TestByEmail_CaseInsensitive(t *testing.T) {
	d := newTestDirectory(t)

	u, ok := d.ByEmail("  Alex@Example.com ")
	require.True(t, ok)
	assert.Equal(t, types.RoleJobSeeker, u.Role())
}

func TestLookup_ReturnsCopy(t *testing.T) {
	d := newTestDirectory(t)
	key := types.UserKey{Role: types.RoleJobSeeker, ID: "1"}

	u, _ := d.Lookup(key)
	u.Seeker.SavedJobs[0] = "changed"
	u.Name = "changed"

	again, _ := d.Lookup(key)
	assert.Equal(t, "Alex Johnson", again.Name)
	assert.Equal(t, []string{"1"}, again.Seeker.SavedJobs)
}

func TestAuthenticate_SeedUserByEmail(t *testing.T) {
	d := newTestDirectory(t)

	u, err := d.Authenticate(context.Background(), "admin@jobboard.com", "")
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, u.Role())

	_, err = d.Authenticate(context.Background(), "nobody@example.com", "")
	var invalid *ErrInvalidCredentials
	assert.True(t, errors.As(err, &invalid))
}

func TestAuthenticate_CanceledContext(t *testing.T) {
	d := newTestDirectory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Authenticate(ctx, "admin@jobboard.com", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegister_SeekerThenLogin(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	u, err := d.Register(ctx, &types.RegisterRequest{
		Name:     "Sam Lee",
		Email:    "sam@example.com",
		Password: "long-enough-password",
		Role:     types.RoleJobSeeker,
		Skills:   []string{"Go"},
	})
	require.NoError(t, err)
	assert.Len(t, u.ID, 36, "registered ids are uuids")
	assert.Equal(t, []string{"Go"}, u.Seeker.Skills)
	assert.Equal(t, []string{}, u.Seeker.SavedJobs)

	got, err := d.Authenticate(ctx, "sam@example.com", "long-enough-password")
	require.NoError(t, err)
	assert.Equal(t, u.Key(), got.Key())

	_, err = d.Authenticate(ctx, "sam@example.com", "wrong-password")
	var invalid *ErrInvalidCredentials
	assert.True(t, errors.As(err, &invalid))
}

func TestRegister_Employer(t *testing.T) {
	d := newTestDirectory(t)

	u, err := d.Register(context.Background(), &types.RegisterRequest{
		Name: "Acme", Email: "jobs@acme.test", Password: "long-enough-password",
		Role: types.RoleEmployer, Company: "Acme", Industry: "Anvils",
	})
	require.NoError(t, err)
	assert.Equal(t, types.RoleEmployer, u.Role())
	assert.Equal(t, "Anvils", u.Employer.Industry)
}

func TestRegister_Errors(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	_, err := d.Register(ctx, &types.RegisterRequest{Name: "A", Email: "ALEX@example.com", Password: "password", Role: types.RoleJobSeeker})
	var exists *ErrEmailAlreadyExists
	assert.True(t, errors.As(err, &exists))

	_, err = d.Register(ctx, &types.RegisterRequest{Name: "A", Email: "root@example.com", Password: "password", Role: types.RoleAdmin})
	assert.Error(t, err)

	noPasswords, err := NewDirectory(nil, nil)
	require.NoError(t, err)
	_, err = noPasswords.Register(ctx, &types.RegisterRequest{Name: "A", Email: "a@example.com", Password: "password", Role: types.RoleJobSeeker})
	assert.Error(t, err)
}
