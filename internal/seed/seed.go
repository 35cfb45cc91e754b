// Package seed loads the fixture users, jobs and applications a board starts from.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/jobboard/internal/jobboard"
	"github.com/jonathan/jobboard/internal/schemas"
	"github.com/jonathan/jobboard/internal/types"
)

//go:embed seed.json
var defaultFixture []byte

// Fixture is a decoded seed document.
type Fixture struct {
	Users    []*types.User
	Snapshot jobboard.Snapshot
}

type document struct {
	Users        []userRecord        `json:"users"`
	Jobs         []types.Job         `json:"jobs"`
	Applications []types.Application `json:"applications"`
}

type userRecord struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      types.Role `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`

	Resume      string   `json:"resume"`
	Skills      []string `json:"skills"`
	SavedJobs   []string `json:"savedJobs"`
	AppliedJobs []string `json:"appliedJobs"`

	Company  string   `json:"company"`
	Industry string   `json:"industry"`
	Jobs     []string `json:"jobs"`
}

// Default returns the built-in fixture.
func Default() (*Fixture, error) {
	return Parse(defaultFixture)
}

// LoadFile reads and parses a fixture from disk.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates data against the seed schema, decodes it and checks that
// every cross reference points at an existing record.
func Parse(data []byte) (*Fixture, error) {
	if err := schemas.ValidateSeed(data); err != nil {
		return nil, fmt.Errorf("seed fixture rejected: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode seed fixture: %w", err)
	}

	fx := &Fixture{
		Snapshot: jobboard.Snapshot{
			Jobs:         doc.Jobs,
			Applications: doc.Applications,
			SavedJobs:    make(map[string][]string),
		},
	}

	seen := make(map[types.UserKey]bool, len(doc.Users))
	emails := make(map[string]bool, len(doc.Users))
	for _, rec := range doc.Users {
		key := types.UserKey{Role: rec.Role, ID: rec.ID}
		if seen[key] {
			return nil, fmt.Errorf("duplicate user %s", key)
		}
		if emails[rec.Email] {
			return nil, fmt.Errorf("duplicate user email %s", rec.Email)
		}
		seen[key] = true
		emails[rec.Email] = true

		user, err := rec.toUser()
		if err != nil {
			return nil, err
		}
		if user.Seeker != nil && len(user.Seeker.SavedJobs) > 0 {
			fx.Snapshot.SavedJobs[user.ID] = user.Seeker.SavedJobs
		}
		fx.Users = append(fx.Users, user)
	}

	if err := checkReferences(doc, seen); err != nil {
		return nil, err
	}
	return fx, nil
}

func (rec userRecord) toUser() (*types.User, error) {
	switch rec.Role {
	case types.RoleJobSeeker:
		return types.NewJobSeeker(rec.ID, rec.Name, rec.Email, rec.CreatedAt, types.JobSeekerProfile{
			Resume:      rec.Resume,
			Skills:      orEmpty(rec.Skills),
			SavedJobs:   orEmpty(rec.SavedJobs),
			AppliedJobs: orEmpty(rec.AppliedJobs),
		}), nil
	case types.RoleEmployer:
		return types.NewEmployer(rec.ID, rec.Name, rec.Email, rec.CreatedAt, types.EmployerProfile{
			Company:  rec.Company,
			Industry: rec.Industry,
			Jobs:     orEmpty(rec.Jobs),
		}), nil
	case types.RoleAdmin:
		return types.NewAdmin(rec.ID, rec.Name, rec.Email, rec.CreatedAt), nil
	}
	return nil, fmt.Errorf("user %s has unknown role %q", rec.ID, rec.Role)
}

func checkReferences(doc document, users map[types.UserKey]bool) error {
	jobs := make(map[string]bool, len(doc.Jobs))
	for _, job := range doc.Jobs {
		if jobs[job.ID] {
			return fmt.Errorf("duplicate job id %s", job.ID)
		}
		jobs[job.ID] = true
		if !users[types.UserKey{Role: types.RoleEmployer, ID: job.EmployerID}] {
			return fmt.Errorf("job %s references unknown employer %s", job.ID, job.EmployerID)
		}
	}

	apps := make(map[string]bool, len(doc.Applications))
	for _, app := range doc.Applications {
		if apps[app.ID] {
			return fmt.Errorf("duplicate application id %s", app.ID)
		}
		apps[app.ID] = true
		if !jobs[app.JobID] {
			return fmt.Errorf("application %s references unknown job %s", app.ID, app.JobID)
		}
		if !users[types.UserKey{Role: types.RoleJobSeeker, ID: app.SeekerID}] {
			return fmt.Errorf("application %s references unknown job seeker %s", app.ID, app.SeekerID)
		}
	}

	for _, rec := range doc.Users {
		for _, id := range rec.SavedJobs {
			if !jobs[id] {
				return fmt.Errorf("user %s saved unknown job %s", rec.ID, id)
			}
		}
	}
	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
