package types

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Role identifies what a user is allowed to do on the board.
type Role string

const (
	RoleJobSeeker Role = "jobSeeker"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleJobSeeker, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts a raw string to a Role, returning an error for unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// DashboardPath returns the landing view for the role.
func (r Role) DashboardPath() string {
	switch r {
	case RoleJobSeeker:
		return "/seeker/dashboard"
	case RoleEmployer:
		return "/employer/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	}
	return "/"
}

// UserKey identifies a user. Ids are only unique within a role.
type UserKey struct {
	Role Role   `json:"role"`
	ID   string `json:"id"`
}

func (k UserKey) String() string {
	return string(k.Role) + ":" + k.ID
}

// JobSeekerProfile holds the fields only job seekers carry.
type JobSeekerProfile struct {
	Resume      string   `json:"resume,omitempty"`
	Skills      []string `json:"skills"`
	SavedJobs   []string `json:"savedJobs"`
	AppliedJobs []string `json:"appliedJobs"`
}

// EmployerProfile holds the fields only employers carry.
type EmployerProfile struct {
	Company  string   `json:"company"`
	Industry string   `json:"industry"`
	Jobs     []string `json:"jobs"`
}

// User is an authenticated identity. The role is fixed by the constructor
// and decides which profile pointer is populated.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time

	role     Role
	Seeker   *JobSeekerProfile
	Employer *EmployerProfile
}

// NewJobSeeker creates a job seeker identity.
func NewJobSeeker(id, name, email string, createdAt time.Time, profile JobSeekerProfile) *User {
	p := profile.clone()
	return &User{ID: id, Name: name, Email: email, CreatedAt: createdAt, role: RoleJobSeeker, Seeker: &p}
}

// NewEmployer creates an employer identity.
func NewEmployer(id, name, email string, createdAt time.Time, profile EmployerProfile) *User {
	p := profile.clone()
	return &User{ID: id, Name: name, Email: email, CreatedAt: createdAt, role: RoleEmployer, Employer: &p}
}

// NewAdmin creates an administrator identity.
func NewAdmin(id, name, email string, createdAt time.Time) *User {
	return &User{ID: id, Name: name, Email: email, CreatedAt: createdAt, role: RoleAdmin}
}

// Role returns the user's role. A nil user has no role.
func (u *User) Role() Role {
	if u == nil {
		return ""
	}
	return u.role
}

// Is reports whether u is non-nil and has the given role.
func (u *User) Is(role Role) bool {
	return u != nil && u.role == role
}

// Key returns the (role, id) pair identifying u.
func (u *User) Key() UserKey {
	if u == nil {
		return UserKey{}
	}
	return UserKey{Role: u.role, ID: u.ID}
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Seeker != nil {
		p := u.Seeker.clone()
		c.Seeker = &p
	}
	if u.Employer != nil {
		p := u.Employer.clone()
		c.Employer = &p
	}
	return &c
}

func (p JobSeekerProfile) clone() JobSeekerProfile {
	p.Skills = cloneStrings(p.Skills)
	p.SavedJobs = cloneStrings(p.SavedJobs)
	p.AppliedJobs = cloneStrings(p.AppliedJobs)
	return p
}

func (p EmployerProfile) clone() EmployerProfile {
	p.Jobs = cloneStrings(p.Jobs)
	return p
}

// userJSON is the flat wire shape of a User.
type userJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`

	Resume      string   `json:"resume,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	SavedJobs   []string `json:"savedJobs,omitempty"`
	AppliedJobs []string `json:"appliedJobs,omitempty"`

	Company  string   `json:"company,omitempty"`
	Industry string   `json:"industry,omitempty"`
	Jobs     []string `json:"jobs,omitempty"`
}

// MarshalJSON flattens the role profile into the user object.
func (u *User) MarshalJSON() ([]byte, error) {
	out := userJSON{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.role,
		CreatedAt: u.CreatedAt,
	}
	if u.Seeker != nil {
		out.Resume = u.Seeker.Resume
		out.Skills = u.Seeker.Skills
		out.SavedJobs = u.Seeker.SavedJobs
		out.AppliedJobs = u.Seeker.AppliedJobs
	}
	if u.Employer != nil {
		out.Company = u.Employer.Company
		out.Industry = u.Employer.Industry
		out.Jobs = u.Employer.Jobs
	}
	return json.Marshal(out)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return slices.Clone(in)
}
