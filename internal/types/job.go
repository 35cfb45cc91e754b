package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JobType is the employment arrangement of a posting.
type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeRemote     JobType = "remote"
)

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeRemote:
		return true
	}
	return false
}

// ExperienceLevel is the seniority a posting asks for.
type ExperienceLevel string

const (
	LevelEntry     ExperienceLevel = "entry"
	LevelMid       ExperienceLevel = "mid"
	LevelSenior    ExperienceLevel = "senior"
	LevelExecutive ExperienceLevel = "executive"
)

// Valid reports whether l is a known experience level.
func (l ExperienceLevel) Valid() bool {
	switch l {
	case LevelEntry, LevelMid, LevelSenior, LevelExecutive:
		return true
	}
	return false
}

// JobStatus is the publication state of a posting.
type JobStatus string

const (
	JobStatusDraft  JobStatus = "draft"
	JobStatusActive JobStatus = "active"
	JobStatusFilled JobStatus = "filled"
	JobStatusClosed JobStatus = "closed"
)

// Valid reports whether s is a known job status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusDraft, JobStatusActive, JobStatusFilled, JobStatusClosed:
		return true
	}
	return false
}

// Salary is a pay range. The zero value is not usable; build one with NewSalary.
type Salary struct {
	min      int
	max      int
	currency string
}

// NewSalary validates and builds a salary range.
func NewSalary(min, max int, currency string) (Salary, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if min < 0 || max < 0 {
		return Salary{}, fmt.Errorf("salary bounds must be non-negative, got %d-%d", min, max)
	}
	if min > max {
		return Salary{}, fmt.Errorf("salary min %d exceeds max %d", min, max)
	}
	if currency == "" {
		return Salary{}, fmt.Errorf("salary currency is required")
	}
	return Salary{min: min, max: max, currency: currency}, nil
}

// MustSalary is NewSalary for fixtures known to be valid.
func MustSalary(min, max int, currency string) Salary {
	s, err := NewSalary(min, max, currency)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Salary) Min() int         { return s.min }
func (s Salary) Max() int         { return s.max }
func (s Salary) Currency() string { return s.currency }

type salaryJSON struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Currency string `json:"currency"`
}

// MarshalJSON implements json.Marshaler.
func (s Salary) MarshalJSON() ([]byte, error) {
	return json.Marshal(salaryJSON{Min: s.min, Max: s.max, Currency: s.currency})
}

// UnmarshalJSON decodes through NewSalary so invalid ranges never load.
func (s *Salary) UnmarshalJSON(data []byte) error {
	var raw salaryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewSalary(raw.Min, raw.Max, raw.Currency)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Job is a posting published by an employer.
type Job struct {
	ID                  string          `json:"id"`
	Title               string          `json:"title"`
	Company             string          `json:"company"`
	EmployerID          string          `json:"employerId"`
	Location            string          `json:"location"`
	Description         string          `json:"description"`
	Requirements        []string        `json:"requirements"`
	Type                JobType         `json:"type"`
	ExperienceLevel     ExperienceLevel `json:"experienceLevel"`
	Salary              *Salary         `json:"salary,omitempty"`
	Benefits            []string        `json:"benefits,omitempty"`
	ApplicationDeadline time.Time       `json:"applicationDeadline"`
	Status              JobStatus       `json:"status"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// Clone returns a copy of j that shares no slices or pointers with it.
func (j Job) Clone() Job {
	j.Requirements = cloneStrings(j.Requirements)
	j.Benefits = cloneStrings(j.Benefits)
	if j.Salary != nil {
		s := *j.Salary
		j.Salary = &s
	}
	return j
}

// JobDraft carries the caller-supplied fields of a new posting. Zero values
// are replaced with defaults when the job is posted.
type JobDraft struct {
	Title               string          `json:"title" validate:"max=200"`
	Location            string          `json:"location" validate:"max=200"`
	Description         string          `json:"description"`
	Requirements        []string        `json:"requirements,omitempty"`
	Type                JobType         `json:"type,omitempty" validate:"omitempty,oneof=full-time part-time contract internship remote"`
	ExperienceLevel     ExperienceLevel `json:"experienceLevel,omitempty" validate:"omitempty,oneof=entry mid senior executive"`
	Salary              *Salary         `json:"salary,omitempty"`
	Benefits            []string        `json:"benefits,omitempty"`
	ApplicationDeadline *time.Time      `json:"applicationDeadline,omitempty"`
}

// JobPatch is a shallow update. Nil fields are left untouched.
type JobPatch struct {
	Title               *string          `json:"title,omitempty" validate:"omitempty,max=200"`
	Location            *string          `json:"location,omitempty" validate:"omitempty,max=200"`
	Description         *string          `json:"description,omitempty"`
	Requirements        []string         `json:"requirements,omitempty"`
	Type                *JobType         `json:"type,omitempty" validate:"omitempty,oneof=full-time part-time contract internship remote"`
	ExperienceLevel     *ExperienceLevel `json:"experienceLevel,omitempty" validate:"omitempty,oneof=entry mid senior executive"`
	Salary              *Salary          `json:"salary,omitempty"`
	Benefits            []string         `json:"benefits,omitempty"`
	ApplicationDeadline *time.Time       `json:"applicationDeadline,omitempty"`
	Status              *JobStatus       `json:"status,omitempty" validate:"omitempty,oneof=draft active filled closed"`
}

// Apply merges the set fields of p into j.
func (p JobPatch) Apply(j *Job) {
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Location != nil {
		j.Location = *p.Location
	}
	if p.Description != nil {
		j.Description = *p.Description
	}
	if p.Requirements != nil {
		j.Requirements = cloneStrings(p.Requirements)
	}
	if p.Type != nil {
		j.Type = *p.Type
	}
	if p.ExperienceLevel != nil {
		j.ExperienceLevel = *p.ExperienceLevel
	}
	if p.Salary != nil {
		s := *p.Salary
		j.Salary = &s
	}
	if p.Benefits != nil {
		j.Benefits = cloneStrings(p.Benefits)
	}
	if p.ApplicationDeadline != nil {
		j.ApplicationDeadline = *p.ApplicationDeadline
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
}
