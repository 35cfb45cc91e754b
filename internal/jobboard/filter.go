package jobboard

import (
	"strings"

	"github.com/jonathan/jobboard/internal/types"
)

// Filters are the search criteria applied to the job collection. An empty
// field places no constraint.
type Filters struct {
	SearchTerm      string                `json:"searchTerm,omitempty"`
	Location        string                `json:"location,omitempty"`
	Type            types.JobType         `json:"type,omitempty"`
	ExperienceLevel types.ExperienceLevel `json:"experienceLevel,omitempty"`
}

// FilterUpdate is a partial set of criteria. Nil fields keep their current
// value; a pointer to "" clears the field.
type FilterUpdate struct {
	SearchTerm      *string
	Location        *string
	Type            *string
	ExperienceLevel *string
}

// Merge returns f with the set fields of u applied.
func (f Filters) Merge(u FilterUpdate) Filters {
	if u.SearchTerm != nil {
		f.SearchTerm = *u.SearchTerm
	}
	if u.Location != nil {
		f.Location = *u.Location
	}
	if u.Type != nil {
		f.Type = types.JobType(*u.Type)
	}
	if u.ExperienceLevel != nil {
		f.ExperienceLevel = types.ExperienceLevel(*u.ExperienceLevel)
	}
	return f
}

// IsZero reports whether no criterion is set.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Match reports whether job satisfies every set criterion.
func (f Filters) Match(job types.Job) bool {
	if f.SearchTerm != "" {
		term := strings.ToLower(f.SearchTerm)
		if !strings.Contains(strings.ToLower(job.Title), term) &&
			!strings.Contains(strings.ToLower(job.Company), term) &&
			!strings.Contains(strings.ToLower(job.Description), term) {
			return false
		}
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(job.Location), strings.ToLower(f.Location)) {
		return false
	}
	if f.Type != "" && job.Type != f.Type {
		return false
	}
	if f.ExperienceLevel != "" && job.ExperienceLevel != f.ExperienceLevel {
		return false
	}
	return true
}

// Apply returns the jobs matching f, in their original order.
func Apply(jobs []types.Job, f Filters) []types.Job {
	out := make([]types.Job, 0, len(jobs))
	for _, job := range jobs {
		if f.Match(job) {
			out = append(out, job.Clone())
		}
	}
	return out
}
