package types

import (
	"fmt"
	"time"
)

// ApplicationStatus is the review state of an application.
type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationReviewed    ApplicationStatus = "reviewed"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationHired       ApplicationStatus = "hired"
)

// ParseApplicationStatus converts a raw string to an ApplicationStatus,
// returning an error for unknown values.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	switch st {
	case ApplicationPending, ApplicationReviewed, ApplicationRejected, ApplicationShortlisted, ApplicationHired:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// Application is a job seeker's submission to a posting.
type Application struct {
	ID          string            `json:"id"`
	JobID       string            `json:"jobId"`
	SeekerID    string            `json:"seekerId"`
	Resume      string            `json:"resume"`
	CoverLetter string            `json:"coverLetter,omitempty"`
	Status      ApplicationStatus `json:"status"`
	SubmittedAt time.Time         `json:"submittedAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}
