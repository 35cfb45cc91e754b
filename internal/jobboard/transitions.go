package jobboard

import (
	"slices"

	"github.com/jonathan/jobboard/internal/types"
)

// Application status graph:
//
//	pending     -> reviewed, shortlisted, rejected, hired
//	reviewed    -> shortlisted, rejected, hired
//	shortlisted -> rejected, hired
//
// hired and rejected are terminal.
var validTransitions = map[types.ApplicationStatus][]types.ApplicationStatus{
	types.ApplicationPending: {
		types.ApplicationReviewed,
		types.ApplicationShortlisted,
		types.ApplicationRejected,
		types.ApplicationHired,
	},
	types.ApplicationReviewed: {
		types.ApplicationShortlisted,
		types.ApplicationRejected,
		types.ApplicationHired,
	},
	types.ApplicationShortlisted: {
		types.ApplicationRejected,
		types.ApplicationHired,
	},
}

// IsTransitionAllowed reports whether an application may move from -> to.
func IsTransitionAllowed(from, to types.ApplicationStatus) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	return slices.Contains(allowed, to)
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s types.ApplicationStatus) bool {
	return len(validTransitions[s]) == 0
}

// NextStatuses lists the statuses reachable from s in one step.
func NextStatuses(s types.ApplicationStatus) []types.ApplicationStatus {
	return slices.Clone(validTransitions[s])
}
