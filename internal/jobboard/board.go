// Package jobboard holds the job and application collections, derives the
// filtered job view from search criteria, and applies role-scoped mutations.
//
// Every mutation takes the caller explicitly and reports refusals as errors
// (UnauthorizedError, NotFoundError, InvalidTransitionError, ValidationError)
// rather than doing nothing. Records handed out are copies; callers cannot
// change board state except through Board methods.
package jobboard

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jonathan/jobboard/internal/types"
)

// DefaultResume is the resume filename attached to applications from seekers
// without one on file.
const DefaultResume = "resume.pdf"

// Snapshot is the initial content of a board.
type Snapshot struct {
	Jobs         []types.Job
	Applications []types.Application
	// SavedJobs maps a job seeker id to the ids of jobs they bookmarked.
	SavedJobs map[string][]string
}

// Options tunes a Board. The zero value is usable.
type Options struct {
	Now      func() time.Time
	Recorder Recorder
}

// Board is the in-memory job collection and filter engine.
type Board struct {
	mu           sync.RWMutex
	jobs         []types.Job
	applications []types.Application
	saved        map[string][]string
	filters      Filters
	filtered     []types.Job
	lastID       int64

	now      func() time.Time
	recorder Recorder
}

// Stats summarizes the board for the admin dashboard.
type Stats struct {
	Jobs                 int                             `json:"jobs"`
	JobsByStatus         map[types.JobStatus]int         `json:"jobsByStatus"`
	Applications         int                             `json:"applications"`
	ApplicationsByStatus map[types.ApplicationStatus]int `json:"applicationsByStatus"`
}

// systemActor attributes board-initiated changes such as deadline sweeps.
var systemActor = types.UserKey{ID: "system"}

// New creates a board holding copies of the snapshot's records.
func New(snap Snapshot, opts Options) *Board {
	b := &Board{
		jobs:         make([]types.Job, 0, len(snap.Jobs)),
		applications: slices.Clone(snap.Applications),
		saved:        make(map[string][]string, len(snap.SavedJobs)),
		now:          opts.Now,
		recorder:     opts.Recorder,
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.applications == nil {
		b.applications = []types.Application{}
	}
	for _, job := range snap.Jobs {
		b.jobs = append(b.jobs, job.Clone())
	}
	for seekerID, ids := range snap.SavedJobs {
		for _, id := range ids {
			if !slices.Contains(b.saved[seekerID], id) {
				b.saved[seekerID] = append(b.saved[seekerID], id)
			}
		}
	}
	b.filtered = Apply(b.jobs, b.filters)
	return b
}

// SetSearchFilters merges u into the held filters, recomputes the filtered
// view and returns the resulting filters.
func (b *Board) SetSearchFilters(u FilterUpdate) Filters {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filters = b.filters.Merge(u)
	b.applyFilters()
	return b.filters
}

// ResetFilters clears every criterion so the view equals the full collection.
func (b *Board) ResetFilters() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filters = Filters{}
	b.applyFilters()
}

// Filters returns the held criteria.
func (b *Board) Filters() Filters {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filters
}

// FilteredJobs returns the view derived from the held filters.
func (b *Board) FilteredJobs() []types.Job {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneJobs(b.filtered)
}

// Search applies f to the collection without touching the held filters.
func (b *Board) Search(f Filters) []types.Job {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Apply(b.jobs, f)
}

// applyFilters must be called with b.mu held for writing.
func (b *Board) applyFilters() {
	b.filtered = Apply(b.jobs, b.filters)
}

// Jobs returns every job in insertion order.
func (b *Board) Jobs() []types.Job {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneJobs(b.jobs)
}

// GetJob returns the job with the given id.
func (b *Board) GetJob(id string) (types.Job, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := b.jobIndex(id)
	if i < 0 {
		return types.Job{}, false
	}
	return b.jobs[i].Clone(), true
}

// UserJobs returns the employer's own postings, every posting for an admin,
// and nothing for anyone else.
func (b *Board) UserJobs(caller *types.User) []types.Job {
	b.mu.RLock()
	defer b.mu.RUnlock()
	switch caller.Role() {
	case types.RoleEmployer:
		out := []types.Job{}
		for _, job := range b.jobs {
			if job.EmployerID == caller.ID {
				out = append(out, job.Clone())
			}
		}
		return out
	case types.RoleAdmin:
		return cloneJobs(b.jobs)
	}
	return []types.Job{}
}

// UserApplications returns the job seeker's own applications and nothing for
// anyone else.
func (b *Board) UserApplications(caller *types.User) []types.Application {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := []types.Application{}
	if !caller.Is(types.RoleJobSeeker) {
		return out
	}
	for _, app := range b.applications {
		if app.SeekerID == caller.ID {
			out = append(out, app)
		}
	}
	return out
}

// ReceivedApplications returns applications to the employer's postings, or
// every application for an admin.
func (b *Board) ReceivedApplications(caller *types.User) ([]types.Application, error) {
	switch caller.Role() {
	case types.RoleEmployer, types.RoleAdmin:
	default:
		return nil, b.deny(caller, "listApplications", "", "employer or admin role required")
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	out := []types.Application{}
	for _, app := range b.applications {
		if caller.Is(types.RoleAdmin) || b.ownsJob(caller, app.JobID) {
			out = append(out, app)
		}
	}
	return out, nil
}

// SaveJob bookmarks a job for the calling seeker. Saving twice is a no-op.
func (b *Board) SaveJob(caller *types.User, jobID string) error {
	if !caller.Is(types.RoleJobSeeker) {
		return b.deny(caller, "saveJob", jobID, "job seeker role required")
	}

	b.mu.Lock()
	if b.jobIndex(jobID) < 0 {
		b.mu.Unlock()
		return &NotFoundError{Kind: "job", ID: jobID}
	}
	added := false
	if !slices.Contains(b.saved[caller.ID], jobID) {
		b.saved[caller.ID] = append(b.saved[caller.ID], jobID)
		added = true
	}
	at := b.now()
	b.mu.Unlock()

	if added {
		b.emit(Event{Kind: EventJobSaved, Actor: caller.Key(), Subject: jobID, At: at})
	}
	return nil
}

// UnsaveJob removes a bookmark. Removing an absent bookmark is a no-op.
func (b *Board) UnsaveJob(caller *types.User, jobID string) error {
	if !caller.Is(types.RoleJobSeeker) {
		return b.deny(caller, "unsaveJob", jobID, "job seeker role required")
	}

	b.mu.Lock()
	ids := b.saved[caller.ID]
	i := slices.Index(ids, jobID)
	if i >= 0 {
		b.saved[caller.ID] = slices.Delete(ids, i, i+1)
	}
	at := b.now()
	b.mu.Unlock()

	if i >= 0 {
		b.emit(Event{Kind: EventJobUnsaved, Actor: caller.Key(), Subject: jobID, At: at})
	}
	return nil
}

// SavedJobs returns the calling seeker's bookmarked jobs in the order saved.
func (b *Board) SavedJobs(caller *types.User) []types.Job {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := []types.Job{}
	if !caller.Is(types.RoleJobSeeker) {
		return out
	}
	for _, id := range b.saved[caller.ID] {
		if i := b.jobIndex(id); i >= 0 {
			out = append(out, b.jobs[i].Clone())
		}
	}
	return out
}

// ApplyToJob submits a pending application from the calling seeker.
func (b *Board) ApplyToJob(caller *types.User, jobID, coverLetter string) (types.Application, error) {
	if !caller.Is(types.RoleJobSeeker) {
		return types.Application{}, b.deny(caller, "applyToJob", jobID, "job seeker role required")
	}

	resume := DefaultResume
	if caller.Seeker != nil && caller.Seeker.Resume != "" {
		resume = caller.Seeker.Resume
	}

	b.mu.Lock()
	if b.jobIndex(jobID) < 0 {
		b.mu.Unlock()
		return types.Application{}, &NotFoundError{Kind: "job", ID: jobID}
	}
	now := b.now()
	app := types.Application{
		ID:          b.nextID(now),
		JobID:       jobID,
		SeekerID:    caller.ID,
		Resume:      resume,
		CoverLetter: coverLetter,
		Status:      types.ApplicationPending,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	b.applications = append(b.applications, app)
	b.mu.Unlock()

	b.emit(Event{Kind: EventApplicationCreated, Actor: caller.Key(), Subject: app.ID, Detail: "job=" + jobID, At: now})
	return app, nil
}

// PostJob publishes a new active posting owned by the calling employer.
func (b *Board) PostJob(caller *types.User, draft types.JobDraft) (types.Job, error) {
	if !caller.Is(types.RoleEmployer) {
		return types.Job{}, b.deny(caller, "postJob", "", "employer role required")
	}
	if draft.Type != "" && !draft.Type.Valid() {
		return types.Job{}, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown job type %q", draft.Type)}
	}
	if draft.ExperienceLevel != "" && !draft.ExperienceLevel.Valid() {
		return types.Job{}, &ValidationError{Field: "experienceLevel", Message: fmt.Sprintf("unknown experience level %q", draft.ExperienceLevel)}
	}

	company := ""
	if caller.Employer != nil {
		company = caller.Employer.Company
	}

	b.mu.Lock()
	now := b.now()
	job := types.Job{
		ID:                  b.nextID(now),
		Title:               draft.Title,
		Company:             company,
		EmployerID:          caller.ID,
		Location:            draft.Location,
		Description:         draft.Description,
		Requirements:        orEmpty(draft.Requirements),
		Type:                draft.Type,
		ExperienceLevel:     draft.ExperienceLevel,
		Benefits:            orEmpty(draft.Benefits),
		ApplicationDeadline: now,
		Status:              types.JobStatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if job.Type == "" {
		job.Type = types.JobTypeFullTime
	}
	if job.ExperienceLevel == "" {
		job.ExperienceLevel = types.LevelMid
	}
	if draft.Salary != nil {
		s := *draft.Salary
		job.Salary = &s
	}
	if draft.ApplicationDeadline != nil {
		job.ApplicationDeadline = *draft.ApplicationDeadline
	}
	job = job.Clone()
	b.jobs = append(b.jobs, job)
	b.applyFilters()
	b.mu.Unlock()

	b.emit(Event{Kind: EventJobPosted, Actor: caller.Key(), Subject: job.ID, Detail: job.Title, At: now})
	return job.Clone(), nil
}

// UpdateJob shallow-merges patch into a posting and refreshes its updatedAt.
// Only the owning employer or an admin may update a posting. Identity and
// ownership fields are not patchable.
func (b *Board) UpdateJob(caller *types.User, jobID string, patch types.JobPatch) (types.Job, error) {
	if !caller.Is(types.RoleEmployer) && !caller.Is(types.RoleAdmin) {
		return types.Job{}, b.deny(caller, "updateJob", jobID, "employer or admin role required")
	}
	if err := validatePatch(patch); err != nil {
		return types.Job{}, err
	}

	b.mu.Lock()
	i := b.jobIndex(jobID)
	if i < 0 {
		b.mu.Unlock()
		return types.Job{}, &NotFoundError{Kind: "job", ID: jobID}
	}
	if caller.Is(types.RoleEmployer) && b.jobs[i].EmployerID != caller.ID {
		b.mu.Unlock()
		return types.Job{}, b.deny(caller, "updateJob", jobID, "posting belongs to another employer")
	}
	now := b.now()
	patch.Apply(&b.jobs[i])
	b.jobs[i].UpdatedAt = now
	job := b.jobs[i].Clone()
	b.applyFilters()
	b.mu.Unlock()

	b.emit(Event{Kind: EventJobUpdated, Actor: caller.Key(), Subject: jobID, At: now})
	return job, nil
}

// UpdateApplicationStatus moves an application from its current status to to.
func (b *Board) UpdateApplicationStatus(caller *types.User, appID string, to types.ApplicationStatus) (types.Application, error) {
	return b.TransitionApplication(caller, appID, "", to)
}

// TransitionApplication moves an application from -> to. An empty from means
// "whatever the current status is". The caller must own the job the
// application was made to, or be an admin.
func (b *Board) TransitionApplication(caller *types.User, appID string, from, to types.ApplicationStatus) (types.Application, error) {
	if !caller.Is(types.RoleEmployer) && !caller.Is(types.RoleAdmin) {
		return types.Application{}, b.deny(caller, "transitionApplication", appID, "employer or admin role required")
	}
	if _, err := types.ParseApplicationStatus(string(to)); err != nil {
		return types.Application{}, &ValidationError{Field: "status", Message: err.Error()}
	}

	b.mu.Lock()
	i := slices.IndexFunc(b.applications, func(a types.Application) bool { return a.ID == appID })
	if i < 0 {
		b.mu.Unlock()
		return types.Application{}, &NotFoundError{Kind: "application", ID: appID}
	}
	app := b.applications[i]
	if caller.Is(types.RoleEmployer) && !b.ownsJob(caller, app.JobID) {
		b.mu.Unlock()
		return types.Application{}, b.deny(caller, "transitionApplication", appID, "application is for another employer's posting")
	}
	if from == "" {
		from = app.Status
	}
	if app.Status != from || !IsTransitionAllowed(from, to) {
		b.mu.Unlock()
		return types.Application{}, &InvalidTransitionError{ApplicationID: appID, From: from, To: to, Current: app.Status}
	}
	now := b.now()
	app.Status = to
	app.UpdatedAt = now
	b.applications[i] = app
	b.mu.Unlock()

	b.emit(Event{
		Kind:    EventApplicationTransition,
		Actor:   caller.Key(),
		Subject: appID,
		Detail:  string(from) + "->" + string(to),
		At:      now,
	})
	return app, nil
}

// CloseExpired closes every active posting whose deadline is before now and
// returns their ids. A deadline equal to the creation time is the PostJob
// default for "no deadline given" and never expires.
func (b *Board) CloseExpired(now time.Time) []string {
	b.mu.Lock()
	var closed []string
	for i := range b.jobs {
		job := &b.jobs[i]
		if job.Status != types.JobStatusActive || job.ApplicationDeadline.IsZero() ||
			job.ApplicationDeadline.Equal(job.CreatedAt) {
			continue
		}
		if job.ApplicationDeadline.Before(now) {
			job.Status = types.JobStatusClosed
			job.UpdatedAt = now
			closed = append(closed, job.ID)
		}
	}
	if len(closed) > 0 {
		b.applyFilters()
	}
	b.mu.Unlock()

	for _, id := range closed {
		b.emit(Event{Kind: EventJobClosed, Actor: systemActor, Subject: id, Detail: "deadline passed", At: now})
	}
	return closed
}

// Profile returns a copy of caller with the board-owned relations filled in:
// saved and applied jobs for seekers, owned postings for employers.
func (b *Board) Profile(caller *types.User) *types.User {
	u := caller.Clone()
	if u == nil {
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	switch {
	case u.Seeker != nil:
		u.Seeker.SavedJobs = orEmpty(slices.Clone(b.saved[u.ID]))
		applied := []string{}
		for _, app := range b.applications {
			if app.SeekerID == u.ID && !slices.Contains(applied, app.JobID) {
				applied = append(applied, app.JobID)
			}
		}
		u.Seeker.AppliedJobs = applied
	case u.Employer != nil:
		owned := []string{}
		for _, job := range b.jobs {
			if job.EmployerID == u.ID {
				owned = append(owned, job.ID)
			}
		}
		u.Employer.Jobs = owned
	}
	return u
}

// Stats counts jobs and applications by status.
func (b *Board) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	st := Stats{
		Jobs:                 len(b.jobs),
		JobsByStatus:         make(map[types.JobStatus]int),
		Applications:         len(b.applications),
		ApplicationsByStatus: make(map[types.ApplicationStatus]int),
	}
	for _, job := range b.jobs {
		st.JobsByStatus[job.Status]++
	}
	for _, app := range b.applications {
		st.ApplicationsByStatus[app.Status]++
	}
	return st
}

// jobIndex must be called with b.mu held.
func (b *Board) jobIndex(id string) int {
	return slices.IndexFunc(b.jobs, func(j types.Job) bool { return j.ID == id })
}

// ownsJob must be called with b.mu held.
func (b *Board) ownsJob(caller *types.User, jobID string) bool {
	i := b.jobIndex(jobID)
	return i >= 0 && b.jobs[i].EmployerID == caller.ID
}

// nextID returns a temporary id derived from the clock. Ids minted in the
// same millisecond are bumped so they stay unique. Requires b.mu held.
func (b *Board) nextID(now time.Time) string {
	ms := now.UnixMilli()
	if ms <= b.lastID {
		ms = b.lastID + 1
	}
	b.lastID = ms
	return fmt.Sprintf("temp-%d", ms)
}

// deny builds the refusal error and records it. Must be called without b.mu held.
func (b *Board) deny(caller *types.User, op, subject, reason string) error {
	err := &UnauthorizedError{Op: op, Role: caller.Role(), Reason: reason}
	b.emit(Event{Kind: EventDenied, Actor: caller.Key(), Subject: subject, Detail: err.Error(), At: b.now()})
	return err
}

func (b *Board) emit(ev Event) {
	if b.recorder != nil {
		b.recorder.Record(ev)
	}
}

func validatePatch(p types.JobPatch) error {
	if p.Type != nil && !p.Type.Valid() {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown job type %q", *p.Type)}
	}
	if p.ExperienceLevel != nil && !p.ExperienceLevel.Valid() {
		return &ValidationError{Field: "experienceLevel", Message: fmt.Sprintf("unknown experience level %q", *p.ExperienceLevel)}
	}
	if p.Status != nil && !p.Status.Valid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown job status %q", *p.Status)}
	}
	return nil
}

func cloneJobs(jobs []types.Job) []types.Job {
	out := make([]types.Job, len(jobs))
	for i, job := range jobs {
		out[i] = job.Clone()
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
