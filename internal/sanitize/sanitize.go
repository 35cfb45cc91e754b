// Package sanitize strips unsafe markup from user-supplied job and
// application text.
package sanitize

import (
	"html"
	"strings"

	"github.com/jonathan/jobboard/internal/types"
	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup from free text with bluemonday's strict policy.
// Every field, descriptions included, comes out as plain text. The policy is
// safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New creates a Sanitizer.
func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Text removes all markup and returns plain text. Entities produced by the
// policy are decoded, so "R&D" stays "R&D".
func (s *Sanitizer) Text(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}

// Strings applies Text to every element, dropping ones left empty.
func (s *Sanitizer) Strings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if cleaned := s.Text(v); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// Draft returns d with every free-text field cleaned.
func (s *Sanitizer) Draft(d types.JobDraft) types.JobDraft {
	d.Title = s.Text(d.Title)
	d.Location = s.Text(d.Location)
	d.Description = s.Text(d.Description)
	d.Requirements = s.Strings(d.Requirements)
	d.Benefits = s.Strings(d.Benefits)
	return d
}

// Patch returns p with every set free-text field cleaned.
func (s *Sanitizer) Patch(p types.JobPatch) types.JobPatch {
	if p.Title != nil {
		v := s.Text(*p.Title)
		p.Title = &v
	}
	if p.Location != nil {
		v := s.Text(*p.Location)
		p.Location = &v
	}
	if p.Description != nil {
		v := s.Text(*p.Description)
		p.Description = &v
	}
	p.Requirements = s.Strings(p.Requirements)
	p.Benefits = s.Strings(p.Benefits)
	return p
}
