// Package types defines the core data structures for the beans task engine.
package types

import (
	"time"
)

// Status is the stored lifecycle state of a bean. "blocked" is derived from
// the dependency graph and never written to disk.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"
)

// ParseStatus converts a string to a Status. Returns false for anything
// outside the three stored states.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusOpen, StatusInProgress, StatusClosed:
		return Status(s), true
	}
	return "", false
}

// DefaultPriority is the priority assigned when none is given (P2, medium).
const DefaultPriority = 2

// DefaultMaxAttempts bounds verify retries before the CLI suggests
// decomposing the bean.
const DefaultMaxAttempts = 3

// Bean is a single task file. The YAML tags define the on-disk field order;
// the codec relies on struct order being stable so files diff cleanly.
type Bean struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Slug     string `yaml:"slug,omitempty" json:"slug,omitempty"`
	Status   Status `yaml:"status" json:"status"`
	Priority int    `yaml:"priority" json:"priority"`

	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at" json:"updated_at"`

	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Acceptance  string `yaml:"acceptance,omitempty" json:"acceptance,omitempty"`
	Design      string `yaml:"design,omitempty" json:"design,omitempty"`
	Notes       string `yaml:"notes,omitempty" json:"notes,omitempty"`

	Labels   []string `yaml:"labels,omitempty" json:"labels,omitempty"`
	Assignee string   `yaml:"assignee,omitempty" json:"assignee,omitempty"`

	ClosedAt    *time.Time `yaml:"closed_at,omitempty" json:"closed_at,omitempty"`
	CloseReason string     `yaml:"close_reason,omitempty" json:"close_reason,omitempty"`

	Parent       string   `yaml:"parent,omitempty" json:"parent,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`

	// Capability tokens used for inferred dependency edges.
	Produces []string `yaml:"produces,omitempty" json:"produces,omitempty"`
	Requires []string `yaml:"requires,omitempty" json:"requires,omitempty"`

	// Verify is a shell command that must exit 0 for close to succeed.
	// Its presence classifies the bean as a spec; absence means goal.
	Verify      string `yaml:"verify,omitempty" json:"verify,omitempty"`
	FailFirst   bool   `yaml:"fail_first,omitempty" json:"fail_first,omitempty"`
	Attempts    int    `yaml:"attempts,omitempty" json:"attempts,omitempty"`
	MaxAttempts int    `yaml:"max_attempts,omitempty" json:"max_attempts,omitempty"`

	ClaimedBy string     `yaml:"claimed_by,omitempty" json:"claimed_by,omitempty"`
	ClaimedAt *time.Time `yaml:"claimed_at,omitempty" json:"claimed_at,omitempty"`

	IsArchived bool `yaml:"is_archived,omitempty" json:"is_archived,omitempty"`

	// Cached context-size estimate. Advisory; recomputed on content changes.
	Tokens        int64      `yaml:"tokens,omitempty" json:"tokens,omitempty"`
	TokensUpdated *time.Time `yaml:"tokens_updated,omitempty" json:"tokens_updated,omitempty"`
}

// New returns a bean with defaults applied. The caller is responsible for
// having validated the ID.
func New(id, title string, now time.Time) *Bean {
	return &Bean{
		ID:        id,
		Title:     title,
		Status:    StatusOpen,
		Priority:  DefaultPriority,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EffectiveMaxAttempts returns the escalation bound, falling back to the
// default when the field is unset on disk.
func (b *Bean) EffectiveMaxAttempts() int {
	if b.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return b.MaxAttempts
}

// IsSpec reports whether the bean carries a verify command. Only specs are
// eligible for scheduling; beans without verify are goals.
func (b *Bean) IsSpec() bool { return b.Verify != "" }

// IsGoal is the complement of IsSpec.
func (b *Bean) IsGoal() bool { return b.Verify == "" }

// Closeable reports whether the bean can still move to closed
// (open or in_progress).
func (b *Bean) Closeable() bool {
	return b.Status == StatusOpen || b.Status == StatusInProgress
}

// Touch advances updated_at. Every mutation goes through here.
func (b *Bean) Touch(now time.Time) { b.UpdatedAt = now.UTC() }

// AppendNote appends an entry to the append-only notes field, separated by
// a blank line from whatever is already there.
func (b *Bean) AppendNote(entry string) {
	if b.Notes == "" {
		b.Notes = entry
		return
	}
	b.Notes = b.Notes + "\n\n" + entry
}

// HasLabel reports whether the bean carries the given label.
func (b *Bean) HasLabel(label string) bool {
	for _, l := range b.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. The engine's transitions modify the loaded bean
// in place and do not call it.
func (b *Bean) Clone() *Bean {
	c := *b
	c.Labels = append([]string(nil), b.Labels...)
	c.Dependencies = append([]string(nil), b.Dependencies...)
	c.Produces = append([]string(nil), b.Produces...)
	c.Requires = append([]string(nil), b.Requires...)
	if b.ClosedAt != nil {
		t := *b.ClosedAt
		c.ClosedAt = &t
	}
	if b.ClaimedAt != nil {
		t := *b.ClaimedAt
		c.ClaimedAt = &t
	}
	if b.TokensUpdated != nil {
		t := *b.TokensUpdated
		c.TokensUpdated = &t
	}
	return &c
}
