package engine

import (
	"context"

	"github.com/steveyegge/beans/internal/hooks"
	"github.com/steveyegge/beans/internal/store"
	"github.com/steveyegge/beans/internal/telemetry"
	"github.com/steveyegge/beans/internal/tokens"
	"github.com/steveyegge/beans/internal/types"
	"github.com/steveyegge/beans/internal/validation"
	"github.com/steveyegge/beans/internal/verify"
)

// CreateOptions carries everything the create transition accepts.
type CreateOptions struct {
	Title       string
	Description string
	Acceptance  string
	Design      string
	Notes       string

	Priority     *int
	Labels       []string
	Dependencies []string
	Produces     []string
	Requires     []string

	Parent   string
	Assignee string

	Verify string
	// PassOK skips the fail-first gate for a verify command that is
	// expected to already pass.
	PassOK bool

	// RequireSubstance demands at least one of verify/acceptance; the
	// quick entry point sets it, create does not.
	RequireSubstance bool

	// ClaimBy atomically claims the new bean for the given actor.
	ClaimBy string
}

// Create allocates an ID, enforces the fail-first gate, and writes the new
// bean. A validation or fail-first rejection writes nothing and leaves the
// allocator untouched. The pre-create hook and the file write run after
// allocation, so a rejection there writes no bean file but the allocated ID
// stays consumed.
func (e *Engine) Create(ctx context.Context, opts CreateOptions) (*store.File, error) {
	if opts.Title == "" {
		return nil, types.E(types.KindValidation, "title is required")
	}
	if opts.Priority != nil {
		if err := validation.ValidatePriority(*opts.Priority); err != nil {
			return nil, err
		}
	}
	if opts.RequireSubstance && opts.Verify == "" && opts.Acceptance == "" {
		return nil, types.E(types.KindValidation, "at least one of --verify or --acceptance is required")
	}
	if opts.Parent != "" {
		if err := validation.ValidateID(opts.Parent); err != nil {
			return nil, err
		}
		if !e.exists(opts.Parent) {
			return nil, types.E(types.KindNotFound, "parent bean %s not found", opts.Parent)
		}
	}
	for _, dep := range opts.Dependencies {
		if err := validation.ValidateID(dep); err != nil {
			return nil, err
		}
		if !e.exists(dep) {
			return nil, types.E(types.KindNotFound, "dependency %s not found", dep)
		}
	}

	// Fail-first gate, before the allocator so a rejection leaves next_id
	// untouched: a verify command that already passes proves nothing about
	// the work this bean describes.
	failFirst := opts.Verify != "" && !opts.PassOK
	if failFirst {
		res, err := verify.Run(ctx, opts.Verify, e.Store.ProjectDir())
		if err != nil {
			return nil, err
		}
		telemetry.RecordVerify(ctx, res.Elapsed, res.ExitCode)
		if res.Passed() {
			return nil, types.E(types.KindFailFirstRejected,
				"verify command already exits 0; a passing test proves nothing about unfinished work (use --pass-ok if this is intentional)")
		}
	}

	id, err := e.allocate(opts.Parent)
	if err != nil {
		return nil, err
	}

	now := e.now()
	bean := types.New(id, opts.Title, now)
	bean.Slug = validation.Slug(opts.Title)
	bean.Description = opts.Description
	bean.Acceptance = opts.Acceptance
	bean.Design = opts.Design
	bean.Notes = opts.Notes
	if opts.Priority != nil {
		bean.Priority = *opts.Priority
	}
	bean.Labels = opts.Labels
	bean.Dependencies = opts.Dependencies
	bean.Produces = opts.Produces
	bean.Requires = opts.Requires
	bean.Parent = opts.Parent
	bean.Assignee = opts.Assignee
	bean.Verify = opts.Verify
	bean.FailFirst = failFirst
	bean.Tokens = tokens.Estimate(bean, e.Store.ProjectDir())
	tu := now
	bean.TokensUpdated = &tu

	if err := e.Hooks.RunPre(ctx, hooks.PreCreate, bean, ""); err != nil {
		return nil, err
	}

	if opts.ClaimBy != "" {
		bean.Status = types.StatusInProgress
		bean.ClaimedBy = opts.ClaimBy
		at := now
		bean.ClaimedAt = &at
	}

	f, err := e.Store.Create(bean)
	if err != nil {
		return nil, err
	}

	e.Hooks.RunPost(ctx, hooks.PostCreate, bean, "")

	e.refresh()
	return f, nil
}

// allocate picks the bean's ID: the next free child slot when a parent is
// given, otherwise the config allocator (retrying on collisions from
// concurrent creates).
func (e *Engine) allocate(parent string) (string, error) {
	if parent != "" {
		return e.nextChildID(parent)
	}
	return e.Store.AllocateID(e.exists)
}
