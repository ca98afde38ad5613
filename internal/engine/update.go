package engine

import (
	"context"
	"strings"

	"github.com/steveyegge/beans/internal/graph"
	"github.com/steveyegge/beans/internal/hooks"
	"github.com/steveyegge/beans/internal/index"
	"github.com/steveyegge/beans/internal/store"
	"github.com/steveyegge/beans/internal/tokens"
	"github.com/steveyegge/beans/internal/types"
	"github.com/steveyegge/beans/internal/validation"
)

// UpdateOptions lists field edits. Pointer fields distinguish "leave alone"
// from "set to this value" (including clearing with an empty string).
type UpdateOptions struct {
	Title       *string
	Description *string
	Acceptance  *string
	Design      *string
	Verify      *string
	Assignee    *string
	Priority    *int

	// AppendNotes adds one entry to the append-only notes field.
	AppendNotes string

	AddLabels    []string
	RemoveLabels []string

	AddDeps    []string
	RemoveDeps []string

	Produces *[]string
	Requires *[]string
}

// Update applies field edits to a bean under the pre/post-update hooks.
// Dependency additions are cycle-checked against the current snapshot.
func (e *Engine) Update(ctx context.Context, id string, opts UpdateOptions) (*store.File, error) {
	f, err := e.Store.Load(id)
	if err != nil {
		return nil, err
	}
	bean := f.Bean

	if opts.Title != nil {
		if *opts.Title == "" {
			return nil, types.E(types.KindValidation, "title cannot be empty")
		}
		bean.Title = *opts.Title
	}
	if opts.Priority != nil {
		if err := validation.ValidatePriority(*opts.Priority); err != nil {
			return nil, err
		}
		bean.Priority = *opts.Priority
	}
	if opts.Description != nil {
		bean.Description = *opts.Description
	}
	if opts.Acceptance != nil {
		bean.Acceptance = *opts.Acceptance
	}
	if opts.Design != nil {
		bean.Design = *opts.Design
	}
	if opts.Verify != nil {
		bean.Verify = *opts.Verify
	}
	if opts.Assignee != nil {
		bean.Assignee = *opts.Assignee
	}
	if opts.AppendNotes != "" {
		bean.AppendNote(opts.AppendNotes)
	}
	if opts.Produces != nil {
		bean.Produces = *opts.Produces
	}
	if opts.Requires != nil {
		bean.Requires = *opts.Requires
	}

	for _, label := range opts.AddLabels {
		if !bean.HasLabel(label) {
			bean.Labels = append(bean.Labels, label)
		}
	}
	for _, label := range opts.RemoveLabels {
		kept := bean.Labels[:0]
		for _, l := range bean.Labels {
			if l != label {
				kept = append(kept, l)
			}
		}
		bean.Labels = kept
	}

	if len(opts.AddDeps) > 0 {
		if err := e.addDependencies(bean, opts.AddDeps); err != nil {
			return nil, err
		}
	}
	for _, dep := range opts.RemoveDeps {
		kept := bean.Dependencies[:0]
		for _, d := range bean.Dependencies {
			if d != dep {
				kept = append(kept, d)
			}
		}
		bean.Dependencies = kept
	}

	if err := e.Hooks.RunPre(ctx, hooks.PreUpdate, bean, ""); err != nil {
		return nil, err
	}

	now := e.now()
	if contentChanged(opts) {
		bean.Tokens = tokens.Estimate(bean, e.Store.ProjectDir())
		tu := now
		bean.TokensUpdated = &tu
	}
	bean.Touch(now)
	if err := e.Store.Write(f); err != nil {
		return nil, err
	}
	e.Hooks.RunPost(ctx, hooks.PostUpdate, bean, "")
	e.refresh()
	return f, nil
}

// addDependencies validates, existence-checks, and cycle-checks new edges
// before mutating the bean.
func (e *Engine) addDependencies(bean *types.Bean, deps []string) error {
	idx, err := e.Snapshot(index.Options{IncludeArchived: true})
	if err != nil {
		return err
	}
	g := graph.New(idx)
	for _, dep := range deps {
		if err := validation.ValidateID(dep); err != nil {
			return err
		}
		if idx.Get(dep) == nil {
			return types.E(types.KindNotFound, "dependency %s not found", dep)
		}
		if g.WouldCycle(bean.ID, dep) {
			// The cycle runs bean -> dep -> ... -> bean.
			path := append([]string{bean.ID}, g.FindPath(dep, bean.ID)...)
			return types.E(types.KindCycleDetected,
				"adding dependency %s -> %s would create a cycle: %s", bean.ID, dep, strings.Join(path, " -> "))
		}
		already := false
		for _, d := range bean.Dependencies {
			if d == dep {
				already = true
				break
			}
		}
		if !already {
			bean.Dependencies = append(bean.Dependencies, dep)
		}
	}
	return nil
}

func contentChanged(opts UpdateOptions) bool {
	return opts.Title != nil || opts.Description != nil || opts.Acceptance != nil ||
		opts.Design != nil || opts.AppendNotes != ""
}
