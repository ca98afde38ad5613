// Package selector expands symbolic references (@latest, @ready, @blocked,
// @me, @parent) against a single index snapshot. Expansion is a pure
// function of the snapshot; nothing here touches the disk, so a command
// sees one consistent world even while other actors mutate the store.
package selector

import (
	"strings"

	"github.com/steveyegge/beans/internal/graph"
	"github.com/steveyegge/beans/internal/index"
	"github.com/steveyegge/beans/internal/types"
	"github.com/steveyegge/beans/internal/validation"
)

// Context carries the ambient state selectors may need.
type Context struct {
	// Actor is the current-actor identity (from --actor or BEANS_ACTOR).
	Actor string
	// CurrentBean is the bean an enclosing context refers to; @parent
	// fails without it.
	CurrentBean string
}

// Resolve expands input to a set of IDs. A literal ID passes through after
// grammar validation and an existence check against the snapshot.
func Resolve(input string, idx *index.Index, ctx Context) ([]string, error) {
	if !strings.HasPrefix(input, "@") {
		if err := validation.ValidateID(input); err != nil {
			return nil, err
		}
		if idx.Get(input) == nil {
			return nil, types.E(types.KindNotFound, "bean %s not found", input)
		}
		return []string{input}, nil
	}

	switch input {
	case "@latest":
		return latest(idx)
	case "@ready":
		return graph.New(idx).ReadySet(), nil
	case "@blocked":
		return graph.New(idx).BlockedSet(), nil
	case "@me":
		return mine(idx, ctx.Actor)
	case "@parent":
		return parent(idx, ctx.CurrentBean)
	}
	return nil, types.E(types.KindValidation, "unknown selector %q", input)
}

// ResolveOne expands input and requires exactly one result.
func ResolveOne(input string, idx *index.Index, ctx Context) (string, error) {
	ids, err := Resolve(input, idx, ctx)
	if err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", types.E(types.KindNotFound, "selector %s matched no beans", input)
	case 1:
		return ids[0], nil
	}
	return "", types.E(types.KindValidation, "selector %s matched %d beans; a single target is required", input, len(ids))
}

// latest picks the single active bean with the greatest updated_at.
func latest(idx *index.Index) ([]string, error) {
	var best *index.Entry
	for i := range idx.Entries {
		e := &idx.Entries[i]
		if e.Archived {
			continue
		}
		if best == nil || e.UpdatedAt.After(best.UpdatedAt) {
			best = e
		}
	}
	if best == nil {
		return nil, types.E(types.KindNotFound, "@latest: store has no active beans")
	}
	return []string{best.ID}, nil
}

// mine selects open and in-progress beans assigned to or claimed by actor.
func mine(idx *index.Index, actor string) ([]string, error) {
	if actor == "" {
		return nil, types.E(types.KindValidation, "@me requires an actor; set BEANS_ACTOR or pass --actor")
	}
	var out []string
	for _, e := range idx.Entries {
		if e.Status == types.StatusClosed || e.Archived {
			continue
		}
		if e.Assignee == actor || e.ClaimedBy == actor {
			out = append(out, e.ID)
		}
	}
	return out, nil
}

func parent(idx *index.Index, current string) ([]string, error) {
	if current == "" {
		return nil, types.E(types.KindValidation, "@parent requires a current bean; none is set in this context")
	}
	e := idx.Get(current)
	if e == nil {
		return nil, types.E(types.KindNotFound, "bean %s not found", current)
	}
	if e.Parent == "" {
		return nil, types.E(types.KindNotFound, "bean %s has no parent", current)
	}
	return []string{e.Parent}, nil
}
