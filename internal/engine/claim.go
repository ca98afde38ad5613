package engine

import (
	"context"

	"github.com/steveyegge/beans/internal/store"
	"github.com/steveyegge/beans/internal/types"
)

// Claim transitions an open bean to in_progress for the given actor.
//
// Race-freedom comes from the store's rename discipline plus an optimistic
// re-read: the bean is re-loaded between the first read and the final
// rename, and if another actor's claim landed in the window the attempt
// fails with a claim-conflict instead of silently overwriting it.
func (e *Engine) Claim(ctx context.Context, id, actor string, force bool) (*store.File, error) {
	if actor == "" {
		return nil, types.E(types.KindValidation, "claim requires an actor; set BEANS_ACTOR or pass --actor")
	}
	f, err := e.Store.Load(id)
	if err != nil {
		return nil, err
	}
	if f.Archived() {
		return nil, types.E(types.KindStatusConflict, "bean %s is archived; unarchive it first", id)
	}
	switch f.Bean.Status {
	case types.StatusOpen:
		// claimable
	case types.StatusInProgress:
		if !force {
			return nil, types.E(types.KindStatusConflict,
				"bean %s is already claimed by %s (use --force to take it over)", id, f.Bean.ClaimedBy)
		}
	default:
		return nil, types.E(types.KindStatusConflict, "bean %s is %s; only open beans can be claimed", id, f.Bean.Status)
	}

	// Size gate: oversized beans should be decomposed, not claimed.
	if cfg, err := e.Store.LoadConfig(); err == nil {
		if limit := cfg.EffectiveMaxTokens(); f.Bean.Tokens > limit {
			return nil, types.E(types.KindValidation,
				"cannot claim bean %s: too large (%d tokens > %d limit); decompose it into smaller beans first",
				id, f.Bean.Tokens, limit)
		}
	}

	firstStatus := f.Bean.Status
	firstOwner := f.Bean.ClaimedBy

	now := e.now()
	f.Bean.Status = types.StatusInProgress
	f.Bean.ClaimedBy = actor
	at := now
	f.Bean.ClaimedAt = &at
	f.Bean.Touch(now)

	// Optimistic concurrency: re-verify between read and rename.
	if !force {
		current, err := e.Store.Load(id)
		if err != nil {
			return nil, err
		}
		if current.Bean.Status != firstStatus || current.Bean.ClaimedBy != firstOwner {
			return nil, types.E(types.KindClaimConflict,
				"bean %s was claimed by %s while this claim was in flight", id, current.Bean.ClaimedBy)
		}
	}

	if err := e.Store.Write(f); err != nil {
		return nil, err
	}
	e.refresh()
	return f, nil
}

// Release returns an in_progress bean to open, clearing the claim fields.
// Any actor may release; the core does not enforce owner-only release.
func (e *Engine) Release(ctx context.Context, id string) (*store.File, error) {
	f, err := e.Store.Load(id)
	if err != nil {
		return nil, err
	}
	if f.Bean.Status != types.StatusInProgress {
		return nil, types.E(types.KindStatusConflict, "bean %s is %s; only in_progress beans can be released", id, f.Bean.Status)
	}
	f.Bean.Status = types.StatusOpen
	f.Bean.ClaimedBy = ""
	f.Bean.ClaimedAt = nil
	f.Bean.Touch(e.now())
	if err := e.Store.Write(f); err != nil {
		return nil, err
	}
	e.refresh()
	return f, nil
}
