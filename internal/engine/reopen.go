package engine

import (
	"context"

	"github.com/steveyegge/beans/internal/store"
	"github.com/steveyegge/beans/internal/types"
)

// Reopen moves a closed bean back to open, restoring it to the active tree
// when archived. Attempts are preserved; closed_at is cleared.
func (e *Engine) Reopen(ctx context.Context, id string) (*store.File, error) {
	f, err := e.Store.Load(id)
	if err != nil {
		return nil, err
	}
	if f.Bean.Status != types.StatusClosed {
		return nil, types.E(types.KindStatusConflict, "bean %s is %s; only closed beans can be reopened", id, f.Bean.Status)
	}
	if f.Archived() {
		if err := e.Store.Unarchive(f); err != nil {
			return nil, err
		}
	}
	f.Bean.Status = types.StatusOpen
	f.Bean.ClosedAt = nil
	f.Bean.CloseReason = ""
	f.Bean.Touch(e.now())
	if err := e.Store.Write(f); err != nil {
		return nil, err
	}
	e.refresh()
	return f, nil
}

// Unarchive restores an archived bean file to the active tree without
// changing its status. Contents are untouched apart from the archive flag.
func (e *Engine) Unarchive(ctx context.Context, id string) (*store.File, error) {
	f, err := e.Store.Load(id)
	if err != nil {
		return nil, err
	}
	if err := e.Store.Unarchive(f); err != nil {
		return nil, err
	}
	if err := e.Store.Write(f); err != nil {
		return nil, err
	}
	e.refresh()
	return f, nil
}
