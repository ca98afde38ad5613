package engine

import (
	"context"
	"fmt"

	"github.com/steveyegge/beans/internal/hooks"
	"github.com/steveyegge/beans/internal/index"
	"github.com/steveyegge/beans/internal/store"
	"github.com/steveyegge/beans/internal/telemetry"
	"github.com/steveyegge/beans/internal/types"
	"github.com/steveyegge/beans/internal/verify"
)

// AutoCloseReason is recorded when a parent closes because its last child
// closed.
const AutoCloseReason = "all children completed"

// CloseOutcome reports what a close transition did.
type CloseOutcome struct {
	File *store.File
	// Result is the verify execution, when one ran.
	Result *verify.Result
	// AutoClosed lists parents closed by the cascade, innermost first.
	AutoClosed []string
	// CascadeWarnings are non-fatal failures from the parent cascade.
	CascadeWarnings []string
}

// Close runs the bean's verify command (unless forced), records a failure
// or commits the close, archives the file, and cascades to the parent when
// every sibling is closed.
func (e *Engine) Close(ctx context.Context, id, reason string, force bool) (*CloseOutcome, error) {
	f, err := e.Store.Load(id)
	if err != nil {
		return nil, err
	}

	outcome := &CloseOutcome{File: f}
	res, err := e.closeOne(ctx, f, reason, force)
	outcome.Result = res
	if err != nil {
		return outcome, err
	}

	e.cascade(ctx, f.Bean.Parent, outcome)
	e.refresh()
	return outcome, nil
}

// closeOne performs the single-bean close transition, without cascade or
// index refresh.
func (e *Engine) closeOne(ctx context.Context, f *store.File, reason string, force bool) (*verify.Result, error) {
	bean := f.Bean
	if !bean.Closeable() {
		return nil, types.E(types.KindStatusConflict, "bean %s is already closed", bean.ID)
	}

	// A rejected pre-close hook aborts before verify runs.
	if err := e.Hooks.RunPre(ctx, hooks.PreClose, bean, reason); err != nil {
		return nil, err
	}

	var res *verify.Result
	if !force && bean.IsSpec() {
		var err error
		res, err = verify.Run(ctx, bean.Verify, e.Store.ProjectDir())
		if err != nil {
			return nil, err
		}
		telemetry.RecordVerify(ctx, res.Elapsed, res.ExitCode)
		if !res.Passed() {
			return res, e.recordFailure(f, res)
		}
	}

	now := e.now()
	bean.Status = types.StatusClosed
	closedAt := now
	bean.ClosedAt = &closedAt
	bean.CloseReason = reason
	bean.ClaimedBy = ""
	bean.ClaimedAt = nil
	bean.IsArchived = true // the rename below moves it under archive/
	bean.Touch(now)
	if err := e.Store.Write(f); err != nil {
		return res, err
	}
	if err := e.Store.Archive(f, closedAt); err != nil {
		return res, err
	}
	e.Hooks.RunPost(ctx, hooks.PostClose, bean, reason)
	return res, nil
}

// recordFailure writes the failed attempt back to the bean: an attempts
// increment and one appended notes entry, then reports verify-failed.
func (e *Engine) recordFailure(f *store.File, res *verify.Result) error {
	now := e.now()
	bean := f.Bean
	bean.Attempts++
	bean.AppendNote(verify.AttemptNote(bean.Attempts, now, res))
	bean.Touch(now)
	if err := e.Store.Write(f); err != nil {
		return err
	}
	e.refresh()
	msg := fmt.Sprintf("verify failed for %s (exit %d, attempt %d)", bean.ID, res.ExitCode, bean.Attempts)
	if bean.Attempts >= bean.EffectiveMaxAttempts() {
		msg += fmt.Sprintf("; %d attempts recorded, consider decomposing or revisiting the approach", bean.Attempts)
	}
	return types.E(types.KindVerifyFailed, "%s", msg)
}

// cascade walks up the parent chain closing parents whose children are all
// closed. A parent with a verify command is closed under the same rules; a
// goal parent closes without verify. The walk stops at the first parent
// that is already closed, still has open children, or fails to close.
func (e *Engine) cascade(ctx context.Context, parent string, outcome *CloseOutcome) {
	cfg, err := e.Store.LoadConfig()
	if err != nil || !cfg.AutoCloseParent {
		return
	}
	for parent != "" {
		pf, err := e.Store.Load(parent)
		if err != nil {
			return
		}
		if pf.Bean.Status == types.StatusClosed {
			return
		}
		done, err := e.allChildrenClosed(parent)
		if err != nil || !done {
			return
		}
		if _, err := e.closeOne(ctx, pf, AutoCloseReason, false); err != nil {
			outcome.CascadeWarnings = append(outcome.CascadeWarnings,
				fmt.Sprintf("parent %s not auto-closed: %v", parent, err))
			return
		}
		outcome.AutoClosed = append(outcome.AutoClosed, parent)
		parent = pf.Bean.Parent
	}
}

func (e *Engine) allChildrenClosed(parent string) (bool, error) {
	idx, err := index.Build(e.Store, index.Options{IncludeArchived: true})
	if err != nil {
		return false, err
	}
	for _, child := range idx.Children(parent) {
		if child.Status != types.StatusClosed {
			return false, nil
		}
	}
	return true, nil
}
