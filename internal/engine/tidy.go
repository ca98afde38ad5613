package engine

import (
	"context"
	"time"

	"github.com/steveyegge/beans/internal/index"
	"github.com/steveyegge/beans/internal/types"
)

// DefaultStaleClaimAge is how old a claim must be before tidy releases it.
const DefaultStaleClaimAge = 24 * time.Hour

// TidyOptions controls the batch maintenance pass.
type TidyOptions struct {
	// StaleBefore releases claims acquired before this instant. Zero
	// means now minus DefaultStaleClaimAge.
	StaleBefore time.Time
	// DryRun reports what would change without writing.
	DryRun bool
}

// TidyReport lists what the pass did (or would do, under dry-run).
type TidyReport struct {
	Archived []string // closed beans moved to the archive
	Released []string // stale claims returned to open
}

// Tidy archives closed beans still sitting in the active tree, releases
// stale claims, and rebuilds the index.
func (e *Engine) Tidy(ctx context.Context, opts TidyOptions) (*TidyReport, error) {
	staleBefore := opts.StaleBefore
	if staleBefore.IsZero() {
		staleBefore = e.now().Add(-DefaultStaleClaimAge)
	}

	paths, err := e.Store.ListActive()
	if err != nil {
		return nil, err
	}

	report := &TidyReport{}
	now := e.now()
	for _, path := range paths {
		f, err := e.Store.LoadPath(path)
		if err != nil {
			return nil, err
		}
		bean := f.Bean
		switch {
		case bean.Status == types.StatusClosed:
			report.Archived = append(report.Archived, bean.ID)
			if opts.DryRun {
				continue
			}
			closedAt := now
			if bean.ClosedAt != nil {
				closedAt = *bean.ClosedAt
			}
			bean.IsArchived = true
			if err := e.Store.Write(f); err != nil {
				return nil, err
			}
			if err := e.Store.Archive(f, closedAt); err != nil {
				return nil, err
			}

		case bean.Status == types.StatusInProgress && bean.ClaimedAt != nil && bean.ClaimedAt.Before(staleBefore):
			report.Released = append(report.Released, bean.ID)
			if opts.DryRun {
				continue
			}
			bean.Status = types.StatusOpen
			bean.ClaimedBy = ""
			bean.ClaimedAt = nil
			bean.Touch(now)
			if err := e.Store.Write(f); err != nil {
				return nil, err
			}
		}
	}

	if !opts.DryRun {
		if _, err := index.Rebuild(e.Store); err != nil {
			return nil, err
		}
	}
	return report, nil
}
