package engine

import (
	"context"

	"github.com/steveyegge/beans/internal/telemetry"
	"github.com/steveyegge/beans/internal/types"
	"github.com/steveyegge/beans/internal/verify"
)

// Verify runs the bean's verify command in the project directory without
// mutating the bean. The caller maps the exit code onto its own.
func (e *Engine) Verify(ctx context.Context, id string) (*verify.Result, error) {
	f, err := e.Store.Load(id)
	if err != nil {
		return nil, err
	}
	if f.Bean.IsGoal() {
		return nil, types.E(types.KindValidation, "bean %s has no verify command (it is a goal, not a spec)", id)
	}
	res, err := verify.Run(ctx, f.Bean.Verify, e.Store.ProjectDir())
	if err != nil {
		return nil, err
	}
	telemetry.RecordVerify(ctx, res.Elapsed, res.ExitCode)
	return res, nil
}
