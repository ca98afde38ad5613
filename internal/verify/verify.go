// Package verify executes a bean's verify command: a shell fragment that
// gates both creation (fail-first) and close. The string is deliberately
// not escaped; it is a script the bean's author wrote.
package verify

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/steveyegge/beans/internal/types"
)

// MaxCaptureBytes caps the combined stdout/stderr capture; beyond it the
// middle of the stream is dropped.
const MaxCaptureBytes = 1 << 20 // 1 MiB

// Result reports one verify execution.
type Result struct {
	ExitCode  int
	Output    string // combined stdout+stderr, possibly truncated
	Truncated bool
	Elapsed   time.Duration
}

// Passed reports a zero exit.
func (r *Result) Passed() bool { return r.ExitCode == 0 }

// Run spawns `sh -c command` with dir as the working directory and captures
// the combined output. A non-zero exit is a normal Result, not an error;
// errors are reserved for spawn failures.
func Run(ctx context.Context, command, dir string) (*Result, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir

	capture := newCapture(MaxCaptureBytes)
	cmd.Stdout = capture
	cmd.Stderr = capture

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	res := &Result{Output: capture.String(), Truncated: capture.Truncated(), Elapsed: elapsed}
	if err == nil {
		return res, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		if res.ExitCode < 0 {
			// Killed by signal; treat as failure.
			res.ExitCode = 1
		}
		return res, nil
	}
	return nil, types.E(types.KindIO, "spawning verify command: %v", err)
}
