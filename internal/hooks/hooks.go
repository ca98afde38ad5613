// Package hooks dispatches the pre/post lifecycle hook scripts living under
// .beans/hooks/. Hooks run only when the store carries the trust marker; an
// untrusted store skips them with a one-line notice.
package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/steveyegge/beans/internal/types"
)

// Phase names double as the hook file names under hooks/.
const (
	PreCreate  = "pre-create"
	PostCreate = "post-create"
	PreUpdate  = "pre-update"
	PostUpdate = "post-update"
	PreClose   = "pre-close"
	PostClose  = "post-close"
)

// Payload is the JSON context written to a hook's stdin.
type Payload struct {
	Event  string      `json:"event"`
	Bean   *types.Bean `json:"bean"`
	Reason string      `json:"reason,omitempty"`
}

// Dispatcher finds and runs hook scripts for one store.
type Dispatcher struct {
	dir     string
	trusted bool

	// Notice receives the one-line skip message for untrusted stores.
	// Defaults to stderr.
	Notice func(format string, args ...interface{})

	noticed bool
}

// New builds a dispatcher for the given hooks directory and trust state.
func New(hooksDir string, trusted bool) *Dispatcher {
	return &Dispatcher{
		dir:     hooksDir,
		trusted: trusted,
		Notice: func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		},
	}
}

// scriptFor returns the path of an existing executable hook, or "".
func (d *Dispatcher) scriptFor(phase string) string {
	path := filepath.Join(d.dir, phase)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	if info.Mode()&0o111 == 0 {
		return ""
	}
	return path
}

// RunPre executes a pre-phase hook. A non-zero exit aborts the enclosing
// transition: the hook's stderr is surfaced in a hook-rejected error.
func (d *Dispatcher) RunPre(ctx context.Context, phase string, bean *types.Bean, reason string) error {
	path, ok := d.gate(phase)
	if !ok {
		return nil
	}
	stderr, err := d.invoke(ctx, path, phase, bean, reason)
	if err != nil {
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		return types.E(types.KindHookRejected, "%s hook rejected %s: %s", phase, bean.ID, msg)
	}
	return nil
}

// RunPost executes a post-phase hook. Failures are reported as warnings;
// the transition has already committed.
func (d *Dispatcher) RunPost(ctx context.Context, phase string, bean *types.Bean, reason string) {
	path, ok := d.gate(phase)
	if !ok {
		return
	}
	if stderr, err := d.invoke(ctx, path, phase, bean, reason); err != nil {
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		d.Notice("Warning: %s hook failed for %s: %s", phase, bean.ID, msg)
	}
}

// gate applies the trust check and emits the skip notice once per process.
func (d *Dispatcher) gate(phase string) (string, bool) {
	path := d.scriptFor(phase)
	if path == "" {
		return "", false
	}
	if !d.trusted {
		if !d.noticed {
			d.Notice("Hint: hooks present but not trusted; run 'bn trust' to enable them")
			d.noticed = true
		}
		return "", false
	}
	return path, true
}

// invoke runs the script with the JSON payload on stdin and returns its
// captured stderr alongside any execution error.
func (d *Dispatcher) invoke(ctx context.Context, path, phase string, bean *types.Bean, reason string) (string, error) {
	payload, err := json.Marshal(Payload{Event: phase, Bean: bean, Reason: reason})
	if err != nil {
		return "", err
	}
	// #nosec G204 -- the path comes from the trusted hooks directory
	cmd := exec.CommandContext(ctx, path, bean.ID, phase)
	cmd.Stdin = bytes.NewReader(payload)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = os.Stdout
	err = cmd.Run()
	return stderr.String(), err
}
