// Package engine implements the bean lifecycle state machine: create,
// claim, verify, close, reopen, delete, adopt, and tidy, together with the
// invariants each transition enforces.
//
// Transitions are atomic at the file-rename granularity: any error before
// the final rename leaves the store unchanged.
package engine

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/steveyegge/beans/internal/codec"
	"github.com/steveyegge/beans/internal/hooks"
	"github.com/steveyegge/beans/internal/index"
	"github.com/steveyegge/beans/internal/store"
	"github.com/steveyegge/beans/internal/types"
)

// Engine binds the store, hook dispatcher, and clock for one command
// invocation.
type Engine struct {
	Store *store.Store
	Hooks *hooks.Dispatcher

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

// New builds an engine over a store, wiring the hook dispatcher to the
// store's trust marker.
func New(s *store.Store) *Engine {
	return &Engine{
		Store: s,
		Hooks: hooks.New(s.HooksDir(), s.Trusted()),
		Now:   time.Now,
	}
}

// now returns the current instant truncated for clean serialization.
func (e *Engine) now() time.Time {
	return e.Now().UTC().Truncate(time.Second)
}

// Snapshot loads the index, rebuilding from the bean files when stale.
func (e *Engine) Snapshot(opts index.Options) (*index.Index, error) {
	return index.LoadOrRebuild(e.Store, opts)
}

// refresh rebuilds the index cache after a mutation. A failed rebuild is
// not fatal to the transition that already committed; the next reader will
// detect the stale cache and rebuild.
func (e *Engine) refresh() {
	_, _ = index.Rebuild(e.Store)
}

// nextChildID scans active and archived children of parent and returns the
// next free numeric slot "<parent>.<N>".
func (e *Engine) nextChildID(parent string) (string, error) {
	max, err := e.maxChildSlot(parent)
	if err != nil {
		return "", err
	}
	return parent + "." + strconv.Itoa(max+1), nil
}

// maxChildSlot returns the highest numeric child slot in use under parent,
// counting grandchildren toward their ancestor's slot.
func (e *Engine) maxChildSlot(parent string) (int, error) {
	names, err := e.allBeanFilenames()
	if err != nil {
		return 0, err
	}
	max := 0
	prefix := parent + "."
	for _, name := range names {
		base := trimDocExt(name)
		if !strings.HasPrefix(base, prefix) {
			continue
		}
		seg := base[len(prefix):]
		if i := strings.IndexAny(seg, ".-"); i >= 0 {
			seg = seg[:i]
		}
		if n, err := strconv.Atoi(seg); err == nil && n > max {
			max = n
		}
	}
	return max, nil
}

func (e *Engine) allBeanFilenames() ([]string, error) {
	active, err := e.Store.ListActive()
	if err != nil {
		return nil, err
	}
	archived, err := e.Store.ListArchived()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, p := range append(active, archived...) {
		names = append(names, filepath.Base(p))
	}
	return names, nil
}

// exists reports whether any file (active or archived) carries the ID.
func (e *Engine) exists(id string) bool {
	_, err := e.Store.Find(id)
	return err == nil || types.KindOf(err) == types.KindDuplicate
}

func trimDocExt(name string) string {
	name = strings.TrimSuffix(name, codec.ExtCanonical)
	name = strings.TrimSuffix(name, codec.ExtLegacy)
	return name
}
