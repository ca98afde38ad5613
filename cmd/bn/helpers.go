package main

import (
	"os"
	"strings"

	"github.com/steveyegge/beans/internal/engine"
	"github.com/steveyegge/beans/internal/index"
	"github.com/steveyegge/beans/internal/selector"
)

// selectorContext builds the ambient state selector expansion needs.
// @parent resolves against BEANS_BEAN, which delegation wrappers set to the
// bean a session is working on.
func selectorContext() selector.Context {
	return selector.Context{
		Actor:       currentActor(),
		CurrentBean: os.Getenv("BEANS_BEAN"),
	}
}

// resolveTargets expands every argument (IDs and selectors) against one
// index snapshot and returns the union in argument order, deduplicated.
func resolveTargets(e *engine.Engine, args []string, opts index.Options) []string {
	idx, err := e.Snapshot(opts)
	if err != nil {
		FatalKindedError(err)
	}
	reportIndexWarnings(idx)
	var out []string
	seen := make(map[string]bool)
	for _, arg := range args {
		ids, err := selector.Resolve(arg, idx, selectorContext())
		if err != nil {
			FatalKindedError(err)
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// resolveOne expands a single argument to exactly one target.
func resolveOne(e *engine.Engine, arg string, opts index.Options) string {
	idx, err := e.Snapshot(opts)
	if err != nil {
		FatalKindedError(err)
	}
	reportIndexWarnings(idx)
	id, err := selector.ResolveOne(arg, idx, selectorContext())
	if err != nil {
		FatalKindedError(err)
	}
	return id
}

func reportIndexWarnings(idx *index.Index) {
	for _, w := range idx.Warnings {
		WarnError("%s", w)
	}
}

// splitCSV parses a comma-separated flag value into trimmed fields.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
