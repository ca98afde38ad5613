package main

import (
	"fmt"
	"os"

	"github.com/steveyegge/beans/internal/types"
)

// FatalError writes a single-line diagnostic to stderr and exits 1. Use for
// user-facing failures: validation, not-found, status conflicts.
func FatalError(format string, args ...interface{}) {
	if jsonOutput {
		outputJSONError(fmt.Errorf(format, args...), "")
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// FatalKindedError reports an engine error, naming its kind in JSON mode so
// callers can dispatch without string matching.
func FatalKindedError(err error) {
	if jsonOutput {
		outputJSONError(err, string(types.KindOf(err)))
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// FatalArgError reports an argument parse failure and exits 2.
func FatalArgError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(2)
}

// WarnError writes a warning to stderr and returns; the command continues.
func WarnError(format string, args ...interface{}) {
	if quietFlag {
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// Hint writes an actionable suggestion to stderr.
func Hint(format string, args ...interface{}) {
	if quietFlag {
		return
	}
	fmt.Fprintf(os.Stderr, "Hint: "+format+"\n", args...)
}
