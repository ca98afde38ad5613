// Package validation implements the bean ID grammar, natural ordering, and
// slug derivation. Every command that accepts an ID literal validates it
// here before touching the filesystem.
package validation

import (
	"strings"

	"github.com/steveyegge/beans/internal/types"
)

// MaxIDLength leaves filesystem headroom for the slug and extension.
const MaxIDLength = 255

// ValidateID checks an ID against the grammar: a non-empty sequence of
// dot-separated segments, each matching [A-Za-z0-9_-]+. The character set is
// a strict subset of filename-safe characters, so a valid ID can never
// escape the store directory.
func ValidateID(id string) error {
	if id == "" {
		return types.E(types.KindValidation, "bean ID cannot be empty")
	}
	if len(id) > MaxIDLength {
		return types.E(types.KindValidation, "bean ID too long (max %d characters)", MaxIDLength)
	}
	for _, seg := range strings.Split(id, ".") {
		if seg == "" {
			return types.E(types.KindValidation, "invalid bean ID %q: empty segment", id)
		}
		for _, r := range seg {
			if !isIDChar(r) {
				return types.E(types.KindValidation,
					"invalid bean ID %q: segments may contain only letters, digits, underscores, and hyphens", id)
			}
		}
	}
	return nil
}

func isIDChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-':
		return true
	}
	return false
}

// ParentID returns the parent implied by a dotted ID ("3.2.1" -> "3.2"),
// or "" for a root-level ID.
func ParentID(id string) string {
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		return id[:i]
	}
	return ""
}

// ChildSeq returns the final segment of a dotted ID ("3.2.1" -> "1").
func ChildSeq(id string) string {
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		return id[i+1:]
	}
	return id
}
