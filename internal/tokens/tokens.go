// Package tokens estimates a bean's context size: its own text plus the
// source files its description references. The estimate feeds the cached
// tokens field and the claim-size gate; it is advisory, not exact.
package tokens

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/steveyegge/beans/internal/types"
)

// Rule of thumb for code and prose: ~4 characters per token.
const charsPerToken = 4

// Extensions recognized when scanning a description for file references.
var validExtensions = []string{
	"go", "rs", "ts", "tsx", "js", "jsx", "py", "md", "toml", "yaml", "yml", "json", "sql", "sh",
}

var pathPattern = regexp.MustCompile(
	`(?:^|[\s\x60(\[])([~.]?/?(?:[\w.-]+/)*[\w.-]+\.(?:` + strings.Join(validExtensions, "|") + `))\b`)

// ExtractFilePaths pulls file-looking references out of free text, in order
// of first appearance, deduplicated.
func ExtractFilePaths(text string) []string {
	var paths []string
	seen := make(map[string]bool)
	for _, match := range pathPattern.FindAllStringSubmatch(text, -1) {
		p := match[1]
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	return paths
}

// Estimate computes the token estimate for a bean. Referenced files are
// resolved relative to projectDir; files that do not exist contribute
// nothing.
func Estimate(bean *types.Bean, projectDir string) int64 {
	total := len(bean.Title) +
		len(bean.Description) +
		len(bean.Acceptance) +
		len(bean.Notes) +
		len(bean.Design)

	for _, ref := range ExtractFilePaths(bean.Description) {
		resolved := resolve(ref, projectDir)
		if info, err := os.Stat(resolved); err == nil && !info.IsDir() {
			total += int(info.Size())
		}
	}
	return int64(total / charsPerToken)
}

func resolve(ref, projectDir string) string {
	switch {
	case strings.HasPrefix(ref, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ref[2:])
		}
		return filepath.Join(projectDir, ref)
	case filepath.IsAbs(ref):
		return ref
	}
	return filepath.Join(projectDir, ref)
}
