package verify

import (
	"fmt"
	"strings"
	"time"
)

// ExcerptLines is how many head and tail lines a failure note keeps.
const ExcerptLines = 50

// Excerpt reduces output to its first and last n lines with an omission
// marker in between. Short output passes through unchanged.
func Excerpt(output string, n int) string {
	output = strings.TrimRight(output, "\n")
	if output == "" {
		return ""
	}
	lines := strings.Split(output, "\n")
	if len(lines) <= 2*n {
		return strings.Join(lines, "\n")
	}
	omitted := len(lines) - 2*n
	var b strings.Builder
	for _, l := range lines[:n] {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "... %d lines omitted ...\n", omitted)
	for i, l := range lines[len(lines)-n:] {
		b.WriteString(l)
		if i < n-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// AttemptNote formats the notes entry recorded when a close fails its
// verify command.
func AttemptNote(attempt int, at time.Time, res *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Attempt %d — %s\n", attempt, at.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Exit code: %d\n", res.ExitCode)
	b.WriteString("```\n")
	if excerpt := Excerpt(res.Output, ExcerptLines); excerpt != "" {
		b.WriteString(excerpt)
		if !strings.HasSuffix(excerpt, "\n") {
			b.WriteByte('\n')
		}
	}
	b.WriteString("```")
	return b.String()
}
