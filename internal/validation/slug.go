package validation

import "strings"

// MaxSlugLength caps the filename component derived from the title.
const MaxSlugLength = 50

// Slug derives a filename-safe slug from a title: lowercase, every run of
// non-alphanumerics collapsed to a single hyphen, trimmed, truncated to 50
// characters without a trailing hyphen. Deterministic given the title.
func Slug(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			if b.Len() > 0 {
				pendingHyphen = true
			}
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	s := b.String()
	if len(s) > MaxSlugLength {
		s = s[:MaxSlugLength]
		s = strings.TrimRight(s, "-")
	}
	return s
}
