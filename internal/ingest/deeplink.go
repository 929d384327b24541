package ingest

import (
	"strings"
	"unicode"
)

// DeepLink returns the anchor used to jump to a rendered excerpt.
// The same (standard, topic, page) triple always yields the same link.
func DeepLink(standard, topic, page string) string {
	return "#" + slug(standard) + "-" + slug(topic) + "-page-" + slug(page)
}

// slug lowercases s, turns whitespace runs into '-' and drops anything
// that is not a word character or '-'.
func slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		case r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
		inSpace = false
	}
	return b.String()
}
