package compare

import "strings"

// ResolveTopic maps a loose keyword such as "risk-uncertainty" to a known
// topic like "10. Risk & Uncertainty Management". An exact match after
// normalization wins over a containment match.
func ResolveTopic(keyword string, topics []string) (string, bool) {
	key := normalize(keyword)
	if key == "" {
		return "", false
	}
	for _, t := range topics {
		if normalize(t) == key {
			return t, true
		}
	}
	for _, t := range topics {
		if strings.Contains(normalize(t), key) {
			return t, true
		}
	}
	return "", false
}

// normalize lowercases s and collapses every run of non-alphanumerics
// into a single space.
func normalize(s string) string {
	var b strings.Builder
	gap := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if gap && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			gap = false
			continue
		}
		gap = true
	}
	return b.String()
}
