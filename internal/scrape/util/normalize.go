package util

import (
	"regexp"
	"strings"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// StripBoilerplate removes every occurrence of the given phrases and anything
// after a footer marker, then collapses whitespace.
func StripBoilerplate(s string, phrases []string, footerMarkers []string) string {
	s = CleanText(s)
	for _, m := range footerMarkers {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(m))
		if loc := re.FindStringIndex(s); loc != nil {
			s = s[:loc[0]]
		}
	}
	for _, p := range phrases {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(p))
		s = re.ReplaceAllString(s, " ")
	}
	return CleanText(s)
}

// Dedupe trims and drops empty or repeated entries, keeping first-seen order.
func Dedupe(xs []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		x = CleanText(x)
		if x == "" {
			continue
		}
		k := strings.ToLower(x)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, x)
	}
	return out
}
