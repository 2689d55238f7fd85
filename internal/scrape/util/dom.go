package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FirstText returns the cleaned text of the first selector that yields any.
func FirstText(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if t := CleanText(s.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// FirstAttr returns the first non-empty attr value among selectors.
func FirstAttr(s *goquery.Selection, attr string, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := s.Find(sel).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// AllText returns the cleaned text of every match of selector.
func AllText(s *goquery.Selection, selector string) []string {
	var out []string
	s.Find(selector).Each(func(_ int, e *goquery.Selection) {
		if t := CleanText(e.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}
