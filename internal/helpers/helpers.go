package helpers

import (
	"regexp"
	"strings"
)

var (
	markupPattern     = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripMarkup removes every angle-bracket delimited span.
func StripMarkup(s string) string {
	if s == "" {
		return s
	}
	return markupPattern.ReplaceAllString(s, "")
}

// StringTrim trims spaces and any quotes clients wrap path params in.
func StringTrim(s string) string {
	s = strings.TrimSpace(s)
	return strings.Trim(s, "\"'")
}

// CollapseSpaces squeezes runs of whitespace, used for short popup summaries.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// Truncate returns the first n runes of s, appending "..." if truncated.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// ContainsFold reports whether s contains any of the needles, ignoring case.
func ContainsFold(s string, needles []string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if n == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
