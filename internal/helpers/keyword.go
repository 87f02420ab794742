package helpers

import (
	"strings"

	"github.com/joshua-takyi/eventmap/internal/models"
)

// ParseKeyword splits a free-form keyword string into include and exclude
// terms. "-foo" excludes foo, a bare "-" is dropped.
func ParseKeyword(raw string) models.ParsedKeyword {
	parsed := models.ParsedKeyword{
		Include: []string{},
		Exclude: []string{},
	}

	for _, token := range strings.Fields(raw) {
		switch {
		case token == "-":
			continue
		case strings.HasPrefix(token, "-"):
			parsed.Exclude = append(parsed.Exclude, token[1:])
		default:
			parsed.Include = append(parsed.Include, token)
		}
	}

	return parsed
}
