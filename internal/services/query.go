package services

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/joshua-takyi/eventmap/internal/models"
)

// ResultCap is the fixed number of events requested per search.
const ResultCap = 100

// BuildQuery assembles the outbound parameters. Exclude terms are never sent:
// the remote API cannot express them, so they are applied in FilterEvents.
func BuildQuery(parsed models.ParsedKeyword, ymd []string, regions []string, count int) url.Values {
	params := url.Values{}
	params.Set("count", strconv.Itoa(count))

	if len(parsed.Include) > 0 {
		params.Set("keyword", strings.Join(parsed.Include, " "))
	}
	for _, d := range ymd {
		params.Add("ymd", d)
	}
	for _, r := range regions {
		params.Add("prefecture", r)
	}

	return params
}
