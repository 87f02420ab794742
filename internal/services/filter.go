package services

import (
	"sort"
	"strings"

	"github.com/joshua-takyi/eventmap/internal/config"
	"github.com/joshua-takyi/eventmap/internal/helpers"
	"github.com/joshua-takyi/eventmap/internal/models"
)

// FilterStats counts how many records each stage dropped.
type FilterStats struct {
	Baseline int
	Keyword  int
}

// Eligible applies baseline eligibility: pre-open status, a real venue,
// capacity unset or above the minimum, and a title outside the denylist.
func Eligible(e *models.EventRecord, rules *config.Rules) bool {
	if e.OpenStatus != models.StatusPreOpen {
		return false
	}
	if strings.TrimSpace(e.Place) == "" || helpers.ContainsFold(e.Place, rules.VenueDenylist) {
		return false
	}
	if e.Limit != nil && *e.Limit <= rules.MinCapacity {
		return false
	}
	if helpers.ContainsFold(e.Title, rules.TitleDenylist) {
		return false
	}
	return true
}

// SearchableText is the lower-cased haystack keyword terms are matched against.
func SearchableText(e *models.EventRecord) string {
	parts := make([]string, 0, 4)
	for _, f := range []string{e.Title, e.Place, e.Address, e.Description} {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// MatchesKeyword requires every include term and no exclude term.
func MatchesKeyword(text string, parsed models.ParsedKeyword) bool {
	for _, term := range parsed.Include {
		if !strings.Contains(text, strings.ToLower(term)) {
			return false
		}
	}
	for _, term := range parsed.Exclude {
		if strings.Contains(text, strings.ToLower(term)) {
			return false
		}
	}
	return true
}

// FilterEvents keeps the records passing baseline eligibility and keyword
// matching. Descriptions of every record that survives the baseline are
// stripped of markup in place.
func FilterEvents(records []models.EventRecord, parsed models.ParsedKeyword, rules *config.Rules) ([]models.EventRecord, FilterStats) {
	var stats FilterStats
	kept := make([]models.EventRecord, 0, len(records))

	for i := range records {
		e := &records[i]
		if !Eligible(e, rules) {
			stats.Baseline++
			continue
		}

		e.Description = helpers.StripMarkup(e.Description)

		if !parsed.Empty() && !MatchesKeyword(SearchableText(e), parsed) {
			stats.Keyword++
			continue
		}
		kept = append(kept, *e)
	}

	return kept, stats
}

// SortByStart orders events by start time; equal starts keep input order.
func SortByStart(records []models.EventRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt.Before(records[j].StartedAt)
	})
}
