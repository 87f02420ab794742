package services

import (
	"context"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/joshua-takyi/eventmap/internal/config"
	"github.com/joshua-takyi/eventmap/internal/helpers"
	"github.com/joshua-takyi/eventmap/internal/metrics"
	"github.com/joshua-takyi/eventmap/internal/models"
)

// FetchFailedMessage is the only thing a user ever sees about a remote failure.
const FetchFailedMessage = "イベント情報の取得に失敗しました。時間をおいて再度お試しください。"

type EventsFetcher interface {
	FetchEvents(ctx context.Context, params url.Values) ([]models.EventRecord, error)
}

type SearchService struct {
	fetcher       EventsFetcher
	rules         *config.Rules
	defaultRegion string
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

// NewSearchService builds the pipeline. A nil rules set means the embedded defaults.
func NewSearchService(fetcher EventsFetcher, rules *config.Rules, defaultRegion string, logger *slog.Logger, m *metrics.Metrics) *SearchService {
	if rules == nil {
		rules = config.DefaultRules()
	}
	return &SearchService{
		fetcher:       fetcher,
		rules:         rules,
		defaultRegion: defaultRegion,
		logger:        logger,
		metrics:       m,
	}
}

// Criteria normalizes a form submission. Bad dates or a range longer than
// the configured span disable date filtering, an inverted range is clamped,
// and unknown or missing regions fall back to the default region. None of
// this is reported to the user.
func (ss *SearchService) Criteria(form models.SearchForm) models.SearchCriteria {
	start, end := helpers.ClampDates(helpers.ParseFormDate(form.StartDate), helpers.ParseFormDate(form.EndDate), helpers.EditedEnd)
	if span := helpers.DaySpan(start, end); span > int64(ss.rules.MaxDateSpanDays) {
		ss.logger.Debug("ignoring oversized date range", "days", span, "max", ss.rules.MaxDateSpanDays)
		start, end = nil, nil
	}

	regions := make([]string, 0, len(form.Prefectures))
	for _, p := range form.Prefectures {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || slices.Contains(regions, p) {
			continue
		}
		if !ss.rules.KnownRegion(p) {
			ss.logger.Debug("dropping unknown region", "region", p)
			continue
		}
		regions = append(regions, p)
	}
	if len(regions) == 0 {
		regions = []string{ss.defaultRegion}
	}

	return models.SearchCriteria{
		Keyword:   strings.TrimSpace(form.Keyword),
		StartDate: start,
		EndDate:   end,
		Regions:   regions,
	}
}

// Search runs one fetch-filter-sort cycle. It never returns an error: a
// remote failure yields a Failed result with an empty list and a message.
func (ss *SearchService) Search(ctx context.Context, criteria models.SearchCriteria) *models.SearchResult {
	parsed := helpers.ParseKeyword(criteria.Keyword)
	ymd := []string{}
	if helpers.DaySpan(criteria.StartDate, criteria.EndDate) <= int64(ss.rules.MaxDateSpanDays) {
		ymd = helpers.ExpandDateRange(criteria.StartDate, criteria.EndDate)
	}
	params := BuildQuery(parsed, ymd, criteria.Regions, ResultCap)

	started := time.Now()
	records, err := ss.fetcher.FetchEvents(ctx, params)
	ss.metrics.ObserveFetch(time.Since(started).Seconds())

	if err != nil {
		ss.logger.Error("events fetch failed",
			"error", err,
			"query", params.Encode(),
		)
		ss.metrics.ObserveSearch("failed", 0)
		return &models.SearchResult{
			State:        models.StateFailed,
			Events:       []models.EventRecord{},
			Criteria:     criteria,
			ErrorMessage: FetchFailedMessage,
		}
	}

	kept, stats := FilterEvents(records, parsed, ss.rules)
	SortByStart(kept)

	ss.metrics.Rejected("baseline", stats.Baseline)
	ss.metrics.Rejected("keyword", stats.Keyword)
	ss.metrics.ObserveSearch("success", len(kept))
	ss.logger.Info("search completed",
		"fetched", len(records),
		"kept", len(kept),
		"rejected_baseline", stats.Baseline,
		"rejected_keyword", stats.Keyword,
		"include", parsed.Include,
		"exclude", parsed.Exclude,
		"days", len(ymd),
		"regions", criteria.Regions,
	)

	return &models.SearchResult{
		State:    models.StateSuccess,
		Events:   kept,
		Criteria: criteria,
	}
}

// Submit runs Search under the tracker's generation guard. A result that
// arrives after a newer submission began is returned marked Stale and is not
// recorded as the tracker's current result.
func (ss *SearchService) Submit(ctx context.Context, tracker *SearchTracker, criteria models.SearchCriteria) *models.SearchResult {
	gen := tracker.Begin()
	result := ss.Search(ctx, criteria)
	result.Generation = gen

	if !tracker.Complete(gen, result) {
		result.Stale = true
		ss.metrics.Stale()
		ss.logger.Info("discarding stale search result", "generation", gen, "latest", tracker.Generation())
	}
	return result
}

// SearchTracker is the per-session search state machine:
// Idle -> Submitting -> Success | Failed, restarted by every submission.
type SearchTracker struct {
	mu      sync.Mutex
	latest  uint64
	state   models.SearchState
	current *models.SearchResult
}

func NewSearchTracker() *SearchTracker {
	return &SearchTracker{state: models.StateIdle}
}

// Begin enters Submitting and returns the new generation.
func (t *SearchTracker) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest++
	t.state = models.StateSubmitting
	return t.latest
}

// Complete accepts result only if gen is still the newest submission.
func (t *SearchTracker) Complete(gen uint64, result *models.SearchResult) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.latest {
		return false
	}
	t.state = result.State
	t.current = result
	return true
}

func (t *SearchTracker) State() models.SearchState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *SearchTracker) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest
}

// Current returns the last accepted result, nil before the first one.
func (t *SearchTracker) Current() *models.SearchResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
