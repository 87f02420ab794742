package models

import (
	"time"
)

// SearchForm is the inbound form submission as the browser sends it.
type SearchForm struct {
	Keyword     string   `form:"keyword" json:"keyword" binding:"max=200"`
	StartDate   string   `form:"startDate" json:"startDate" binding:"max=10"`
	EndDate     string   `form:"endDate" json:"endDate" binding:"max=10"`
	Prefectures []string `form:"prefectures" json:"prefectures" binding:"max=47,dive,max=32"`
	Session     string   `form:"session" json:"session,omitempty"`
}

// SearchCriteria is created per submission and discarded after producing a query.
type SearchCriteria struct {
	Keyword   string     `json:"keyword"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Regions   []string   `json:"prefectures"`
}

// FormValues echoes the criteria back in the shape the form widgets expect.
type FormValues struct {
	Keyword     string   `json:"keyword"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Prefectures []string `json:"prefectures"`
}

func (sc SearchCriteria) Echo() FormValues {
	fv := FormValues{Keyword: sc.Keyword, Prefectures: append([]string(nil), sc.Regions...)}
	if sc.StartDate != nil {
		fv.StartDate = sc.StartDate.Format("2006-01-02")
	}
	if sc.EndDate != nil {
		fv.EndDate = sc.EndDate.Format("2006-01-02")
	}
	if fv.Prefectures == nil {
		fv.Prefectures = []string{}
	}
	return fv
}

type ParsedKeyword struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// Empty reports whether keyword matching should be skipped entirely.
func (pk ParsedKeyword) Empty() bool {
	return len(pk.Include) == 0 && len(pk.Exclude) == 0
}

type SearchState string

const (
	StateIdle       SearchState = "idle"
	StateSubmitting SearchState = "submitting"
	StateSuccess    SearchState = "success"
	StateFailed     SearchState = "failed"
)

// SearchResult is the outcome of one submission cycle.
type SearchResult struct {
	State        SearchState    `json:"-"`
	Events       []EventRecord  `json:"events"`
	Criteria     SearchCriteria `json:"criteria"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	Generation   uint64         `json:"generation"`
	Stale        bool           `json:"stale"`
}

func (r *SearchResult) Failed() bool {
	return r.State == StateFailed
}

const (
	ResponseSuccess       = "success"
	ResponseUpstreamError = "upstream_error"
)

// SearchResponse is the render boundary payload.
type SearchResponse struct {
	Status       string        `json:"status"`
	Events       []EventRecord `json:"events"`
	MapEvents    []int         `json:"mapEvents"`
	FormValues   FormValues    `json:"formValues"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	Generation   uint64        `json:"generation,omitempty"`
	Stale        bool          `json:"stale,omitempty"`
}

func NewSearchResponse(r *SearchResult) SearchResponse {
	resp := SearchResponse{
		Status:     ResponseSuccess,
		Events:     r.Events,
		MapEvents:  []int{},
		FormValues: r.Criteria.Echo(),
		Generation: r.Generation,
		Stale:      r.Stale,
	}
	if resp.Events == nil {
		resp.Events = []EventRecord{}
	}
	if r.Failed() {
		resp.Status = ResponseUpstreamError
		resp.ErrorMessage = r.ErrorMessage
	}
	for _, ge := range GeoEvents(resp.Events) {
		resp.MapEvents = append(resp.MapEvents, ge.ID)
	}
	return resp
}

// SelectionEvent is the only payload carried by the selection bus.
type SelectionEvent struct {
	EventID int `json:"eventId" binding:"required,gt=0"`
}
