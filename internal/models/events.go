package models

import (
	"time"
)

const (
	// StatusPreOpen is the only open_status the search keeps.
	StatusPreOpen = "preopen"
	StatusOpen    = "open"
	StatusClose   = "close"
	StatusCancel  = "cancelled"
)

type EventGroup struct {
	ID        int    `json:"id"`
	Subdomain string `json:"subdomain,omitempty"`
	Title     string `json:"title,omitempty"`
	URL       string `json:"url,omitempty"`
}

// EventRecord mirrors one entry of the remote API's "events" array.
type EventRecord struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Catch       string      `json:"catch,omitempty"`
	Description string      `json:"description,omitempty"` // may contain markup
	URL         string      `json:"url"`
	ImageURL    string      `json:"image_url,omitempty"`
	HashTag     string      `json:"hash_tag,omitempty"`
	StartedAt   time.Time   `json:"started_at"`
	EndedAt     time.Time   `json:"ended_at"`
	Limit       *int        `json:"limit"` // nil means unlimited
	Accepted    int         `json:"accepted"`
	Waiting     int         `json:"waiting"`
	Place       string      `json:"place,omitempty"`
	Address     string      `json:"address,omitempty"`
	Lat         Coordinate  `json:"lat"`
	Lon         Coordinate  `json:"lon"`
	OpenStatus  string      `json:"open_status"`
	EventType   string      `json:"event_type,omitempty"` // "participation" or "advertisement"
	Group       *EventGroup `json:"group,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at,omitempty"`
}

// Unlimited reports whether the event has no capacity limit.
func (e *EventRecord) Unlimited() bool {
	return e.Limit == nil
}

// GeoPoint returns the event location when both coordinates are usable.
func (e *EventRecord) GeoPoint() (Point, bool) {
	lat, ok := e.Lat.Float()
	if !ok || lat < -90 || lat > 90 {
		return Point{}, false
	}
	lon, ok := e.Lon.Float()
	if !ok || lon < -180 || lon > 180 {
		return Point{}, false
	}
	return Point{Lat: lat, Lng: lon}, true
}

// GeoEvent is an EventRecord proven to carry a plottable location.
type GeoEvent struct {
	*EventRecord
	Point Point `json:"point"`
}

// GeoEvents keeps only the records that can be placed on the map, in order.
func GeoEvents(records []EventRecord) []GeoEvent {
	out := make([]GeoEvent, 0, len(records))
	for i := range records {
		if p, ok := records[i].GeoPoint(); ok {
			out = append(out, GeoEvent{EventRecord: &records[i], Point: p})
		}
	}
	return out
}

// EventsResponse is the remote API body; a missing "events" key decodes to nil.
type EventsResponse struct {
	ResultsReturned  int           `json:"results_returned,omitempty"`
	ResultsAvailable int           `json:"results_available,omitempty"`
	ResultsStart     int           `json:"results_start,omitempty"`
	Events           []EventRecord `json:"events"`
}
