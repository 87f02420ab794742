package mapsync

import (
	"github.com/joshua-takyi/eventmap/internal/helpers"
	"github.com/joshua-takyi/eventmap/internal/models"
)

// Surface is the element a map renders into. Switching between the inline
// and full-screen presentation switches surfaces.
type Surface interface {
	ID() string
	// ClearStaleID drops the identifier a previous map instance left on the
	// element so a new instance can claim it.
	ClearStaleID()
}

// Map is what the controller needs from the mapping library.
type Map interface {
	Init(surface Surface) error
	SetView(p models.Point, zoom int)
	Zoom() int
	AddMarker(p models.Point, m Marker)
	OpenPopup(eventID int)
	FitBounds(points []models.Point)
	ClearMarkers()
	Destroy()
}

// MapFactory creates a fresh, uninitialized map instance.
type MapFactory func() Map

// ListView is what the list side needs from the card list.
type ListView interface {
	ScrollIntoView(eventID int)
	AddHighlight(eventID int, classes []string)
	RemoveHighlight(eventID int, classes []string)
	ShowNoLocationData()
}

// Marker is the popup payload bound to one map marker.
type Marker struct {
	EventID  int    `json:"eventId"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Place    string `json:"place,omitempty"`
	Address  string `json:"address,omitempty"`
	StartsAt string `json:"startsAt,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Accepted int    `json:"accepted"`
	Waiting  int    `json:"waiting,omitempty"`
	Limit    *int   `json:"limit"`
	Group    string `json:"group,omitempty"`
}

func NewMarker(ge models.GeoEvent) Marker {
	summary := ge.Catch
	if summary == "" {
		summary = ge.Description
	}
	m := Marker{
		EventID:  ge.ID,
		Title:    ge.Title,
		URL:      ge.URL,
		Place:    ge.Place,
		Address:  ge.Address,
		StartsAt: helpers.FormatJapaneseDateTime(ge.StartedAt),
		Summary:  helpers.Truncate(helpers.CollapseSpaces(helpers.StripMarkup(summary)), 80),
		Accepted: ge.Accepted,
		Waiting:  ge.Waiting,
		Limit:    ge.Limit,
	}
	if ge.Group != nil {
		m.Group = ge.Group.Title
	}
	return m
}
