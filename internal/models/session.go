package models

import "time"

const (
	MessageSelect      = "select"
	MessageMarkerClick = "marker_click"
	MessageCardClick   = "card_click"
	MessageSurface     = "surface"
	MessageZoom        = "zoom"
)

// ClientMessage is what the browser sends over the session socket.
type ClientMessage struct {
	Type    string `json:"type"`
	EventID int    `json:"eventId,omitempty"`
	Target  string `json:"target,omitempty"`  // tag name of the clicked element
	Surface string `json:"surface,omitempty"` // "inline" or "fullscreen"
	Zoom    int    `json:"zoom,omitempty"`
}

type SessionInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Connected bool      `json:"connected"`
}
