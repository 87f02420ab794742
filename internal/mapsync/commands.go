package mapsync

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/joshua-takyi/eventmap/internal/models"
)

// Command is one instruction for the browser. The browser owns the actual
// map and DOM and only executes what it is told.
type Command struct {
	Op      string         `json:"op"`
	Surface string         `json:"surface,omitempty"`
	EventID int            `json:"eventId,omitempty"`
	Point   *models.Point  `json:"point,omitempty"`
	Points  []models.Point `json:"points,omitempty"`
	Zoom    int            `json:"zoom,omitempty"`
	Marker  *Marker        `json:"marker,omitempty"`
	Classes []string       `json:"classes,omitempty"`
	Message string         `json:"message,omitempty"`
}

const (
	OpMapInit         = "map.init"
	OpMapSetView      = "map.set_view"
	OpMapAddMarker    = "map.add_marker"
	OpMapOpenPopup    = "map.open_popup"
	OpMapFitBounds    = "map.fit_bounds"
	OpMapClear        = "map.clear_markers"
	OpMapDestroy      = "map.destroy"
	OpSurfaceClearID  = "surface.clear_id"
	OpListScroll      = "list.scroll"
	OpListHighlight   = "list.highlight"
	OpListUnhighlight = "list.unhighlight"
	OpListNoLocation  = "list.no_location"
	OpSelection       = "selection"
)

// NoLocationMessage replaces the map when nothing can be plotted.
const NoLocationMessage = "位置情報のあるイベントがありません"

// ErrNoClient is returned by a sink with no browser attached.
var ErrNoClient = errors.New("no client attached")

type Sink interface {
	Send(cmd Command) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Command) error

func (f SinkFunc) Send(cmd Command) error { return f(cmd) }

func send(sink Sink, logger *slog.Logger, cmd Command) {
	err := sink.Send(cmd)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoClient):
		logger.Debug("no client for view command", "op", cmd.Op)
	default:
		logger.Warn("dropping view command", "op", cmd.Op, "error", err)
	}
}

// RemoteSurface is a surface element living in the browser.
type RemoteSurface struct {
	id     string
	sink   Sink
	logger *slog.Logger
}

func NewRemoteSurface(id string, sink Sink, logger *slog.Logger) *RemoteSurface {
	return &RemoteSurface{id: id, sink: sink, logger: logger}
}

func (s *RemoteSurface) ID() string { return s.id }

func (s *RemoteSurface) ClearStaleID() {
	send(s.sink, s.logger, Command{Op: OpSurfaceClearID, Surface: s.id})
}

// CommandMap implements Map by streaming commands to the browser.
type CommandMap struct {
	sink   Sink
	logger *slog.Logger

	mu        sync.Mutex
	surface   string
	zoom      int
	live      bool
	destroyed bool
}

func NewCommandMap(sink Sink, logger *slog.Logger) *CommandMap {
	return &CommandMap{sink: sink, logger: logger}
}

func (m *CommandMap) Init(surface Surface) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return fmt.Errorf("map instance already destroyed")
	}
	if m.live {
		return fmt.Errorf("map instance already initialized on %s", m.surface)
	}
	if err := m.sink.Send(Command{Op: OpMapInit, Surface: surface.ID()}); err != nil {
		return fmt.Errorf("init map on %s: %w", surface.ID(), err)
	}
	m.surface = surface.ID()
	m.live = true
	return nil
}

func (m *CommandMap) emit(cmd Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.live {
		return
	}
	cmd.Surface = m.surface
	send(m.sink, m.logger, cmd)
}

func (m *CommandMap) SetView(p models.Point, zoom int) {
	m.mu.Lock()
	m.zoom = zoom
	m.mu.Unlock()
	m.emit(Command{Op: OpMapSetView, Point: &p, Zoom: zoom})
}

func (m *CommandMap) Zoom() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zoom
}

// ObserveZoom records a zoom change made by the user in the browser.
func (m *CommandMap) ObserveZoom(zoom int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zoom = zoom
}

func (m *CommandMap) AddMarker(p models.Point, marker Marker) {
	m.emit(Command{Op: OpMapAddMarker, EventID: marker.EventID, Point: &p, Marker: &marker})
}

func (m *CommandMap) OpenPopup(eventID int) {
	m.emit(Command{Op: OpMapOpenPopup, EventID: eventID})
}

func (m *CommandMap) FitBounds(points []models.Point) {
	if len(points) == 0 {
		return
	}
	zoom := FitZoom(points)
	m.mu.Lock()
	m.zoom = zoom
	m.mu.Unlock()
	m.emit(Command{Op: OpMapFitBounds, Points: points, Zoom: zoom})
}

func (m *CommandMap) ClearMarkers() {
	m.emit(Command{Op: OpMapClear})
}

func (m *CommandMap) Destroy() {
	m.emit(Command{Op: OpMapDestroy})
	m.mu.Lock()
	m.live = false
	m.destroyed = true
	m.mu.Unlock()
}

// FitZoom estimates the zoom the client lands on after fitting points:
// wide spreads zoom out, a single point zooms in close.
func FitZoom(points []models.Point) int {
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLng, maxLng := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		minLat, maxLat = math.Min(minLat, p.Lat), math.Max(maxLat, p.Lat)
		minLng, maxLng = math.Min(minLng, p.Lng), math.Max(maxLng, p.Lng)
	}
	span := math.Max(maxLat-minLat, maxLng-minLng)
	if span <= 0.005 {
		return 16
	}
	zoom := int(math.Floor(math.Log2(360 / span)))
	return min(max(zoom, 3), 16)
}

// CommandList implements ListView for the browser-side card list.
type CommandList struct {
	sink   Sink
	logger *slog.Logger
}

func NewCommandList(sink Sink, logger *slog.Logger) *CommandList {
	return &CommandList{sink: sink, logger: logger}
}

func (l *CommandList) ScrollIntoView(eventID int) {
	send(l.sink, l.logger, Command{Op: OpListScroll, EventID: eventID})
}

func (l *CommandList) AddHighlight(eventID int, classes []string) {
	send(l.sink, l.logger, Command{Op: OpListHighlight, EventID: eventID, Classes: classes})
}

func (l *CommandList) RemoveHighlight(eventID int, classes []string) {
	send(l.sink, l.logger, Command{Op: OpListUnhighlight, EventID: eventID, Classes: classes})
}

func (l *CommandList) ShowNoLocationData() {
	send(l.sink, l.logger, Command{Op: OpListNoLocation, Message: NoLocationMessage})
}
