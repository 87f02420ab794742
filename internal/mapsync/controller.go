// Package mapsync keeps the map view and the card list focused on the same
// event. The controller is the only code that touches the map instance.
package mapsync

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/joshua-takyi/eventmap/internal/assets"
	"github.com/joshua-takyi/eventmap/internal/bus"
	"github.com/joshua-takyi/eventmap/internal/metrics"
	"github.com/joshua-takyi/eventmap/internal/models"
)

const (
	// ZoomFloor is the least zoom a selection focuses at.
	ZoomFloor   = 15
	DefaultZoom = 5
)

// DefaultCenter is roughly the middle of Honshu.
var DefaultCenter = models.Point{Lat: 36.2048, Lng: 138.2529}

// interactiveTags are nested card elements whose clicks belong to themselves.
var interactiveTags = map[string]bool{
	"a":        true,
	"button":   true,
	"input":    true,
	"select":   true,
	"textarea": true,
	"label":    true,
}

// IsInteractive reports whether a click target is a nested control.
func IsInteractive(target string) bool {
	return interactiveTags[strings.ToLower(strings.TrimSpace(target))]
}

type AssetLoader interface {
	Load(ctx context.Context) (*assets.Bundle, error)
}

// zoomObserver is implemented by maps that learn their zoom from the client.
type zoomObserver interface {
	ObserveZoom(zoom int)
}

type Controller struct {
	bus     *bus.SelectionBus
	newMap  MapFactory
	list    ListView
	assets  AssetLoader
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu          sync.Mutex
	surface     Surface
	instance    Map
	events      []models.GeoEvent
	markers     map[int]models.Point
	loaded      bool
	unsubscribe bus.Unsubscribe
}

func NewController(b *bus.SelectionBus, newMap MapFactory, list ListView, loader AssetLoader, logger *slog.Logger, m *metrics.Metrics) *Controller {
	return &Controller{
		bus:     b,
		newMap:  newMap,
		list:    list,
		assets:  loader,
		logger:  logger,
		metrics: m,
		markers: make(map[int]models.Point),
	}
}

// Mount starts listening for selections. Mounting twice is a no-op.
func (c *Controller) Mount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribe != nil {
		return
	}
	c.unsubscribe = c.bus.Subscribe(c.onSelection)
}

// Unmount detaches from the bus and destroys the map.
func (c *Controller) Unmount() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.destroyLocked()
	c.surface = nil
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// AttachSurface points the controller at a rendering surface. A surface with
// a different identity gets a brand-new map instance.
func (c *Controller) AttachSurface(s Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.surface != nil && c.surface.ID() == s.ID() && c.instance != nil {
		return
	}
	c.logger.Debug("map surface attached", "surface", s.ID())
	c.surface = s
	if c.loaded {
		c.rebuildLocked()
	}
}

// DetachSurface drops the map instance and forgets the surface, as when the
// page holding it goes away. The next AttachSurface rebuilds from the last
// loaded events.
func (c *Controller) DetachSurface() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyLocked()
	c.surface = nil
}

// Load completes a load cycle over a new result set: the previous map
// instance is always replaced, and events without a location are skipped.
func (c *Controller) Load(ctx context.Context, records []models.EventRecord) {
	geo := models.GeoEvents(records)

	if _, err := c.assets.Load(ctx); err != nil {
		c.logger.Error("map unavailable, showing list only", "error", err)
		c.mu.Lock()
		c.destroyLocked()
		c.loaded = false
		c.mu.Unlock()
		c.list.ShowNoLocationData()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = geo
	c.loaded = true
	c.rebuildLocked()
}

func (c *Controller) rebuildLocked() {
	c.destroyLocked()

	if c.surface == nil {
		return
	}
	if len(c.events) == 0 {
		c.list.ShowNoLocationData()
		return
	}

	c.surface.ClearStaleID()
	m := c.newMap()
	if err := m.Init(c.surface); err != nil {
		c.logger.Error("map init failed", "surface", c.surface.ID(), "error", err)
		c.list.ShowNoLocationData()
		return
	}

	m.SetView(DefaultCenter, DefaultZoom)
	points := make([]models.Point, 0, len(c.events))
	for _, ge := range c.events {
		m.AddMarker(ge.Point, NewMarker(ge))
		c.markers[ge.ID] = ge.Point
		points = append(points, ge.Point)
	}
	m.FitBounds(points)
	c.instance = m

	c.logger.Debug("map rebuilt", "surface", c.surface.ID(), "markers", len(points))
}

func (c *Controller) destroyLocked() {
	if c.instance != nil {
		c.instance.ClearMarkers()
		c.instance.Destroy()
		c.instance = nil
	}
	c.markers = make(map[int]models.Point)
}

func (c *Controller) onSelection(ev models.SelectionEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.markers[ev.EventID]
	if !ok || c.instance == nil {
		return
	}
	c.instance.SetView(p, max(c.instance.Zoom(), ZoomFloor))
	c.instance.OpenPopup(ev.EventID)
}

// MarkerClicked publishes a selection for a plotted marker.
func (c *Controller) MarkerClicked(eventID int) bool {
	c.mu.Lock()
	_, ok := c.markers[eventID]
	c.mu.Unlock()
	if !ok {
		return false
	}

	c.metrics.Selection("marker")
	c.bus.Publish(models.SelectionEvent{EventID: eventID})
	return true
}

// CardClicked publishes a selection for a list card unless the click landed
// on a link, button or other control inside the card.
func (c *Controller) CardClicked(eventID int, target string) bool {
	if eventID <= 0 || IsInteractive(target) {
		return false
	}
	c.metrics.Selection("card")
	c.bus.Publish(models.SelectionEvent{EventID: eventID})
	return true
}

// ReportZoom records the zoom level the client settled on.
func (c *Controller) ReportZoom(zoom int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if zo, ok := c.instance.(zoomObserver); ok {
		zo.ObserveZoom(zoom)
	}
}

// Plotted returns the ids that currently have a marker.
func (c *Controller) Plotted() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int, 0, len(c.events))
	for _, ge := range c.events {
		if _, ok := c.markers[ge.ID]; ok {
			ids = append(ids, ge.ID)
		}
	}
	return ids
}
