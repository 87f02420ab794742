package mapsync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/joshua-takyi/eventmap/internal/assets"
	"github.com/joshua-takyi/eventmap/internal/bus"
	"github.com/joshua-takyi/eventmap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeSurface struct {
	id      string
	cleared int
}

func (s *fakeSurface) ID() string { return s.id }
func (s *fakeSurface) ClearStaleID() { s.cleared++ }

type fakeMap struct {
	surface   string
	zoom      int
	markers   map[int]models.Point
	popups    []int
	views     []models.Point
	destroyed bool
}

func (m *fakeMap) Init(s Surface) error {
	m.surface = s.ID()
	m.markers = map[int]models.Point{}
	return nil
}
func (m *fakeMap) SetView(p models.Point, zoom int) {
	m.views = append(m.views, p)
	m.zoom = zoom
}
func (m *fakeMap) Zoom() int { return m.zoom }
func (m *fakeMap) AddMarker(p models.Point, mk Marker) { m.markers[mk.EventID] = p }
func (m *fakeMap) OpenPopup(id int) { m.popups = append(m.popups, id) }
func (m *fakeMap) FitBounds(points []models.Point) { m.zoom = 10 }
func (m *fakeMap) ClearMarkers() { m.markers = map[int]models.Point{} }
func (m *fakeMap) Destroy() { m.destroyed = true }

type fakeList struct {
	mu          sync.Mutex
	scrolled    []int
	highlighted map[int]bool
	noLocation  int
}

func newFakeList() *fakeList {
	return &fakeList{highlighted: map[int]bool{}}
}

func (l *fakeList) ScrollIntoView(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scrolled = append(l.scrolled, id)
}
func (l *fakeList) AddHighlight(id int, classes []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.highlighted[id] = true
}
func (l *fakeList) RemoveHighlight(id int, classes []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.highlighted, id)
}
func (l *fakeList) ShowNoLocationData() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.noLocation++
}
func (l *fakeList) isHighlighted(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.highlighted[id]
}

type fakeAssets struct {
	err error
}

func (a fakeAssets) Load(ctx context.Context) (*assets.Bundle, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &assets.Bundle{}, nil
}

type harness struct {
	bus   *bus.SelectionBus
	list  *fakeList
	maps  []*fakeMap
	ctrl  *Controller
	cards *ListSync
}

func newHarness(t *testing.T, loadErr error) *harness {
	t.Helper()
	h := &harness{bus: bus.New(), list: newFakeList()}
	factory := func() Map {
		m := &fakeMap{}
		h.maps = append(h.maps, m)
		return m
	}
	h.ctrl = NewController(h.bus, factory, h.list, fakeAssets{err: loadErr}, discard, nil)
	h.cards = NewListSync(h.bus, h.list, 20*time.Millisecond)
	h.ctrl.Mount()
	t.Cleanup(func() {
		h.cards.Close()
		h.ctrl.Unmount()
	})
	return h
}

func (h *harness) current() *fakeMap {
	return h.maps[len(h.maps)-1]
}

func record(id int, lat, lon string) models.EventRecord {
	r := models.EventRecord{ID: id, Title: "event", StartedAt: time.Date(2024, 1, 30, 19, 0, 0, 0, time.UTC)}
	if lat != "" {
		r.Lat = models.NewCoordinate(mustFloat(lat))
	}
	if lon != "" {
		r.Lon = models.NewCoordinate(mustFloat(lon))
	}
	return r
}

func mustFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		panic(err)
	}
	return v
}

func sampleRecords() []models.EventRecord {
	return []models.EventRecord{
		record(1, "35.68", "139.76"),
		record(2, "", ""),
		record(3, "34.70", "135.49"),
	}
}

func TestLoad_PlotsOnlyGeoEvents(t *testing.T) {
	h := newHarness(t, nil)
	h.ctrl.AttachSurface(&fakeSurface{id: "inline"})
	records := sampleRecords()

	h.ctrl.Load(context.Background(), records)
	h.cards.Replace([]int{1, 2, 3})

	require.Len(t, h.maps, 1)
	assert.Equal(t, "inline", h.current().surface)
	assert.Len(t, h.current().markers, 2)
	assert.Equal(t, []int{1, 3}, h.ctrl.Plotted())
	assert.Equal(t, 3, h.cards.Mounted(), "unlocated event still has its card")
}

func TestSelection_FocusesMarkerWithZoomFloor(t *testing.T) {
	h := newHarness(t, nil)
	h.ctrl.AttachSurface(&fakeSurface{id: "inline"})
	h.ctrl.Load(context.Background(), sampleRecords())
	m := h.current()

	h.bus.Publish(models.SelectionEvent{EventID: 3})
	assert.Equal(t, ZoomFloor, m.zoom)
	assert.Equal(t, []int{3}, m.popups)
	assert.Equal(t, models.Point{Lat: 34.70, Lng: 135.49}, m.views[len(m.views)-1])

	m.zoom = 18
	h.bus.Publish(models.SelectionEvent{EventID: 1})
	assert.Equal(t, 18, m.zoom, "zoom never decreases")

	h.bus.Publish(models.SelectionEvent{EventID: 2})
	assert.Equal(t, []int{3, 1}, m.popups, "no marker, no focus")
}

func TestMarkerClick_HighlightsCardThenClears(t *testing.T) {
	h := newHarness(t, nil)
	h.ctrl.AttachSurface(&fakeSurface{id: "inline"})
	h.ctrl.Load(context.Background(), sampleRecords())
	h.cards.Replace([]int{1, 2, 3})

	assert.True(t, h.ctrl.MarkerClicked(1))
	assert.Equal(t, []int{1}, h.list.scrolled)
	assert.True(t, h.list.isHighlighted(1))
	assert.Eventually(t, func() bool { return !h.list.isHighlighted(1) }, time.Second, 5*time.Millisecond)

	assert.False(t, h.ctrl.MarkerClicked(2), "unplotted event has no marker")
}

func TestCardClick_IgnoresNestedControls(t *testing.T) {
	h := newHarness(t, nil)
	h.ctrl.AttachSurface(&fakeSurface{id: "inline"})
	h.ctrl.Load(context.Background(), sampleRecords())
	m := h.current()

	assert.False(t, h.ctrl.CardClicked(1, "A"))
	assert.False(t, h.ctrl.CardClicked(1, "button"))
	assert.Empty(t, m.popups)

	assert.True(t, h.ctrl.CardClicked(1, "div"))
	assert.Equal(t, []int{1}, m.popups)
}

func TestAttachSurface_RebuildsOnIdentityChange(t *testing.T) {
	h := newHarness(t, nil)
	inline := &fakeSurface{id: "inline"}
	h.ctrl.AttachSurface(inline)
	h.ctrl.Load(context.Background(), sampleRecords())
	first := h.current()

	h.ctrl.AttachSurface(inline)
	assert.Len(t, h.maps, 1, "same surface keeps its instance")

	full := &fakeSurface{id: "fullscreen"}
	h.ctrl.AttachSurface(full)
	require.Len(t, h.maps, 2)
	assert.True(t, first.destroyed)
	assert.Equal(t, "fullscreen", h.current().surface)
	assert.Equal(t, 1, full.cleared)
	assert.Len(t, h.current().markers, 2)

	h.bus.Publish(models.SelectionEvent{EventID: 1})
	assert.Empty(t, first.popups)
	assert.Equal(t, []int{1}, h.current().popups)
}

func TestLoad_NewCycleReplacesInstance(t *testing.T) {
	h := newHarness(t, nil)
	s := &fakeSurface{id: "inline"}
	h.ctrl.AttachSurface(s)

	h.ctrl.Load(context.Background(), sampleRecords())
	h.ctrl.Load(context.Background(), []models.EventRecord{record(9, "43.06", "141.35")})

	require.Len(t, h.maps, 2)
	assert.True(t, h.maps[0].destroyed)
	assert.Equal(t, 2, s.cleared)
	assert.Equal(t, []int{9}, h.ctrl.Plotted())
}

func TestLoad_NothingToPlot(t *testing.T) {
	h := newHarness(t, nil)
	h.ctrl.AttachSurface(&fakeSurface{id: "inline"})
	h.ctrl.Load(context.Background(), []models.EventRecord{record(2, "", "")})

	assert.Empty(t, h.maps)
	assert.Equal(t, 1, h.list.noLocation)
}

func TestLoad_AssetFailureDegrades(t *testing.T) {
	h := newHarness(t, errors.New("cdn down"))
	h.ctrl.AttachSurface(&fakeSurface{id: "inline"})
	h.ctrl.Load(context.Background(), sampleRecords())

	assert.Empty(t, h.maps)
	assert.Equal(t, 1, h.list.noLocation)
	assert.Empty(t, h.ctrl.Plotted())
}

func TestUnmount_DetachesFromBus(t *testing.T) {
	h := newHarness(t, nil)
	h.ctrl.AttachSurface(&fakeSurface{id: "inline"})
	h.ctrl.Load(context.Background(), sampleRecords())
	m := h.current()
	h.cards.Replace([]int{42})
	require.Equal(t, 2, h.bus.Len())

	h.ctrl.Unmount()
	h.cards.Close()
	assert.Equal(t, 0, h.bus.Len())

	h.bus.Publish(models.SelectionEvent{EventID: 1})
	h.bus.Publish(models.SelectionEvent{EventID: 42})
	assert.Empty(t, m.popups)
	assert.Empty(t, h.list.scrolled)
	assert.True(t, m.destroyed)
}

func TestListSync_ReplaceDropsOldCards(t *testing.T) {
	h := newHarness(t, nil)
	h.cards.Replace([]int{1, 2})
	h.cards.Replace([]int{3, 3})
	assert.Equal(t, 1, h.cards.Mounted())

	h.bus.Publish(models.SelectionEvent{EventID: 1})
	assert.Empty(t, h.list.scrolled)

	h.bus.Publish(models.SelectionEvent{EventID: 3})
	assert.Equal(t, []int{3}, h.list.scrolled)
}

func TestIsInteractive(t *testing.T) {
	for _, tag := range []string{"a", "BUTTON", " input ", "select", "textarea", "label"} {
		assert.True(t, IsInteractive(tag), tag)
	}
	for _, tag := range []string{"", "div", "article", "img"} {
		assert.False(t, IsInteractive(tag), tag)
	}
}
