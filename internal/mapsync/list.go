package mapsync

import (
	"sync"
	"time"

	"github.com/joshua-takyi/eventmap/internal/bus"
	"github.com/joshua-takyi/eventmap/internal/models"
)

// HighlightDelay is how long a selected card stays highlighted.
const HighlightDelay = 2 * time.Second

// HighlightClasses are applied to a card on selection and removed after HighlightDelay.
var HighlightClasses = []string{"ring-2", "ring-sky-400", "bg-sky-50"}

// ListSync gives every rendered card its own subscription so a selection
// scrolls the matching card into view and flashes it.
type ListSync struct {
	bus   *bus.SelectionBus
	view  ListView
	delay time.Duration

	mu     sync.Mutex
	subs   map[int]bus.Unsubscribe
	timers map[int]*time.Timer
}

func NewListSync(b *bus.SelectionBus, view ListView, delay time.Duration) *ListSync {
	return &ListSync{
		bus:    b,
		view:   view,
		delay:  delay,
		subs:   make(map[int]bus.Unsubscribe),
		timers: make(map[int]*time.Timer),
	}
}

// Replace unmounts every current card and mounts the new set.
func (ls *ListSync) Replace(eventIDs []int) {
	ls.Close()

	ls.mu.Lock()
	defer ls.mu.Unlock()
	for _, id := range eventIDs {
		if _, dup := ls.subs[id]; dup {
			continue
		}
		ls.subs[id] = ls.bus.SubscribeID(id, func(ev models.SelectionEvent) {
			ls.onSelect(id)
		})
	}
}

// Close unmounts every card and cancels pending highlight removals.
func (ls *ListSync) Close() {
	ls.mu.Lock()
	subs := ls.subs
	ls.subs = make(map[int]bus.Unsubscribe)
	for id, t := range ls.timers {
		t.Stop()
		delete(ls.timers, id)
	}
	ls.mu.Unlock()

	for _, unsub := range subs {
		unsub()
	}
}

func (ls *ListSync) onSelect(eventID int) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if _, mounted := ls.subs[eventID]; !mounted {
		return
	}

	ls.view.ScrollIntoView(eventID)
	ls.view.AddHighlight(eventID, HighlightClasses)

	if t, ok := ls.timers[eventID]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(ls.delay, func() {
		ls.mu.Lock()
		defer ls.mu.Unlock()
		if ls.timers[eventID] != t {
			return
		}
		delete(ls.timers, eventID)
		ls.view.RemoveHighlight(eventID, HighlightClasses)
	})
	ls.timers[eventID] = t
}

// Mounted is the number of cards currently subscribed.
func (ls *ListSync) Mounted() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return len(ls.subs)
}
