// Package bus carries "event selected" notifications between the list view
// and the map view of one page session. Neither view knows about the other;
// both only publish to and subscribe on a SelectionBus.
package bus

import (
	"sync"
	"sync/atomic"

	"github.com/joshua-takyi/eventmap/internal/models"
)

// Handler receives a selection synchronously on the publisher's goroutine.
type Handler func(models.SelectionEvent)

// Unsubscribe detaches a subscriber. Calling it more than once is a no-op.
type Unsubscribe func()

// anyEvent is the filter value of subscribers that want every selection.
const anyEvent = 0

type subscription struct {
	eventID int
	handler Handler
	active  atomic.Bool
}

// SelectionBus is a broadcast channel: no queueing, no replay to late
// subscribers, delivery in registration order.
type SelectionBus struct {
	mu   sync.RWMutex
	subs []*subscription
}

func New() *SelectionBus {
	return &SelectionBus{}
}

// Subscribe registers h for every selection.
func (b *SelectionBus) Subscribe(h Handler) Unsubscribe {
	return b.add(anyEvent, h)
}

// SubscribeID registers h only for selections of eventID.
func (b *SelectionBus) SubscribeID(eventID int, h Handler) Unsubscribe {
	return b.add(eventID, h)
}

func (b *SelectionBus) add(eventID int, h Handler) Unsubscribe {
	s := &subscription{eventID: eventID, handler: h}
	s.active.Store(true)

	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.active.Store(false)
			b.remove(s)
		})
	}
}

func (b *SelectionBus) remove(target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == target {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers ev to every current subscriber and returns how many
// handlers ran. Handlers may publish or unsubscribe from inside a delivery;
// one detached mid-delivery is skipped.
func (b *SelectionBus) Publish(ev models.SelectionEvent) int {
	b.mu.RLock()
	snapshot := make([]*subscription, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.RUnlock()

	delivered := 0
	for _, s := range snapshot {
		if s.eventID != anyEvent && s.eventID != ev.EventID {
			continue
		}
		if !s.active.Load() {
			continue
		}
		s.handler(ev)
		delivered++
	}
	return delivered
}

// Len is the number of attached subscribers.
func (b *SelectionBus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
