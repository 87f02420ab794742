package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/eventmap/internal/bus"
	"github.com/joshua-takyi/eventmap/internal/mapsync"
	"github.com/joshua-takyi/eventmap/internal/metrics"
	"github.com/joshua-takyi/eventmap/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownMessage  = errors.New("unknown client message")
)

// Session is one open page: its own selection bus, search state, map
// controller and card list. Nothing is shared between sessions except the
// asset loader.
type Session struct {
	ID        string
	CreatedAt time.Time

	Bus        *bus.SelectionBus
	Tracker    *SearchTracker
	Controller *mapsync.Controller
	Cards      *mapsync.ListSync

	sink      *clientSink
	logger    *slog.Logger
	metrics   *metrics.Metrics
	broadcast bus.Unsubscribe

	applyMu sync.Mutex

	mu       sync.Mutex
	lastSeen time.Time
}

func newSession(loader mapsync.AssetLoader, highlight time.Duration, logger *slog.Logger, m *metrics.Metrics) *Session {
	id := uuid.New().String()
	logger = logger.With("session_id", id)
	sink := &clientSink{}
	b := bus.New()

	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		Bus:       b,
		Tracker:   NewSearchTracker(),
		sink:      sink,
		logger:    logger,
		metrics:   m,
		lastSeen:  time.Now(),
	}

	list := mapsync.NewCommandList(sink, logger)
	newMap := func() mapsync.Map { return mapsync.NewCommandMap(sink, logger) }
	s.Controller = mapsync.NewController(b, newMap, list, loader, logger, m)
	s.Cards = mapsync.NewListSync(b, list, highlight)

	s.Controller.Mount()
	s.broadcast = b.Subscribe(func(ev models.SelectionEvent) {
		if err := sink.Send(mapsync.Command{Op: mapsync.OpSelection, EventID: ev.EventID}); err != nil && !errors.Is(err, mapsync.ErrNoClient) {
			logger.Warn("selection broadcast failed", "event_id", ev.EventID, "error", err)
		}
	})
	return s
}

// Attach routes view commands to a connected browser, replacing any earlier
// connection. The returned function detaches it again.
func (s *Session) Attach(client mapsync.Sink) (detach func()) {
	gen := s.sink.set(client)
	s.touch()
	s.logger.Info("client attached")

	return func() {
		if !s.sink.clear(gen) {
			return
		}
		s.Controller.DetachSurface()
		s.touch()
		s.logger.Info("client detached")
	}
}

func (s *Session) Connected() bool {
	return s.sink.attached()
}

// Apply renders an accepted search result into the map and the card list.
// Results are applied one at a time, and a result that is stale or has been
// overtaken by a newer search is dropped. It reports whether the result was
// rendered.
func (s *Session) Apply(ctx context.Context, result *models.SearchResult) bool {
	s.touch()

	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	if result.Stale {
		return false
	}
	if latest := s.Tracker.Generation(); result.Generation != latest {
		s.metrics.Stale()
		s.logger.Info("dropping superseded search result", "generation", result.Generation, "latest", latest)
		return false
	}
	s.Controller.Load(ctx, result.Events)

	ids := make([]int, len(result.Events))
	for i, e := range result.Events {
		ids[i] = e.ID
	}
	s.Cards.Replace(ids)
	return true
}

// Select publishes a selection that did not come from the map or a card.
func (s *Session) Select(eventID int) int {
	s.touch()
	s.metrics.Selection("api")
	return s.Bus.Publish(models.SelectionEvent{EventID: eventID})
}

// Dispatch handles one message from the browser.
func (s *Session) Dispatch(msg models.ClientMessage) error {
	s.touch()
	switch msg.Type {
	case models.MessageSelect:
		if msg.EventID <= 0 {
			return fmt.Errorf("select: invalid event id %d", msg.EventID)
		}
		s.Select(msg.EventID)
	case models.MessageMarkerClick:
		s.Controller.MarkerClicked(msg.EventID)
	case models.MessageCardClick:
		s.Controller.CardClicked(msg.EventID, msg.Target)
	case models.MessageSurface:
		if msg.Surface == "" {
			return fmt.Errorf("surface: missing surface id")
		}
		s.Controller.AttachSurface(mapsync.NewRemoteSurface(msg.Surface, s.sink, s.logger))
	case models.MessageZoom:
		s.Controller.ReportZoom(msg.Zoom)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	return nil
}

func (s *Session) Info() models.SessionInfo {
	return models.SessionInfo{ID: s.ID, CreatedAt: s.CreatedAt, Connected: s.Connected()}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) close() {
	s.broadcast()
	s.Cards.Close()
	s.Controller.Unmount()
	s.sink.reset()
}

// clientSink forwards commands to whichever browser connection is current.
type clientSink struct {
	mu     sync.RWMutex
	target mapsync.Sink
	gen    uint64
}

func (cs *clientSink) Send(cmd mapsync.Command) error {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	if cs.target == nil {
		return mapsync.ErrNoClient
	}
	return cs.target.Send(cmd)
}

func (cs *clientSink) set(target mapsync.Sink) uint64 {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.gen++
	cs.target = target
	return cs.gen
}

// clear detaches the target only if it is still the one attached at gen.
func (cs *clientSink) clear(gen uint64) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.gen != gen || cs.target == nil {
		return false
	}
	cs.target = nil
	return true
}

func (cs *clientSink) reset() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.gen++
	cs.target = nil
}

func (cs *clientSink) attached() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.target != nil
}

// SessionService keeps page sessions in memory.
type SessionService struct {
	loader    mapsync.AssetLoader
	highlight time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionService(loader mapsync.AssetLoader, highlight time.Duration, logger *slog.Logger, m *metrics.Metrics) *SessionService {
	return &SessionService{
		loader:    loader,
		highlight: highlight,
		logger:    logger,
		metrics:   m,
		sessions:  make(map[string]*Session),
	}
}

func (ss *SessionService) Create() *Session {
	s := newSession(ss.loader, ss.highlight, ss.logger, ss.metrics)

	ss.mu.Lock()
	ss.sessions[s.ID] = s
	ss.mu.Unlock()

	ss.metrics.SessionOpened()
	ss.logger.Info("session created", "session_id", s.ID)
	return s
}

func (ss *SessionService) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	ss.mu.RLock()
	s, ok := ss.sessions[id]
	ss.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Close tears a session down: the map is destroyed and every subscriber
// leaves its bus.
func (ss *SessionService) Close(id string) error {
	ss.mu.Lock()
	s, ok := ss.sessions[id]
	delete(ss.sessions, id)
	ss.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.close()
	ss.metrics.SessionClosed()
	ss.logger.Info("session closed", "session_id", id)
	return nil
}

// Sweep closes sessions without a connected client that have been idle for
// longer than idle, returning how many were closed.
func (ss *SessionService) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	ss.mu.RLock()
	var expired []string
	for id, s := range ss.sessions {
		if !s.Connected() && s.idleSince().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	ss.mu.RUnlock()

	closed := 0
	for _, id := range expired {
		if ss.Close(id) == nil {
			closed++
		}
	}
	if closed > 0 {
		ss.logger.Info("idle sessions swept", "closed", closed)
	}
	return closed
}

// RunSweeper sweeps every interval until ctx is done.
func (ss *SessionService) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ss.Sweep(idle)
		}
	}
}

func (ss *SessionService) CloseAll() {
	ss.mu.RLock()
	ids := make([]string, 0, len(ss.sessions))
	for id := range ss.sessions {
		ids = append(ids, id)
	}
	ss.mu.RUnlock()

	for _, id := range ids {
		_ = ss.Close(id)
	}
}

func (ss *SessionService) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}
