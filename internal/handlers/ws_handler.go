package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joshua-takyi/eventmap/internal/mapsync"
	"github.com/joshua-takyi/eventmap/internal/models"
	"github.com/joshua-takyi/eventmap/internal/services"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 4096
)

// wsSink serializes writes; a gorilla connection allows one writer at a time.
type wsSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsSink) Send(cmd mapsync.Command) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return w.conn.WriteJSON(cmd)
}

func (w *wsSink) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// NewUpgrader accepts same-origin requests and the configured browser origins.
func NewUpgrader(origins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(origins, "*") {
				return true
			}
			return slices.Contains(origins, origin) || origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}
}

// SessionSocket connects a browser page to its session. The server pushes
// view commands and selection broadcasts; the browser reports clicks,
// surface switches and zoom changes.
func SessionSocket(sessions *services.SessionService, upgrader *websocket.Upgrader, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := sessionParam(c, sessions)
		if !ok {
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade has already replied to the client
			logger.Warn("websocket upgrade failed", "session_id", s.ID, "error", err)
			return
		}
		defer conn.Close()

		sink := &wsSink{conn: conn}
		detach := s.Attach(sink)
		defer detach()

		done := make(chan struct{})
		defer close(done)
		go keepAlive(sink, done, logger)

		conn.SetReadLimit(maxMessage)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			var msg models.ClientMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warn("websocket closed unexpectedly", "session_id", s.ID, "error", err)
				}
				return
			}
			if err := s.Dispatch(msg); err != nil {
				level := slog.LevelDebug
				if errors.Is(err, services.ErrUnknownMessage) {
					level = slog.LevelWarn
				}
				logger.Log(c.Request.Context(), level, "client message rejected", "session_id", s.ID, "error", err)
			}
		}
	}
}

func keepAlive(sink *wsSink, done <-chan struct{}, logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := sink.ping(); err != nil {
				logger.Debug("websocket ping failed", "error", err)
				return
			}
		}
	}
}
