package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dontdude/goscribe/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// watcher serializes writes to one connection.
type watcher struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *watcher) write(body []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return w.conn.WriteMessage(websocket.TextMessage, body)
}

// Hub forwards published Results to WebSocket clients watching their audioId.
type Hub struct {
	tag     string
	backoff time.Duration

	mu       sync.RWMutex
	watchers map[string]map[*watcher]struct{} // audioId -> watchers
}

// NewHub returns an empty hub that follows Results carrying tag.
// An empty tag follows every message on the topic.
func NewHub(tag string, backoff time.Duration) *Hub {
	if backoff <= 0 {
		backoff = 5 * time.Second
	}
	return &Hub{
		tag:      tag,
		backoff:  backoff,
		watchers: make(map[string]map[*watcher]struct{}),
	}
}

// Run consumes Result envelopes from topic and broadcasts each to its watchers.
// Failed or closed subscriptions are retried after the backoff until ctx is done.
func (h *Hub) Run(ctx context.Context, t domain.Transport, topic, group string) {
	for ctx.Err() == nil {
		msgs, err := t.Subscribe(ctx, topic, group, h.tag)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("Result subscription failed", "topic", topic, "group", group, "error", err, "backoff", h.backoff)
			h.wait(ctx)
			continue
		}

		slog.Info("Broadcasting results", "topic", topic, "group", group, "tag", h.tag)
		h.forward(ctx, msgs)
		if ctx.Err() != nil {
			return
		}
		slog.Warn("Result subscription ended, re-subscribing", "topic", topic, "backoff", h.backoff)
		h.wait(ctx)
	}
}

func (h *Hub) wait(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(h.backoff):
	}
}

func (h *Hub) forward(ctx context.Context, msgs <-chan domain.Message) {
	for m := range msgs {
		res, err := domain.DecodeResult(m.Body)
		if err != nil {
			slog.Warn("Dropping undecodable result", "msgID", m.ID, "error", err)
		} else if n := h.Broadcast(res.AudioID, m.Body); n > 0 {
			slog.Debug("Result forwarded", "audioID", res.AudioID, "watchers", n)
		}
		if err := m.Ack(ctx); err != nil {
			slog.Error("Failed to ack result", "msgID", m.ID, "error", err)
		}
	}
}

// Broadcast writes body to every watcher of audioID and returns how many received it.
func (h *Hub) Broadcast(audioID string, body []byte) int {
	h.mu.RLock()
	targets := make([]*watcher, 0, len(h.watchers[audioID]))
	for w := range h.watchers[audioID] {
		targets = append(targets, w)
	}
	h.mu.RUnlock()

	sent := 0
	for _, w := range targets {
		if err := w.write(body); err != nil {
			slog.Error("Failed to write to websocket", "audioID", audioID, "error", err)
			h.remove(audioID, w)
			_ = w.conn.Close()
			continue
		}
		sent++
	}
	return sent
}

// Watchers returns the number of connected clients.
func (h *Hub) Watchers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.watchers {
		n += len(set)
	}
	return n
}

func (h *Hub) add(audioID string, w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[audioID] == nil {
		h.watchers[audioID] = make(map[*watcher]struct{})
	}
	h.watchers[audioID][w] = struct{}{}
}

func (h *Hub) remove(audioID string, w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.watchers[audioID]; ok {
		delete(set, w)
		if len(set) == 0 {
			delete(h.watchers, audioID)
		}
	}
}

// ServeWS handles GET /api/ws?audio_id=... .
func (h *Hub) ServeWS(c *gin.Context) {
	audioID := c.Query("audio_id")
	if audioID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio_id is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	w := &watcher{conn: conn}
	h.add(audioID, w)
	slog.Info("Client watching result", "audioID", audioID, "remoteAddr", conn.RemoteAddr())
	defer func() {
		h.remove(audioID, w)
		_ = conn.Close()
		slog.Info("Client disconnected", "audioID", audioID)
	}()

	// Reads only detect the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
