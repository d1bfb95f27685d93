// Package live fans editor and publish updates out to connected websocket
// clients. Preview watchers follow one page's draft; event watchers follow
// publish notifications for a whole store frontend.
package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/emrgen/storefront/internal/document"
	"github.com/emrgen/storefront/internal/queue"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// KindDraft messages carry the full draft sections after an edit.
	KindDraft = "draft"
	// KindPublished messages carry only the page id and change time. Viewers
	// refetch; the notification is never the source of content.
	KindPublished = "published"
)

const sendBuffer = 16

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the envelope sent to live clients.
type Message struct {
	Kind      string            `json:"kind"`
	PageID    string            `json:"pageId"`
	Sections  document.Sections `json:"sections,omitempty"`
	ChangedAt time.Time         `json:"changedAt,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		preview: map[string]map[*client]bool{},
		events:  map[*client]bool{},
	}
}

// Hub tracks the live subscribers of this server instance.
type Hub struct {
	mu      sync.RWMutex
	preview map[string]map[*client]bool
	events  map[*client]bool
}

// ServePreview upgrades the connection and streams one page's draft updates
// until the client disconnects.
func (h *Hub) ServePreview(w http.ResponseWriter, r *http.Request, pageID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Errorf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.preview[pageID] == nil {
		h.preview[pageID] = map[*client]bool{}
	}
	h.preview[pageID][c] = true
	h.mu.Unlock()

	go c.writePump()
	c.readUntilClose()

	h.mu.Lock()
	delete(h.preview[pageID], c)
	if len(h.preview[pageID]) == 0 {
		delete(h.preview, pageID)
	}
	h.mu.Unlock()
	close(c.send)
}

// ServeEvents upgrades the connection and streams publish notifications until
// the client disconnects.
func (h *Hub) ServeEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Errorf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.events[c] = true
	h.mu.Unlock()

	go c.writePump()
	c.readUntilClose()

	h.mu.Lock()
	delete(h.events, c)
	h.mu.Unlock()
	close(c.send)
}

// PushDraft sends the full draft to every preview watcher of the page.
func (h *Hub) PushDraft(pageID string, sections document.Sections) {
	data, err := json.Marshal(&Message{
		Kind:     KindDraft,
		PageID:   pageID,
		Sections: sections,
	})
	if err != nil {
		logrus.Errorf("error encoding draft message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.preview[pageID] {
		c.trySend(data)
	}
}

// NotifyPublished tells event watchers, and preview watchers of the page, that
// new content went live.
func (h *Hub) NotifyPublished(event *queue.PublishEvent) {
	data, err := json.Marshal(&Message{
		Kind:      KindPublished,
		PageID:    event.PageID,
		ChangedAt: event.ChangedAt,
	})
	if err != nil {
		logrus.Errorf("error encoding publish message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.events {
		c.trySend(data)
	}
	for c := range h.preview[event.PageID] {
		c.trySend(data)
	}
}

// Forward pumps publish events from the queue into the hub until the context
// is cancelled. Run it once per server instance.
func (h *Hub) Forward(ctx context.Context, events queue.PublishEventQueue) error {
	ch, err := events.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for event := range ch {
			h.NotifyPublished(event)
		}
	}()

	return nil
}

// trySend drops the message when the client's buffer is full. A viewer that
// cannot keep up with draft pushes recovers on the next one.
func (c *client) trySend(data []byte) {
	select {
	case c.send <- data:
	default:
		logrus.Warnf("dropping live message for slow client %s", c.conn.RemoteAddr())
	}
}

func (c *client) writePump() {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (c *client) readUntilClose() {
	defer c.conn.Close()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Debugf("websocket closed: %v", err)
			}
			return
		}
	}
}
