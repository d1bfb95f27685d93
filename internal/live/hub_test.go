package live

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emrgen/storefront/internal/document"
	"github.com/emrgen/storefront/internal/queue"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func newHubServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub()
	mux := http.NewServeMux()
	mux.HandleFunc("/preview/", func(w http.ResponseWriter, r *http.Request) {
		hub.ServePreview(w, r, strings.TrimPrefix(r.URL.Path, "/preview/"))
	})
	mux.HandleFunc("/events", hub.ServeEvents)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return hub, server
}

func dial(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) *Message {
	t.Helper()

	assert.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	assert.NoError(t, err)

	msg := &Message{}
	assert.NoError(t, json.Unmarshal(data, msg))

	return msg
}

func TestPreviewReceivesDraftPushes(t *testing.T) {
	hub, server := newHubServer(t)
	conn := dial(t, server, "/preview/page-1")

	sections := document.AddSection(document.Sections{}, "hero", nil, true)

	// subscription is registered during the upgrade, but give the pump a beat
	time.Sleep(50 * time.Millisecond)
	hub.PushDraft("page-1", sections)

	msg := readMessage(t, conn)
	assert.Equal(t, KindDraft, msg.Kind)
	assert.Equal(t, "page-1", msg.PageID)
	assert.Len(t, msg.Sections, 1)
}

func TestPreviewIsScopedToPage(t *testing.T) {
	hub, server := newHubServer(t)
	conn := dial(t, server, "/preview/page-1")

	time.Sleep(50 * time.Millisecond)
	hub.PushDraft("page-2", document.Sections{})
	hub.PushDraft("page-1", document.Sections{})

	// only the page-1 push arrives
	msg := readMessage(t, conn)
	assert.Equal(t, "page-1", msg.PageID)
}

func TestPublishNotificationCarriesNoContent(t *testing.T) {
	hub, server := newHubServer(t)
	conn := dial(t, server, "/events")

	changedAt := time.Now().UTC().Truncate(time.Second)
	time.Sleep(50 * time.Millisecond)
	hub.NotifyPublished(&queue.PublishEvent{
		PageID:    "page-1",
		ChangedAt: changedAt,
	})

	msg := readMessage(t, conn)
	assert.Equal(t, KindPublished, msg.Kind)
	assert.Equal(t, "page-1", msg.PageID)
	assert.True(t, changedAt.Equal(msg.ChangedAt))
	assert.Nil(t, msg.Sections)
}

func TestPreviewWatcherSeesPublish(t *testing.T) {
	hub, server := newHubServer(t)
	conn := dial(t, server, "/preview/page-1")

	time.Sleep(50 * time.Millisecond)
	hub.NotifyPublished(&queue.PublishEvent{PageID: "page-1", ChangedAt: time.Now()})

	msg := readMessage(t, conn)
	assert.Equal(t, KindPublished, msg.Kind)
	assert.Nil(t, msg.Sections)
}
