package websocket_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/snapstudio/server/internal/event"
	"github.com/snapstudio/server/internal/websocket"
)

func dialHub(t *testing.T, url string) *gorilla.Conn {
	t.Helper()
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *gorilla.Conn) event.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var evt event.Event
	require.NoError(t, json.Unmarshal(data, &evt))
	return evt
}

func TestHub_BroadcastsEventsToAllClients(t *testing.T) {
	hub := websocket.NewHub(nil)
	go hub.Run()

	srv := httptest.NewServer(hub)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	first := dialHub(t, url)
	second := dialHub(t, url)

	// Give the register messages time to reach the hub loop.
	time.Sleep(50 * time.Millisecond)

	hub.HandleEvent(event.Event{
		Type:       event.SessionCreated,
		OccurredAt: time.Now(),
		Payload:    map[string]string{"id": "sess-1"},
	})

	for _, conn := range []*gorilla.Conn{first, second} {
		evt := readEvent(t, conn)
		require.Equal(t, event.SessionCreated, evt.Type)
		require.NotNil(t, evt.Payload)
	}
}

func TestHub_ClientDisconnectDoesNotStopBroadcast(t *testing.T) {
	hub := websocket.NewHub(nil)
	go hub.Run()

	srv := httptest.NewServer(hub)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	gone := dialHub(t, url)
	stays := dialHub(t, url)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, gone.Close())
	time.Sleep(50 * time.Millisecond)

	hub.HandleEvent(event.Event{Type: event.PhotoAdded, OccurredAt: time.Now()})

	evt := readEvent(t, stays)
	require.Equal(t, event.PhotoAdded, evt.Type)
}

func TestHub_DropsUnencodableEvent(t *testing.T) {
	hub := websocket.NewHub(nil)
	require.NotPanics(t, func() {
		hub.HandleEvent(event.Event{Type: event.SessionUpdated, Payload: func() {}})
	})
}
