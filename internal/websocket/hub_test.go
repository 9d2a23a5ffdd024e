package websocket

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("client count never reached %d, got %d", want, hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBroadcastReload(t *testing.T) {
	hub, url := newTestHub(t)
	conn := dial(t, url)
	waitForClients(t, hub, 1)

	hub.BroadcastReload(42, 3)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event Event
	require.NoError(t, conn.ReadJSON(&event))

	assert.Equal(t, EventDatasetReloaded, event.Type)
	data, ok := event.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(42), data["record_count"])
	assert.Equal(t, float64(3), data["client_count"])
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub, url := newTestHub(t)
	first := dial(t, url)
	second := dial(t, url)
	waitForClients(t, hub, 2)

	hub.BroadcastReload(1, 1)

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var event Event
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, EventDatasetReloaded, event.Type)
	}
}

func TestDisconnectRemovesClient(t *testing.T) {
	hub, url := newTestHub(t)
	conn := dial(t, url)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}
