package events

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHub_BroadcastsToClients(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	first := dial(t, srv)
	second := dial(t, srv)

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	sent := NewEvent(TypePositionSetActivated, 42)
	hub.Publish(sent)

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got Event
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, TypePositionSetActivated, got.Type)
		assert.EqualValues(t, 42, got.PositionSetID)
	}
}

func TestHub_UnsubscribesOnClose(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	// publishing with nobody listening is a no-op
	hub.Publish(NewEvent(TypePositionsUpdated, 1))
}

func TestHub_RejectsPlainHTTP(t *testing.T) {
	hub := NewHub()
	rr := httptest.NewRecorder()
	hub.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ws/events", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, hub.ClientCount())
}

func TestNewEvent(t *testing.T) {
	a := NewEvent(TypePositionSetDeleted, 3)
	b := NewEvent(TypePositionSetDeleted, 3)
	assert.NotEqual(t, a.ID, b.ID)
	assert.WithinDuration(t, time.Now().UTC(), a.At, time.Second)
}
