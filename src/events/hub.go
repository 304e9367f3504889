// Package events pushes position set lifecycle changes to websocket subscribers
// so open web and mobile shells can refresh without polling.
package events

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"
)

const (
	TypePositionSetActivated = "position_set.activated"
	TypePositionSetDeleted   = "position_set.deleted"
	TypePositionSetImported  = "position_set.imported"
	TypePositionsUpdated     = "positions.updated"
	TypeHistoricalRefreshed  = "historical_data.refreshed"

	writeWait     = 10 * time.Second
	pingPeriod    = 30 * time.Second
	clientBacklog = 16
)

// Event is one lifecycle notification.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	PositionSetID uint      `json:"positionSetId,omitempty"`
	At            time.Time `json:"at"`
}

// NewEvent stamps a new event with a random id and the current time.
func NewEvent(eventType string, positionSetID uint) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		PositionSetID: positionSetID,
		At:            time.Now().UTC(),
	}
}

type client struct {
	send chan Event
}

// Hub fans events out to every connected websocket client.
// Publish never blocks: a client whose backlog is full misses the event.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	log      *logger.Entry
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: logger.WithField("component", "events.Hub"),
	}
}

// Publish delivers e to every subscriber.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- e:
		default:
			h.log.WithField("type", e.Type).Warn("dropping event for slow websocket client")
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) subscribe() *client {
	c := &client{send: make(chan Event, clientBacklog)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	return c
}

func (h *Hub) unsubscribe(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// ServeHTTP upgrades the request and streams events until the peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	c := h.subscribe()
	defer h.unsubscribe(c)

	h.log.WithField("remote", r.RemoteAddr).Debug("websocket client connected")

	// the read loop only exists to notice the peer closing
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case e := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				h.log.WithError(err).Debug("websocket write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
