package net

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"dungeon-crawlers/sim/internal/sim"
	"dungeon-crawlers/sim/internal/telemetry"
	"dungeon-crawlers/sim/logging"
)

const clientQueueSize = 32

// Hub fans simulation snapshots and the event feed out to spectators. Traffic
// is strictly one way; nothing a spectator sends reaches the engine.
type Hub struct {
	logger telemetry.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// NewHub returns an empty hub.
func NewHub(logger telemetry.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

type snapshotMessage struct {
	Type string       `json:"type"`
	Data sim.Snapshot `json:"data"`
}

type eventMessage struct {
	Type string        `json:"type"`
	Data logging.Event `json:"data"`
}

// BroadcastSnapshot serializes the step result for every connected spectator.
// Slow clients are disconnected rather than allowed to stall the tick.
func (h *Hub) BroadcastSnapshot(result sim.StepResult) {
	data, err := json.Marshal(snapshotMessage{Type: "snapshot", Data: result.Snapshot})
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("hub: marshal snapshot: %v", err)
		}
		return
	}
	h.broadcast(data)
}

// Write implements logging.Sink so the hub can be registered on the event
// router directly.
func (h *Hub) Write(event logging.Event) error {
	data, err := json.Marshal(eventMessage{Type: "event", Data: event})
	if err != nil {
		return err
	}
	h.broadcast(data)
	return nil
}

// Close implements logging.Sink. It drops every spectator.
func (h *Hub) Close(_ context.Context) error {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	return nil
}

// ClientCount reports the number of connected spectators.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	var stalled []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			stalled = append(stalled, c)
			delete(h.clients, c)
		}
	}
	h.mu.Unlock()

	for _, c := range stalled {
		if h.logger != nil {
			h.logger.Printf("hub: dropping stalled spectator %s", c.conn.RemoteAddr())
		}
		c.close()
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}

var _ logging.Sink = (*Hub)(nil)
