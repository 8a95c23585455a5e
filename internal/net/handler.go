package net

import (
	nethttp "net/http"

	"github.com/gorilla/websocket"

	"dungeon-crawlers/sim/internal/telemetry"
)

// Handler upgrades spectator connections and attaches them to the hub.
type Handler struct {
	hub      *Hub
	logger   telemetry.Logger
	upgrader websocket.Upgrader
}

// NewHandler builds the websocket endpoint for a hub.
func NewHandler(hub *Hub, logger telemetry.Logger) *Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}
	return &Handler{hub: hub, logger: logger, upgrader: upgrader}
}

// Handle serves one spectator connection until it closes.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("ws: upgrade failed: %v", err)
		}
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, clientQueueSize),
		done: make(chan struct{}),
	}
	if !h.hub.register(c) {
		conn.Close()
		return
	}

	go c.writePump()

	// Spectators are read-only. The read loop only detects disconnects and
	// discards anything sent.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.hub.unregister(c)
			return
		}
	}
}
