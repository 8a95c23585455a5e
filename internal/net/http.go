package net

import (
	"encoding/json"
	nethttp "net/http"

	"dungeon-crawlers/sim/internal/sim"
	"dungeon-crawlers/sim/internal/telemetry"
)

// StatusResponse is the payload served by the status endpoint.
type StatusResponse struct {
	Tick       uint64            `json:"tick"`
	Paused     bool              `json:"paused"`
	Crawlers   int               `json:"crawlers"`
	Spectators int               `json:"spectators"`
	Counters   map[string]uint64 `json:"counters,omitempty"`
}

// Server bundles the HTTP surface: spectator websocket, status, and the
// operator control endpoint.
type Server struct {
	engine   *sim.Engine
	hub      *Hub
	handler  *Handler
	counters *telemetry.Counters
	logger   telemetry.Logger
}

// NewServer wires the HTTP surface for an engine.
func NewServer(engine *sim.Engine, hub *Hub, counters *telemetry.Counters, logger telemetry.Logger) *Server {
	return &Server{
		engine:   engine,
		hub:      hub,
		handler:  NewHandler(hub, logger),
		counters: counters,
		logger:   logger,
	}
}

// Routes registers every endpoint on the mux.
func (s *Server) Routes(mux *nethttp.ServeMux) {
	mux.HandleFunc("/ws", s.handler.Handle)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/control", s.handleControl)
}

func (s *Server) handleStatus(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodGet {
		nethttp.Error(w, "method not allowed", nethttp.StatusMethodNotAllowed)
		return
	}
	resp := StatusResponse{
		Tick:       s.engine.Tick(),
		Paused:     s.engine.Paused(),
		Crawlers:   len(s.engine.CrawlerIDs()),
		Spectators: s.hub.ClientCount(),
		Counters:   s.counters.Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil && s.logger != nil {
		s.logger.Printf("http: encode status: %v", err)
	}
}

// handleControl accepts operator commands and stages them for the next tick.
func (s *Server) handleControl(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodPost {
		nethttp.Error(w, "method not allowed", nethttp.StatusMethodNotAllowed)
		return
	}
	var cmd sim.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		nethttp.Error(w, "malformed command", nethttp.StatusBadRequest)
		return
	}
	switch cmd.Type {
	case sim.CommandPause, sim.CommandResume, sim.CommandInteract, sim.CommandDamage:
	default:
		nethttp.Error(w, "unknown command type", nethttp.StatusBadRequest)
		return
	}
	s.engine.Post(cmd)
	w.WriteHeader(nethttp.StatusAccepted)
}
