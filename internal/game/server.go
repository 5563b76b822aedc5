package game

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type ServerConfig struct {
	ClientOrigin   string // "*" accepts any origin
	PingPeriod     time.Duration
	WriteWait      time.Duration
	ReadWait       time.Duration
	SendBuffer     int
	MaxMessageSize int64
}

// Server exposes the coordinator over websockets.
type Server struct {
	cfg      ServerConfig
	coord    *Coordinator
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewServer(cfg ServerConfig, coord *Coordinator, log zerolog.Logger) *Server {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}
	if cfg.ReadWait <= 0 {
		cfg.ReadWait = 60 * time.Second
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= cfg.ReadWait {
		cfg.PingPeriod = cfg.ReadWait * 9 / 10
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}

	s := &Server{
		cfg:   cfg,
		coord: coord,
		log:   log.With().Str("component", "ws").Logger(),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

// ServeWS upgrades to a websocket connection.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) { s.handleWS(w, r) }

// ServeRoom answers GET .../rooms/{roomId} with the room view.
func (s *Server) ServeRoom(w http.ResponseWriter, r *http.Request) { s.handleRoom(w, r) }

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || s.cfg.ClientOrigin == "*" || origin == s.cfg.ClientOrigin
}

func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	v, err := s.coord.Room(chi.URLParam(r, "roomId"))
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Room not found", "code": "not_found"})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
