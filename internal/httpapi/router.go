// Package httpapi is the REST surface: single-player games, room views,
// archived stats and the websocket endpoint.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Rooms is the multiplayer side mounted next to the REST routes.
type Rooms interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
	ServeRoom(w http.ResponseWriter, r *http.Request)
}

type RouterConfig struct {
	ClientOrigin   string
	HandlerTimeout time.Duration
}

// NewRouter builds the full route tree. The websocket endpoint sits outside
// the timeout middleware so long-lived connections are not cut.
func NewRouter(cfg RouterConfig, games *GameHandler, rooms Rooms, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(accessLog(log)...)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if rooms != nil {
		r.Get("/ws", rooms.ServeWS)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(cors(cfg.ClientOrigin))
		if cfg.HandlerTimeout > 0 {
			api.Use(chimw.Timeout(cfg.HandlerTimeout))
		}

		api.Post("/start-game", games.StartGame)
		api.Post("/guess", games.Guess)
		api.Get("/game/{gameId}", games.GetGame)
		api.Get("/stats", games.GetStats)
		if rooms != nil {
			api.Get("/rooms/{roomId}", rooms.ServeRoom)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
	})
	return r
}
