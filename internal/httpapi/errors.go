package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"example.com/wordle-duel/internal/game"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: errCode})
}

// writeGameError maps domain errors onto status codes; anything unknown is
// logged and reported as 500.
func writeGameError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, "invalid_format", "Invalid guess format")
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Game not found")
	case errors.Is(err, game.ErrAlreadyComplete):
		writeError(w, http.StatusBadRequest, "game_complete", "Game is already complete")
	case errors.Is(err, game.ErrRoundsExhausted):
		writeError(w, http.StatusBadRequest, "rounds_exhausted", "Maximum rounds reached")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error")
	}
}
