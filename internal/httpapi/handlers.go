package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"example.com/wordle-duel/internal/results"
	"example.com/wordle-duel/internal/solo"
)

// Games is the single-player surface used by the REST handlers.
type Games interface {
	StartGame(ctx context.Context) (solo.Handle, error)
	SubmitGuess(ctx context.Context, id, guess string) (solo.Outcome, error)
	GetGame(ctx context.Context, id string) (solo.View, error)
}

// Stats reports archived result counts. A nil Stats yields an empty summary.
type Stats interface {
	Summary(ctx context.Context) ([]results.SummaryRow, error)
}

type GameHandler struct {
	Games Games
	Stats Stats
}

type GuessRequest struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

type StatsResponse struct {
	Results []results.SummaryRow `json:"results"`
}

func (h *GameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	handle, err := h.Games.StartGame(r.Context())
	if err != nil {
		writeGameError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, handle)
}

func (h *GameHandler) Guess(w http.ResponseWriter, r *http.Request) {
	var req GuessRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<12)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}

	out, err := h.Games.SubmitGuess(r.Context(), req.GameID, req.Guess)
	if err != nil {
		writeGameError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	v, err := h.Games.GetGame(r.Context(), chi.URLParam(r, "gameId"))
	if err != nil {
		writeGameError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *GameHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{Results: []results.SummaryRow{}}
	if h.Stats != nil {
		rows, err := h.Stats.Summary(r.Context())
		if err != nil {
			writeGameError(w, r, err)
			return
		}
		if rows != nil {
			resp.Results = rows
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
