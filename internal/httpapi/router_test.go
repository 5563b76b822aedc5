package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/wordle-duel/internal/game"
	"example.com/wordle-duel/internal/results"
	"example.com/wordle-duel/internal/solo"
)

type fixedAnswer string

func (a fixedAnswer) SelectAnswer() string { return string(a) }

type fakeStats struct {
	rows []results.SummaryRow
	err  error
}

func (f fakeStats) Summary(context.Context) ([]results.SummaryRow, error) { return f.rows, f.err }

func newTestAPI(t *testing.T, stats Stats) *httptest.Server {
	t.Helper()
	log := zerolog.Nop()
	svc := solo.NewService(solo.NewMemoryStore(0, 0), fixedAnswer("crane"), 6, nil, log)
	coord := game.NewCoordinator(game.Config{MaxRounds: 6}, game.NewMemoryRoomStore(), fixedAnswer("crane"), nil, log)
	rooms := game.NewServer(game.ServerConfig{ClientOrigin: "*"}, coord, log)

	h := NewRouter(RouterConfig{ClientOrigin: "http://localhost:3000"}, &GameHandler{Games: svc, Stats: stats}, rooms, log)
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, body string, out any) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestAPI_SinglePlayerFlow(t *testing.T) {
	ts := newTestAPI(t, nil)

	var started solo.Handle
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/start-game", "", &started)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, started.GameID)
	assert.Equal(t, 6, started.MaxRounds)

	var raw map[string]any
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/guess", `{"gameId":"`+started.GameID+`","guess":"nacre"}`, &raw)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"present", "present", "present", "present", "hit"}, raw["result"])
	assert.Equal(t, false, raw["isCorrect"])
	assert.Equal(t, float64(1), raw["currentRound"])
	assert.Contains(t, raw, "winner")
	assert.Nil(t, raw["winner"])

	var view map[string]any
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/game/"+started.GameID, "", &view)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, view, "answer")
	assert.Equal(t, false, view["isComplete"])

	raw = nil
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/guess", `{"gameId":"`+started.GameID+`","guess":"crane"}`, &raw)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "player", raw["winner"])
	assert.Equal(t, true, raw["gameComplete"])

	var e ErrorResponse
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/guess", `{"gameId":"`+started.GameID+`","guess":"crane"}`, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, ErrorResponse{Error: "Game is already complete", Code: "game_complete"}, e)

	view = nil
	doJSON(t, http.MethodGet, ts.URL+"/api/game/"+started.GameID, "", &view)
	assert.Equal(t, "crane", view["answer"])
}

func TestAPI_Errors(t *testing.T) {
	ts := newTestAPI(t, nil)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		want   ErrorResponse
	}{
		{
			name: "bad format checked before existence", method: http.MethodPost, path: "/api/guess",
			body: `{"gameId":"missing","guess":"abc"}`, status: http.StatusBadRequest,
			want: ErrorResponse{Error: "Invalid guess format", Code: "invalid_format"},
		},
		{
			name: "unknown game", method: http.MethodPost, path: "/api/guess",
			body: `{"gameId":"missing","guess":"crane"}`, status: http.StatusNotFound,
			want: ErrorResponse{Error: "Game not found", Code: "not_found"},
		},
		{
			name: "malformed json", method: http.MethodPost, path: "/api/guess",
			body: `{"gameId":`, status: http.StatusBadRequest,
			want: ErrorResponse{Error: "invalid json", Code: "bad_request"},
		},
		{
			name: "unknown game view", method: http.MethodGet, path: "/api/game/missing",
			status: http.StatusNotFound,
			want:   ErrorResponse{Error: "Game not found", Code: "not_found"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got ErrorResponse
			resp := doJSON(t, tc.method, ts.URL+tc.path, tc.body, &got)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAPI_Stats(t *testing.T) {
	t.Run("archive disabled", func(t *testing.T) {
		ts := newTestAPI(t, nil)
		var got StatsResponse
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/stats", "", &got)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, got.Results)
		assert.NotNil(t, got.Results)
	})

	t.Run("summary rows", func(t *testing.T) {
		rows := []results.SummaryRow{{Mode: results.ModeSolo, Winner: "player", Count: 3}}
		ts := newTestAPI(t, fakeStats{rows: rows})
		var got StatsResponse
		doJSON(t, http.MethodGet, ts.URL+"/api/stats", "", &got)
		assert.Equal(t, rows, got.Results)
	})

	t.Run("store failure", func(t *testing.T) {
		ts := newTestAPI(t, fakeStats{err: errors.New("db down")})
		var got ErrorResponse
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/stats", "", &got)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "internal", got.Code)
	})
}

func TestAPI_CORSAndHealth(t *testing.T) {
	ts := newTestAPI(t, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/guess", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", buf.String())

	var e ErrorResponse
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/rooms/none", "", &e)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", e.Code)
}
