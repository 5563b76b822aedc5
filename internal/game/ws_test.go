package game

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, origin string) (*httptest.Server, *Coordinator) {
	t.Helper()
	coord := newTestCoordinator(answers("crane"), nil)
	srv := NewServer(ServerConfig{ClientOrigin: origin}, coord, zerolog.Nop())

	r := chi.NewRouter()
	r.Get("/ws", srv.ServeWS)
	r.Get("/api/rooms/{roomId}", srv.ServeRoom)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, coord
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, frame string) {
	t.Helper()
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(frame)))
}

// readUntil reads frames until one of type typ arrives.
func readUntil(t *testing.T, ws *websocket.Conn, typ string) Envelope {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := ws.ReadMessage()
		require.NoError(t, err, "waiting for %s", typ)
		var env Envelope
		if json.Unmarshal(data, &env) == nil && env.Type == typ {
			return env
		}
	}
}

func TestWS_DuelFlow(t *testing.T) {
	ts, _ := newTestServer(t, "*")
	a, b := dial(t, ts), dial(t, ts)

	send(t, a, `{"type":"join-room","payload":"duel1"}`)
	joined := payloadOf[RoomJoined](t, readUntil(t, a, "room-joined"))
	assert.Equal(t, 1, joined.PlayerNumber)
	assert.Equal(t, 6, joined.MaxRounds)

	send(t, b, `{"type":"join-room","payload":{"roomId":"duel1"}}`)
	assert.Equal(t, 2, payloadOf[RoomJoined](t, readUntil(t, b, "room-joined")).PlayerNumber)
	readUntil(t, a, "game-ready")
	readUntil(t, b, "game-ready")

	send(t, a, `{"type":"submit-guess","payload":{"roomId":"duel1","guess":"nacre"}}`)
	got := payloadOf[GuessSubmitted](t, readUntil(t, b, "guess-submitted"))
	assert.Equal(t, 1, got.PlayerNumber)
	assert.Equal(t, []Status{Present, Present, Present, Present, Hit}, got.Result)

	send(t, b, `{"type":"submit-guess","payload":{"roomId":"duel1","guess":"12345"}}`)
	assert.Equal(t, "Invalid guess format", payloadOf[GuessError](t, readUntil(t, b, "guess-error")).Error)

	send(t, b, `{"type":"submit-guess","payload":{"roomId":"duel1","guess":"crane"}}`)
	send(t, a, `{"type":"submit-guess","payload":{"roomId":"duel1","guess":"crane"}}`)
	var final GuessSubmitted
	for !final.GameComplete {
		final = payloadOf[GuessSubmitted](t, readUntil(t, a, "guess-submitted"))
	}
	assert.True(t, final.GameComplete)
	assert.Equal(t, Player2, final.Winner)

	resp, err := http.Get(ts.URL + "/api/rooms/duel1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v RoomView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, StateComplete, v.State)
	assert.Equal(t, "crane", v.Answer)
}

func TestWS_DisconnectNotifiesOpponent(t *testing.T) {
	ts, coord := newTestServer(t, "*")
	a, b := dial(t, ts), dial(t, ts)

	send(t, a, `{"type":"join-room","payload":"r"}`)
	readUntil(t, a, "room-joined")
	send(t, b, `{"type":"join-room","payload":"r"}`)
	readUntil(t, a, "game-ready")

	require.NoError(t, b.Close())
	readUntil(t, a, "player-left")

	require.Eventually(t, func() bool {
		v, err := coord.Room("r")
		return err == nil && len(v.Players) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWS_MalformedFrameIsReported(t *testing.T) {
	ts, _ := newTestServer(t, "*")
	a := dial(t, ts)

	send(t, a, `{"type":"dance"}`)
	e := payloadOf[GuessError](t, readUntil(t, a, "guess-error"))
	assert.Contains(t, e.Error, "unknown message type")
}

func TestWS_OriginCheck(t *testing.T) {
	ts, _ := newTestServer(t, "http://localhost:3000")
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	hdr := http.Header{}
	hdr.Set("Origin", "http://evil.example")
	ws, resp, err := websocket.DefaultDialer.Dial(url, hdr)
	if ws != nil {
		_ = ws.Close()
	}
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	hdr.Set("Origin", "http://localhost:3000")
	ws, _, err = websocket.DefaultDialer.Dial(url, hdr)
	require.NoError(t, err)
	_ = ws.Close()
}

func TestServer_RoomNotFound(t *testing.T) {
	ts, _ := newTestServer(t, "*")

	resp, err := http.Get(ts.URL + "/api/rooms/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "not_found", body["code"])
}
