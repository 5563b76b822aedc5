package game

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"example.com/wordle-duel/internal/results"
)

// fixedAnswers hands out words in order, repeating the last one.
type fixedAnswers struct {
	mu    sync.Mutex
	words []string
	i     int
}

func answers(words ...string) *fixedAnswers { return &fixedAnswers{words: words} }

func (f *fixedAnswers) SelectAnswer() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.words[f.i]
	if f.i < len(f.words)-1 {
		f.i++
	}
	return w
}

type recorded struct {
	mu   sync.Mutex
	list []results.Result
}

func (r *recorded) Record(res results.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, res)
}

func (r *recorded) all() []results.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]results.Result(nil), r.list...)
}

func newTestConn(id string) *ClientConn {
	return newClientConn(id, nil, 256)
}

func newTestCoordinator(src AnswerSource, rec results.Recorder) *Coordinator {
	return NewCoordinator(Config{MaxRounds: 6}, NewMemoryRoomStore(), src, rec, zerolog.Nop())
}

func zerologNop() zerolog.Logger { return zerolog.Nop() }

func readEnvelopesNonBlocking(c *ClientConn) []Envelope {
	var envs []Envelope
	for {
		select {
		case msg := <-c.send:
			var env Envelope
			if json.Unmarshal(msg, &env) == nil {
				envs = append(envs, env)
			}
		default:
			return envs
		}
	}
}

func types(envs []Envelope) []string {
	out := make([]string, 0, len(envs))
	for _, e := range envs {
		out = append(out, e.Type)
	}
	return out
}

func payloadOf[T any](t *testing.T, env Envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Payload, &v))
	return v
}

func lastOfType(envs []Envelope, typ string) (Envelope, bool) {
	for i := len(envs) - 1; i >= 0; i-- {
		if envs[i].Type == typ {
			return envs[i], true
		}
	}
	return Envelope{}, false
}

func guessAll(c *Coordinator, roomID string, cc *ClientConn, words ...string) {
	for _, w := range words {
		c.SubmitGuess(roomID, cc, w)
	}
}
