package game

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"example.com/wordle-duel/internal/results"
)

type Config struct {
	MaxRounds     int
	RoomIdleTTL   time.Duration // 0 => rooms never expire
	SweepInterval time.Duration
}

// Coordinator owns every room and serialises membership changes.
type Coordinator struct {
	mu sync.Mutex // создание, членство и удаление комнат; порядок: c.mu -> r.mu

	cfg      Config
	rooms    RoomStore
	answers  AnswerSource
	recorder results.Recorder
	log      zerolog.Logger
	now      func() time.Time
}

func NewCoordinator(cfg Config, rooms RoomStore, answers AnswerSource, recorder results.Recorder, log zerolog.Logger) *Coordinator {
	if recorder == nil {
		recorder = results.Discard{}
	}
	return &Coordinator{
		cfg:      cfg,
		rooms:    rooms,
		answers:  answers,
		recorder: recorder,
		log:      log.With().Str("component", "coordinator").Logger(),
		now:      time.Now,
	}
}

// Handle dispatches one decoded client message.
func (c *Coordinator) Handle(cc *ClientConn, msg ClientMessage) {
	switch m := msg.(type) {
	case JoinRoom:
		_ = c.Join(m.RoomID, cc)
	case LeaveRoom:
		c.Leave(m.RoomID, cc)
	case SubmitGuess:
		c.SubmitGuess(m.RoomID, cc, m.Guess)
	}
}

// Join adds cc to roomID, creating the room on first use. It returns
// ErrRoomFull when two other connections already occupy the room.
func (c *Coordinator) Join(roomID string, cc *ClientConn) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms.Get(roomID)
	if !ok {
		r = NewRoom(roomID, c.answers, c.cfg.MaxRounds)
		r.onComplete = c.recordRoom
		c.rooms.Put(r)
		c.log.Info().Str("room", roomID).Msg("room created")
	}

	if err := r.join(cc, c.now()); err != nil {
		c.log.Info().Str("room", roomID).Str("conn", cc.ID()).Msg("room full")
		return err
	}
	c.log.Debug().Str("room", roomID).Str("conn", cc.ID()).Msg("joined")
	return nil
}

// Leave removes cc from roomID and destroys the room once it is empty.
func (c *Coordinator) Leave(roomID string, cc *ClientConn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms.Get(roomID)
	if !ok {
		return
	}
	c.leaveLocked(r, cc.ID())
}

// Disconnect removes cc from every room it occupies.
func (c *Coordinator) Disconnect(cc *ClientConn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	member := c.rooms.Find(func(r *Room) bool { return r.hasMember(cc.ID()) })
	for _, r := range member {
		c.leaveLocked(r, cc.ID())
	}
	if len(member) > 0 {
		c.log.Debug().Str("conn", cc.ID()).Int("rooms", len(member)).Msg("disconnected")
	}
}

func (c *Coordinator) leaveLocked(r *Room, connID string) {
	removed, empty := r.leave(connID, c.now())
	if !removed {
		return
	}
	if empty {
		c.rooms.Remove(r)
		c.log.Info().Str("room", r.ID()).Msg("room deleted")
		return
	}
	c.log.Info().Str("room", r.ID()).Str("conn", connID).Msg("player left, room reset")
}

// SubmitGuess applies a guess from cc. Format problems are reported to cc
// only; guesses outside an active match are ignored.
func (c *Coordinator) SubmitGuess(roomID string, cc *ClientConn, guess string) {
	var err error
	// Комната могла закрыться между поиском и ходом: тогда ищем заново,
	// под тем же id уже может быть новая комната.
	for attempt := 0; attempt < 2; attempt++ {
		r, ok := c.lookup(roomID)
		if !ok {
			return
		}
		err = r.submitGuess(cc.ID(), guess, c.now())
		if !errors.Is(err, errRoomClosed) {
			break
		}
	}

	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidFormat):
		cc.Send(GuessError{Error: "Invalid guess format"})
	case errors.Is(err, ErrPlayerFinished):
		cc.Send(GuessError{Error: "You have already finished this game"})
	default:
		c.log.Debug().Err(err).Str("room", roomID).Str("conn", cc.ID()).Msg("guess ignored")
	}
}

func (c *Coordinator) lookup(roomID string) (*Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms.Get(roomID)
}

// Room returns the public view of roomID.
func (c *Coordinator) Room(roomID string) (RoomView, error) {
	r, ok := c.rooms.Get(roomID)
	if !ok {
		return RoomView{}, ErrNotFound
	}
	return r.View(), nil
}

// Sweep destroys rooms idle for longer than RoomIdleTTL and returns how many.
func (c *Coordinator) Sweep(now time.Time) int {
	if c.cfg.RoomIdleTTL <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	stale := c.rooms.Find(func(r *Room) bool { return r.idleSince(now) > c.cfg.RoomIdleTTL })
	for _, r := range stale {
		r.close("expired")
		c.rooms.Remove(r)
		c.log.Info().Str("room", r.ID()).Msg("room expired")
	}
	return len(stale)
}

// Run sweeps on SweepInterval until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	if c.cfg.RoomIdleTTL <= 0 || c.cfg.SweepInterval <= 0 {
		<-ctx.Done()
		return nil
	}
	t := time.NewTicker(c.cfg.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			if n := c.Sweep(now); n > 0 {
				c.log.Debug().Int("expired", n).Int("remaining", c.rooms.Len()).Msg("room sweep")
			}
		}
	}
}

func (c *Coordinator) recordRoom(v RoomView) {
	rounds := 0
	for _, p := range v.Players {
		if p.CurrentRound > rounds {
			rounds = p.CurrentRound
		}
	}
	winner := "tie"
	if v.Winner != Tie {
		winner = strconv.Itoa(int(v.Winner))
	}
	c.log.Info().Str("room", v.RoomID).Str("winner", v.Winner.String()).Msg("match complete")
	c.recorder.Record(results.Result{
		Mode:      results.ModeDuel,
		GameID:    v.RoomID,
		Winner:    winner,
		Rounds:    rounds,
		MaxRounds: v.MaxRounds,
	})
}
