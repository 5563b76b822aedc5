package game

import (
	"fmt"
	"sync"
	"time"
)

// RoomState is derived from the player count and completion flag.
type RoomState string

const (
	StateForming  RoomState = "forming"
	StateReady    RoomState = "ready"
	StateComplete RoomState = "complete"
)

const maxPlayers = 2

// AnswerSource hands out secret words for new or reset rooms.
type AnswerSource interface {
	SelectAnswer() string
}

// Room is a two-player match sharing one secret answer. Players guess
// simultaneously; currentTurn is reported to clients but never enforced.
type Room struct {
	id string
	mu sync.Mutex

	answers   AnswerSource
	answer    string
	maxRounds int

	players     map[string]*Player // keyed by connection id
	currentTurn int
	complete    bool
	winner      Winner

	solveSeq   uint64
	lastActive time.Time
	closed     bool // комната удалена из стора, новые ходы не принимаются

	onComplete func(RoomView)
}

// Player is a room-scoped participant.
type Player struct {
	conn   *ClientConn
	number int

	guesses      []Guess
	currentRound int
	complete     bool
	solved       bool
	solvedSeq    uint64
}

func NewRoom(id string, answers AnswerSource, maxRounds int) *Room {
	return &Room{
		id:          id,
		answers:     answers,
		answer:      answers.SelectAnswer(),
		maxRounds:   maxRounds,
		players:     make(map[string]*Player, maxPlayers),
		currentTurn: 1,
		lastActive:  time.Now(),
	}
}

func (r *Room) ID() string { return r.id }

// join добавляет cc в комнату; повторный join того же соединения просто
// присылает room-joined ещё раз.
func (r *Room) join(cc *ClientConn, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = now

	if p, ok := r.players[cc.ID()]; ok {
		cc.Send(RoomJoined{RoomID: r.id, PlayerNumber: p.number, MaxRounds: r.maxRounds})
		if len(r.players) == maxPlayers {
			r.broadcastLocked(GameReady{CurrentTurn: r.currentTurn})
		}
		return nil
	}

	if len(r.players) >= maxPlayers {
		cc.Send(RoomFull{})
		return ErrRoomFull
	}

	number := r.freeNumberLocked()
	r.players[cc.ID()] = &Player{conn: cc, number: number}

	cc.Send(RoomJoined{RoomID: r.id, PlayerNumber: number, MaxRounds: r.maxRounds})
	r.broadcastExceptLocked(cc.ID(), PlayerJoined{PlayerNumber: number})

	if len(r.players) == maxPlayers {
		r.currentTurn = 1
		r.broadcastLocked(GameReady{CurrentTurn: r.currentTurn})
	}
	return nil
}

// freeNumberLocked returns 1 for an empty room, otherwise the number not taken
// by the single remaining occupant.
func (r *Room) freeNumberLocked() int {
	taken := map[int]bool{}
	for _, p := range r.players {
		taken[p.number] = true
	}
	for n := 1; n <= maxPlayers; n++ {
		if !taken[n] {
			return n
		}
	}
	return len(r.players) + 1
}

// leave removes connID. It reports whether the player was present and
// whether the room is now empty.
func (r *Room) leave(connID string, now time.Time) (removed, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[connID]; !ok {
		return false, len(r.players) == 0
	}
	delete(r.players, connID)
	r.lastActive = now

	r.broadcastLocked(PlayerLeft{PlayerID: connID})

	if len(r.players) == 0 {
		r.closed = true
		return true, true
	}
	r.resetLocked()
	return true, false
}

// resetLocked бросает текущий матч: прогресс оставшегося игрока сбрасывается,
// для следующего соперника берётся новое слово.
func (r *Room) resetLocked() {
	r.complete = false
	r.winner = NoWinner
	r.currentTurn = 1
	r.solveSeq = 0
	r.answer = r.answers.SelectAnswer()
	for _, p := range r.players {
		p.guesses = nil
		p.currentRound = 0
		p.complete = false
		p.solved = false
		p.solvedSeq = 0
	}
}

// submitGuess scores a guess for connID and broadcasts the outcome.
func (r *Room) submitGuess(connID, raw string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errRoomClosed
	}
	if r.complete {
		return ErrAlreadyComplete
	}
	p, ok := r.players[connID]
	if !ok {
		return ErrNotFound
	}
	if len(r.players) < maxPlayers {
		return ErrRoomNotReady
	}

	guess, err := NormalizeGuess(raw)
	if err != nil {
		return err
	}
	if p.complete {
		return ErrPlayerFinished
	}
	r.lastActive = now

	result := Evaluate(guess, r.answer)
	correct := IsCorrect(result)

	p.guesses = append(p.guesses, Guess{Word: guess, Result: result, Round: p.currentRound + 1})
	p.currentRound++

	if correct {
		r.solveSeq++
		p.solved = true
		p.solvedSeq = r.solveSeq
	}
	if correct || p.currentRound >= r.maxRounds {
		p.complete = true
	}

	if r.allCompleteLocked() {
		r.complete = true
		r.winner = r.decideWinnerLocked()
		if r.onComplete != nil {
			r.onComplete(r.viewLocked())
		}
	}

	r.broadcastLocked(GuessSubmitted{
		PlayerNumber: p.number,
		Guess:        guess,
		Result:       result,
		IsCorrect:    correct,
		CurrentTurn:  r.currentTurn,
		GameComplete: r.complete,
		Winner:       r.winner,
	})
	return nil
}

func (r *Room) allCompleteLocked() bool {
	if len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !p.complete {
			return false
		}
	}
	return true
}

// decideWinnerLocked runs once, when every player is complete: fewer guesses
// wins; on equal counts a lone solver wins, two solvers go to whoever solved
// first, and no solvers is a tie.
func (r *Room) decideWinnerLocked() Winner {
	p1, p2 := r.playerByNumberLocked(1), r.playerByNumberLocked(2)
	if p1 == nil || p2 == nil {
		return NoWinner
	}

	n1, n2 := len(p1.guesses), len(p2.guesses)
	switch {
	case n1 < n2:
		return Player1
	case n2 < n1:
		return Player2
	case p1.solved && p2.solved:
		if p1.solvedSeq < p2.solvedSeq {
			return Player1
		}
		return Player2
	case p1.solved:
		return Player1
	case p2.solved:
		return Player2
	default:
		return Tie
	}
}

func (r *Room) playerByNumberLocked(n int) *Player {
	for _, p := range r.players {
		if p.number == n {
			return p
		}
	}
	return nil
}

func (r *Room) stateLocked() RoomState {
	switch {
	case r.complete:
		return StateComplete
	case len(r.players) == maxPlayers:
		return StateReady
	default:
		return StateForming
	}
}

func (r *Room) idleSince(now time.Time) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return now.Sub(r.lastActive)
}

// close notifies every occupant and drops them. Used by expiry.
func (r *Room) close(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.broadcastLocked(RoomClosed{RoomID: r.id, Reason: reason})
	for id := range r.players {
		delete(r.players, id)
	}
}

func (r *Room) hasMember(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.players[connID]
	return ok
}

func (r *Room) broadcastLocked(e Event) {
	for _, p := range r.players {
		p.conn.Send(e)
	}
}

func (r *Room) broadcastExceptLocked(connID string, e Event) {
	for id, p := range r.players {
		if id != connID {
			p.conn.Send(e)
		}
	}
}

func (r *Room) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("room %s (%s, %d players)", r.id, r.stateLocked(), len(r.players))
}
