// Package solo keeps single-player games: one hidden answer, a bounded
// number of guesses, and a public view that never leaks the answer while
// the game is running.
package solo

import (
	"time"

	"example.com/wordle-duel/internal/game"
)

// WinnerPlayer is the only winner a single-player game can have.
const WinnerPlayer = "player"

// Game is the stored record. It is serialised as-is by RedisStore, so the
// answer is part of the JSON; clients only ever see View.
type Game struct {
	ID           string       `json:"id"`
	Answer       string       `json:"answer"`
	Guesses      []game.Guess `json:"guesses"`
	CurrentRound int          `json:"currentRound"`
	MaxRounds    int          `json:"maxRounds"`
	IsComplete   bool         `json:"isComplete"`
	Won          bool         `json:"won"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Handle is returned when a game starts.
type Handle struct {
	GameID    string `json:"gameId"`
	MaxRounds int    `json:"maxRounds"`
}

// Outcome is the result of one accepted guess.
type Outcome struct {
	Result       []game.Status `json:"result"`
	IsCorrect    bool          `json:"isCorrect"`
	GameComplete bool          `json:"gameComplete"`
	CurrentRound int           `json:"currentRound"`
	Winner       *string       `json:"winner"`
}

// View is the public shape of a game.
type View struct {
	ID           string       `json:"id"`
	Guesses      []game.Guess `json:"guesses"`
	CurrentRound int          `json:"currentRound"`
	MaxRounds    int          `json:"maxRounds"`
	IsComplete   bool         `json:"isComplete"`
	Winner       *string      `json:"winner"`
	Answer       string       `json:"answer,omitempty"`
}

func (g *Game) View() View {
	v := View{
		ID:           g.ID,
		Guesses:      append([]game.Guess{}, g.Guesses...),
		CurrentRound: g.CurrentRound,
		MaxRounds:    g.MaxRounds,
		IsComplete:   g.IsComplete,
		Winner:       g.winner(),
	}
	if g.IsComplete {
		v.Answer = g.Answer
	}
	return v
}

func (g *Game) winner() *string {
	if !g.Won {
		return nil
	}
	w := WinnerPlayer
	return &w
}

func (g *Game) clone() *Game {
	c := *g
	c.Guesses = append([]game.Guess(nil), g.Guesses...)
	return &c
}

// apply scores guess (already normalised) and advances the game.
func (g *Game) apply(guess string, now time.Time) (Outcome, error) {
	if g.IsComplete {
		return Outcome{}, game.ErrAlreadyComplete
	}
	if g.CurrentRound >= g.MaxRounds {
		return Outcome{}, game.ErrRoundsExhausted
	}

	result := game.Evaluate(guess, g.Answer)
	correct := game.IsCorrect(result)

	g.CurrentRound++
	g.Guesses = append(g.Guesses, game.Guess{Word: guess, Result: result, Round: g.CurrentRound})
	if correct || g.CurrentRound == g.MaxRounds {
		g.IsComplete = true
		g.Won = correct
	}
	g.UpdatedAt = now

	return Outcome{
		Result:       result,
		IsCorrect:    correct,
		GameComplete: g.IsComplete,
		CurrentRound: g.CurrentRound,
		Winner:       g.winner(),
	}, nil
}
