package solo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"example.com/wordle-duel/internal/game"
	"example.com/wordle-duel/internal/results"
)

// Service runs single-player games on top of a Store.
type Service struct {
	store     Store
	answers   game.AnswerSource
	maxRounds int
	recorder  results.Recorder
	log       zerolog.Logger
	now       func() time.Time
	newID     func() string
}

func NewService(store Store, answers game.AnswerSource, maxRounds int, recorder results.Recorder, log zerolog.Logger) *Service {
	if recorder == nil {
		recorder = results.Discard{}
	}
	return &Service{
		store:     store,
		answers:   answers,
		maxRounds: maxRounds,
		recorder:  recorder,
		log:       log.With().Str("component", "solo").Logger(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *Service) StartGame(ctx context.Context) (Handle, error) {
	now := s.now()
	g := &Game{
		ID:        s.newID(),
		Answer:    s.answers.SelectAnswer(),
		Guesses:   []game.Guess{},
		MaxRounds: s.maxRounds,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, g); err != nil {
		return Handle{}, fmt.Errorf("create game: %w", err)
	}
	s.log.Debug().Str("game", g.ID).Msg("game started")
	return Handle{GameID: g.ID, MaxRounds: g.MaxRounds}, nil
}

// SubmitGuess checks the guess format before touching the store, so a
// malformed guess for an unknown id reports ErrInvalidFormat.
func (s *Service) SubmitGuess(ctx context.Context, id, raw string) (Outcome, error) {
	guess, err := game.NormalizeGuess(raw)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	g, err := s.store.Update(ctx, id, func(g *Game) error {
		var err error
		out, err = g.apply(guess, s.now())
		return err
	})
	if err != nil {
		return Outcome{}, err
	}

	if out.GameComplete {
		winner := "none"
		if g.Won {
			winner = WinnerPlayer
		}
		s.log.Info().Str("game", g.ID).Str("winner", winner).Int("rounds", g.CurrentRound).Msg("game complete")
		s.recorder.Record(results.Result{
			Mode:       results.ModeSolo,
			GameID:     g.ID,
			Winner:     winner,
			Rounds:     g.CurrentRound,
			MaxRounds:  g.MaxRounds,
			FinishedAt: g.UpdatedAt,
		})
	}
	return out, nil
}

func (s *Service) GetGame(ctx context.Context, id string) (View, error) {
	g, err := s.store.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	return g.View(), nil
}
