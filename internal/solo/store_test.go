package solo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/wordle-duel/internal/game"
)

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0, 0)

	require.NoError(t, s.Create(ctx, &Game{ID: "g1", Answer: "crane", MaxRounds: 6}))

	g, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "crane", g.Answer)

	// Returned records are copies.
	g.Answer = "slate"
	g, _ = s.Get(ctx, "g1")
	assert.Equal(t, "crane", g.Answer)

	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, game.ErrNotFound)

	require.NoError(t, s.Delete(ctx, "g1"))
	_, err = s.Get(ctx, "g1")
	assert.ErrorIs(t, err, game.ErrNotFound)
}

func TestMemoryStore_UpdateFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0, 0)
	require.NoError(t, s.Create(ctx, &Game{ID: "g1", MaxRounds: 6}))

	boom := errors.New("boom")
	_, err := s.Update(ctx, "g1", func(g *Game) error {
		g.CurrentRound = 5
		return boom
	})
	require.ErrorIs(t, err, boom)

	g, _ := s.Get(ctx, "g1")
	assert.Equal(t, 0, g.CurrentRound)

	g, err = s.Update(ctx, "g1", func(g *Game) error {
		g.CurrentRound = 1
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, g.CurrentRound)

	_, err = s.Update(ctx, "missing", func(*Game) error { return nil })
	assert.ErrorIs(t, err, game.ErrNotFound)
}

func TestMemoryStore_IdleExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(50*time.Millisecond, 0)

	require.NoError(t, s.Create(ctx, &Game{ID: "old"}))

	require.Eventually(t, func() bool {
		_, err := s.Get(ctx, "old")
		return errors.Is(err, game.ErrNotFound)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_UpdateExtendsLifetime(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(400*time.Millisecond, 0)
	require.NoError(t, s.Create(ctx, &Game{ID: "g1"}))

	time.Sleep(250 * time.Millisecond)
	_, err := s.Update(ctx, "g1", func(g *Game) error {
		g.CurrentRound++
		return nil
	})
	require.NoError(t, err)

	time.Sleep(250 * time.Millisecond)
	g, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, g.CurrentRound)
}

func TestMemoryStore_CapacityEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0, 2)

	require.NoError(t, s.Create(ctx, &Game{ID: "a"}))
	require.NoError(t, s.Create(ctx, &Game{ID: "b"}))
	_, err := s.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, s.Create(ctx, &Game{ID: "c"}))

	assert.Equal(t, 2, s.Len())
	_, err = s.Get(ctx, "b")
	assert.ErrorIs(t, err, game.ErrNotFound)
	_, err = s.Get(ctx, "a")
	assert.NoError(t, err)
}
