package solo

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"example.com/wordle-duel/internal/game"
)

// Store persists games. Get and Update return game.ErrNotFound for unknown
// or expired ids. Update applies fn atomically; when fn fails nothing is
// written and its error is returned unchanged.
type Store interface {
	Create(ctx context.Context, g *Game) error
	Get(ctx context.Context, id string) (*Game, error)
	Update(ctx context.Context, id string, fn func(g *Game) error) (*Game, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps games in process. A game expires ttl after its last
// write, like a redis key; at max games the least recently used one is
// evicted.
type MemoryStore struct {
	mu    sync.Mutex // serialises writers so Update is read-modify-write
	games *expirable.LRU[string, *Game]
}

// NewMemoryStore returns a store; ttl <= 0 disables expiry and max <= 0
// disables the capacity bound.
func NewMemoryStore(ttl time.Duration, max int) *MemoryStore {
	if max < 0 {
		max = 0
	}
	return &MemoryStore{games: expirable.NewLRU[string, *Game](max, nil, ttl)}
}

func (s *MemoryStore) Create(_ context.Context, g *Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games.Add(g.ID, g.clone())
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Game, error) {
	g, ok := s.games.Get(id)
	if !ok {
		return nil, game.ErrNotFound
	}
	return g.clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, id string, fn func(g *Game) error) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.games.Get(id)
	if !ok {
		return nil, game.ErrNotFound
	}
	g := cur.clone()
	if err := fn(g); err != nil {
		return nil, err
	}
	s.games.Add(id, g)
	return g.clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games.Remove(id)
	return nil
}

// Len counts live games; expired ones are skipped.
func (s *MemoryStore) Len() int {
	return len(s.games.Keys())
}
