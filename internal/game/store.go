package game

import "sync"

// RoomStore — индекс roomID -> *Room.
type RoomStore interface {
	Put(r *Room)
	Get(roomID string) (*Room, bool)
	// Remove удаляет запись, только если она всё ещё указывает на r.
	Remove(r *Room) bool
	// Find возвращает снимок комнат, для которых match == true.
	// match вызывается без блокировки стора, поэтому может брать r.mu.
	Find(match func(r *Room) bool) []*Room
	Len() int
}

type MemoryRoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewMemoryRoomStore() *MemoryRoomStore {
	return &MemoryRoomStore{rooms: make(map[string]*Room)}
}

func (s *MemoryRoomStore) Put(r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.ID()] = r
}

func (s *MemoryRoomStore) Get(roomID string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[roomID]
	return r, ok
}

func (s *MemoryRoomStore) Remove(r *Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.rooms[r.ID()]; !ok || cur != r {
		return false
	}
	delete(s.rooms, r.ID())
	return true
}

func (s *MemoryRoomStore) Find(match func(r *Room) bool) []*Room {
	s.mu.RLock()
	all := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		all = append(all, r)
	}
	s.mu.RUnlock()

	out := all[:0]
	for _, r := range all {
		if match == nil || match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *MemoryRoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
