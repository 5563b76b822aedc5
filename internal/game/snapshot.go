package game

import "sort"

// RoomView is the answer-free summary of a room.
type RoomView struct {
	RoomID      string       `json:"roomId"`
	State       RoomState    `json:"state"`
	Players     []PlayerView `json:"players"`
	CurrentTurn int          `json:"currentTurn"`
	MaxRounds   int          `json:"maxRounds"`
	IsComplete  bool         `json:"isComplete"`
	Winner      Winner       `json:"winner"`
	// Answer is only filled once the match is complete.
	Answer string `json:"answer,omitempty"`
}

type PlayerView struct {
	Number       int  `json:"number"`
	CurrentRound int  `json:"currentRound"`
	IsComplete   bool `json:"isComplete"`
	Solved       bool `json:"solved"`
}

// View returns a consistent copy of the room state.
func (r *Room) View() RoomView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked()
}

func (r *Room) viewLocked() RoomView {
	v := RoomView{
		RoomID:      r.id,
		State:       r.stateLocked(),
		CurrentTurn: r.currentTurn,
		MaxRounds:   r.maxRounds,
		IsComplete:  r.complete,
		Winner:      r.winner,
		Players:     make([]PlayerView, 0, len(r.players)),
	}
	if r.complete {
		v.Answer = r.answer
	}
	for _, p := range r.players {
		v.Players = append(v.Players, PlayerView{
			Number:       p.number,
			CurrentRound: p.currentRound,
			IsComplete:   p.complete,
			Solved:       p.solved,
		})
	}
	sort.Slice(v.Players, func(i, j int) bool { return v.Players[i].Number < v.Players[j].Number })
	return v
}
