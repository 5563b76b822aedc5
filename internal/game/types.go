package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the frame shape in both directions: {"type":"...","payload":...}.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound message types.
const (
	TypeJoinRoom    = "join-room"
	TypeLeaveRoom   = "leave-room"
	TypeSubmitGuess = "submit-guess"
)

// ClientMessage is one of JoinRoom, LeaveRoom or SubmitGuess.
type ClientMessage interface {
	clientMessage()
}

type JoinRoom struct {
	RoomID string
}

type LeaveRoom struct {
	RoomID string
}

type SubmitGuess struct {
	RoomID string `json:"roomId"`
	Guess  string `json:"guess"`
}

func (JoinRoom) clientMessage()    {}
func (LeaveRoom) clientMessage()   {}
func (SubmitGuess) clientMessage() {}

var (
	errBadFrame    = errors.New("invalid message")
	errUnknownType = errors.New("unknown message type")
	errBadRoomID   = errors.New("invalid room id")
)

// DecodeClientMessage parses a raw frame into its concrete message.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errBadFrame
	}

	switch env.Type {
	case TypeJoinRoom:
		id, err := decodeRoomID(env.Payload)
		if err != nil {
			return nil, err
		}
		return JoinRoom{RoomID: id}, nil

	case TypeLeaveRoom:
		id, err := decodeRoomID(env.Payload)
		if err != nil {
			return nil, err
		}
		return LeaveRoom{RoomID: id}, nil

	case TypeSubmitGuess:
		var p SubmitGuess
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, errBadFrame
		}
		if !validRoomID(p.RoomID) {
			return nil, errBadRoomID
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", errUnknownType, env.Type)
}

// decodeRoomID accepts either "room1" or {"roomId":"room1"}.
func decodeRoomID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	var id string
	if len(raw) > 0 && raw[0] == '{' {
		var obj struct {
			RoomID string `json:"roomId"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", errBadFrame
		}
		id = obj.RoomID
	} else if err := json.Unmarshal(raw, &id); err != nil {
		return "", errBadFrame
	}
	if !validRoomID(id) {
		return "", errBadRoomID
	}
	return id, nil
}

// validRoomID allows 1..64 of [A-Za-z0-9_-].
func validRoomID(id string) bool {
	if len(id) == 0 || len(id) > 64 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// Winner is 0 (undecided), 1, 2 or Tie. It encodes as null, 1, 2 or "tie".
type Winner int

const (
	NoWinner Winner = 0
	Player1  Winner = 1
	Player2  Winner = 2
	Tie      Winner = -1
)

func (w Winner) MarshalJSON() ([]byte, error) {
	switch w {
	case NoWinner:
		return []byte("null"), nil
	case Tie:
		return []byte(`"tie"`), nil
	default:
		return json.Marshal(int(w))
	}
}

func (w *Winner) UnmarshalJSON(b []byte) error {
	switch string(bytes.TrimSpace(b)) {
	case "null":
		*w = NoWinner
		return nil
	case `"tie"`:
		*w = Tie
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if n != int(Player1) && n != int(Player2) {
		return fmt.Errorf("winner: unexpected value %d", n)
	}
	*w = Winner(n)
	return nil
}

func (w Winner) String() string {
	switch w {
	case NoWinner:
		return "none"
	case Tie:
		return "tie"
	default:
		return fmt.Sprintf("player%d", int(w))
	}
}

// Event is a server-to-client message.
type Event interface {
	EventType() string
}

type RoomJoined struct {
	RoomID       string `json:"roomId"`
	PlayerNumber int    `json:"playerNumber"`
	MaxRounds    int    `json:"maxRounds"`
}

type RoomFull struct{}

type PlayerJoined struct {
	PlayerNumber int `json:"playerNumber"`
}

type GameReady struct {
	CurrentTurn int `json:"currentTurn"`
}

type GuessSubmitted struct {
	PlayerNumber int      `json:"playerNumber"`
	Guess        string   `json:"guess"`
	Result       []Status `json:"result"`
	IsCorrect    bool     `json:"isCorrect"`
	CurrentTurn  int      `json:"currentTurn"`
	GameComplete bool     `json:"gameComplete"`
	Winner       Winner   `json:"winner"`
}

type GuessError struct {
	Error string `json:"error"`
}

type PlayerLeft struct {
	PlayerID string `json:"playerId"`
}

type RoomClosed struct {
	RoomID string `json:"roomId"`
	Reason string `json:"reason"`
}

func (RoomJoined) EventType() string     { return "room-joined" }
func (RoomFull) EventType() string       { return "room-full" }
func (PlayerJoined) EventType() string   { return "player-joined" }
func (GameReady) EventType() string      { return "game-ready" }
func (GuessSubmitted) EventType() string { return "guess-submitted" }
func (GuessError) EventType() string     { return "guess-error" }
func (PlayerLeft) EventType() string     { return "player-left" }
func (RoomClosed) EventType() string     { return "room-closed" }

// EncodeEvent wraps e in an Envelope and marshals it.
func EncodeEvent(e Event) ([]byte, error) {
	var payload json.RawMessage
	if _, empty := e.(RoomFull); !empty {
		b, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		payload = b
	}
	return json.Marshal(Envelope{Type: e.EventType(), Payload: payload})
}
