package game

import "errors"

var (
	ErrInvalidFormat   = errors.New("invalid guess format")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyComplete = errors.New("game is already complete")
	ErrRoundsExhausted = errors.New("maximum rounds reached")
	ErrRoomFull        = errors.New("room is full")
	ErrConnectionLost  = errors.New("connection lost")
	ErrPlayerFinished  = errors.New("player already finished")
	ErrRoomNotReady    = errors.New("room is not ready")

	errRoomClosed = errors.New("room closed")
)
