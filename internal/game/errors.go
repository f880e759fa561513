package game

import "errors"

// Typed failures returned to both client adapters. All are per-operation
// and recoverable by re-prompting the user, except ErrStoreUnavailable
// which surfaces the whole feature as disabled upstream.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrInvalidRoomCode  = errors.New("invalid room code")
	ErrNotHost          = errors.New("only the host can do that")
	ErrRoundNotActive   = errors.New("no round is being played")
	ErrNotInRoom        = errors.New("player is not in this room")
	ErrStoreUnavailable = errors.New("room store unavailable")
)
