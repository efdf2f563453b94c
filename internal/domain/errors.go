package domain

import "errors"

// Sentinel errors surfaced to requesters. Adapters translate these into
// outbound error events; the engine never leaks partial mutations when
// returning one of them.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrNameTaken          = errors.New("name already taken in this room")
	ErrEmptyName          = errors.New("name is empty")
	ErrNameTooLong        = errors.New("name too long")
	ErrNotAdmin           = errors.New("only the admin may do that")
	ErrNotEnoughPlayers   = errors.New("not enough players")
	ErrNoCategories       = errors.New("no word categories enabled")
	ErrRoundInProgress    = errors.New("a round is already in progress")
	ErrNoActiveRound      = errors.New("no round in progress")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrCannotRemoveAdmin  = errors.New("the admin cannot be removed")
	ErrNoDisconnectedSeat = errors.New("no disconnected player with that name")
	ErrInvalidSettings    = errors.New("invalid settings")
)
