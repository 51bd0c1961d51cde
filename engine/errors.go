package engine

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room full")
	ErrInvalidState      = errors.New("action not allowed in current room state")
	ErrForbidden         = errors.New("player not allowed to act")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWrongEntryFee     = errors.New("entry fee does not match room")
	ErrInvalidBoard      = errors.New("board contains numbers outside the bingo range")
	ErrConfiguration     = errors.New("invalid room configuration")
	ErrNumberNotCalled   = errors.New("number has not been called")
	ErrRoomClosed        = errors.New("room has been torn down")
)
