package game

import (
	"errors"

	"github.com/soohoonc/jprty/internal/board"
	"github.com/soohoonc/jprty/internal/rooms"
)

var (
	ErrNotInRoom    = errors.New("not in a room")
	ErrInvalidPhase = errors.New("action not valid in current phase")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrNotHost      = errors.New("only the host can do that")
)

// KindOf folds an error chain down to the wire-level error kind reported to
// the offending connection. Anything unrecognized degrades to InvalidPhase
// rather than leaking internals.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrNotInRoom):
		return "NotInRoom"
	case errors.Is(err, rooms.ErrRoomNotFound):
		return "RoomNotFound"
	case errors.Is(err, rooms.ErrRoomFull):
		return "RoomFull"
	case errors.Is(err, rooms.ErrRoomNotWaiting):
		return "RoomNotWaiting"
	case errors.Is(err, rooms.ErrUnknownPlayer):
		return "UnknownPlayer"
	case errors.Is(err, rooms.ErrCodesExhausted):
		return "CodeGenerationExhausted"
	case errors.Is(err, board.ErrPromptNotFound):
		return "PromptNotFound"
	case errors.Is(err, board.ErrAlreadyAnswered):
		return "PromptAlreadyAnswered"
	case errors.Is(err, ErrNotYourTurn):
		return "NotYourTurn"
	case errors.Is(err, ErrNotHost):
		return "NotHost"
	default:
		return "InvalidPhase"
	}
}
