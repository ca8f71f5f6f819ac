package room

import (
	"errors"
	"fmt"
)

// Code enumerates every recoverable rejection a room operation can produce.
// Codes cross the room boundary as values, never as panics, and map 1:1 onto
// the error frames sent back to the initiating client.
type Code string

const (
	CodeValidation     Code = "VALIDATION"
	CodeRoomNotFound   Code = "ROOM_NOT_FOUND"
	CodeInvalidPass    Code = "INVALID_PASSWORD"
	CodeRoomFull       Code = "ROOM_FULL"
	CodeNameTaken      Code = "NAME_TAKEN"
	CodeGameInProgress Code = "GAME_IN_PROGRESS"
	CodeAlreadyInRoom  Code = "ALREADY_IN_ROOM"
	CodeNotInRoom      Code = "NOT_IN_ROOM"
	CodePlayerNotFound Code = "PLAYER_NOT_FOUND"
	CodeNotHost        Code = "NOT_HOST"
	CodeCannotKickHost Code = "CANNOT_KICK_HOST"
	CodeWrongPhase     Code = "WRONG_PHASE"
	CodeNotEnough      Code = "NOT_ENOUGH_PLAYERS"
	CodeNotReady       Code = "PLAYERS_NOT_READY"
	CodeNotSubmitter   Code = "NOT_SUBMITTER"
	CodeNoActiveRound  Code = "NO_ACTIVE_ROUND"
	CodeAlreadyCorrect Code = "ALREADY_GUESSED_CORRECTLY"
	CodeNoMoreGuesses  Code = "NO_MORE_GUESSES"
	CodeSubmitterGuess Code = "SUBMITTER_CANNOT_GUESS"
	CodeSongNotFound   Code = "SONG_NOT_FOUND"
	CodeLyricsTooShort Code = "LYRICS_TOO_SHORT"
	CodeStaleSubmit    Code = "STALE_SUBMIT"
)

// Error pairs an enumerable reason with a user-facing message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a coded rejection. Exposed for the registry and the
// coordinator, which reject with the same vocabulary.
func NewError(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Reason extracts the enumerable code from err, defaulting to VALIDATION for
// anything that is not a room error.
func Reason(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeValidation
}
