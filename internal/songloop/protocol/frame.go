package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/songloop-games/songloop/internal/songloop/room"
)

// Frame types produced outside the room event vocabulary.
const (
	FrameWelcome = "welcome"
	FrameError   = "error"
	FrameRooms   = "rooms"
)

// Frame is the outbound envelope. Room events map onto it 1:1.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

func EncodeFrame(f Frame) ([]byte, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal %s frame: %w", f.Type, err)
	}
	return raw, nil
}

func EventFrame(ev room.Event) Frame {
	return Frame{Type: ev.Type, Data: ev.Data}
}

// WelcomeData greets a fresh connection with its identity.
type WelcomeData struct {
	ConnID       string `json:"connId"`
	SessionToken string `json:"sessionToken"`
}

// ErrorData carries an enumerable rejection back to the intent's sender.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Intent  string `json:"intent,omitempty"`
}

// ErrorFrame maps a room rejection onto an error frame for the client that
// issued the intent.
func ErrorFrame(intent string, err error) Frame {
	data := ErrorData{Code: string(room.Reason(err)), Intent: intent}
	var roomErr *room.Error
	if errors.As(err, &roomErr) {
		data.Message = roomErr.Message
	} else {
		data.Message = err.Error()
	}
	return Frame{Type: FrameError, Data: data}
}
