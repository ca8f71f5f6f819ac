// Package protocol defines the wire shape of the websocket conversation:
// inbound player intents, outbound frames and the rendered system messages
// that accompany game transitions.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/songloop-games/songloop/internal/songloop/room"
)

// Inbound intent types.
const (
	IntentCreateRoom      = "create_room"
	IntentJoinRoom        = "join_room"
	IntentLeaveRoom       = "leave_room"
	IntentSetReady        = "set_ready"
	IntentUpdateSettings  = "update_settings"
	IntentKickPlayer      = "kick_player"
	IntentStartGame       = "start_game"
	IntentChooseSubmitter = "choose_submitter"
	IntentSubmitSong      = "submit_song"
	IntentGuess           = "guess"
	IntentSkipRound       = "skip_round"
	IntentChat            = "chat"
	IntentListRooms       = "list_rooms"
)

// Intent is the inbound envelope. Data stays raw until the type dispatch
// picks the payload struct.
type Intent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func ParseIntent(raw []byte) (Intent, error) {
	var in Intent
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("unmarshal intent: %w", err)
	}
	if in.Type == "" {
		return in, fmt.Errorf("intent type is required")
	}
	return in, nil
}

// Bind decodes the intent payload into the type-specific struct.
func (in Intent) Bind(v interface{}) error {
	if len(in.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(in.Data, v); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", in.Type, err)
	}
	return nil
}

type CreateRoomPayload struct {
	PlayerName string         `json:"playerName"`
	RoomName   string         `json:"roomName"`
	Private    bool           `json:"private"`
	Password   string         `json:"password,omitempty"`
	Settings   *room.Settings `json:"settings,omitempty"`
}

type JoinRoomPayload struct {
	Code       string `json:"code"`
	PlayerName string `json:"playerName"`
	Password   string `json:"password,omitempty"`
}

type SetReadyPayload struct {
	Ready bool `json:"ready"`
}

type UpdateSettingsPayload struct {
	Settings room.Settings `json:"settings"`
}

type KickPlayerPayload struct {
	PlayerName string `json:"playerName"`
}

type ChooseSubmitterPayload struct {
	PlayerName string `json:"playerName"`
}

type SubmitSongPayload struct {
	Title    string `json:"title"`
	Artist   string `json:"artist,omitempty"`
	Provider string `json:"provider,omitempty"`
}

type GuessIntentPayload struct {
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Year   int    `json:"year,omitempty"`
}

type ChatPayload struct {
	Text string `json:"text"`
}
