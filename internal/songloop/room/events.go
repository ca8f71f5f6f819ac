package room

import "github.com/songloop-games/songloop/internal/songloop/lyrics"

// Outbound event types fanned out to room members after a transition. The
// room builds events under its lock from snapshot values and hands them to
// the notify sink after unlocking; it never writes to connections itself.
const (
	EventRoomCreated       = "room_created"
	EventRoomJoined        = "room_joined"
	EventRoomUpdated       = "room_updated"
	EventPlayerJoined      = "player_joined"
	EventPlayerLeft        = "player_left"
	EventPlayerReady       = "player_ready"
	EventHostChanged       = "host_changed"
	EventPlayerKicked      = "player_kicked"
	EventRoomDissolved     = "room_dissolved"
	EventChat              = "chat"
	EventGameStarted       = "game_started"
	EventNeedsSubmitter    = "needs_submitter"
	EventSubmitterSelected = "submitter_selected"
	EventRoundStarted      = "round_started"
	EventGuessResult       = "guess_result"
	EventPlayerGuessed     = "player_guessed"
	EventSpectatorGuess    = "spectator_guess"
	EventAnswerReveal      = "answer_reveal"
	EventRoundEnded        = "round_ended"
	EventGameEnded         = "game_ended"
)

// Event is one outbound notification. An empty To means every member of the
// room; Except trims recipients from a broadcast.
type Event struct {
	Type   string      `json:"type"`
	To     []string    `json:"-"`
	Except []string    `json:"-"`
	Data   interface{} `json:"data,omitempty"`
}

// NotifyFn consumes events produced by a room. Called without the room lock
// held, in transition order.
type NotifyFn func(roomID string, events ...Event)

// StatsSink receives fire-and-forget game telemetry. Implementations must
// not block; the room does not depend on their success.
type StatsSink interface {
	OnGameStart(room Snapshot)
	OnGameEnd(results []PlayerResult, winner string)
	OnGuess(result GuessResult)
	OnSongSubmit(song GameSong)
}

// NopStats discards all telemetry.
type NopStats struct{}

func (NopStats) OnGameStart(Snapshot)             {}
func (NopStats) OnGameEnd([]PlayerResult, string) {}
func (NopStats) OnGuess(GuessResult)              {}
func (NopStats) OnSongSubmit(GameSong)            {}

// Snapshot is the consistent outside view of a room, safe to serialize after
// the lock is released.
type Snapshot struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	HostName string   `json:"hostName"`
	Private  bool     `json:"private"`
	Status   string   `json:"status"`
	Settings Settings `json:"settings"`
	Capacity int      `json:"capacity"`
	Players  []View   `json:"players"`

	RoundNumber   int    `json:"roundNumber"`
	RoundsPlayed  int    `json:"roundsPlayed"`
	SubmitterName string `json:"submitterName,omitempty"`
}

// PlayerResult is one player's final line at game end.
type PlayerResult struct {
	Name           string `json:"name"`
	Score          int    `json:"score"`
	CorrectGuesses int    `json:"correctGuesses"`
	TotalGuesses   int    `json:"totalGuesses"`
	SongsSubmitted int    `json:"songsSubmitted"`
	Winner         bool   `json:"winner"`
}

// RoundStartView is the excerpt-bearing payload for round_started.
type RoundStartView struct {
	RoundNumber   int          `json:"roundNumber"`
	SubmitterName string       `json:"submitterName"`
	Slice         lyrics.Slice `json:"slice"`
	StartedAt     int64        `json:"startedAt"`
	EndsAt        int64        `json:"endsAt"`
	MaxGuesses    int          `json:"maxGuesses"`
}

// RoundEndView reveals the answer and the per-player deltas.
type RoundEndView struct {
	RoundNumber    int            `json:"roundNumber"`
	Song           GameSong       `json:"song"`
	Reason         string         `json:"reason"`
	CorrectOrder   []string       `json:"correctOrder"`
	SubmitterName  string         `json:"submitterName"`
	SubmitterDelta int            `json:"submitterDelta"`
	Scores         map[string]int `json:"scores"`
	RoundsPlayed   int            `json:"roundsPlayed"`
	MaxRounds      int            `json:"maxRounds"`
}

// GuessOutcomeView is the private feedback for the guessing player.
type GuessOutcomeView struct {
	Correct          bool         `json:"correct"`
	Delta            int          `json:"delta"`
	RemainingGuesses int          `json:"remainingGuesses"`
	RoundEnded       bool         `json:"roundEnded"`
	Guessed          *SongSummary `json:"guessed,omitempty"`
}

// PlayerGuessedView is the public trace of a guess, sans the raw text for
// players still guessing.
type PlayerGuessedView struct {
	PlayerName   string `json:"playerName"`
	Correct      bool   `json:"correct"`
	Ordinal      int    `json:"ordinal"`
	CorrectCount int    `json:"correctCount"`
}
