package model

import (
	"time"

	"github.com/google/uuid"
)

type Conclusion string

const (
	ConclusionWinner      Conclusion = "winner"
	ConclusionParticipant Conclusion = "participant"
)

func NewStat(playerName string) Stat {
	return Stat{ID: uuid.New(), PlayerName: playerName, CreatedAt: time.Now()}
}

// Stat is the cumulative per-player record aggregated across finished games.
// Players are keyed by display name since connections are ephemeral.
type Stat struct {
	ID         uuid.UUID `json:"-"`
	PlayerName string    `json:"playerName"`

	Games int `json:"games"`
	Wins  int `json:"wins"`

	SumPoints  int `json:"sumPoints"`
	BestPoints int `json:"bestPoints"`

	CorrectGuesses int `json:"correctGuesses"`
	TotalGuesses   int `json:"totalGuesses"`
	SongsSubmitted int `json:"songsSubmitted"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GameResult is one player's slice of a single finished game, merged into
// the cumulative Stat by the store.
type GameResult struct {
	PlayerName     string     `json:"playerName"`
	Points         int        `json:"points"`
	CorrectGuesses int        `json:"correctGuesses"`
	TotalGuesses   int        `json:"totalGuesses"`
	SongsSubmitted int        `json:"songsSubmitted"`
	Conclusion     Conclusion `json:"conclusion"`
}
