package room

import (
	"time"

	"github.com/songloop-games/songloop/internal/songloop/lyrics"
)

// Round is one submit-then-guess cycle. Exactly one round is live per room;
// a finished round is frozen into the history with Active=false.
type Round struct {
	Number int      `json:"number"`
	Song   GameSong `json:"song"`

	Slice lyrics.Slice `json:"slice"`

	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt,omitempty"`

	Guesses      []GuessResult `json:"guesses"`
	CorrectOrder []string      `json:"correctOrder"`

	Active        bool   `json:"active"`
	SubmitterID   string `json:"-"`
	SubmitterName string `json:"submitterName"`

	SubmitterPenalized bool `json:"-"`
}

// GuessResult is one appended guess outcome within a round.
type GuessResult struct {
	PlayerName string    `json:"playerName"`
	Text       string    `json:"text"`
	Correct    bool      `json:"correct"`
	At         time.Time `json:"at"`
	Ordinal    int       `json:"ordinal"`
	Delta      int       `json:"delta"`

	Guessed *SongSummary `json:"guessed,omitempty"`
}

// GuessPayload identifies the candidate song a player picked.
type GuessPayload struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
	Year   int    `json:"year,omitempty"`
}

func (p GuessPayload) summary() *SongSummary {
	return &SongSummary{Title: p.Title, Artist: p.Artist, Album: p.Album, Year: p.Year}
}

// text is the raw guess line used for matching and history.
func (p GuessPayload) text() string {
	if p.Artist != "" {
		return p.Artist + " - " + p.Title
	}
	return p.Title
}
