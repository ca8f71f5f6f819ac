package room

import "github.com/songloop-games/songloop/internal/songloop/lyrics"

// GameSong is the resolved song a submitter supplied for one round. It is
// owned by the round that accepted it and never shared.
type GameSong struct {
	Title      string        `json:"title"`
	Artist     string        `json:"artist"`
	Album      string        `json:"album,omitempty"`
	AudioURL   string        `json:"audioUrl,omitempty"`
	PictureURL string        `json:"pictureUrl,omitempty"`
	Lyrics     []lyrics.Line `json:"-"`

	SubmitterName string `json:"submitterName"`

	Year       int      `json:"year,omitempty"`
	Popularity int      `json:"popularity,omitempty"`
	Language   string   `json:"language,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// SongSummary is the denormalized view of a guessed candidate, echoed back in
// guess feedback.
type SongSummary struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
	Year   int    `json:"year,omitempty"`
}
