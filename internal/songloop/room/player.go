package room

import "time"

// Player is one seat in a room, keyed by connection identity. Created on
// join, removed on leave or kick; a reconnect produces a fresh Player.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Score     int  `json:"score"`
	Ready     bool `json:"ready"`
	Host      bool `json:"host"`
	Connected bool `json:"connected"`

	RoundGuesses     int  `json:"roundGuesses"`
	CorrectGuesses   int  `json:"correctGuesses"`
	TotalGuesses     int  `json:"totalGuesses"`
	SongsSubmitted   int  `json:"songsSubmitted"`
	GuessedThisRound bool `json:"guessedThisRound"`

	joinedAt time.Time
}

func newPlayer(id, name string, host bool) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Host:      host,
		Ready:     host, // the creator and any promoted host are auto-ready
		Connected: true,
		joinedAt:  time.Now(),
	}
}

// resetRound clears the per-round counters when a new round starts.
func (p *Player) resetRound() {
	p.RoundGuesses = 0
	p.GuessedThisRound = false
}

// resetGame clears everything a fresh game must not inherit.
func (p *Player) resetGame() {
	p.Score = 0
	p.CorrectGuesses = 0
	p.TotalGuesses = 0
	p.SongsSubmitted = 0
	p.resetRound()
}

// View is the broadcast-safe projection of a player.
type View struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Score          int    `json:"score"`
	Ready          bool   `json:"ready"`
	Host           bool   `json:"host"`
	Connected      bool   `json:"connected"`
	CorrectGuesses int    `json:"correctGuesses"`
	TotalGuesses   int    `json:"totalGuesses"`
	SongsSubmitted int    `json:"songsSubmitted"`
}

func (p *Player) view() View {
	return View{
		ID:             p.ID,
		Name:           p.Name,
		Score:          p.Score,
		Ready:          p.Ready,
		Host:           p.Host,
		Connected:      p.Connected,
		CorrectGuesses: p.CorrectGuesses,
		TotalGuesses:   p.TotalGuesses,
		SongsSubmitted: p.SongsSubmitted,
	}
}
