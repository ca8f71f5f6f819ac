package room

import "time"

const (
	minLyricLines   = 1
	maxLyricLines   = 10
	minGuesses      = 1
	maxGuesses      = 10
	minRoundSeconds = 30
	maxRoundSeconds = 180
	minRounds       = 1
	maxRounds       = 20
)

// Settings are the host-tunable game parameters. Mutable only while the room
// is waiting.
type Settings struct {
	LyricLineCount     int  `json:"lyricLineCount"`
	EndOnFirstCorrect  bool `json:"endOnFirstCorrect"`
	MaxGuessesPerRound int  `json:"maxGuessesPerRound"`
	RoundSeconds       int  `json:"roundSeconds"`
	MaxRounds          int  `json:"maxRounds"`
}

func DefaultSettings() Settings {
	return Settings{
		LyricLineCount:     4,
		EndOnFirstCorrect:  false,
		MaxGuessesPerRound: 3,
		RoundSeconds:       90,
		MaxRounds:          5,
	}
}

func (s Settings) Validate() error {
	if s.LyricLineCount < minLyricLines || s.LyricLineCount > maxLyricLines {
		return NewError(CodeValidation, "lyric line count must be %d-%d", minLyricLines, maxLyricLines)
	}
	if s.MaxGuessesPerRound < minGuesses || s.MaxGuessesPerRound > maxGuesses {
		return NewError(CodeValidation, "max guesses per round must be %d-%d", minGuesses, maxGuesses)
	}
	if s.RoundSeconds < minRoundSeconds || s.RoundSeconds > maxRoundSeconds {
		return NewError(CodeValidation, "round duration must be %d-%d seconds", minRoundSeconds, maxRoundSeconds)
	}
	if s.MaxRounds < minRounds || s.MaxRounds > maxRounds {
		return NewError(CodeValidation, "max rounds must be %d-%d", minRounds, maxRounds)
	}
	return nil
}

func (s Settings) RoundDuration() time.Duration {
	return time.Duration(s.RoundSeconds) * time.Second
}
