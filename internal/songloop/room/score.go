package room

// Scoring constants. Applied at guess time for guessers and at round end for
// the submitter.
const (
	correctBasePoints = 100
	firstCorrectBonus = 50
	selfGuessPenalty  = -50

	submitterNoneCorrectBonus = 50
	submitterAllCorrectMalus  = -30
	submitterPartialPerPlayer = 20
)

// guesserDelta is the score change for a correct non-submitter guess.
func guesserDelta(first bool) int {
	if first {
		return correctBasePoints + firstCorrectBonus
	}
	return correctBasePoints
}

// submitterDelta is the round-end adjustment for the submitter, based on how
// many of the eligible (non-submitter) players found the song. Nobody correct
// rewards a good pick; everybody correct means it was too easy.
func submitterDelta(correct, eligible int) int {
	switch {
	case eligible == 0 || correct == 0:
		return submitterNoneCorrectBonus
	case correct == eligible:
		return submitterAllCorrectMalus
	default:
		return submitterPartialPerPlayer * correct
	}
}
