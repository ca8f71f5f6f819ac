package protocol

import (
	"strconv"

	"github.com/enescakir/emoji"
	"github.com/songloop-games/songloop/internal/strpool"
)

// System chat lines accompanying the structured events, so bare-bones
// clients can show a readable feed without interpreting every event type.

func RenderPlayerJoined(name string) string {
	buf := strpool.Get()
	defer func() {
		buf.Reset()
		strpool.Put(buf)
	}()
	buf.WriteString(emoji.WavingHand.String())
	buf.WriteString(" ")
	buf.WriteString(name)
	buf.WriteString(" joined the room")
	return buf.String()
}

func RenderPlayerLeft(name string) string {
	buf := strpool.Get()
	defer func() {
		buf.Reset()
		strpool.Put(buf)
	}()
	buf.WriteString(emoji.Door.String())
	buf.WriteString(" ")
	buf.WriteString(name)
	buf.WriteString(" left the room")
	return buf.String()
}

func RenderHostChanged(name string) string {
	buf := strpool.Get()
	defer func() {
		buf.Reset()
		strpool.Put(buf)
	}()
	buf.WriteString(emoji.Crown.String())
	buf.WriteString(" ")
	buf.WriteString(name)
	buf.WriteString(" is the new host")
	return buf.String()
}

func RenderRoundStarted(number int, submitter string) string {
	buf := strpool.Get()
	defer func() {
		buf.Reset()
		strpool.Put(buf)
	}()
	buf.WriteString(emoji.MusicalNotes.String())
	buf.WriteString(" Round ")
	buf.WriteString(strconv.Itoa(number))
	buf.WriteString(": guess the song picked by ")
	buf.WriteString(submitter)
	return buf.String()
}

func RenderRoundEnded(title, artist string, correctCount int) string {
	buf := strpool.Get()
	defer func() {
		buf.Reset()
		strpool.Put(buf)
	}()
	buf.WriteString(emoji.CheckMarkButton.String())
	buf.WriteString(" The song was ")
	buf.WriteString("*")
	buf.WriteString(title)
	buf.WriteString("*")
	buf.WriteString(" by ")
	buf.WriteString(artist)
	buf.WriteString(", guessed by ")
	buf.WriteString(strconv.Itoa(correctCount))
	return buf.String()
}

func RenderGameEnded(winner string, score int) string {
	buf := strpool.Get()
	defer func() {
		buf.Reset()
		strpool.Put(buf)
	}()
	buf.WriteString(emoji.Trophy.String())
	buf.WriteString(" ")
	buf.WriteString(winner)
	buf.WriteString(" wins with ")
	buf.WriteString(strconv.Itoa(score))
	buf.WriteString(" points")
	return buf.String()
}
