package music

import (
	"context"

	"github.com/songloop-games/songloop/internal/songloop/lyrics"
	"github.com/songloop-games/songloop/internal/songloop/room"
)

// Catalog is the built-in resolver: a fixed set of songs with timed lyrics,
// enough to run games without any external provider configured.
type Catalog struct {
	songs []catalogEntry
}

type catalogEntry struct {
	song room.GameSong
	lrc  string
}

func NewCatalog() *Catalog {
	return &Catalog{songs: builtinSongs}
}

var _ Resolver = (*Catalog)(nil)

// Resolve matches the query against the built-in titles with the same
// normalization the guess matcher uses. An artist in the query narrows the
// match.
func (c *Catalog) Resolve(_ context.Context, q Query) (room.GameSong, error) {
	title := room.Normalize(q.Title)
	artist := room.Normalize(q.Artist)
	if title == "" {
		return room.GameSong{}, NotFoundErr
	}

	for _, e := range c.songs {
		if room.Normalize(e.song.Title) != title {
			continue
		}
		if artist != "" && room.Normalize(e.song.Artist) != artist {
			continue
		}
		song := e.song
		song.Lyrics = lyrics.Parse(e.lrc)
		return song, nil
	}

	return room.GameSong{}, NotFoundErr
}

// Titles lists the catalog contents for the demo clients.
func (c *Catalog) Titles() []room.SongSummary {
	out := make([]room.SongSummary, 0, len(c.songs))
	for _, e := range c.songs {
		out = append(out, room.SongSummary{
			Title:  e.song.Title,
			Artist: e.song.Artist,
			Album:  e.song.Album,
			Year:   e.song.Year,
		})
	}
	return out
}

var builtinSongs = []catalogEntry{
	{
		song: room.GameSong{
			Title: "Paper Lanterns", Artist: "The Harbor Lights",
			Album: "Low Tide", Year: 2019, Language: "en",
			Tags: []string{"indie", "folk"},
		},
		lrc: `[00:12.00]We folded up the evening
[00:16.40]Into squares of orange light
[00:20.80]Set them drifting on the water
[00:25.20]Little fires in the night
[00:29.60]You said nothing lasts forever
[00:34.00]I said nothing really ends
[00:38.40]Paper lanterns on the harbor
[00:42.80]Carrying our last amends
[00:47.20]And the tide takes what we gave it
[00:51.60]And the wind takes what we say
[00:56.00]Paper lanterns, paper lanterns
[01:00.40]Burning out across the bay
[01:04.80]We were younger than the summer
[01:09.20]We were older than the rain
[01:13.60]Now I fold another lantern
[01:18.00]Every year, it's not the same
[01:22.40]And the tide takes what we gave it
[01:26.80]Paper lanterns on the bay`,
	},
	{
		song: room.GameSong{
			Title: "Static City", Artist: "Nova Reyes",
			Album: "Frequencies", Year: 2021, Language: "en",
			Tags: []string{"synthpop"},
		},
		lrc: `[00:08.00]Antennas on the rooftops
[00:11.50]Catching what the night lets through
[00:15.00]Every channel plays the same song
[00:18.50]Every signal leads to you
[00:22.00]I'm tuning through the static
[00:25.50]Looking for a cleaner sound
[00:29.00]In the static city, static city
[00:32.50]Nothing ever touches ground
[00:36.00]Neon bleeding into windows
[00:39.50]Of apartments stacked like tapes
[00:43.00]We rewind the same old evenings
[00:46.50]Wearing out the finer shapes
[00:50.00]I'm tuning through the static
[00:53.50]Till the morning shuts it down
[00:57.00]In the static city, static city
[01:00.50]You're the only steady sound`,
	},
	{
		song: room.GameSong{
			Title: "Sky", Artist: "Nova Reyes",
			Album: "Frequencies", Year: 2021, Language: "en",
			Tags: []string{"synthpop"},
		},
		lrc: `[00:10.00]There's a hole in the ceiling
[00:13.80]Where the rain writes its name
[00:17.60]I've been counting the colors
[00:21.40]No two mornings the same
[00:25.20]And the sky keeps on turning
[00:29.00]Like it's winding a clock
[00:32.80]All the hours keep falling
[00:36.60]On the roofs of the block
[00:40.40]Sky, carry me over
[00:44.20]Sky, put me down slow
[00:48.00]Everything I was holding
[00:51.80]The sky already knows
[00:55.60]There's a light past the water
[00:59.40]That I can't quite believe
[01:03.20]And the sky keeps on turning
[01:07.00]And I can't quite leave`,
	},
	{
		song: room.GameSong{
			Title: "Borrowed Coat", Artist: "June Arcade",
			Album: "Winter Practice", Year: 2017, Language: "en",
			Tags: []string{"indie", "rock"},
		},
		lrc: `[00:14.00]I left the party early
[00:18.20]In a coat that wasn't mine
[00:22.40]Found a ticket in the pocket
[00:26.60]For a train I'll never find
[00:30.80]Some stranger's winter toll
[00:35.00]In a borrowed coat, borrowed coat
[00:39.20]Walking someone else's road
[00:43.40]The streetlights all were humming
[00:47.60]A song I almost knew
[00:51.80]Every corner looked familiar
[00:56.00]Every shadow looked like you
[01:00.20]I'll return it in the morning
[01:04.40]With the ticket still inside
[01:08.60]In a borrowed coat, borrowed coat
[01:12.80]One more borrowed night`,
	},
	{
		song: room.GameSong{
			Title: "Salt and Circuitry", Artist: "The Harbor Lights",
			Album: "Low Tide", Year: 2019, Language: "en",
			Tags: []string{"indie", "electronic"},
		},
		lrc: `[00:09.00]The lighthouse runs on batteries
[00:13.30]The fog rolls in on time
[00:17.60]Half this town is wiring
[00:21.90]The other half is brine
[00:26.20]Salt and circuitry, darling
[00:30.50]That's all we're made of now
[00:34.80]Rust along the railing
[00:39.10]Current through the bow
[00:43.40]They automated the morning
[00:47.70]They automated the tide
[00:52.00]But nobody wrote a program
[00:56.30]For the ache we keep inside
[01:00.60]Salt and circuitry, darling
[01:04.90]Hum and undertow
[01:09.20]Whatever keeps the light on
[01:13.50]Is whatever lets us go`,
	},
	{
		song: room.GameSong{
			Title: "Kilometer Zero", Artist: "Vera Marchetti",
			Album: "Atlas Hands", Year: 2023, Language: "en",
			Tags: []string{"pop"},
		},
		lrc: `[00:11.00]Every road in this country
[00:15.10]Starts from a brass star in the square
[00:19.20]I stood on it at midnight
[00:23.30]Just to start from somewhere
[00:27.40]Kilometer zero
[00:31.50]Every distance is mine
[00:35.60]Kilometer zero
[00:39.70]I'm the start of the line
[00:43.80]I measured all my leaving
[00:47.90]In the marks along the way
[00:52.00]But the star stays in the square
[00:56.10]And the square is where I'll stay
[01:00.20]Kilometer zero
[01:04.30]Turn the map around
[01:08.40]Kilometer zero
[01:12.50]Home is the starting ground`,
	},
}
