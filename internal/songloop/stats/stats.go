// Package stats is the asynchronous stats collaborator. Rooms hand it
// telemetry through the StatsSink interface; a single goroutine drains a
// buffered channel into the bbolt-backed gamestat store. The channel never
// blocks a room: when the buffer is full the notification is dropped.
package stats

import (
	"context"
	"sync/atomic"

	statDb "github.com/songloop-games/songloop/internal/database/gamestat/database"
	"github.com/songloop-games/songloop/internal/database/gamestat/model"
	"github.com/songloop-games/songloop/internal/logging"
	"github.com/songloop-games/songloop/internal/songloop/room"
	"go.uber.org/zap"
)

const defaultBuffer = 256

type event struct {
	gameStart *room.Snapshot
	gameEnd   *gameEnd
	guess     *room.GuessResult
	submit    *room.GameSong
}

type gameEnd struct {
	results []room.PlayerResult
	winner  string
}

type Sink struct {
	db      *statDb.DB
	ch      chan event
	dropped uint64
	logger  *zap.SugaredLogger
}

var _ room.StatsSink = (*Sink)(nil)

func NewSink(db *statDb.DB, buffer int, logger *zap.SugaredLogger) *Sink {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Sink{
		db:     db,
		ch:     make(chan event, buffer),
		logger: logger.Named("stats"),
	}
}

// Run drains the channel until ctx is cancelled, then flushes whatever is
// still buffered.
func (s *Sink) Run(ctx context.Context) error {
	for {
		select {
		case ev := <-s.ch:
			s.process(ev)
		case <-ctx.Done():
			for {
				select {
				case ev := <-s.ch:
					s.process(ev)
				default:
					if n := atomic.LoadUint64(&s.dropped); n > 0 {
						s.logger.Warnf("dropped %d stats notifications under load", n)
					}
					return nil
				}
			}
		}
	}
}

func (s *Sink) process(ev event) {
	switch {
	case ev.gameEnd != nil:
		for _, res := range ev.gameEnd.results {
			conclusion := model.ConclusionParticipant
			if res.Winner {
				conclusion = model.ConclusionWinner
			}
			if err := s.db.Apply(model.GameResult{
				PlayerName:     res.Name,
				Points:         res.Score,
				CorrectGuesses: res.CorrectGuesses,
				TotalGuesses:   res.TotalGuesses,
				SongsSubmitted: res.SongsSubmitted,
				Conclusion:     conclusion,
			}); err != nil {
				s.logger.Errorf("apply game result for %s: %v", res.Name, err)
			}
		}
	case ev.gameStart != nil:
		s.logger.Debugf("game started in room %s with %d players",
			ev.gameStart.ID, len(ev.gameStart.Players))
	case ev.guess != nil:
		s.logger.Debugf("guess by %s correct=%v", ev.guess.PlayerName, ev.guess.Correct)
	case ev.submit != nil:
		s.logger.Debugf("song submitted: %s by %s", ev.submit.Title, ev.submit.Artist)
	}
}

func (s *Sink) send(ev event) {
	select {
	case s.ch <- ev:
	default:
		atomic.AddUint64(&s.dropped, 1)
	}
}

func (s *Sink) OnGameStart(snap room.Snapshot) {
	s.send(event{gameStart: &snap})
}

func (s *Sink) OnGameEnd(results []room.PlayerResult, winner string) {
	s.send(event{gameEnd: &gameEnd{results: results, winner: winner}})
}

func (s *Sink) OnGuess(result room.GuessResult) {
	s.send(event{guess: &result})
}

func (s *Sink) OnSongSubmit(song room.GameSong) {
	s.send(event{submit: &song})
}
