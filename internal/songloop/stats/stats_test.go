package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/songloop-games/songloop/internal/cache"
	"github.com/songloop-games/songloop/internal/database"
	statDb "github.com/songloop-games/songloop/internal/database/gamestat/database"
	"github.com/songloop-games/songloop/internal/songloop/room"
)

func testStore(t *testing.T) *statDb.DB {
	t.Helper()

	db, err := database.NewFromEnv(context.Background(), &database.Config{
		FilePath: filepath.Join(t.TempDir(), "stats.db"),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close(context.Background())
	})

	lru, err := cache.NewLRU(16)
	if err != nil {
		t.Fatalf("new lru: %v", err)
	}
	return statDb.New(db, lru)
}

func TestSinkPersistsGameEnd(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	sink := NewSink(store, 16, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sink.Run(ctx)
	}()

	results := []room.PlayerResult{
		{Name: "Alice", Score: 250, CorrectGuesses: 2, TotalGuesses: 3, Winner: true},
		{Name: "Bob", Score: -30, SongsSubmitted: 1},
	}
	sink.OnGameEnd(results, "Alice")
	sink.OnGameEnd([]room.PlayerResult{
		{Name: "Alice", Score: 100, CorrectGuesses: 1, TotalGuesses: 2},
	}, "Bob")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s, err := store.Fetch("alice"); err == nil && s.Games == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	stat, err := store.Fetch("Alice")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if stat.Games != 2 || stat.Wins != 1 {
		t.Fatalf("expected 2 games 1 win, got %d/%d", stat.Games, stat.Wins)
	}
	if stat.SumPoints != 350 || stat.BestPoints != 250 {
		t.Fatalf("unexpected points %d/%d", stat.SumPoints, stat.BestPoints)
	}
	if stat.CorrectGuesses != 3 || stat.TotalGuesses != 5 {
		t.Fatalf("unexpected guess totals %d/%d", stat.CorrectGuesses, stat.TotalGuesses)
	}

	bob, err := store.Fetch("bob")
	if err != nil {
		t.Fatalf("fetch bob: %v", err)
	}
	if bob.Games != 1 || bob.Wins != 0 || bob.SongsSubmitted != 1 {
		t.Fatalf("unexpected bob stat %+v", bob)
	}

	cancel()
	<-done
}

func TestSinkFlushesOnShutdown(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	sink := NewSink(store, 16, nil)

	// queued before the drain loop even starts
	sink.OnGameEnd([]room.PlayerResult{{Name: "Carol", Score: 80, Winner: true}}, "Carol")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sink.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	stat, err := store.Fetch("Carol")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if stat.Games != 1 || stat.Wins != 1 || stat.SumPoints != 80 {
		t.Fatalf("unexpected stat %+v", stat)
	}
}

func TestSinkNeverBlocks(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	sink := NewSink(store, 1, nil)

	// no drain loop running; the buffer fills and the rest drop silently
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			sink.OnGuess(room.GuessResult{PlayerName: "Alice"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sink must not block the caller")
	}
}
