package music

import (
	"context"
	"errors"
	"testing"

	"github.com/songloop-games/songloop/internal/cache"
	"github.com/songloop-games/songloop/internal/songloop/room"
)

func TestCatalogResolve(t *testing.T) {
	t.Parallel()

	c := NewCatalog()

	song, err := c.Resolve(context.Background(), Query{Title: "sky"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if song.Title != "Sky" || song.Artist != "Nova Reyes" {
		t.Fatalf("unexpected song %s by %s", song.Title, song.Artist)
	}
	if len(song.Lyrics) == 0 {
		t.Fatal("resolved song must carry parsed lyrics")
	}
	for i := 1; i < len(song.Lyrics); i++ {
		if song.Lyrics[i].Time < song.Lyrics[i-1].Time {
			t.Fatal("lyrics must be time-ordered")
		}
	}

	_, err = c.Resolve(context.Background(), Query{Title: "Sky", Artist: "Wrong Artist"})
	if !errors.Is(err, NotFoundErr) {
		t.Fatalf("expected NotFoundErr, got %v", err)
	}

	_, err = c.Resolve(context.Background(), Query{Title: "No Such Song"})
	if !errors.Is(err, NotFoundErr) {
		t.Fatalf("expected NotFoundErr, got %v", err)
	}

	_, err = c.Resolve(context.Background(), Query{})
	if !errors.Is(err, NotFoundErr) {
		t.Fatalf("expected NotFoundErr for an empty query, got %v", err)
	}
}

type recording struct {
	inner Resolver
	calls int
}

func (r *recording) Resolve(ctx context.Context, q Query) (room.GameSong, error) {
	r.calls++
	return r.inner.Resolve(ctx, q)
}

func TestCachedResolve(t *testing.T) {
	t.Parallel()

	lru, err := cache.NewLRU(8)
	if err != nil {
		t.Fatalf("new lru: %v", err)
	}

	inner := &recording{inner: NewCatalog()}
	r := NewCached(inner, lru)

	for i := 0; i < 3; i++ {
		song, err := r.Resolve(context.Background(), Query{Title: "Paper Lanterns"})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if song.Title != "Paper Lanterns" {
			t.Fatalf("unexpected title %q", song.Title)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected one backing lookup, got %d", inner.calls)
	}

	// misses are not cached
	if _, err := r.Resolve(context.Background(), Query{Title: "nope"}); !errors.Is(err, NotFoundErr) {
		t.Fatalf("expected NotFoundErr, got %v", err)
	}
	if _, err := r.Resolve(context.Background(), Query{Title: "nope"}); !errors.Is(err, NotFoundErr) {
		t.Fatalf("expected NotFoundErr, got %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("expected misses to hit the backing resolver, got %d calls", inner.calls)
	}
}
