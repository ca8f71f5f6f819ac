// Package music resolves a player's song request into a playable GameSong.
// The room core treats resolution as an opaque external call: a failure is a
// user-facing "song not found", never a fatal error.
package music

import (
	"context"
	"fmt"

	"github.com/songloop-games/songloop/internal/cache"
	"github.com/songloop-games/songloop/internal/songloop/room"
)

var NotFoundErr = fmt.Errorf("song not found")

// Query identifies the requested song. Provider selects the backing catalog
// when several are configured; empty means any.
type Query struct {
	Title    string
	Artist   string
	Provider string
}

type Resolver interface {
	Resolve(ctx context.Context, q Query) (room.GameSong, error)
}

// Cached fronts a resolver with the shared cache so repeated requests for
// the same song skip the lookup.
type Cached struct {
	inner Resolver
	cache cache.Cache
}

func NewCached(inner Resolver, c cache.Cache) *Cached {
	return &Cached{inner: inner, cache: c}
}

func (r *Cached) Resolve(ctx context.Context, q Query) (room.GameSong, error) {
	key := room.Normalize(q.Artist) + "|" + room.Normalize(q.Title)
	if v, ok := r.cache.Get(key); ok {
		return v.(room.GameSong), nil
	}

	song, err := r.inner.Resolve(ctx, q)
	if err != nil {
		return room.GameSong{}, err
	}

	r.cache.Add(key, song)
	return song, nil
}
