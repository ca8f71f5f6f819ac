package database

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/songloop-games/songloop/internal/cache"
	"github.com/songloop-games/songloop/internal/database"
	"github.com/songloop-games/songloop/internal/database/gamestat/model"
	bolt "go.etcd.io/bbolt"
)

var (
	NotFoundErr       = fmt.Errorf("not found")
	BucketNotFoundErr = fmt.Errorf("bucket not found")
)

const bucket = "gamestats"

func New(db *database.DB, cache cache.Cache) *DB {
	return &DB{sDB: db, cache: cache}
}

type DB struct {
	sDB *database.DB

	cache cache.Cache
}

func key(playerName string) []byte {
	return []byte(strings.ToLower(playerName))
}

// Fetch returns the cumulative stat for a player name.
func (db *DB) Fetch(playerName string) (model.Stat, error) {
	var s model.Stat
	pk := key(playerName)

	if db.cache != nil {
		if v, ok := db.cache.Get(string(pk)); ok {
			return v.(model.Stat), nil
		}
	}

	var bytes []byte
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return NotFoundErr
		}
		bytes = b.Get(pk)
		return nil
	}); err != nil {
		return s, fmt.Errorf("view transaction error: %w", err)
	}

	if len(bytes) == 0 {
		return s, NotFoundErr
	}

	if err := json.Unmarshal(bytes, &s); err != nil {
		return s, fmt.Errorf("unmarshal: %w", err)
	}

	if db.cache != nil {
		db.cache.Add(string(pk), s)
	}

	return s, nil
}

// Apply merges one finished game result into the player's cumulative record.
func (db *DB) Apply(result model.GameResult) error {
	pk := key(result.PlayerName)

	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}

		stat := model.NewStat(result.PlayerName)
		if raw := b.Get(pk); len(raw) > 0 {
			if err := json.Unmarshal(raw, &stat); err != nil {
				return fmt.Errorf("unmarshal: %w", err)
			}
		}

		stat.Games++
		if result.Conclusion == model.ConclusionWinner {
			stat.Wins++
		}
		stat.SumPoints += result.Points
		if result.Points > stat.BestPoints {
			stat.BestPoints = result.Points
		}
		stat.CorrectGuesses += result.CorrectGuesses
		stat.TotalGuesses += result.TotalGuesses
		stat.SongsSubmitted += result.SongsSubmitted
		stat.UpdatedAt = time.Now()

		raw, err := json.Marshal(stat)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}

		if err := b.Put(pk, raw); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}

		if db.cache != nil {
			db.cache.Add(string(pk), stat)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}

// FetchAll returns every stored stat, unordered.
func (db *DB) FetchAll() ([]model.Stat, error) {
	var stats []model.Stat
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return BucketNotFoundErr
		}
		return b.ForEach(func(k, v []byte) error {
			var s model.Stat
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("unmarshal: %w", err)
			}
			stats = append(stats, s)
			return nil
		})
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}

	return stats, nil
}
