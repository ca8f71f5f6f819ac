package songloop

import (
	"time"

	"github.com/songloop-games/songloop/internal/database"
)

type Config struct {
	// Verbose development logging
	Debug bool `envconfig:"SONGLOOP_DEBUG" default:"false"`

	// Number of items in each LRU cache
	CacheSize int `envconfig:"SONGLOOP_CACHE_SIZE" default:"1024"`

	// Port serving the websocket endpoint, health check and room listing
	Port string `envconfig:"SONGLOOP_PORT" default:"8080"`

	// profile port
	ProfPort string `envconfig:"SONGLOOP_PROF_PORT" default:"8888"`

	// Buffered stats notifications before drops set in
	StatsBuffer int `envconfig:"SONGLOOP_STATS_BUFFER" default:"256"`

	// How long round results stay on screen before the next round
	RoundEndDelay time.Duration `envconfig:"SONGLOOP_ROUND_END_DELAY" default:"8s"`

	// How long final scores stay on screen before the room resets
	GameEndDelay time.Duration `envconfig:"SONGLOOP_GAME_END_DELAY" default:"10s"`

	Db database.Config
}
