package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/songloop-games/songloop/internal/cache"
	"github.com/songloop-games/songloop/internal/database"
	statDb "github.com/songloop-games/songloop/internal/database/gamestat/database"
	"github.com/songloop-games/songloop/internal/logging"
	"github.com/songloop-games/songloop/internal/server"
	"github.com/songloop-games/songloop/internal/shutdown"
	"github.com/songloop-games/songloop/internal/songloop"
	"github.com/songloop-games/songloop/internal/songloop/music"
	"github.com/songloop-games/songloop/internal/songloop/stats"
	"github.com/songloop-games/songloop/internal/songloop/transport"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, done := shutdown.New()
	defer done()

	logger := logging.FromContext(ctx)
	if err := realMain(ctx, done); err != nil {
		logger.Fatalf("main.realMain: %v", err)
	}
}

func realMain(ctx context.Context, done func()) error {
	// a local .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	config := songloop.Config{}
	if err := envconfig.Process("", &config); err != nil {
		return fmt.Errorf("processing the config: %w", err)
	}

	logger := logging.NewLogger(config.Debug)
	ctx = logging.WithLogger(ctx, logger)

	db, err := database.NewFromEnv(ctx, &config.Db)
	if err != nil {
		return fmt.Errorf("new database from env: %w", err)
	}
	defer db.Close(ctx)

	statCache, err := cache.NewLRU(config.CacheSize)
	if err != nil {
		return fmt.Errorf("can not create lru cache: %w", err)
	}

	songCache, err := cache.NewLRU(config.CacheSize)
	if err != nil {
		return fmt.Errorf("can not create lru cache: %w", err)
	}

	statStore := statDb.New(db, statCache)
	sink := stats.NewSink(statStore, config.StatsBuffer, logger)
	resolver := music.NewCached(music.NewCatalog(), songCache)

	hub := transport.NewHub(logger)
	coord := songloop.NewCoordinator(hub, songloop.CoordinatorConfig{
		Resolver:      resolver,
		Stats:         sink,
		RoundEndDelay: config.RoundEndDelay,
		GameEndDelay:  config.GameEndDelay,
		Logger:        logger,
	})

	srv, err := server.New(config.Port)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	router := server.NewRouter(ctx, transport.NewHandler(hub, coord, logger), coord.Registry(), hub, statStore)

	go func() {
		if err := http.ListenAndServe(":"+config.ProfPort, nil); err != nil {
			logger.Errorf("pprof default server: %v", err)
			done()
		}
	}()

	logger.Infof("songloop server listening on :%s", config.Port)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sink.Run(ctx)
	})
	g.Go(func() error {
		return srv.ServeHTTP(ctx, &http.Server{Handler: router})
	})

	return g.Wait()
}
