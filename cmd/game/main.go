package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/ironhull/scorched/internal/config"
	"github.com/ironhull/scorched/internal/game"
	"github.com/ironhull/scorched/internal/leaderboard"
	"github.com/ironhull/scorched/internal/logging"
	"github.com/ironhull/scorched/internal/store"
)

func main() {
	if err := config.Load("."); err != nil {
		// No logger yet; fall back to a default one for the fatal.
		logging.New("info", "").Fatal().Err(err).Msg("config load failed")
	}
	log := logging.New(config.GetString("logLevel"), config.GetString("logsDir"))

	blobs := openStore(log)
	if closer, ok := blobs.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	engine := game.New(
		game.WithStore(blobs),
		game.WithLogger(log),
	)

	var submitter *leaderboard.Submitter
	if config.GetBool("leaderboard.enabled") {
		client := leaderboard.New(
			config.GetString("leaderboard.serverUrl"),
			config.GetString("leaderboard.apiKey"),
			log,
		)
		submitter = leaderboard.NewSubmitter(client, log, time.Now().UnixNano())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		submitter.Start(ctx)
	}

	host := newHost(engine, blobs, submitter, log)

	ebiten.SetWindowTitle("Scorched")
	ebiten.SetWindowSize(game.DesignWidth, game.DesignHeight)
	if err := ebiten.RunGame(host); err != nil {
		log.Fatal().Err(err).Msg("game loop exited")
	}
}

// openStore picks the persistence backend from config, falling back to
// memory when the configured one cannot be opened.
func openStore(log zerolog.Logger) store.Store {
	dataDir := config.GetString("dataDir")
	switch config.GetString("storage.backend") {
	case config.BackendFile:
		s, err := store.NewFileStore(dataDir, log)
		if err != nil {
			log.Warn().Err(err).Msg("file store unavailable, using memory")
			return store.NewMemoryStore()
		}
		return s
	case config.BackendMemory:
		return store.NewMemoryStore()
	default:
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			log.Warn().Err(err).Msg("data dir unavailable, using memory store")
			return store.NewMemoryStore()
		}
		path := filepath.Join(dataDir, config.GetString("storage.sqlitePath"))
		s, err := store.NewSQLiteStore(path, log)
		if err != nil {
			log.Warn().Err(err).Msg("sqlite store unavailable, using memory")
			return store.NewMemoryStore()
		}
		return s
	}
}
