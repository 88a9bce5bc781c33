package main

import (
	"boardroom/generation"
	"boardroom/infrastructure/httpapi"
	"boardroom/internal"
	"boardroom/observability"
	"boardroom/repositories"
	"boardroom/runtime/workers"
	"boardroom/search"
	"boardroom/services"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the server process.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal arrives.
// Returning instead of exiting lets deferred cleanup run.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Session store (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()
	sessionRepository := repositories.NewSessionRepository(db, log, config.LimitMessages)

	// 3. Guideline index (bluge)
	index, err := search.OpenIndex(log, config.BlugeFilepath)
	if err != nil {
		return exitRuntime, fmt.Errorf("guideline index opening failed: %w", err)
	}
	defer func() { _ = index.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := os.Stat(config.GuidelinesDir); err == nil {
		if _, err := index.LoadDir(ctx, config.GuidelinesDir); err != nil {
			return exitRuntime, fmt.Errorf("guideline indexing failed: %w", err)
		}
	} else {
		log.Warn("Guidelines directory not found, guideline search will be empty", "dir", config.GuidelinesDir)
	}

	// 4. Generation
	catalog := generation.NewCatalog(log, config.Catalog())
	if !catalog.Configured() {
		log.Warn("Azure OpenAI configuration is missing, streams will end with an error record")
	}

	// 5. Services & transport
	stats := observability.NewStreamStats()
	streamService := services.NewStreamService(log, catalog, index, sessionRepository, stats, services.StreamConfig{
		MaxRounds: config.BoardMaxRounds,
		MaxCalls:  config.BoardMaxCalls,
		SearchTop: config.SearchTop,
		Language:  config.Language,
	})
	sessionService := services.NewSessionService(log, sessionRepository)
	server := httpapi.NewServer(log, streamService, sessionService, config.Origins(), config.WriteTimeout)

	// 6. Supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewHTTPServerWorker(log, config.Address(), server.Handler()),
		workers.NewHeartbeatWorker(log, stats, config.HeartbeatInterval),
	)
	if config.DebugAddress != "" {
		debug := internal.NewDebugHandler(log, sessionRepository, stats.Snapshot)
		sup.Add(workers.NewHTTPServerWorker(log, config.DebugAddress, debug))
		log.Info("Inspect page enabled", "url", "http://"+config.DebugAddress+"/inspect")
	}

	log.Info("Starting boardroom", "address", config.Address(), "at", time.Now().UTC(), "language", config.Language)
	sup.Run(ctx)

	log.Info("Program stopped cleanly")
	return exitOK, nil
}
