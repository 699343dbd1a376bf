/*
Package main
File: main.go
Description: Server entry point. Loads the catalog, resumes the saved game,
and runs the simulation tick, autosave, state pulse, the WebSocket hub and
the HTTP API side by side until the process is told to stop.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/everforgeworks/study-ascension/internal/api"
	"github.com/everforgeworks/study-ascension/internal/game"
	"github.com/everforgeworks/study-ascension/internal/store"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Configuration and logging
	cfg, err := loadServerConfig(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("Config Fail: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	// 2. Static game data
	catalog, err := game.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		log.Fatalf("Catalog Fail: %v", err)
	}
	messages, err := game.LoadMessages(cfg.Locale)
	if err != nil {
		log.Fatalf("Locale Fail: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Persistence
	saves, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Store Fail: %v", err)
	}
	defer closeStore()

	// 4. Engine and real-time hub
	hub := api.NewHub(logger)
	engine := game.NewEngine(game.EngineConfig{
		Catalog:  catalog,
		Store:    saves,
		Slot:     cfg.Slot,
		Notifier: game.Notifiers{game.LogNotifier{Logger: logger}, hub},
		Messages: messages,
		Logger:   logger,
	})
	if err := engine.Load(ctx); err != nil {
		log.Printf("Load Fail, starting a new game: %v", err)
	}

	server := api.NewServer(engine, hub, api.Config{RatePerSecond: cfg.RatePerSecond, Burst: cfg.Burst}, logger)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 5. Background loops
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return engine.RunSaver(gctx) })
	g.Go(func() error {
		every(gctx, cfg.TickInterval, engine.Tick)
		return nil
	})
	g.Go(func() error {
		every(gctx, cfg.SaveInterval, engine.RequestSave)
		return nil
	})
	g.Go(func() error {
		every(gctx, cfg.PulseInterval, func() { hub.Pulse(engine.View()) })
		return nil
	})

	// 6. Hot reload: SIGHUP swaps in a freshly read catalog
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				log.Println("SIGNAL: Reloading catalog...")
				next, err := game.LoadCatalog(cfg.CatalogFile)
				if err != nil {
					log.Printf("Reload Fail, keeping current catalog: %v", err)
					continue
				}
				engine.ReloadCatalog(next)
			}
		}
	})

	// 7. HTTP server
	g.Go(func() error {
		log.Printf("STUDY ASCENSION server live on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Server stopped: %v", err)
	}

	// 8. Final save
	saveCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := engine.Save(saveCtx); err != nil {
		log.Printf("Final save failed: %v", err)
		return
	}
	log.Println("Game saved, bye.")
}

// every calls fn on each tick of d until ctx is done.
func every(ctx context.Context, d time.Duration, fn func()) {
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// openStore picks the save backend: PostgreSQL when a database URL is set,
// otherwise files under SaveDir, or process memory when SaveDir is "memory".
func openStore(ctx context.Context, cfg ServerConfig, logger *slog.Logger) (game.Store, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return pg, pg.Close, nil

	case cfg.SaveDir == "memory":
		logger.Warn("saves are kept in memory and lost on exit")
		return store.NewMemoryStore(), func() {}, nil

	default:
		fs, err := store.NewFileStore(cfg.SaveDir, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("save dir: %w", err)
		}
		return fs, func() {}, nil
	}
}
