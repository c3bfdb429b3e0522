package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/fieldline/doorsync/internal/remote"
	"github.com/fieldline/doorsync/internal/store"
	"github.com/fieldline/doorsync/internal/sync"
	"github.com/fieldline/doorsync/internal/ui"
)

// openStore opens the local database and ensures the schema exists.
func openStore(cfg *appConfig) (*store.Store, error) {
	st, err := store.Open(cfg.dbPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	if err := st.Init(context.Background()); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to initialize local store: %w", err)
	}
	return st, nil
}

// buildEngine wires the local store and backend client into a sync
// engine. The returned cleanup closes the store and must be called even
// when the engine is only used for local operations.
func buildEngine(cfg *appConfig, logger *log.Logger) (sync.Engine, func(), error) {
	if cfg.BaseURL == "" {
		return nil, nil, fmt.Errorf("no backend configured (run 'doorsync config init' first)")
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	svc, err := remote.NewClient(remote.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Logger:  logger,
	})
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	engine := sync.New(st, svc, sync.Config{
		PhotoBucket: cfg.PhotoBucket,
		Logger:      logger,
	})

	cleanup := func() {
		if err := st.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
		}
	}
	return engine, cleanup, nil
}

// printProgress renders one sync progress event as a console line.
func printProgress(p sync.Progress) {
	line := fmt.Sprintf("[%3d%%] %s", p.Percent, p.Message)
	switch {
	case p.Error != "":
		fmt.Println(ui.RenderError(line))
	case p.Completed:
		fmt.Println(ui.RenderPass(line))
	default:
		fmt.Println(line)
	}
}
