// Package daemon provides polling helpers for tracking pending uploads.
package daemon

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/fieldline/doorsync/internal/sync"
)

// PendingWatcherConfig configures the pending-count watcher.
type PendingWatcherConfig struct {
	// PollInterval is how often to recount pending uploads (default: 2s)
	PollInterval time.Duration

	// Logger for poll failures. Nil means stderr.
	Logger *log.Logger
}

// PendingCallback is called when the pending-upload count changes.
//
// The callback runs on the watcher's goroutine; long work should be
// handed off.
type PendingCallback func(count int)

// WatchPending polls the pending-upload count and calls the callback on
// every change, starting with the initial count.
//
// This function blocks until the context is cancelled. Count failures
// are logged and polling continues.
//
// Example:
//
//	err := daemon.WatchPending(ctx, engine, daemon.PendingWatcherConfig{}, func(count int) {
//	    log.Printf("Pending uploads: %d", count)
//	})
func WatchPending(ctx context.Context, engine sync.Engine, config PendingWatcherConfig, callback PendingCallback) error {
	// Set defaults
	if config.PollInterval == 0 {
		config.PollInterval = 2 * time.Second
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[daemon] ", log.LstdFlags)
	}

	// Report the starting count right away
	lastCount := -1
	if count, err := engine.PendingUploadCount(ctx); err == nil {
		lastCount = count
		callback(count)
	} else {
		config.Logger.Printf("Warning: failed to count pending uploads: %v", err)
	}

	ticker := time.NewTicker(config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			count, err := engine.PendingUploadCount(ctx)
			if err != nil {
				config.Logger.Printf("Warning: failed to count pending uploads: %v", err)
				continue
			}
			if count == lastCount {
				continue
			}

			lastCount = count
			callback(count)
		}
	}
}
