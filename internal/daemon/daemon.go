// Package daemon provides the sync daemon that keeps the local store and remote service converged.
//
// The daemon:
// 1. Watches the photo inbox for images dropped by camera apps
// 2. Imports them into the local store as pending photos
// 3. Periodically uploads pending changes when connectivity allows
// 4. Handles graceful shutdown
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	gosync "sync"
	"time"

	"github.com/fieldline/doorsync/internal/sync"
)

// Config holds configuration for the daemon.
type Config struct {
	// SyncInterval is how often to attempt an automatic upload pass
	SyncInterval time.Duration

	// DebounceInterval is how long an inbox file must stay quiet before
	// it is imported. This batches rapid writes so half-copied images
	// are not picked up.
	DebounceInterval time.Duration

	// PendingPollInterval is how often to recount pending uploads for
	// change notifications
	PendingPollInterval time.Duration

	// PhotoInbox is the directory watched for dropped photos, laid out
	// as <inbox>/<inspection_id>/<filename>. Empty disables the inbox
	// watcher.
	PhotoInbox string

	// Notify receives daemon events. Nil disables notifications.
	Notify Events

	// Logger for daemon activity
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SyncInterval:        5 * time.Minute,
		DebounceInterval:    2 * time.Second,
		PendingPollInterval: 2 * time.Second,
		Logger:              log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// Events receives notifications about daemon activity. The dashboard
// implements it to broadcast to connected clients.
type Events interface {
	// SyncProgress is called for every progress event of a sync pass.
	SyncProgress(p sync.Progress)

	// PhotoImported is called after an inbox photo lands in the store.
	PhotoImported(inspectionID, filename string)

	// PendingChanged is called when the pending-upload count changes.
	PendingChanged(count int)
}

// Daemon orchestrates photo-inbox watching and periodic sync passes.
type Daemon struct {
	engine sync.Engine
	config *Config

	inbox         string
	inboxWatcher  *InboxWatcher
	importQueue   map[string]time.Time // photo path -> last event
	importQueueMu gosync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     gosync.WaitGroup
}

// New creates a new Daemon instance with default configuration.
//
// Use Start() to begin watching and syncing.
func New(engine sync.Engine) (*Daemon, error) {
	return NewWithConfig(engine, DefaultConfig())
}

// NewWithConfig creates a daemon with custom configuration.
// Zero-valued intervals fall back to the defaults.
func NewWithConfig(engine sync.Engine, config *Config) (*Daemon, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}

	defaults := DefaultConfig()
	if config.SyncInterval <= 0 {
		config.SyncInterval = defaults.SyncInterval
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = defaults.DebounceInterval
	}
	if config.PendingPollInterval <= 0 {
		config.PendingPollInterval = defaults.PendingPollInterval
	}
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		engine:      engine,
		config:      config,
		importQueue: make(map[string]time.Time),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Start begins the daemon's operation.
//
// The daemon will:
// 1. Run one catch-up sync pass for changes recorded while it was down
// 2. Start watching the photo inbox (when configured)
// 3. Periodically upload pending changes
// 4. Track the pending-upload count for notifications
//
// This blocks until ctx is cancelled or an error occurs.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting daemon")

	// Catch up on anything recorded while the daemon was down
	if d.engine.AutoSyncIfOnline(d.ctx, d.onProgress()) {
		d.config.Logger.Println("Startup sync uploaded pending changes")
	}

	if d.config.PhotoInbox != "" {
		if err := d.startInbox(); err != nil {
			return err
		}

		d.wg.Add(2)
		go d.watchInboxEvents()
		go d.processImportQueue()
	}

	d.wg.Add(2)
	go d.autoSyncLoop()
	go d.watchPendingCount()

	// Wait for shutdown
	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping daemon")

	// Signal shutdown
	d.cancel()

	// Close the inbox watcher
	if d.inboxWatcher != nil {
		if err := d.inboxWatcher.Stop(); err != nil {
			d.config.Logger.Printf("Error stopping inbox watcher: %v", err)
		}
	}

	// Wait for goroutines to finish
	d.wg.Wait()

	d.config.Logger.Println("Daemon stopped")
	return nil
}

// startInbox prepares the inbox directory and begins watching it.
func (d *Daemon) startInbox() error {
	absInbox, err := filepath.Abs(d.config.PhotoInbox)
	if err != nil {
		return fmt.Errorf("failed to resolve photo inbox path: %w", err)
	}
	d.inbox = absInbox

	if err := os.MkdirAll(absInbox, 0755); err != nil {
		return fmt.Errorf("failed to create photo inbox: %w", err)
	}

	watcher, err := NewInboxWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Start(absInbox); err != nil {
		return err
	}
	d.inboxWatcher = watcher

	d.config.Logger.Printf("Watching photo inbox: %s", absInbox)

	// Queue photos dropped while the daemon was down
	d.queueExisting()
	return nil
}

// queueExisting queues image files already sitting in the inbox.
func (d *Daemon) queueExisting() {
	subdirs, err := os.ReadDir(d.inbox)
	if err != nil {
		d.config.Logger.Printf("Warning: failed to scan inbox: %v", err)
		return
	}

	for _, sub := range subdirs {
		if !sub.IsDir() {
			continue
		}
		dir := filepath.Join(d.inbox, sub.Name())

		files, err := os.ReadDir(dir)
		if err != nil {
			d.config.Logger.Printf("Warning: failed to scan inbox subdirectory %s: %v", dir, err)
			continue
		}
		for _, f := range files {
			if f.IsDir() || !IsImageFile(f.Name()) {
				continue
			}
			d.queueImport(filepath.Join(dir, f.Name()))
		}
	}
}

// watchInboxEvents monitors watcher events and queues imports.
func (d *Daemon) watchInboxEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.inboxWatcher.Events():
			if !ok {
				return
			}
			d.config.Logger.Printf("Inbox event: %s (inspection %s)",
				filepath.Base(event.Path), event.InspectionID)
			d.queueImport(event.Path)

		case err, ok := <-d.inboxWatcher.Errors():
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// queueImport adds a photo to the import queue with debouncing.
func (d *Daemon) queueImport(path string) {
	d.importQueueMu.Lock()
	defer d.importQueueMu.Unlock()

	d.importQueue[path] = time.Now()
}

// processImportQueue imports queued photos with debouncing.
func (d *Daemon) processImportQueue() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.processPendingImports()
		}
	}
}

// processPendingImports imports photos whose files have been quiet for
// long enough.
func (d *Daemon) processPendingImports() {
	d.importQueueMu.Lock()
	defer d.importQueueMu.Unlock()

	now := time.Now()
	for path, queuedAt := range d.importQueue {
		// Still being written: wait for the next tick
		if now.Sub(queuedAt) < d.config.DebounceInterval {
			continue
		}

		if err := d.importPhoto(path); err != nil {
			d.config.Logger.Printf("Error importing photo %s: %v", path, err)
		}

		delete(d.importQueue, path)
	}
}

// importPhoto reads a dropped file, stores it as a pending photo, and
// removes the inbox copy.
//
// The file that fails to import stays in the inbox; it is retried on
// the next write event or the next daemon start.
func (d *Daemon) importPhoto(path string) error {
	inspectionID := filepath.Base(filepath.Dir(path))
	filename := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read photo: %w", err)
	}

	if _, err := d.engine.AddPhotoToInspection(d.ctx, inspectionID, filename, data); err != nil {
		return fmt.Errorf("failed to store photo: %w", err)
	}

	// The store holds the bytes now; the inbox copy is spent
	if err := os.Remove(path); err != nil {
		d.config.Logger.Printf("Warning: failed to remove imported photo %s: %v", path, err)
	}

	d.config.Logger.Printf("Imported photo %s into inspection %s (%d bytes)",
		filename, inspectionID, len(data))
	d.notifyPhotoImported(inspectionID, filename)
	return nil
}

// autoSyncLoop periodically uploads pending changes when online.
func (d *Daemon) autoSyncLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			if d.engine.AutoSyncIfOnline(d.ctx, d.onProgress()) {
				d.config.Logger.Println("Auto-sync uploaded pending changes")
			}
		}
	}
}

// watchPendingCount forwards pending-count changes to the notifier.
func (d *Daemon) watchPendingCount() {
	defer d.wg.Done()

	err := WatchPending(d.ctx, d.engine, PendingWatcherConfig{
		PollInterval: d.config.PendingPollInterval,
		Logger:       d.config.Logger,
	}, func(count int) {
		d.notifyPendingChanged(count)
	})
	if err != nil && d.ctx.Err() == nil {
		d.config.Logger.Printf("Pending watcher stopped: %v", err)
	}
}

func (d *Daemon) onProgress() sync.ProgressFunc {
	if d.config.Notify == nil {
		return nil
	}
	return d.config.Notify.SyncProgress
}

func (d *Daemon) notifyPhotoImported(inspectionID, filename string) {
	if d.config.Notify != nil {
		d.config.Notify.PhotoImported(inspectionID, filename)
	}
}

func (d *Daemon) notifyPendingChanged(count int) {
	if d.config.Notify != nil {
		d.config.Notify.PendingChanged(count)
	}
}
