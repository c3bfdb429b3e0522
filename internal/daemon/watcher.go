// Package daemon provides the background process that keeps a device in sync.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// IsImageFile reports whether path has a recognized photo extension.
func IsImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic":
		return true
	}
	return false
}

// PhotoEvent represents an image file dropped into the photo inbox.
type PhotoEvent struct {
	// Path is the absolute path of the image file.
	Path string
	// InspectionID is the inspection the photo belongs to, taken from
	// the name of the subdirectory holding the file.
	InspectionID string
}

// InboxWatcher watches the photo inbox for new images.
// It uses fsnotify for cross-platform file system event monitoring.
//
// The inbox is laid out as <inbox>/<inspection_id>/<filename>: dropping
// an image into an inspection's subdirectory queues it for import. The
// watcher picks up new subdirectories as they appear, so an inspection
// created after the daemon started still gets its photos imported.
type InboxWatcher struct {
	watcher *fsnotify.Watcher
	events  chan PhotoEvent
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	inbox   string
}

// NewInboxWatcher creates a new InboxWatcher instance.
// The watcher must be started with Start() before it will emit events.
func NewInboxWatcher() (*InboxWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &InboxWatcher{
		watcher: watcher,
		events:  make(chan PhotoEvent, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching the inbox directory for new photos.
// Existing inspection subdirectories are watched immediately; new ones
// are added as they are created.
func (iw *InboxWatcher) Start(inbox string) error {
	iw.mu.Lock()
	defer iw.mu.Unlock()

	if iw.running {
		return fmt.Errorf("watcher already running")
	}

	absInbox, err := filepath.Abs(inbox)
	if err != nil {
		return fmt.Errorf("failed to resolve inbox path %s: %w", inbox, err)
	}
	iw.inbox = absInbox

	if err := iw.watcher.Add(absInbox); err != nil {
		return fmt.Errorf("failed to watch inbox directory %s: %w", absInbox, err)
	}

	// Watch subdirectories that already exist
	entries, err := os.ReadDir(absInbox)
	if err != nil {
		iw.watcher.Remove(absInbox)
		return fmt.Errorf("failed to read inbox directory %s: %w", absInbox, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(absInbox, entry.Name())
		if err := iw.watcher.Add(sub); err != nil {
			iw.watcher.Remove(absInbox)
			return fmt.Errorf("failed to watch inbox subdirectory %s: %w", sub, err)
		}
	}

	iw.running = true
	iw.wg.Add(1)
	go iw.processEvents()

	return nil
}

// Stop stops watching for file system events and cleans up resources.
// It blocks until the event processing goroutine has exited.
func (iw *InboxWatcher) Stop() error {
	iw.mu.Lock()
	if !iw.running {
		iw.mu.Unlock()
		return nil
	}
	iw.running = false
	iw.mu.Unlock()

	// Signal shutdown
	close(iw.done)

	// Close the underlying watcher (this will unblock the event loop)
	if err := iw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	// Wait for event processing to finish
	iw.wg.Wait()

	// Close channels
	close(iw.events)
	close(iw.errors)

	return nil
}

// Events returns the channel that emits PhotoEvent notifications.
// This channel is closed when the watcher is stopped.
func (iw *InboxWatcher) Events() <-chan PhotoEvent {
	return iw.events
}

// Errors returns the channel that emits error notifications.
// This channel is closed when the watcher is stopped.
func (iw *InboxWatcher) Errors() <-chan error {
	return iw.errors
}

// processEvents is the main event loop that processes fsnotify events
// and converts them to PhotoEvent notifications.
func (iw *InboxWatcher) processEvents() {
	defer iw.wg.Done()

	for {
		select {
		case <-iw.done:
			return

		case event, ok := <-iw.watcher.Events:
			if !ok {
				return
			}

			// A new inspection subdirectory: follow it, no event
			if iw.followNewDir(event) {
				continue
			}

			if photoEvent, ok := iw.convertEvent(event); ok {
				select {
				case iw.events <- photoEvent:
				case <-iw.done:
					return
				}
			}

		case err, ok := <-iw.watcher.Errors:
			if !ok {
				return
			}

			select {
			case iw.errors <- err:
			case <-iw.done:
				return
			}
		}
	}
}

// followNewDir adds newly created subdirectories to the watch set.
// Returns true if the event was a directory creation.
func (iw *InboxWatcher) followNewDir(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) {
		return false
	}

	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return false
	}

	if err := iw.watcher.Add(event.Name); err != nil {
		select {
		case iw.errors <- fmt.Errorf("failed to watch new subdirectory %s: %w", event.Name, err):
		default:
		}
	}
	return true
}

// convertEvent converts an fsnotify event to a PhotoEvent.
// Returns (PhotoEvent, true) if the event should be processed,
// or (PhotoEvent{}, false) if the event should be ignored.
func (iw *InboxWatcher) convertEvent(event fsnotify.Event) (PhotoEvent, bool) {
	// Only additions matter. The importer removes files it has
	// consumed, so remove and rename events must not re-queue them.
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return PhotoEvent{}, false
	}

	if !IsImageFile(event.Name) {
		return PhotoEvent{}, false
	}

	// Files at the inbox root have no inspection to belong to
	dir := filepath.Dir(event.Name)
	if dir == iw.inbox {
		return PhotoEvent{}, false
	}

	return PhotoEvent{
		Path:         event.Name,
		InspectionID: filepath.Base(dir),
	}, true
}

// IsRunning returns true if the watcher is currently running.
func (iw *InboxWatcher) IsRunning() bool {
	iw.mu.Lock()
	defer iw.mu.Unlock()
	return iw.running
}
