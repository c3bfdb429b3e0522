// Package daemon provides photo-inbox watching and periodic synchronization for doorsync.
//
// The daemon keeps a field device converged without anyone running commands:
// photos dropped into the inbox become pending store records, and pending
// records are uploaded whenever connectivity allows.
//
// # Architecture
//
// The daemon consists of several components:
//
//   - InboxWatcher: Cross-platform file system event monitoring using fsnotify
//   - Daemon: Orchestrates inbox imports, debouncing, and periodic sync passes
//   - WatchPending: Polls the pending-upload count for change notifications
//
// # Photo Inbox
//
// The inbox is a directory tree keyed by inspection id:
//
//	inbox/
//	  ├── 0190f3c2-.../        inspection id
//	  │     ├── hinge.jpg
//	  │     └── frame.png
//	  └── 0190f4a1-.../
//	        └── closer.jpg
//
// Camera apps and file managers drop images into an inspection's
// subdirectory. The daemon waits for the file to stay quiet for the
// debounce interval, reads it into the store as a pending photo, and
// deletes the inbox copy. Files that fail to import stay in place and
// are retried on the next write or the next daemon start.
//
// # Inbox Watching
//
// The InboxWatcher component provides a high-level abstraction over fsnotify:
//
//	iw, err := daemon.NewInboxWatcher()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer iw.Stop()
//
//	if err := iw.Start("/var/doorsync/inbox"); err != nil {
//	    log.Fatal(err)
//	}
//
//	for event := range iw.Events() {
//	    fmt.Printf("New photo %s for inspection %s\n", event.Path, event.InspectionID)
//	}
//
// The watcher automatically:
//   - Filters to image files (jpg, jpeg, png, gif, webp, heic)
//   - Ignores files at the inbox root (no inspection to attach to)
//   - Follows inspection subdirectories created after startup
//   - Ignores remove events, so imports never loop
//   - Provides clean shutdown with channel closure
//
// # Running the Daemon
//
//	engine := sync.New(st, svc, sync.Config{})
//
//	d, err := daemon.NewWithConfig(engine, &daemon.Config{
//	    SyncInterval: 5 * time.Minute,
//	    PhotoInbox:   "/var/doorsync/inbox",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Blocks until ctx is cancelled
//	if err := d.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// On startup the daemon runs one catch-up sync pass, then uploads
// pending changes every SyncInterval. All passes go through the sync
// engine's single-slot guard, so a manual CLI sync and a daemon pass
// never run concurrently against the same engine.
//
// # Notifications
//
// The optional Events interface forwards daemon activity to other
// components. The dashboard implements it to broadcast sync progress,
// photo imports, and pending-count changes to connected clients. A nil
// Notify disables notifications without changing daemon behavior.
//
// # Thread Safety
//
// InboxWatcher is thread-safe. Multiple goroutines can safely call:
//   - Events() and Errors() (read-only channel access)
//   - IsRunning() (protected by mutex)
//
// Start() and Stop() should only be called from a single controlling goroutine.
//
// # Graceful Shutdown
//
// Cancelling the context passed to Start() stops all goroutines, stops
// the inbox watcher, and waits for in-flight imports to finish. Stop()
// may also be called directly.
package daemon
