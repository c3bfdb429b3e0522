// Package sync moves inspection data between the local store and the remote service.
//
// Overview
//
// The sync package implements the offline-first core of doorsync. Field
// technicians download the day's customers, doors, and inspections while
// they have connectivity, record inspections and photos offline, and
// upload the pending changes once back on the network.
//
// Architecture
//
// The engine sits between the local store and the remote service:
//
//	Remote Service (Postgres REST + blob storage)
//	     ├── customers, doors, inspections  → download (wholesale / upsert)
//	     └── object storage bucket          ← photo blobs
//	                     ↕
//	                  Engine
//	                     ↕
//	                Local Store
//	                (SQLite, works offline)
//
// Downloads replace customers and doors wholesale and upsert inspections,
// so inspections created offline survive a refresh. Uploads push unsynced
// inspections and photos one at a time and flip their synced flag on
// success.
//
// Usage
//
// Basic usage:
//
//	// Open the local store
//	st, err := store.Open(".doorsync/doorsync.db")
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	// Connect the remote service
//	svc, err := remote.NewClient(remote.Config{BaseURL: url, APIKey: key})
//	if err != nil {
//	    return err
//	}
//
//	// Create the engine
//	engine := sync.New(st, svc, sync.Config{})
//
//	// Pull everything down for the day
//	if err := engine.DownloadAllData(ctx, nil); err != nil {
//	    return err
//	}
//
// Offline work:
//
//	// Record an inspection with no connectivity
//	id, err := engine.CreateOfflineInspection(ctx, sync.InspectionDraft{
//	    DoorID:        "door-17",
//	    InspectorName: "Max",
//	    Status:        "completed",
//	})
//	if err != nil {
//	    return err
//	}
//
//	// Attach a photo
//	if _, err := engine.AddPhotoToInspection(ctx, id, "hinge.jpg", data); err != nil {
//	    return err
//	}
//
//	// Push it all once back online
//	result, err := engine.UploadPendingChanges(ctx, nil)
//
// Recording inspections and photos needs no backend at all; NewLocal
// builds an engine bound to the store alone, whose download and upload
// report remote.ErrOffline:
//
//	engine := sync.NewLocal(st, sync.Config{})
//
// Progress Reporting
//
// Every download and upload accepts an optional callback that receives
// stage-by-stage progress events:
//
//	engine.DownloadAllData(ctx, func(p sync.Progress) {
//	    fmt.Printf("[%3d%%] %s\n", p.Percent, p.Message)
//	})
//
// A nil callback is fine; the pass runs silently.
//
// Error Handling
//
// The engine distinguishes setup failures from per-item failures:
//
//   - No connectivity surfaces remote.ErrOffline before any work starts
//   - A failed fetch aborts the whole download; rows written by earlier
//     stages stay in the store
//   - A failed upload of one inspection or photo is logged and skipped;
//     the rest of the batch continues and the item stays pending for the
//     next pass
//
// Concurrency
//
// One engine runs at most one pass at a time:
//
//   - A second DownloadAllData or UploadPendingChanges while a pass runs
//     returns ErrSyncInProgress
//   - AutoSyncIfOnline never errors; it returns false when the slot is
//     taken
//   - The sync_in_progress store field mirrors the slot for status
//     displays but is not the lock itself
package sync
