package sync

import (
	"context"
	"time"

	"github.com/fieldline/doorsync/internal/schema"
)

// Engine coordinates data movement between the local store and the
// remote backend.
//
// The engine owns sync policy: what a download replaces, what an upload
// pushes, how progress is reported, and how partial failure is handled.
// It never talks to the network except through the remote.Service it was
// constructed with, and never touches persistence except through the
// store.
//
// At most one download or upload pass runs at a time per engine. Methods
// that start a pass return ErrSyncInProgress when another pass is still
// running; AutoSyncIfOnline returns false instead.
type Engine interface {
	// DownloadAllData pulls the full working set from remote, replacing
	// local customers and doors wholesale and upserting inspections.
	// Inspections created offline on this device survive: the download
	// only overwrites rows whose ids the remote side also has.
	//
	// Fails fast with an error wrapping remote.ErrOffline when the
	// backend is unreachable. Any stage failure aborts the download,
	// reports an error-stage event, and returns the failure; writes from
	// earlier stages are kept (the download is not atomic).
	//
	// Example:
	//   err := engine.DownloadAllData(ctx, func(p sync.Progress) {
	//       fmt.Printf("[%3d%%] %s\n", p.Percent, p.Message)
	//   })
	DownloadAllData(ctx context.Context, onProgress ProgressFunc) error

	// UploadPendingChanges pushes every unsynced inspection and photo to
	// remote, inspections first. Each item is independent: a failed item
	// is logged and skipped, and the pass continues. Only setup failures
	// (unreachable backend, unreadable pending set) return an error.
	//
	// With nothing pending the pass completes immediately with a single
	// 100% progress event.
	UploadPendingChanges(ctx context.Context, onProgress ProgressFunc) (*UploadResult, error)

	// AutoSyncIfOnline uploads pending changes if the backend is
	// reachable, something is pending, and no pass is running. Returns
	// true only when an upload pass actually ran. Never returns an
	// error: every failure is logged and reported as false.
	AutoSyncIfOnline(ctx context.Context, onProgress ProgressFunc) bool

	// CreateOfflineInspection mints a local id, stores the inspection
	// with synced=false and offline_created=true, and refreshes the
	// pending-upload count. Returns the new id.
	//
	// Example:
	//   id, err := engine.CreateOfflineInspection(ctx, sync.InspectionDraft{
	//       DoorID:        "door-42",
	//       InspectorName: "Max",
	//       Status:        schema.StatusPending,
	//   })
	CreateOfflineInspection(ctx context.Context, draft InspectionDraft) (string, error)

	// AddPhotoToInspection stores image bytes as an unsynced photo
	// attached to the given inspection and refreshes the pending-upload
	// count. Returns the new photo id.
	AddPhotoToInspection(ctx context.Context, inspectionID, filename string, data []byte) (string, error)

	// PendingUploadCount returns the number of records waiting for
	// upload, recomputed from the live tables.
	PendingUploadCount(ctx context.Context) (int, error)

	// LastSyncInfo returns the sync status singleton: last upload and
	// download times, the advisory pending count, and the in-progress
	// flag.
	LastSyncInfo(ctx context.Context) (schema.SyncStatus, error)

	// Stats returns collection counts for status displays.
	Stats(ctx context.Context) (schema.StoreStats, error)
}

// InspectionDraft is the caller-supplied part of a new offline
// inspection. Zero-value Status and Date get defaults (pending, now).
type InspectionDraft struct {
	DoorID        string
	InspectorName string
	Status        string
	Notes         string
	Date          time.Time
}

// UploadResult summarizes one upload pass.
type UploadResult struct {
	Inspections int // inspections uploaded and marked synced
	Photos      int // photos uploaded and marked synced
	Failed      int // items skipped after a per-item failure
	Total       int // pending items when the pass started
}
