package sync

import (
	"context"
	"errors"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fieldline/doorsync/internal/remote"
	"github.com/fieldline/doorsync/internal/schema"
	"github.com/fieldline/doorsync/internal/store"
)

// ErrSyncInProgress is returned when a download or upload is requested
// while another pass is still running on this engine.
//
// Use errors.Is to detect it:
//
//	if errors.Is(err, sync.ErrSyncInProgress) {
//	    // try again after the running pass finishes
//	}
var ErrSyncInProgress = errors.New("sync already in progress")

// DefaultPhotoBucket is the storage bucket photos upload into unless
// Config names another one.
const DefaultPhotoBucket = "inspection-photos"

// Config holds engine settings.
type Config struct {
	// PhotoBucket is the remote storage bucket for photo uploads.
	// Empty means DefaultPhotoBucket.
	PhotoBucket string

	// Logger receives sync diagnostics. Nil means stderr.
	Logger *log.Logger
}

// engine implements the Engine interface.
type engine struct {
	store  *store.Store
	svc    remote.Service
	bucket string
	logger *log.Logger

	// busy is the real mutual exclusion between sync passes. The
	// sync_in_progress store field only mirrors it for status displays.
	busy atomic.Bool
}

// New creates a new Engine instance.
//
// The store must be opened before passing it in; the engine initializes
// the schema itself at the start of a download, so a fresh store works.
//
// Example:
//
//	st, err := store.Open(".doorsync/doorsync.db")
//	if err != nil {
//	    return err
//	}
//	svc, err := remote.NewClient(remote.Config{BaseURL: url, APIKey: key})
//	if err != nil {
//	    return err
//	}
//	engine := sync.New(st, svc, sync.Config{})
func New(st *store.Store, svc remote.Service, config Config) Engine {
	bucket := config.PhotoBucket
	if bucket == "" {
		bucket = DefaultPhotoBucket
	}

	logger := config.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}

	return &engine{
		store:  st,
		svc:    svc,
		bucket: bucket,
		logger: logger,
	}
}

// NewLocal creates an Engine bound to no backend. Local operations
// (creating inspections, adding photos, counts, stats) work normally;
// download and upload report offline and AutoSyncIfOnline never runs a
// pass. Use it for purely local work, such as recording inspections
// before a backend is configured.
func NewLocal(st *store.Store, config Config) Engine {
	return New(st, nil, config)
}

// online reports backend reachability. An engine built without a
// backend is never online.
func (e *engine) online(ctx context.Context) bool {
	return e.svc != nil && e.svc.Online(ctx)
}

// acquire claims the sync slot and mirrors the claim into the store.
// Returns false when another pass holds it.
func (e *engine) acquire(ctx context.Context) bool {
	if !e.busy.CompareAndSwap(false, true) {
		return false
	}

	inProgress := true
	if err := e.store.UpdateSyncStatus(ctx, store.StatusPatch{SyncInProgress: &inProgress}); err != nil {
		e.logger.Printf("WARNING: Failed to record sync start: %v", err)
	}
	return true
}

// release drops the sync slot and clears the mirror flag. It ignores the
// caller's context so a canceled pass still leaves the flag false.
func (e *engine) release() {
	inProgress := false
	if err := e.store.UpdateSyncStatus(context.Background(), store.StatusPatch{SyncInProgress: &inProgress}); err != nil {
		e.logger.Printf("WARNING: Failed to clear sync flag: %v", err)
	}
	e.busy.Store(false)
}

// fail reports a pass failure through the progress callback and returns
// the error for the caller.
func (e *engine) fail(onProgress ProgressFunc, err error) error {
	e.logger.Printf("Sync failed: %v", err)
	emit(onProgress, Progress{Stage: StageError, Message: err.Error(), Error: err.Error()})
	return err
}

// AutoSyncIfOnline implements Engine.AutoSyncIfOnline.
func (e *engine) AutoSyncIfOnline(ctx context.Context, onProgress ProgressFunc) bool {
	if !e.online(ctx) {
		return false
	}

	if !e.acquire(ctx) {
		return false
	}
	defer e.release()

	pending, err := e.store.CountPending(ctx)
	if err != nil {
		e.logger.Printf("WARNING: Auto-sync aborted: %v", err)
		return false
	}
	if pending == 0 {
		return false
	}

	e.logger.Printf("Auto-sync: %d pending changes, uploading", pending)
	if _, err := e.uploadLocked(ctx, onProgress); err != nil {
		e.logger.Printf("WARNING: Auto-sync upload failed: %v", err)
		return false
	}
	return true
}

// CreateOfflineInspection implements Engine.CreateOfflineInspection.
func (e *engine) CreateOfflineInspection(ctx context.Context, draft InspectionDraft) (string, error) {
	insp := schema.Inspection{
		ID:             newLocalID(),
		DoorID:         draft.DoorID,
		InspectorName:  draft.InspectorName,
		Status:         draft.Status,
		Notes:          draft.Notes,
		Date:           draft.Date,
		Synced:         false,
		OfflineCreated: true,
		CreatedAt:      time.Now().UTC(),
	}
	insp.SetDefaults()

	if err := insp.Validate(); err != nil {
		return "", err
	}

	if err := e.store.UpsertInspection(ctx, insp); err != nil {
		return "", err
	}
	if err := e.refreshPendingCount(ctx); err != nil {
		return "", err
	}

	e.logger.Printf("Created offline inspection %s for door %s", insp.ID, insp.DoorID)
	return insp.ID, nil
}

// AddPhotoToInspection implements Engine.AddPhotoToInspection.
func (e *engine) AddPhotoToInspection(ctx context.Context, inspectionID, filename string, data []byte) (string, error) {
	photo := schema.Photo{
		ID:           newLocalID(),
		InspectionID: inspectionID,
		Filename:     filename,
		Data:         data,
		Synced:       false,
		CreatedAt:    time.Now().UTC(),
	}

	if err := photo.Validate(); err != nil {
		return "", err
	}

	if err := e.store.UpsertPhoto(ctx, photo); err != nil {
		return "", err
	}
	if err := e.refreshPendingCount(ctx); err != nil {
		return "", err
	}

	e.logger.Printf("Added photo %s to inspection %s (%d bytes)", photo.Filename, inspectionID, len(data))
	return photo.ID, nil
}

// PendingUploadCount implements Engine.PendingUploadCount.
func (e *engine) PendingUploadCount(ctx context.Context) (int, error) {
	return e.store.CountPending(ctx)
}

// LastSyncInfo implements Engine.LastSyncInfo.
func (e *engine) LastSyncInfo(ctx context.Context) (schema.SyncStatus, error) {
	return e.store.SyncStatus(ctx)
}

// Stats implements Engine.Stats.
func (e *engine) Stats(ctx context.Context) (schema.StoreStats, error) {
	return e.store.Stats(ctx)
}

// refreshPendingCount recomputes the advisory pending_uploads field from
// the live tables.
func (e *engine) refreshPendingCount(ctx context.Context) error {
	pending, err := e.store.CountPending(ctx)
	if err != nil {
		return err
	}
	return e.store.UpdateSyncStatus(ctx, store.StatusPatch{PendingUploads: &pending})
}

// newLocalID mints an id for records created offline. UUID v7 carries a
// time-based prefix, so offline ids sort by creation and cannot collide
// with server-assigned ids.
func newLocalID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
