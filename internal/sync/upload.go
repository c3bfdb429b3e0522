package sync

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/fieldline/doorsync/internal/remote"
	"github.com/fieldline/doorsync/internal/schema"
	"github.com/fieldline/doorsync/internal/store"
)

// inspectionUpload is the wire shape for an inspection upsert. The
// local-only sync flags are stripped before the record leaves the
// device.
type inspectionUpload struct {
	ID            string    `json:"id"`
	DoorID        string    `json:"door_id"`
	InspectorName string    `json:"inspector_name"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes"`
	Date          time.Time `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}

func uploadPayload(insp schema.Inspection) inspectionUpload {
	return inspectionUpload{
		ID:            insp.ID,
		DoorID:        insp.DoorID,
		InspectorName: insp.InspectorName,
		Status:        insp.Status,
		Notes:         insp.Notes,
		Date:          insp.Date,
		CreatedAt:     insp.CreatedAt,
	}
}

// uploadPercent maps upload progress into the 10-90 band, leaving room
// for the setup and completion events on either side.
func uploadPercent(uploaded, total int) int {
	return int(math.Round(float64(uploaded)/float64(total)*80)) + 10
}

// UploadPendingChanges implements Engine.UploadPendingChanges.
func (e *engine) UploadPendingChanges(ctx context.Context, onProgress ProgressFunc) (*UploadResult, error) {
	if !e.acquire(ctx) {
		return nil, ErrSyncInProgress
	}
	defer e.release()

	return e.uploadLocked(ctx, onProgress)
}

// uploadLocked runs the upload pass. The caller must hold the sync
// slot.
func (e *engine) uploadLocked(ctx context.Context, onProgress ProgressFunc) (*UploadResult, error) {
	if !e.online(ctx) {
		return nil, e.fail(onProgress, fmt.Errorf("cannot upload: %w", remote.ErrOffline))
	}

	inspections, err := e.store.PendingInspections(ctx)
	if err != nil {
		return nil, e.fail(onProgress, err)
	}
	photos, err := e.store.PendingPhotos(ctx)
	if err != nil {
		return nil, e.fail(onProgress, err)
	}

	result := &UploadResult{Total: len(inspections) + len(photos)}
	if result.Total == 0 {
		emit(onProgress, Progress{Stage: StageComplete, Percent: 100, Message: "No pending changes to upload", Completed: true})
		return result, nil
	}

	e.logger.Printf("Uploading %d pending changes (%d inspections, %d photos)",
		result.Total, len(inspections), len(photos))

	uploaded := 0
	for _, insp := range inspections {
		emit(onProgress, Progress{
			Stage:   StageInspections,
			Percent: uploadPercent(uploaded, result.Total),
			Message: fmt.Sprintf("Uploading inspection %s", insp.ID),
		})

		if err := e.svc.Upsert(ctx, "inspections", uploadPayload(insp)); err != nil {
			e.logger.Printf("WARNING: Failed to upload inspection %s: %v", insp.ID, err)
			result.Failed++
			continue
		}
		if err := e.store.MarkInspectionSynced(ctx, insp.ID); err != nil {
			e.logger.Printf("WARNING: Failed to mark inspection %s synced: %v", insp.ID, err)
			result.Failed++
			continue
		}

		uploaded++
		result.Inspections++
	}

	for _, photo := range photos {
		emit(onProgress, Progress{
			Stage:   StagePhotos,
			Percent: uploadPercent(uploaded, result.Total),
			Message: fmt.Sprintf("Uploading photo %s", photo.Filename),
		})

		opts := remote.UploadOptions{CacheControl: "3600", Upsert: true}
		if err := e.svc.UploadBlob(ctx, e.bucket, photo.StoragePath(), photo.Data, opts); err != nil {
			e.logger.Printf("WARNING: Failed to upload photo %s: %v", photo.ID, err)
			result.Failed++
			continue
		}
		if err := e.store.MarkPhotoSynced(ctx, photo.ID); err != nil {
			e.logger.Printf("WARNING: Failed to mark photo %s synced: %v", photo.ID, err)
			result.Failed++
			continue
		}

		uploaded++
		result.Photos++
	}

	// The pass always finishes: per-item failures stay local and
	// unsynced, so the next upload retries them. The cached pending
	// count is zeroed either way; PendingUploadCount recomputes the
	// live value from the store.
	now := time.Now().UTC()
	zero := 0
	inProgress := false
	if err := e.store.UpdateSyncStatus(ctx, store.StatusPatch{LastSync: &now, PendingUploads: &zero, SyncInProgress: &inProgress}); err != nil {
		return nil, e.fail(onProgress, err)
	}

	e.logger.Printf("Upload complete: %d of %d changes uploaded (%d failed)",
		uploaded, result.Total, result.Failed)
	emit(onProgress, Progress{
		Stage:     StageComplete,
		Percent:   100,
		Message:   fmt.Sprintf("Upload complete: %d of %d changes uploaded", uploaded, result.Total),
		Completed: true,
	})

	return result, nil
}
