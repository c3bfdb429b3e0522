package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldline/doorsync/internal/remote"
	"github.com/fieldline/doorsync/internal/schema"
	"github.com/fieldline/doorsync/internal/store"
)

// DownloadAllData implements Engine.DownloadAllData.
func (e *engine) DownloadAllData(ctx context.Context, onProgress ProgressFunc) error {
	if !e.acquire(ctx) {
		return ErrSyncInProgress
	}
	defer e.release()

	if !e.online(ctx) {
		return e.fail(onProgress, fmt.Errorf("cannot download: %w", remote.ErrOffline))
	}

	e.logger.Printf("Starting full download")
	emit(onProgress, Progress{Stage: StageInit, Percent: 5, Message: "Preparing local store"})

	if err := e.store.Init(ctx); err != nil {
		return e.fail(onProgress, err)
	}

	var customers []schema.Customer
	if err := e.svc.QueryAll(ctx, "customers", "name", &customers); err != nil {
		return e.fail(onProgress, fmt.Errorf("failed to download customers: %w", err))
	}
	if err := e.store.ReplaceCustomers(ctx, customers); err != nil {
		return e.fail(onProgress, err)
	}
	emit(onProgress, Progress{Stage: StageCustomers, Percent: 20, Message: fmt.Sprintf("Downloaded %d customers", len(customers))})

	var doors []schema.Door
	if err := e.svc.QueryAll(ctx, "doors", "", &doors); err != nil {
		return e.fail(onProgress, fmt.Errorf("failed to download doors: %w", err))
	}
	if err := e.store.ReplaceDoors(ctx, doors); err != nil {
		return e.fail(onProgress, err)
	}
	emit(onProgress, Progress{Stage: StageDoors, Percent: 50, Message: fmt.Sprintf("Downloaded %d doors", len(doors))})

	var inspections []schema.Inspection
	if err := e.svc.QueryAll(ctx, "inspections", "date.desc", &inspections); err != nil {
		return e.fail(onProgress, fmt.Errorf("failed to download inspections: %w", err))
	}

	// Download is authoritative: whatever arrives is marked synced.
	// Upserting (rather than replacing) keeps offline-created
	// inspections alive, since their locally minted ids are unknown to
	// the remote side.
	for i := range inspections {
		inspections[i].Synced = true
		inspections[i].OfflineCreated = false
	}
	if err := e.store.UpsertInspections(ctx, inspections); err != nil {
		return e.fail(onProgress, err)
	}
	emit(onProgress, Progress{Stage: StageInspections, Percent: 80, Message: fmt.Sprintf("Downloaded %d inspections", len(inspections))})

	now := time.Now().UTC()
	inProgress := false
	if err := e.store.UpdateSyncStatus(ctx, store.StatusPatch{LastDownload: &now, SyncInProgress: &inProgress}); err != nil {
		return e.fail(onProgress, err)
	}

	e.logger.Printf("Download complete: %d customers, %d doors, %d inspections",
		len(customers), len(doors), len(inspections))
	emit(onProgress, Progress{Stage: StageComplete, Percent: 100, Message: "Download complete", Completed: true})

	return nil
}
