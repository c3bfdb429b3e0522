package schema

import "time"

// SyncStatusID is the fixed primary key of the singleton SyncStatus record.
const SyncStatusID = "main"

// SyncStatus is the singleton record tracking sync history. PendingUploads
// is an advisory cache: the authoritative count is always recomputable from
// the store contents (see StoreStats.PendingUploads).
type SyncStatus struct {
	ID string `json:"id"`

	LastSync     *time.Time `json:"last_sync,omitempty"`     // last successful upload pass
	LastDownload *time.Time `json:"last_download,omitempty"` // last successful full download

	PendingUploads int  `json:"pending_uploads"`
	SyncInProgress bool `json:"sync_in_progress"`
}

// DefaultSyncStatus returns the zero-value singleton used when no record
// has been written yet.
func DefaultSyncStatus() SyncStatus {
	return SyncStatus{ID: SyncStatusID}
}

// StoreStats summarizes the local store contents.
type StoreStats struct {
	Customers   int `json:"customers"`
	Doors       int `json:"doors"`
	Inspections int `json:"inspections"`

	// Photos counts only photos not yet uploaded, not the full photo table.
	Photos int `json:"photos"`

	// PendingUploads = unsynced inspections + unsynced photos, recomputed
	// from the live tables on every call.
	PendingUploads int `json:"pending_uploads"`
}
