package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fieldline/doorsync/internal/schema"
)

// StatusPatch is a partial update to the sync status singleton. Nil
// fields are left untouched; set fields are merged into the stored row.
type StatusPatch struct {
	LastSync       *time.Time
	LastDownload   *time.Time
	PendingUploads *int
	SyncInProgress *bool
}

const selectSyncStatusSQL = `
SELECT id, last_sync, last_download, pending_uploads, sync_in_progress
FROM sync_status WHERE id = ?`

const upsertSyncStatusSQL = `
INSERT INTO sync_status (id, last_sync, last_download, pending_uploads, sync_in_progress)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	last_sync = excluded.last_sync,
	last_download = excluded.last_download,
	pending_uploads = excluded.pending_uploads,
	sync_in_progress = excluded.sync_in_progress
`

// SyncStatus returns the sync status singleton. A store that has never
// synced has no row yet; callers get the zero-value defaults rather than
// an error in that case.
func (s *Store) SyncStatus(ctx context.Context) (schema.SyncStatus, error) {
	if err := s.ready(); err != nil {
		return schema.SyncStatus{}, err
	}

	row := s.conn.QueryRowContext(ctx, selectSyncStatusSQL, schema.SyncStatusID)

	status, err := scanSyncStatusRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return schema.DefaultSyncStatus(), nil
		}
		return schema.SyncStatus{}, storageErr("get sync status", err)
	}
	return status, nil
}

// UpdateSyncStatus merges the patch into the singleton row, creating it
// on first write. The read-modify-write runs in one transaction so two
// concurrent patches never clobber each other's fields.
func (s *Store) UpdateSyncStatus(ctx context.Context, patch StatusPatch) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin status update", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, selectSyncStatusSQL, schema.SyncStatusID)
	status, err := scanSyncStatusRow(row)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return storageErr("read sync status", err)
		}
		status = schema.DefaultSyncStatus()
	}

	if patch.LastSync != nil {
		status.LastSync = patch.LastSync
	}
	if patch.LastDownload != nil {
		status.LastDownload = patch.LastDownload
	}
	if patch.PendingUploads != nil {
		status.PendingUploads = *patch.PendingUploads
	}
	if patch.SyncInProgress != nil {
		status.SyncInProgress = *patch.SyncInProgress
	}

	_, err = tx.ExecContext(ctx, upsertSyncStatusSQL,
		status.ID,
		timeToNullString(status.LastSync),
		timeToNullString(status.LastDownload),
		status.PendingUploads,
		boolToInt(status.SyncInProgress),
	)
	if err != nil {
		return storageErr("write sync status", err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit status update", err)
	}
	return nil
}

func scanSyncStatusRow(row *sql.Row) (schema.SyncStatus, error) {
	var status schema.SyncStatus
	var lastSync, lastDownload sql.NullString
	var inProgress int

	err := row.Scan(&status.ID, &lastSync, &lastDownload, &status.PendingUploads, &inProgress)
	if err != nil {
		return schema.SyncStatus{}, err
	}

	status.LastSync = nullStringToTime(lastSync)
	status.LastDownload = nullStringToTime(lastDownload)
	status.SyncInProgress = inProgress != 0

	return status, nil
}
