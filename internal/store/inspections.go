package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fieldline/doorsync/internal/schema"
)

const upsertInspectionSQL = `
INSERT INTO inspections (id, door_id, inspector_name, status, notes, date, synced, offline_created, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	door_id = excluded.door_id,
	inspector_name = excluded.inspector_name,
	status = excluded.status,
	notes = excluded.notes,
	date = excluded.date,
	synced = excluded.synced,
	offline_created = excluded.offline_created,
	created_at = excluded.created_at
`

// UpsertInspection inserts or updates a single inspection by id.
func (s *Store) UpsertInspection(ctx context.Context, insp schema.Inspection) error {
	if err := s.ready(); err != nil {
		return err
	}

	if _, err := s.conn.ExecContext(ctx, upsertInspectionSQL, inspectionArgs(insp)...); err != nil {
		return storageErr(fmt.Sprintf("upsert inspection %s", insp.ID), err)
	}
	return nil
}

// UpsertInspections upserts a batch of inspections in one transaction.
// Existing rows with matching ids are overwritten; rows with ids not in
// the batch are left alone, so offline-created inspections survive a
// download untouched.
func (s *Store) UpsertInspections(ctx context.Context, inspections []schema.Inspection) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin inspection batch", err)
	}
	defer tx.Rollback()

	for _, insp := range inspections {
		if _, err := tx.ExecContext(ctx, upsertInspectionSQL, inspectionArgs(insp)...); err != nil {
			return storageErr(fmt.Sprintf("upsert inspection %s", insp.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit inspection batch", err)
	}
	return nil
}

// GetInspection retrieves a single inspection by id.
// Returns sql.ErrNoRows if no inspection has the given id.
func (s *Store) GetInspection(ctx context.Context, id string) (*schema.Inspection, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	row := s.conn.QueryRowContext(ctx, selectInspectionSQL+" WHERE id = ?", id)

	insp, err := scanInspectionRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, storageErr(fmt.Sprintf("get inspection %s", id), err)
	}
	return insp, nil
}

// ListInspections returns every inspection, newest inspection date first.
func (s *Store) ListInspections(ctx context.Context) ([]schema.Inspection, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, selectInspectionSQL+" ORDER BY date DESC")
	if err != nil {
		return nil, storageErr("list inspections", err)
	}
	defer rows.Close()

	return scanInspections(rows)
}

// InspectionsByDoor returns all inspections recorded against a door,
// newest inspection date first.
func (s *Store) InspectionsByDoor(ctx context.Context, doorID string) ([]schema.Inspection, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, selectInspectionSQL+" WHERE door_id = ? ORDER BY date DESC", doorID)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("query inspections for door %s", doorID), err)
	}
	defer rows.Close()

	return scanInspections(rows)
}

// InspectionsByStatus returns all inspections with the given status,
// newest inspection date first.
func (s *Store) InspectionsByStatus(ctx context.Context, status string) ([]schema.Inspection, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, selectInspectionSQL+" WHERE status = ? ORDER BY date DESC", status)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("query inspections by status %s", status), err)
	}
	defer rows.Close()

	return scanInspections(rows)
}

// PendingInspections returns inspections that have not been uploaded yet,
// oldest first so uploads replay in the order they were recorded.
func (s *Store) PendingInspections(ctx context.Context) ([]schema.Inspection, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, selectInspectionSQL+" WHERE synced = 0 ORDER BY created_at ASC")
	if err != nil {
		return nil, storageErr("query pending inspections", err)
	}
	defer rows.Close()

	return scanInspections(rows)
}

// MarkInspectionSynced flips the synced flag on a single inspection after
// a successful upload.
func (s *Store) MarkInspectionSynced(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}

	if _, err := s.conn.ExecContext(ctx, "UPDATE inspections SET synced = 1 WHERE id = ?", id); err != nil {
		return storageErr(fmt.Sprintf("mark inspection %s synced", id), err)
	}
	return nil
}

const selectInspectionSQL = `
SELECT id, door_id, inspector_name, status, notes, date, synced, offline_created, created_at
FROM inspections`

func inspectionArgs(insp schema.Inspection) []interface{} {
	return []interface{}{
		insp.ID,
		insp.DoorID,
		insp.InspectorName,
		insp.Status,
		insp.Notes,
		insp.Date.Format(time.RFC3339),
		boolToInt(insp.Synced),
		boolToInt(insp.OfflineCreated),
		insp.CreatedAt.Format(time.RFC3339),
	}
}

func scanInspectionRow(row *sql.Row) (*schema.Inspection, error) {
	var insp schema.Inspection
	var date, createdAt string
	var synced, offlineCreated int

	err := row.Scan(&insp.ID, &insp.DoorID, &insp.InspectorName, &insp.Status, &insp.Notes,
		&date, &synced, &offlineCreated, &createdAt)
	if err != nil {
		return nil, err
	}

	if t, err := time.Parse(time.RFC3339, date); err == nil {
		insp.Date = t
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		insp.CreatedAt = t
	}
	insp.Synced = synced != 0
	insp.OfflineCreated = offlineCreated != 0

	return &insp, nil
}

// scanInspections is a helper to scan multiple inspections from query results.
func scanInspections(rows *sql.Rows) ([]schema.Inspection, error) {
	var inspections []schema.Inspection

	for rows.Next() {
		var insp schema.Inspection
		var date, createdAt string
		var synced, offlineCreated int

		err := rows.Scan(&insp.ID, &insp.DoorID, &insp.InspectorName, &insp.Status, &insp.Notes,
			&date, &synced, &offlineCreated, &createdAt)
		if err != nil {
			return nil, storageErr("scan inspection", err)
		}

		if t, err := time.Parse(time.RFC3339, date); err == nil {
			insp.Date = t
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			insp.CreatedAt = t
		}
		insp.Synced = synced != 0
		insp.OfflineCreated = offlineCreated != 0

		inspections = append(inspections, insp)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate inspections", err)
	}

	return inspections, nil
}
