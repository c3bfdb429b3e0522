package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fieldline/doorsync/internal/schema"
)

const upsertPhotoSQL = `
INSERT INTO photos (id, inspection_id, filename, data, synced, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	inspection_id = excluded.inspection_id,
	filename = excluded.filename,
	data = excluded.data,
	synced = excluded.synced,
	created_at = excluded.created_at
`

// UpsertPhoto inserts or updates a single photo by id.
// The image bytes are stored inline so the photo survives without any
// filesystem dependency until it is uploaded.
func (s *Store) UpsertPhoto(ctx context.Context, p schema.Photo) error {
	if err := s.ready(); err != nil {
		return err
	}

	if _, err := s.conn.ExecContext(ctx, upsertPhotoSQL, photoArgs(p)...); err != nil {
		return storageErr(fmt.Sprintf("upsert photo %s", p.ID), err)
	}
	return nil
}

// UpsertPhotos upserts a batch of photos in one transaction.
func (s *Store) UpsertPhotos(ctx context.Context, photos []schema.Photo) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin photo batch", err)
	}
	defer tx.Rollback()

	for _, p := range photos {
		if _, err := tx.ExecContext(ctx, upsertPhotoSQL, photoArgs(p)...); err != nil {
			return storageErr(fmt.Sprintf("upsert photo %s", p.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit photo batch", err)
	}
	return nil
}

// GetPhoto retrieves a single photo by id, including its image bytes.
// Returns sql.ErrNoRows if no photo has the given id.
func (s *Store) GetPhoto(ctx context.Context, id string) (*schema.Photo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	row := s.conn.QueryRowContext(ctx, selectPhotoSQL+" WHERE id = ?", id)

	p, err := scanPhotoRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, storageErr(fmt.Sprintf("get photo %s", id), err)
	}
	return p, nil
}

// ListPhotos returns every photo, oldest first.
func (s *Store) ListPhotos(ctx context.Context) ([]schema.Photo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, selectPhotoSQL+" ORDER BY created_at ASC")
	if err != nil {
		return nil, storageErr("list photos", err)
	}
	defer rows.Close()

	return scanPhotos(rows)
}

// PhotosByInspection returns all photos attached to an inspection,
// oldest first.
func (s *Store) PhotosByInspection(ctx context.Context, inspectionID string) ([]schema.Photo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, selectPhotoSQL+" WHERE inspection_id = ? ORDER BY created_at ASC", inspectionID)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("query photos for inspection %s", inspectionID), err)
	}
	defer rows.Close()

	return scanPhotos(rows)
}

// PendingPhotos returns photos that have not been uploaded yet, oldest
// first so uploads replay in capture order.
func (s *Store) PendingPhotos(ctx context.Context) ([]schema.Photo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, selectPhotoSQL+" WHERE synced = 0 ORDER BY created_at ASC")
	if err != nil {
		return nil, storageErr("query pending photos", err)
	}
	defer rows.Close()

	return scanPhotos(rows)
}

// MarkPhotoSynced flips the synced flag on a single photo after a
// successful upload.
func (s *Store) MarkPhotoSynced(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}

	if _, err := s.conn.ExecContext(ctx, "UPDATE photos SET synced = 1 WHERE id = ?", id); err != nil {
		return storageErr(fmt.Sprintf("mark photo %s synced", id), err)
	}
	return nil
}

const selectPhotoSQL = `
SELECT id, inspection_id, filename, data, synced, created_at
FROM photos`

func photoArgs(p schema.Photo) []interface{} {
	return []interface{}{
		p.ID,
		p.InspectionID,
		p.Filename,
		p.Data,
		boolToInt(p.Synced),
		p.CreatedAt.Format(time.RFC3339),
	}
}

func scanPhotoRow(row *sql.Row) (*schema.Photo, error) {
	var p schema.Photo
	var createdAt string
	var synced int

	err := row.Scan(&p.ID, &p.InspectionID, &p.Filename, &p.Data, &synced, &createdAt)
	if err != nil {
		return nil, err
	}

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		p.CreatedAt = t
	}
	p.Synced = synced != 0

	return &p, nil
}

// scanPhotos is a helper to scan multiple photos from query results.
func scanPhotos(rows *sql.Rows) ([]schema.Photo, error) {
	var photos []schema.Photo

	for rows.Next() {
		var p schema.Photo
		var createdAt string
		var synced int

		err := rows.Scan(&p.ID, &p.InspectionID, &p.Filename, &p.Data, &synced, &createdAt)
		if err != nil {
			return nil, storageErr("scan photo", err)
		}

		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			p.CreatedAt = t
		}
		p.Synced = synced != 0

		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate photos", err)
	}

	return photos, nil
}
