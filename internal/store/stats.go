package store

import (
	"context"
	"fmt"

	"github.com/fieldline/doorsync/internal/schema"
)

// Stats reports collection sizes for status displays.
//
// Photos is the count of photos still waiting for upload, not the size of
// the photo table; uploaded photos live in remote storage and only matter
// locally until they are pushed. PendingUploads is recomputed from the
// live tables, not read from the sync status row.
func (s *Store) Stats(ctx context.Context) (schema.StoreStats, error) {
	if err := s.ready(); err != nil {
		return schema.StoreStats{}, err
	}

	var stats schema.StoreStats
	var err error

	if stats.Customers, err = s.countRows(ctx, "customers", ""); err != nil {
		return schema.StoreStats{}, err
	}
	if stats.Doors, err = s.countRows(ctx, "doors", ""); err != nil {
		return schema.StoreStats{}, err
	}
	if stats.Inspections, err = s.countRows(ctx, "inspections", ""); err != nil {
		return schema.StoreStats{}, err
	}
	if stats.Photos, err = s.countRows(ctx, "photos", "synced = 0"); err != nil {
		return schema.StoreStats{}, err
	}

	pendingInspections, err := s.countRows(ctx, "inspections", "synced = 0")
	if err != nil {
		return schema.StoreStats{}, err
	}
	stats.PendingUploads = pendingInspections + stats.Photos

	return stats, nil
}

// CountPending returns the number of records waiting for upload:
// unsynced inspections plus unsynced photos.
func (s *Store) CountPending(ctx context.Context) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	inspections, err := s.countRows(ctx, "inspections", "synced = 0")
	if err != nil {
		return 0, err
	}
	photos, err := s.countRows(ctx, "photos", "synced = 0")
	if err != nil {
		return 0, err
	}
	return inspections + photos, nil
}

func (s *Store) countRows(ctx context.Context, table, where string) (int, error) {
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}

	var count int
	if err := s.conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, storageErr(fmt.Sprintf("count %s", table), err)
	}
	return count, nil
}
