package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fieldline/doorsync/internal/schema"
)

const upsertDoorSQL = `
INSERT INTO doors (id, customer_id, location, door_type, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	customer_id = excluded.customer_id,
	location = excluded.location,
	door_type = excluded.door_type,
	created_at = excluded.created_at,
	updated_at = excluded.updated_at
`

// UpsertDoor inserts or updates a single door by id.
func (s *Store) UpsertDoor(ctx context.Context, d schema.Door) error {
	if err := s.ready(); err != nil {
		return err
	}

	if _, err := s.conn.ExecContext(ctx, upsertDoorSQL, doorArgs(d)...); err != nil {
		return storageErr(fmt.Sprintf("upsert door %s", d.ID), err)
	}
	return nil
}

// UpsertDoors upserts a batch of doors in one transaction.
func (s *Store) UpsertDoors(ctx context.Context, doors []schema.Door) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin door batch", err)
	}
	defer tx.Rollback()

	for _, d := range doors {
		if _, err := tx.ExecContext(ctx, upsertDoorSQL, doorArgs(d)...); err != nil {
			return storageErr(fmt.Sprintf("upsert door %s", d.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit door batch", err)
	}
	return nil
}

// ReplaceDoors swaps the whole collection for the given records in one
// transaction, mirroring the download semantics for customers.
func (s *Store) ReplaceDoors(ctx context.Context, doors []schema.Door) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin door replace", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM doors"); err != nil {
		return storageErr("clear doors", err)
	}
	for _, d := range doors {
		if _, err := tx.ExecContext(ctx, upsertDoorSQL, doorArgs(d)...); err != nil {
			return storageErr(fmt.Sprintf("insert door %s", d.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit door replace", err)
	}
	return nil
}

// ListDoors returns every door.
func (s *Store) ListDoors(ctx context.Context) ([]schema.Door, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, selectDoorSQL)
	if err != nil {
		return nil, storageErr("list doors", err)
	}
	defer rows.Close()

	return scanDoors(rows)
}

// DoorsByCustomer returns all doors belonging to the given customer.
// An unknown customer id yields an empty slice, not an error.
func (s *Store) DoorsByCustomer(ctx context.Context, customerID string) ([]schema.Door, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, selectDoorSQL+" WHERE customer_id = ?", customerID)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("query doors for customer %s", customerID), err)
	}
	defer rows.Close()

	return scanDoors(rows)
}

// DoorsByLocation returns all doors whose location equals location.
func (s *Store) DoorsByLocation(ctx context.Context, location string) ([]schema.Door, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, selectDoorSQL+" WHERE location = ?", location)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("query doors by location %q", location), err)
	}
	defer rows.Close()

	return scanDoors(rows)
}

const selectDoorSQL = `
SELECT id, customer_id, location, door_type, created_at, updated_at
FROM doors`

func doorArgs(d schema.Door) []interface{} {
	return []interface{}{
		d.ID,
		d.CustomerID,
		d.Location,
		d.DoorType,
		d.CreatedAt.Format(time.RFC3339),
		d.UpdatedAt.Format(time.RFC3339),
	}
}

// scanDoors is a helper to scan multiple doors from query results.
func scanDoors(rows *sql.Rows) ([]schema.Door, error) {
	var doors []schema.Door

	for rows.Next() {
		var d schema.Door
		var createdAt, updatedAt string

		err := rows.Scan(&d.ID, &d.CustomerID, &d.Location, &d.DoorType, &createdAt, &updatedAt)
		if err != nil {
			return nil, storageErr("scan door", err)
		}

		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			d.CreatedAt = t
		}
		if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			d.UpdatedAt = t
		}

		doors = append(doors, d)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate doors", err)
	}

	return doors, nil
}
