// Package store provides the persistent local store for the offline working set.
//
// The store holds the five record collections a field worker needs while
// disconnected: customers, doors, inspections, photos, and the sync_status
// singleton. It owns all local durability; sync policy lives in the sync
// package on top of it.
//
// The database runs embedded (SQLite via ncruces/go-sqlite3) with WAL mode
// for concurrent reads during writes.
//
// Architecture:
//   - Database file: one file per device, e.g. ~/.doorsync/doorsync.db
//   - WAL mode: concurrent readers during writes
//   - Schema: customers, doors, inspections, photos, sync_status tables
//   - Indexes: secondary lookups (customer name, door owner/location,
//     inspection door/synced/status, photo inspection/synced)
//
// Lifecycle:
//  1. Open connects (or creates the file) and tunes the connection
//  2. Init creates the schema; every data operation before Init fails
//     with ErrNotInitialized
//  3. The sync engine reads and writes through typed collection methods
//  4. Close checkpoints the WAL and releases the handle
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Store wraps the embedded database holding the offline working set.
// Construct with Open, then call Init before any data operation. A Store
// is safe for concurrent use by multiple goroutines.
type Store struct {
	conn *sql.DB
	path string

	initMu      sync.Mutex
	initialized atomic.Bool
}

// Open creates a new store connection at the specified path.
//
// The database is opened in embedded mode with WAL for concurrent reads.
// If the file doesn't exist it is created; the schema is not, so call
// Init before any data operation.
//
// The caller MUST call Close() when done to ensure proper cleanup.
//
// Example:
//
//	st, err := store.Open("~/.doorsync/doorsync.db")
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
func Open(path string) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s", path)
	conn, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	// Set connection pool settings
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{
		conn: conn,
		path: path,
	}

	// Enable WAL mode for concurrent reads
	if _, err := s.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set busy timeout to 5 seconds
	if _, err := s.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return s, nil
}

// Path returns the database file path this store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Close closes the store connection.
// Performs a WAL checkpoint to ensure all changes are persisted.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	// Checkpoint WAL before closing
	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}

	s.conn = nil
	s.initialized.Store(false)
	return nil
}

// Init creates the schema if it doesn't exist and marks the store ready.
//
// Idempotent - safe to call multiple times. Concurrent callers converge on
// a single attempt: later callers block until the first finishes and then
// observe its result. A failed attempt leaves the store uninitialized so
// the next call retries.
func (s *Store) Init(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.initialized.Load() {
		return nil
	}

	ddl := `
	-- Offline working set
	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS doors (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		door_type TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS inspections (
		id TEXT PRIMARY KEY,
		door_id TEXT NOT NULL,
		inspector_name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		notes TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		synced INTEGER NOT NULL DEFAULT 0,
		offline_created INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS photos (
		id TEXT PRIMARY KEY,
		inspection_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		data BLOB NOT NULL,
		synced INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sync_status (
		id TEXT PRIMARY KEY,
		last_sync TEXT,
		last_download TEXT,
		pending_uploads INTEGER NOT NULL DEFAULT 0,
		sync_in_progress INTEGER NOT NULL DEFAULT 0
	);

	-- Secondary lookup indexes
	CREATE INDEX IF NOT EXISTS idx_customers_name ON customers(name);
	CREATE INDEX IF NOT EXISTS idx_doors_customer ON doors(customer_id);
	CREATE INDEX IF NOT EXISTS idx_doors_location ON doors(location);
	CREATE INDEX IF NOT EXISTS idx_inspections_door ON inspections(door_id);
	CREATE INDEX IF NOT EXISTS idx_inspections_synced ON inspections(synced);
	CREATE INDEX IF NOT EXISTS idx_inspections_status ON inspections(status);
	CREATE INDEX IF NOT EXISTS idx_photos_inspection ON photos(inspection_id);
	CREATE INDEX IF NOT EXISTS idx_photos_synced ON photos(synced);
	`

	if _, err := s.conn.ExecContext(ctx, ddl); err != nil {
		return storageErr("initialize schema", err)
	}

	s.initialized.Store(true)
	return nil
}

// ready guards every data operation against use before Init.
func (s *Store) ready() error {
	if !s.initialized.Load() {
		return ErrNotInitialized
	}
	return nil
}

// ClearAll empties all five collections in one transaction.
// Partial clears are not a valid state: either every table is emptied or
// none is.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin clear transaction", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"customers", "doors", "inspections", "photos", "sync_status"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return storageErr(fmt.Sprintf("clear %s", table), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit clear transaction", err)
	}

	return nil
}

// boolToInt converts a flag to its stored 0/1 form.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timeToNullString converts a time pointer to a nullable string for SQL.
func timeToNullString(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

// nullStringToTime converts a nullable SQL string to a time pointer.
func nullStringToTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}
