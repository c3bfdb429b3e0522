package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fieldline/doorsync/internal/schema"
)

// testStorePath returns a temporary path for test databases
func testStorePath(t *testing.T) string {
	tmpDir := t.TempDir()
	return filepath.Join(tmpDir, "test.db")
}

// TestOpen_Success tests successful database creation
func TestOpen_Success(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	if st == nil {
		t.Fatal("Open() returned nil store")
	}

	if st.Path() != path {
		t.Errorf("Path() = %q, want %q", st.Path(), path)
	}
}

// TestInit_Success tests schema creation
func TestInit_Success(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	// Check that all tables exist
	tables := []string{"customers", "doors", "inspections", "photos", "sync_status"}
	for _, table := range tables {
		var count int
		query := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`
		err := st.conn.QueryRow(query, table).Scan(&count)
		if err != nil {
			t.Fatalf("Failed to query table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("Table %s does not exist", table)
		}
	}
}

// TestInit_Idempotent tests that schema initialization is idempotent
func TestInit_Idempotent(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("First Init() failed: %v", err)
	}

	if err := st.Init(ctx); err != nil {
		t.Errorf("Second Init() failed: %v", err)
	}
}

// TestInit_Concurrent tests that concurrent initialization converges on one schema
func TestInit_Concurrent(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- st.Init(ctx)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent Init() failed: %v", err)
		}
	}

	// Store must be usable afterwards
	if _, err := st.ListCustomers(ctx); err != nil {
		t.Errorf("ListCustomers() after concurrent Init failed: %v", err)
	}
}

// TestNotInitialized tests that data operations fail before Init
func TestNotInitialized(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := st.ListCustomers(ctx); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ListCustomers() error = %v, want ErrNotInitialized", err)
	}
	if err := st.UpsertCustomer(ctx, schema.Customer{ID: "c1", CreatedAt: now, UpdatedAt: now}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("UpsertCustomer() error = %v, want ErrNotInitialized", err)
	}
	if _, err := st.SyncStatus(ctx); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("SyncStatus() error = %v, want ErrNotInitialized", err)
	}
	if _, err := st.Stats(ctx); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Stats() error = %v, want ErrNotInitialized", err)
	}

	// Init unlocks the same operations
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if _, err := st.ListCustomers(ctx); err != nil {
		t.Errorf("ListCustomers() after Init failed: %v", err)
	}
}

// TestUpsertCustomer_Insert tests inserting a new customer
func TestUpsertCustomer_Insert(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	customer := schema.Customer{
		ID:        "cust-1",
		Name:      "Acme Warehousing",
		Email:     "ops@acme.example",
		Phone:     "555-0100",
		Address:   "1 Dock Road",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := st.UpsertCustomer(ctx, customer); err != nil {
		t.Fatalf("UpsertCustomer() failed: %v", err)
	}

	customers, err := st.ListCustomers(ctx)
	if err != nil {
		t.Fatalf("ListCustomers() failed: %v", err)
	}
	if len(customers) != 1 {
		t.Fatalf("ListCustomers() returned %d customers, want 1", len(customers))
	}

	got := customers[0]
	if got.ID != "cust-1" {
		t.Errorf("ID = %q, want 'cust-1'", got.ID)
	}
	if got.Name != "Acme Warehousing" {
		t.Errorf("Name = %q, want 'Acme Warehousing'", got.Name)
	}
	if got.Email != "ops@acme.example" {
		t.Errorf("Email = %q, want 'ops@acme.example'", got.Email)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}
}

// TestUpsertCustomer_Update tests updating an existing customer
func TestUpsertCustomer_Update(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	customer := schema.Customer{
		ID:        "cust-1",
		Name:      "Original Name",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := st.UpsertCustomer(ctx, customer); err != nil {
		t.Fatalf("First UpsertCustomer() failed: %v", err)
	}

	customer.Name = "Updated Name"
	customer.UpdatedAt = now.Add(time.Hour)

	if err := st.UpsertCustomer(ctx, customer); err != nil {
		t.Fatalf("Second UpsertCustomer() failed: %v", err)
	}

	customers, err := st.ListCustomers(ctx)
	if err != nil {
		t.Fatalf("ListCustomers() failed: %v", err)
	}
	if len(customers) != 1 {
		t.Fatalf("ListCustomers() returned %d customers, want 1", len(customers))
	}
	if customers[0].Name != "Updated Name" {
		t.Errorf("Name = %q, want 'Updated Name'", customers[0].Name)
	}
	if !customers[0].UpdatedAt.Equal(now.Add(time.Hour)) {
		t.Errorf("UpdatedAt = %v, want %v", customers[0].UpdatedAt, now.Add(time.Hour))
	}
}

// TestReplaceCustomers tests the wholesale swap used by downloads
func TestReplaceCustomers(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)

	// Seed two stale customers
	stale := []schema.Customer{
		{ID: "old-1", Name: "Old One", CreatedAt: now, UpdatedAt: now},
		{ID: "old-2", Name: "Old Two", CreatedAt: now, UpdatedAt: now},
	}
	if err := st.UpsertCustomers(ctx, stale); err != nil {
		t.Fatalf("UpsertCustomers() failed: %v", err)
	}

	fresh := []schema.Customer{
		{ID: "new-1", Name: "New One", CreatedAt: now, UpdatedAt: now},
	}
	if err := st.ReplaceCustomers(ctx, fresh); err != nil {
		t.Fatalf("ReplaceCustomers() failed: %v", err)
	}

	customers, err := st.ListCustomers(ctx)
	if err != nil {
		t.Fatalf("ListCustomers() failed: %v", err)
	}
	if len(customers) != 1 {
		t.Fatalf("ListCustomers() returned %d customers, want 1", len(customers))
	}
	if customers[0].ID != "new-1" {
		t.Errorf("ID = %q, want 'new-1'", customers[0].ID)
	}
}

// TestCustomersByName tests the name index lookup
func TestCustomersByName(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	customers := []schema.Customer{
		{ID: "cust-1", Name: "Acme", CreatedAt: now, UpdatedAt: now},
		{ID: "cust-2", Name: "Bolt & Sons", CreatedAt: now, UpdatedAt: now},
		{ID: "cust-3", Name: "Acme", CreatedAt: now, UpdatedAt: now},
	}
	if err := st.UpsertCustomers(ctx, customers); err != nil {
		t.Fatalf("UpsertCustomers() failed: %v", err)
	}

	matched, err := st.CustomersByName(ctx, "Acme")
	if err != nil {
		t.Fatalf("CustomersByName() failed: %v", err)
	}
	if len(matched) != 2 {
		t.Errorf("CustomersByName() returned %d customers, want 2", len(matched))
	}

	none, err := st.CustomersByName(ctx, "Nobody")
	if err != nil {
		t.Fatalf("CustomersByName() failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("CustomersByName() returned %d customers, want 0", len(none))
	}
}

// TestDoorsByCustomer tests door lookups by owning customer
func TestDoorsByCustomer(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	doors := []schema.Door{
		{ID: "door-1", CustomerID: "cust-1", Location: "North Entrance", DoorType: "fire", CreatedAt: now, UpdatedAt: now},
		{ID: "door-2", CustomerID: "cust-1", Location: "Loading Bay", DoorType: "entry", CreatedAt: now, UpdatedAt: now},
		{ID: "door-3", CustomerID: "cust-2", Location: "North Entrance", DoorType: "fire", CreatedAt: now, UpdatedAt: now},
	}
	if err := st.UpsertDoors(ctx, doors); err != nil {
		t.Fatalf("UpsertDoors() failed: %v", err)
	}

	mine, err := st.DoorsByCustomer(ctx, "cust-1")
	if err != nil {
		t.Fatalf("DoorsByCustomer() failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("DoorsByCustomer() returned %d doors, want 2", len(mine))
	}

	byLocation, err := st.DoorsByLocation(ctx, "North Entrance")
	if err != nil {
		t.Fatalf("DoorsByLocation() failed: %v", err)
	}
	if len(byLocation) != 2 {
		t.Errorf("DoorsByLocation() returned %d doors, want 2", len(byLocation))
	}
}

// TestReplaceDoors tests that a replace drops doors absent from the batch
func TestReplaceDoors(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if err := st.UpsertDoor(ctx, schema.Door{ID: "door-old", CustomerID: "cust-1", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("UpsertDoor() failed: %v", err)
	}

	fresh := []schema.Door{
		{ID: "door-new", CustomerID: "cust-1", Location: "South Exit", CreatedAt: now, UpdatedAt: now},
	}
	if err := st.ReplaceDoors(ctx, fresh); err != nil {
		t.Fatalf("ReplaceDoors() failed: %v", err)
	}

	doors, err := st.ListDoors(ctx)
	if err != nil {
		t.Fatalf("ListDoors() failed: %v", err)
	}
	if len(doors) != 1 {
		t.Fatalf("ListDoors() returned %d doors, want 1", len(doors))
	}
	if doors[0].ID != "door-new" {
		t.Errorf("ID = %q, want 'door-new'", doors[0].ID)
	}
}

// TestGetInspection tests single inspection retrieval with flag round-trip
func TestGetInspection(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	insp := schema.Inspection{
		ID:             "insp-1",
		DoorID:         "door-1",
		InspectorName:  "Dana",
		Status:         schema.StatusCompleted,
		Notes:          "Hinges replaced",
		Date:           now,
		Synced:         false,
		OfflineCreated: true,
		CreatedAt:      now,
	}
	if err := st.UpsertInspection(ctx, insp); err != nil {
		t.Fatalf("UpsertInspection() failed: %v", err)
	}

	got, err := st.GetInspection(ctx, "insp-1")
	if err != nil {
		t.Fatalf("GetInspection() failed: %v", err)
	}
	if got.InspectorName != "Dana" {
		t.Errorf("InspectorName = %q, want 'Dana'", got.InspectorName)
	}
	if got.Status != schema.StatusCompleted {
		t.Errorf("Status = %q, want %q", got.Status, schema.StatusCompleted)
	}
	if got.Synced {
		t.Error("Synced = true, want false")
	}
	if !got.OfflineCreated {
		t.Error("OfflineCreated = false, want true")
	}
	if !got.Date.Equal(now) {
		t.Errorf("Date = %v, want %v", got.Date, now)
	}
}

// TestGetInspection_NotFound tests the missing-id case
func TestGetInspection_NotFound(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	_, err = st.GetInspection(ctx, "non-existent")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetInspection() error = %v, want sql.ErrNoRows", err)
	}
}

// TestListInspections_Order tests newest-first ordering by inspection date
func TestListInspections_Order(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	inspections := []schema.Inspection{
		{ID: "insp-old", DoorID: "door-1", Status: schema.StatusCompleted, Date: now.Add(-48 * time.Hour), CreatedAt: now},
		{ID: "insp-new", DoorID: "door-1", Status: schema.StatusPending, Date: now, CreatedAt: now},
		{ID: "insp-mid", DoorID: "door-1", Status: schema.StatusPending, Date: now.Add(-24 * time.Hour), CreatedAt: now},
	}
	if err := st.UpsertInspections(ctx, inspections); err != nil {
		t.Fatalf("UpsertInspections() failed: %v", err)
	}

	got, err := st.ListInspections(ctx)
	if err != nil {
		t.Fatalf("ListInspections() failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListInspections() returned %d inspections, want 3", len(got))
	}

	wantOrder := []string{"insp-new", "insp-mid", "insp-old"}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("inspection[%d].ID = %q, want %q", i, got[i].ID, want)
		}
	}
}

// TestUpsertInspections_PreservesOthers tests that a batch only touches its own ids
func TestUpsertInspections_PreservesOthers(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)

	// An offline-created inspection already in the store
	local := schema.Inspection{
		ID: "local-1", DoorID: "door-1", Status: schema.StatusCompleted,
		Date: now, OfflineCreated: true, CreatedAt: now,
	}
	if err := st.UpsertInspection(ctx, local); err != nil {
		t.Fatalf("UpsertInspection() failed: %v", err)
	}

	// A downloaded batch with different ids
	remote := []schema.Inspection{
		{ID: "remote-1", DoorID: "door-2", Status: schema.StatusCompleted, Date: now, Synced: true, CreatedAt: now},
		{ID: "remote-2", DoorID: "door-2", Status: schema.StatusPending, Date: now, Synced: true, CreatedAt: now},
	}
	if err := st.UpsertInspections(ctx, remote); err != nil {
		t.Fatalf("UpsertInspections() failed: %v", err)
	}

	got, err := st.GetInspection(ctx, "local-1")
	if err != nil {
		t.Fatalf("GetInspection() failed: %v", err)
	}
	if !got.OfflineCreated {
		t.Error("OfflineCreated = false, want true after unrelated batch")
	}

	all, err := st.ListInspections(ctx)
	if err != nil {
		t.Fatalf("ListInspections() failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListInspections() returned %d inspections, want 3", len(all))
	}
}

// TestPendingInspections tests the unsynced filter and MarkInspectionSynced
func TestPendingInspections(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	inspections := []schema.Inspection{
		{ID: "insp-1", DoorID: "door-1", Status: schema.StatusCompleted, Date: now, Synced: true, CreatedAt: now},
		{ID: "insp-2", DoorID: "door-1", Status: schema.StatusCompleted, Date: now, Synced: false, CreatedAt: now.Add(time.Second)},
		{ID: "insp-3", DoorID: "door-1", Status: schema.StatusPending, Date: now, Synced: false, CreatedAt: now.Add(2 * time.Second)},
	}
	if err := st.UpsertInspections(ctx, inspections); err != nil {
		t.Fatalf("UpsertInspections() failed: %v", err)
	}

	pending, err := st.PendingInspections(ctx)
	if err != nil {
		t.Fatalf("PendingInspections() failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("PendingInspections() returned %d inspections, want 2", len(pending))
	}

	// Oldest first
	if pending[0].ID != "insp-2" {
		t.Errorf("pending[0].ID = %q, want 'insp-2'", pending[0].ID)
	}

	if err := st.MarkInspectionSynced(ctx, "insp-2"); err != nil {
		t.Fatalf("MarkInspectionSynced() failed: %v", err)
	}

	pending, err = st.PendingInspections(ctx)
	if err != nil {
		t.Fatalf("PendingInspections() failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("PendingInspections() returned %d inspections, want 1", len(pending))
	}
	if pending[0].ID != "insp-3" {
		t.Errorf("pending[0].ID = %q, want 'insp-3'", pending[0].ID)
	}
}

// TestUpsertPhoto tests photo storage including the blob round-trip
func TestUpsertPhoto(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02, 0x03}
	photo := schema.Photo{
		ID:           "photo-1",
		InspectionID: "insp-1",
		Filename:     "hinge.jpg",
		Data:         data,
		CreatedAt:    now,
	}
	if err := st.UpsertPhoto(ctx, photo); err != nil {
		t.Fatalf("UpsertPhoto() failed: %v", err)
	}

	got, err := st.GetPhoto(ctx, "photo-1")
	if err != nil {
		t.Fatalf("GetPhoto() failed: %v", err)
	}
	if got.Filename != "hinge.jpg" {
		t.Errorf("Filename = %q, want 'hinge.jpg'", got.Filename)
	}
	if !bytes.Equal(got.Data, data) {
		t.Errorf("Data = %v, want %v", got.Data, data)
	}
	if got.Synced {
		t.Error("Synced = true, want false")
	}
}

// TestPendingPhotos tests the unsynced photo filter and MarkPhotoSynced
func TestPendingPhotos(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	photos := []schema.Photo{
		{ID: "photo-1", InspectionID: "insp-1", Filename: "a.jpg", Data: []byte{1}, Synced: true, CreatedAt: now},
		{ID: "photo-2", InspectionID: "insp-1", Filename: "b.jpg", Data: []byte{2}, Synced: false, CreatedAt: now},
		{ID: "photo-3", InspectionID: "insp-2", Filename: "c.jpg", Data: []byte{3}, Synced: false, CreatedAt: now},
	}
	if err := st.UpsertPhotos(ctx, photos); err != nil {
		t.Fatalf("UpsertPhotos() failed: %v", err)
	}

	pending, err := st.PendingPhotos(ctx)
	if err != nil {
		t.Fatalf("PendingPhotos() failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("PendingPhotos() returned %d photos, want 2", len(pending))
	}

	if err := st.MarkPhotoSynced(ctx, "photo-2"); err != nil {
		t.Fatalf("MarkPhotoSynced() failed: %v", err)
	}

	pending, err = st.PendingPhotos(ctx)
	if err != nil {
		t.Fatalf("PendingPhotos() failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("PendingPhotos() returned %d photos, want 1", len(pending))
	}
	if pending[0].ID != "photo-3" {
		t.Errorf("pending[0].ID = %q, want 'photo-3'", pending[0].ID)
	}

	byInspection, err := st.PhotosByInspection(ctx, "insp-1")
	if err != nil {
		t.Fatalf("PhotosByInspection() failed: %v", err)
	}
	if len(byInspection) != 2 {
		t.Errorf("PhotosByInspection() returned %d photos, want 2", len(byInspection))
	}
}

// TestSyncStatus_Defaults tests that a fresh store reports zero-value status
func TestSyncStatus_Defaults(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	status, err := st.SyncStatus(ctx)
	if err != nil {
		t.Fatalf("SyncStatus() failed: %v", err)
	}

	if status.ID != schema.SyncStatusID {
		t.Errorf("ID = %q, want %q", status.ID, schema.SyncStatusID)
	}
	if status.LastSync != nil {
		t.Errorf("LastSync = %v, want nil", status.LastSync)
	}
	if status.LastDownload != nil {
		t.Errorf("LastDownload = %v, want nil", status.LastDownload)
	}
	if status.PendingUploads != 0 {
		t.Errorf("PendingUploads = %d, want 0", status.PendingUploads)
	}
	if status.SyncInProgress {
		t.Error("SyncInProgress = true, want false")
	}
}

// TestUpdateSyncStatus_Merge tests that partial patches preserve other fields
func TestUpdateSyncStatus_Merge(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)

	if err := st.UpdateSyncStatus(ctx, StatusPatch{LastSync: &now}); err != nil {
		t.Fatalf("UpdateSyncStatus() failed: %v", err)
	}

	pending := 7
	if err := st.UpdateSyncStatus(ctx, StatusPatch{PendingUploads: &pending}); err != nil {
		t.Fatalf("UpdateSyncStatus() failed: %v", err)
	}

	inProgress := true
	if err := st.UpdateSyncStatus(ctx, StatusPatch{SyncInProgress: &inProgress}); err != nil {
		t.Fatalf("UpdateSyncStatus() failed: %v", err)
	}

	status, err := st.SyncStatus(ctx)
	if err != nil {
		t.Fatalf("SyncStatus() failed: %v", err)
	}

	if status.LastSync == nil || !status.LastSync.Equal(now) {
		t.Errorf("LastSync = %v, want %v", status.LastSync, now)
	}
	if status.PendingUploads != 7 {
		t.Errorf("PendingUploads = %d, want 7", status.PendingUploads)
	}
	if !status.SyncInProgress {
		t.Error("SyncInProgress = false, want true")
	}
	if status.LastDownload != nil {
		t.Errorf("LastDownload = %v, want nil", status.LastDownload)
	}
}

// TestClearAll tests that every collection is emptied together
func TestClearAll(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if err := st.UpsertCustomer(ctx, schema.Customer{ID: "cust-1", Name: "Acme", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("UpsertCustomer() failed: %v", err)
	}
	if err := st.UpsertDoor(ctx, schema.Door{ID: "door-1", CustomerID: "cust-1", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("UpsertDoor() failed: %v", err)
	}
	if err := st.UpsertInspection(ctx, schema.Inspection{ID: "insp-1", DoorID: "door-1", Status: schema.StatusPending, Date: now, CreatedAt: now}); err != nil {
		t.Fatalf("UpsertInspection() failed: %v", err)
	}
	if err := st.UpsertPhoto(ctx, schema.Photo{ID: "photo-1", InspectionID: "insp-1", Filename: "a.jpg", Data: []byte{1}, CreatedAt: now}); err != nil {
		t.Fatalf("UpsertPhoto() failed: %v", err)
	}
	if err := st.UpdateSyncStatus(ctx, StatusPatch{LastSync: &now}); err != nil {
		t.Fatalf("UpdateSyncStatus() failed: %v", err)
	}

	if err := st.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll() failed: %v", err)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Customers != 0 || stats.Doors != 0 || stats.Inspections != 0 || stats.Photos != 0 {
		t.Errorf("Stats() after ClearAll = %+v, want all zero", stats)
	}

	status, err := st.SyncStatus(ctx)
	if err != nil {
		t.Fatalf("SyncStatus() failed: %v", err)
	}
	if status.LastSync != nil {
		t.Errorf("LastSync = %v, want nil after ClearAll", status.LastSync)
	}
}

// TestStats tests collection counting, including the pending-only photo count
func TestStats(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)

	customers := []schema.Customer{
		{ID: "cust-1", Name: "Acme", CreatedAt: now, UpdatedAt: now},
		{ID: "cust-2", Name: "Bolt", CreatedAt: now, UpdatedAt: now},
	}
	if err := st.UpsertCustomers(ctx, customers); err != nil {
		t.Fatalf("UpsertCustomers() failed: %v", err)
	}
	if err := st.UpsertDoor(ctx, schema.Door{ID: "door-1", CustomerID: "cust-1", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("UpsertDoor() failed: %v", err)
	}

	inspections := []schema.Inspection{
		{ID: "insp-1", DoorID: "door-1", Status: schema.StatusCompleted, Date: now, Synced: true, CreatedAt: now},
		{ID: "insp-2", DoorID: "door-1", Status: schema.StatusCompleted, Date: now, Synced: false, CreatedAt: now},
	}
	if err := st.UpsertInspections(ctx, inspections); err != nil {
		t.Fatalf("UpsertInspections() failed: %v", err)
	}

	photos := []schema.Photo{
		{ID: "photo-1", InspectionID: "insp-1", Filename: "a.jpg", Data: []byte{1}, Synced: true, CreatedAt: now},
		{ID: "photo-2", InspectionID: "insp-2", Filename: "b.jpg", Data: []byte{2}, Synced: false, CreatedAt: now},
		{ID: "photo-3", InspectionID: "insp-2", Filename: "c.jpg", Data: []byte{3}, Synced: false, CreatedAt: now},
	}
	if err := st.UpsertPhotos(ctx, photos); err != nil {
		t.Fatalf("UpsertPhotos() failed: %v", err)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}

	if stats.Customers != 2 {
		t.Errorf("Customers = %d, want 2", stats.Customers)
	}
	if stats.Doors != 1 {
		t.Errorf("Doors = %d, want 1", stats.Doors)
	}
	if stats.Inspections != 2 {
		t.Errorf("Inspections = %d, want 2", stats.Inspections)
	}
	// Only unsynced photos count
	if stats.Photos != 2 {
		t.Errorf("Photos = %d, want 2", stats.Photos)
	}
	// 1 unsynced inspection + 2 unsynced photos
	if stats.PendingUploads != 3 {
		t.Errorf("PendingUploads = %d, want 3", stats.PendingUploads)
	}

	pending, err := st.CountPending(ctx)
	if err != nil {
		t.Fatalf("CountPending() failed: %v", err)
	}
	if pending != 3 {
		t.Errorf("CountPending() = %d, want 3", pending)
	}
}

// TestClose tests closing, including double close
func TestClose(t *testing.T) {
	path := testStorePath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := st.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}

	// Calling Close() again should be safe
	if err := st.Close(); err != nil {
		t.Errorf("Second Close() failed: %v", err)
	}
}

// BenchmarkUpsertInspection benchmarks single inspection writes
func BenchmarkUpsertInspection(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench.db")
	st, err := Open(path)
	if err != nil {
		b.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		b.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		insp := schema.Inspection{
			ID:        fmt.Sprintf("bench-%d", i),
			DoorID:    "door-1",
			Status:    schema.StatusCompleted,
			Date:      now,
			CreatedAt: now,
		}
		if err := st.UpsertInspection(ctx, insp); err != nil {
			b.Fatalf("UpsertInspection() failed: %v", err)
		}
	}
}

// BenchmarkCountPending benchmarks the pending-upload count over a populated store
func BenchmarkCountPending(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench.db")
	st, err := Open(path)
	if err != nil {
		b.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		b.Fatalf("Init() failed: %v", err)
	}

	now := time.Now().UTC()

	// Create 200 inspections, half pending
	for i := 0; i < 200; i++ {
		insp := schema.Inspection{
			ID:        fmt.Sprintf("bench-%d", i),
			DoorID:    "door-1",
			Status:    schema.StatusCompleted,
			Date:      now,
			Synced:    i%2 == 0,
			CreatedAt: now,
		}
		if err := st.UpsertInspection(ctx, insp); err != nil {
			b.Fatalf("UpsertInspection() failed: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := st.CountPending(ctx); err != nil {
			b.Fatalf("CountPending() failed: %v", err)
		}
	}
}
