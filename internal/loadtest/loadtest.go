// Package loadtest provides load testing utilities for the local store.
//
// It simulates a device's busiest day: several goroutines recording
// inspections and photos (the inbox importer, the CLI) while others read
// pending counts and stats (sync passes, the dashboard). Used to
// validate that the embedded store stays correct and responsive under
// the daemon's concurrency.
package loadtest

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldline/doorsync/internal/schema"
	"github.com/fieldline/doorsync/internal/store"
)

// SeedConfig controls the shape of a seeded test store.
type SeedConfig struct {
	// Customers is the number of client sites.
	Customers int

	// DoorsPerCustomer is how many doors each site has.
	DoorsPerCustomer int

	// InspectionsPerDoor is how many historical inspections each door
	// carries.
	InspectionsPerDoor int

	// OfflinePct is the fraction of inspections left unsynced, as if
	// recorded on the device since the last upload (typical: 0.1).
	OfflinePct float64
}

// DefaultSeedConfig returns a working set comparable to a mid-sized
// service territory: 10 sites, 80 doors, 240 inspections.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Customers:          10,
		DoorsPerCustomer:   8,
		InspectionsPerDoor: 3,
		OfflinePct:         0.1,
	}
}

// TestStore is a populated store for load testing.
type TestStore struct {
	Store *store.Store

	CustomerIDs   []string
	DoorIDs       []string
	InspectionIDs []string

	// PendingStart is the unsynced record count right after seeding.
	PendingStart int
}

// LatencyStats captures performance metrics from load tests.
type LatencyStats struct {
	Min       time.Duration
	Max       time.Duration
	Mean      time.Duration
	P50       time.Duration
	P95       time.Duration
	P99       time.Duration
	TotalOps  int
	Errors    int
	Durations []time.Duration
}

// Seed creates and populates a store at dbPath.
//
// The data mirrors what a morning download leaves behind: customers and
// doors replaced wholesale, inspections bulk-upserted with realistic
// status distribution, and a configurable fraction left unsynced.
func Seed(dbPath string, cfg SeedConfig) (*TestStore, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := st.Init(context.Background()); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	ts := &TestStore{Store: st}
	ctx := context.Background()

	// Deterministic data for reproducible runs
	rng := rand.New(rand.NewSource(42))

	customers := generateCustomers(cfg.Customers)
	if err := st.ReplaceCustomers(ctx, customers); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to seed customers: %w", err)
	}
	for _, c := range customers {
		ts.CustomerIDs = append(ts.CustomerIDs, c.ID)
	}

	doors := generateDoors(customers, cfg.DoorsPerCustomer)
	if err := st.ReplaceDoors(ctx, doors); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to seed doors: %w", err)
	}
	for _, d := range doors {
		ts.DoorIDs = append(ts.DoorIDs, d.ID)
	}

	inspections := generateInspections(doors, cfg.InspectionsPerDoor, cfg.OfflinePct, rng)
	if err := st.UpsertInspections(ctx, inspections); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to seed inspections: %w", err)
	}
	for _, insp := range inspections {
		ts.InspectionIDs = append(ts.InspectionIDs, insp.ID)
	}

	pending, err := st.CountPending(ctx)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to count pending: %w", err)
	}
	ts.PendingStart = pending

	return ts, nil
}

// Close closes the underlying store.
func (ts *TestStore) Close() error {
	if ts.Store != nil {
		return ts.Store.Close()
	}
	return nil
}

// RunConcurrentReads simulates numReaders goroutines hammering the sync
// engine's hot read path: the pending count plus the pending inspection
// list. Each reader performs opsPerReader rounds, recording latency for
// each. Returns aggregated latency statistics.
func (ts *TestStore) RunConcurrentReads(numReaders, opsPerReader int) (*LatencyStats, error) {
	var wg sync.WaitGroup
	resultsChan := make(chan []time.Duration, numReaders)
	errorsChan := make(chan error, numReaders)

	for i := 0; i < numReaders; i++ {
		wg.Add(1)
		go func(readerID int) {
			defer wg.Done()

			durations := make([]time.Duration, 0, opsPerReader)
			ctx := context.Background()

			for j := 0; j < opsPerReader; j++ {
				start := time.Now()

				if _, err := ts.Store.CountPending(ctx); err != nil {
					errorsChan <- fmt.Errorf("reader %d op %d: count failed: %w", readerID, j, err)
					return
				}
				if _, err := ts.Store.PendingInspections(ctx); err != nil {
					errorsChan <- fmt.Errorf("reader %d op %d: pending list failed: %w", readerID, j, err)
					return
				}

				durations = append(durations, time.Since(start))
			}

			resultsChan <- durations
		}(i)
	}

	wg.Wait()
	close(resultsChan)
	close(errorsChan)

	errorCount := 0
	for err := range errorsChan {
		errorCount++
		fmt.Printf("Error: %v\n", err)
	}

	var all []time.Duration
	for durations := range resultsChan {
		all = append(all, durations...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no successful reads completed")
	}

	stats := computeLatencyStats(all)
	stats.Errors = errorCount
	return stats, nil
}

// VerifyConcurrentAccess runs writers and readers against the store at
// the same time, checking consistency on every read.
//
// Writers record unsynced inspections with photos, the way the CLI and
// the inbox importer do. Readers walk the pending set and the stats,
// failing on any impossible value: empty ids, synced rows in the
// pending list, negative counts.
func (ts *TestStore) VerifyConcurrentAccess(numWriters, numReaders int, duration time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	var wg sync.WaitGroup
	errorsChan := make(chan error, numWriters+numReaders)

	for i := 0; i < numWriters; i++ {
		wg.Add(1)
		go func(writerID int) {
			defer wg.Done()

			for seq := 0; ; seq++ {
				select {
				case <-ctx.Done():
					return
				default:
					doorID := ts.DoorIDs[(writerID+seq)%len(ts.DoorIDs)]
					insp := schema.Inspection{
						ID:             uuid.NewString(),
						DoorID:         doorID,
						InspectorName:  fmt.Sprintf("writer-%d", writerID),
						Status:         schema.StatusCompleted,
						Notes:          fmt.Sprintf("load test write %d", seq),
						Date:           time.Now(),
						OfflineCreated: true,
						CreatedAt:      time.Now().UTC(),
					}
					if err := ts.Store.UpsertInspection(ctx, insp); err != nil {
						if ctx.Err() == nil {
							errorsChan <- fmt.Errorf("writer %d: inspection write failed: %w", writerID, err)
						}
						return
					}

					photo := schema.Photo{
						ID:           uuid.NewString(),
						InspectionID: insp.ID,
						Filename:     fmt.Sprintf("frame-%d.jpg", seq),
						Data:         []byte("not a real jpeg"),
						CreatedAt:    time.Now().UTC(),
					}
					if err := ts.Store.UpsertPhoto(ctx, photo); err != nil {
						if ctx.Err() == nil {
							errorsChan <- fmt.Errorf("writer %d: photo write failed: %w", writerID, err)
						}
						return
					}

					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}

	for i := 0; i < numReaders; i++ {
		wg.Add(1)
		go func(readerID int) {
			defer wg.Done()

			for {
				select {
				case <-ctx.Done():
					return
				default:
					pending, err := ts.Store.PendingInspections(ctx)
					if err != nil {
						if ctx.Err() == nil {
							errorsChan <- fmt.Errorf("reader %d: pending read failed: %w", readerID, err)
						}
						return
					}
					for _, insp := range pending {
						if insp.ID == "" {
							errorsChan <- fmt.Errorf("reader %d: inspection with empty id in pending list", readerID)
							return
						}
						if insp.Synced {
							errorsChan <- fmt.Errorf("reader %d: synced inspection %s in pending list", readerID, insp.ID)
							return
						}
					}

					stats, err := ts.Store.Stats(ctx)
					if err != nil {
						if ctx.Err() == nil {
							errorsChan <- fmt.Errorf("reader %d: stats read failed: %w", readerID, err)
						}
						return
					}
					if stats.Inspections < 0 || stats.PendingUploads < 0 {
						errorsChan <- fmt.Errorf("reader %d: negative counts in stats: %+v", readerID, stats)
						return
					}

					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}

	wg.Wait()
	close(errorsChan)

	for err := range errorsChan {
		if err != nil {
			return err
		}
	}
	return nil
}

// Summary returns seeded collection sizes for display.
func (ts *TestStore) Summary() map[string]interface{} {
	return map[string]interface{}{
		"customers":     len(ts.CustomerIDs),
		"doors":         len(ts.DoorIDs),
		"inspections":   len(ts.InspectionIDs),
		"pending_start": ts.PendingStart,
	}
}

func generateCustomers(count int) []schema.Customer {
	baseTime := time.Now().Add(-90 * 24 * time.Hour)

	customers := make([]schema.Customer, count)
	for i := 0; i < count; i++ {
		created := baseTime.Add(time.Duration(i) * time.Hour)
		customers[i] = schema.Customer{
			ID:        fmt.Sprintf("cust-%04d", i),
			Name:      fmt.Sprintf("Site %04d Property Management", i),
			Email:     fmt.Sprintf("facilities%04d@example.com", i),
			Address:   fmt.Sprintf("%d Industrial Way", 100+i),
			CreatedAt: created,
			UpdatedAt: created,
		}
	}
	return customers
}

func generateDoors(customers []schema.Customer, perCustomer int) []schema.Door {
	doorTypes := []string{"fire", "entry", "emergency_exit"}

	doors := make([]schema.Door, 0, len(customers)*perCustomer)
	for _, c := range customers {
		for i := 0; i < perCustomer; i++ {
			doors = append(doors, schema.Door{
				ID:         fmt.Sprintf("%s-door-%03d", c.ID, i),
				CustomerID: c.ID,
				Location:   fmt.Sprintf("Building %c - Floor %d", 'A'+i%3, i/3+1),
				DoorType:   doorTypes[i%len(doorTypes)],
				CreatedAt:  c.CreatedAt,
				UpdatedAt:  c.CreatedAt,
			})
		}
	}
	return doors
}

func generateInspections(doors []schema.Door, perDoor int, offlinePct float64, rng *rand.Rand) []schema.Inspection {
	// Status distribution: most inspections complete, some fail
	statuses := []string{
		schema.StatusCompleted, schema.StatusCompleted, schema.StatusCompleted,
		schema.StatusCompleted, schema.StatusCompleted, schema.StatusCompleted,
		schema.StatusCompleted, schema.StatusPending, schema.StatusPending,
		schema.StatusFailed,
	}
	inspectors := []string{"M. Keller", "J. Alvarez", "S. Tanaka", "R. Okafor"}

	inspections := make([]schema.Inspection, 0, len(doors)*perDoor)
	seq := 0
	for _, d := range doors {
		for i := 0; i < perDoor; i++ {
			date := time.Now().Add(-time.Duration(30*(perDoor-i)) * 24 * time.Hour)
			synced := rng.Float64() >= offlinePct

			inspections = append(inspections, schema.Inspection{
				ID:             fmt.Sprintf("insp-%06d", seq),
				DoorID:         d.ID,
				InspectorName:  inspectors[seq%len(inspectors)],
				Status:         statuses[seq%len(statuses)],
				Notes:          fmt.Sprintf("Routine check of %s", d.Location),
				Date:           date,
				Synced:         synced,
				OfflineCreated: !synced,
				CreatedAt:      date,
			})
			seq++
		}
	}
	return inspections
}

func computeLatencyStats(durations []time.Duration) *LatencyStats {
	if len(durations) == 0 {
		return &LatencyStats{}
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	return &LatencyStats{
		Min:       sorted[0],
		Max:       sorted[len(sorted)-1],
		Mean:      sum / time.Duration(len(sorted)),
		P50:       sorted[len(sorted)*50/100],
		P95:       sorted[len(sorted)*95/100],
		P99:       sorted[len(sorted)*99/100],
		TotalOps:  len(sorted),
		Durations: sorted,
	}
}

// Print formats and prints latency statistics.
func (s *LatencyStats) Print() {
	fmt.Printf("Latency Statistics:\n")
	fmt.Printf("  Total Ops: %d\n", s.TotalOps)
	fmt.Printf("  Errors:    %d\n", s.Errors)
	fmt.Printf("  Min:       %v\n", s.Min)
	fmt.Printf("  P50:       %v\n", s.P50)
	fmt.Printf("  Mean:      %v\n", s.Mean)
	fmt.Printf("  P95:       %v\n", s.P95)
	fmt.Printf("  P99:       %v\n", s.P99)
	fmt.Printf("  Max:       %v\n", s.Max)
}
