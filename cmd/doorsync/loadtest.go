package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldline/doorsync/internal/loadtest"
	"github.com/fieldline/doorsync/internal/ui"
)

var loadtestCmd = &cobra.Command{
	Use:     "loadtest",
	GroupID: "advanced",
	Short:   "Exercise the local store under concurrent load",
	Long: `Seed a throwaway store and hammer it the way a busy device would: many
readers walking the pending set while writers record inspections and
photos.

The test reports read latency percentiles and fails if any reader
observes an inconsistent value. It never touches the configured data
directory; everything runs against a temporary database.

Examples:
  # Default: a mid-sized territory, 16 readers
  doorsync loadtest

  # Heavier store, more readers
  doorsync loadtest --sites 50 --readers 32

  # Output results as JSON
  doorsync loadtest --json`,
	Run: runLoadtest,
}

func init() {
	loadtestCmd.Flags().Int("sites", 10, "Customer sites to seed")
	loadtestCmd.Flags().Int("doors", 8, "Doors per site")
	loadtestCmd.Flags().Int("inspections", 3, "Historical inspections per door")
	loadtestCmd.Flags().Float64("offline", 0.1, "Fraction of inspections left unsynced (0.0-1.0)")
	loadtestCmd.Flags().Int("readers", 16, "Concurrent readers")
	loadtestCmd.Flags().Int("ops", 25, "Read rounds per reader")
	loadtestCmd.Flags().Duration("verify", 2*time.Second, "Duration of the mixed read/write consistency phase")
	loadtestCmd.Flags().Bool("json", false, "Output results as JSON")

	rootCmd.AddCommand(loadtestCmd)
}

func runLoadtest(cmd *cobra.Command, args []string) {
	sites, _ := cmd.Flags().GetInt("sites")
	doors, _ := cmd.Flags().GetInt("doors")
	inspections, _ := cmd.Flags().GetInt("inspections")
	offline, _ := cmd.Flags().GetFloat64("offline")
	readers, _ := cmd.Flags().GetInt("readers")
	ops, _ := cmd.Flags().GetInt("ops")
	verify, _ := cmd.Flags().GetDuration("verify")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if sites <= 0 || doors <= 0 || inspections <= 0 {
		fmt.Fprintf(os.Stderr, "Error: --sites, --doors, and --inspections must be positive\n")
		os.Exit(1)
	}
	if offline < 0 || offline > 1 {
		fmt.Fprintf(os.Stderr, "Error: --offline must be between 0.0 and 1.0\n")
		os.Exit(1)
	}
	if readers <= 0 || ops <= 0 {
		fmt.Fprintf(os.Stderr, "Error: --readers and --ops must be positive\n")
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "doorsync-loadtest")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(tmpDir)

	cfg := loadtest.SeedConfig{
		Customers:          sites,
		DoorsPerCustomer:   doors,
		InspectionsPerDoor: inspections,
		OfflinePct:         offline,
	}

	if !jsonOutput {
		fmt.Printf("%s Seeding %d sites, %d doors, %d inspections...\n",
			ui.RenderAccent("🔧"), sites, sites*doors, sites*doors*inspections)
	}

	ts, err := loadtest.Seed(filepath.Join(tmpDir, "loadtest.db"), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error seeding store: %v\n", err)
		os.Exit(1)
	}
	defer ts.Close()

	if !jsonOutput {
		fmt.Printf("%s Running %d readers x %d ops...\n", ui.RenderAccent("📖"), readers, ops)
	}

	stats, err := ts.RunConcurrentReads(readers, ops)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running reads: %v\n", err)
		os.Exit(1)
	}

	if !jsonOutput && verify > 0 {
		fmt.Printf("%s Verifying consistency under mixed load for %v...\n", ui.RenderAccent("🔀"), verify)
	}
	if verify > 0 {
		if err := ts.VerifyConcurrentAccess(4, readers/2+1, verify); err != nil {
			fmt.Fprintf(os.Stderr, "%s Consistency violation: %v\n", ui.RenderError("✗"), err)
			os.Exit(1)
		}
	}

	if jsonOutput {
		out := map[string]interface{}{
			"seed": ts.Summary(),
			"reads": map[string]interface{}{
				"total_ops": stats.TotalOps,
				"errors":    stats.Errors,
				"min_us":    stats.Min.Microseconds(),
				"p50_us":    stats.P50.Microseconds(),
				"mean_us":   stats.Mean.Microseconds(),
				"p95_us":    stats.P95.Microseconds(),
				"p99_us":    stats.P99.Microseconds(),
				"max_us":    stats.Max.Microseconds(),
			},
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding results: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println()
	stats.Print()
	fmt.Printf("\n%s Store handled the load without inconsistencies\n", ui.RenderPass("✓"))
}
