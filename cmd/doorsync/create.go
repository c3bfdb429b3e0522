package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/fieldline/doorsync/internal/schema"
	"github.com/fieldline/doorsync/internal/sync"
	"github.com/fieldline/doorsync/internal/ui"
)

var createCmd = &cobra.Command{
	Use:     "create",
	GroupID: "data",
	Short:   "Record a new inspection offline",
	Long: `Record an inspection without connectivity.

The inspection gets a device-minted id, is stored locally, and is queued
for the next upload. The --date flag accepts natural language.

Example usage:
  doorsync create --door door-17 --inspector "M. Keller"
  doorsync create --door door-17 --status failed --notes "closer broken"
  doorsync create --door door-17 --date "yesterday 4pm"`,
	Run: func(cmd *cobra.Command, args []string) {
		door, _ := cmd.Flags().GetString("door")
		inspector, _ := cmd.Flags().GetString("inspector")
		status, _ := cmd.Flags().GetString("status")
		notes, _ := cmd.Flags().GetString("notes")
		dateStr, _ := cmd.Flags().GetString("date")

		if status != "" && !schema.ValidStatus(status) {
			fmt.Fprintf(os.Stderr, "Error: invalid status %q (expected %s, %s, or %s)\n",
				status, schema.StatusPending, schema.StatusCompleted, schema.StatusFailed)
			os.Exit(1)
		}

		draft := sync.InspectionDraft{
			DoorID:        door,
			InspectorName: inspector,
			Status:        status,
			Notes:         notes,
		}

		if dateStr != "" {
			w := when.New(nil)
			w.Add(en.All...)
			w.Add(common.All...)

			result, err := w.Parse(dateStr, time.Now())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing date %q: %v\n", dateStr, err)
				os.Exit(1)
			}
			if result == nil {
				fmt.Fprintf(os.Stderr, "Error: unrecognized date %q (try \"today 4pm\" or \"yesterday\")\n", dateStr)
				os.Exit(1)
			}
			draft.Date = result.Time
		}

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		// Creating is a purely local write, so only the store is needed.
		st, err := openStore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		engine := sync.NewLocal(st, sync.Config{PhotoBucket: cfg.PhotoBucket})

		id, err := engine.CreateOfflineInspection(context.Background(), draft)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating inspection: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Created inspection %s\n", ui.RenderPass("✓"), id)

		if count, err := engine.PendingUploadCount(context.Background()); err == nil {
			fmt.Printf("   Pending uploads: %d\n", count)
		}
	},
}

func init() {
	createCmd.Flags().StringP("door", "d", "", "Door id the inspection belongs to (required)")
	createCmd.Flags().StringP("inspector", "i", "", "Name of the inspector")
	createCmd.Flags().StringP("status", "s", "", "Inspection status: pending, completed, or failed (default pending)")
	createCmd.Flags().StringP("notes", "n", "", "Free-form notes")
	createCmd.Flags().String("date", "", "Inspection date, natural language allowed (default now)")
	createCmd.MarkFlagRequired("door")

	rootCmd.AddCommand(createCmd)
}
