package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldline/doorsync/internal/remote"
	"github.com/fieldline/doorsync/internal/ui"
)

var downloadCmd = &cobra.Command{
	Use:     "download",
	GroupID: "sync",
	Short:   "Download the working set for offline use",
	Long: `Download customers, doors, and inspections from the backend into the
local store.

Customers and doors are replaced wholesale. Inspections are merged, so
records created offline on this device survive the refresh. Run this in
the morning while connectivity is good.

Example usage:
  doorsync download`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		engine, cleanup, err := buildEngine(cfg, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		fmt.Printf("%s Downloading from %s...\n\n", ui.RenderAccent("⇣"), cfg.BaseURL)

		start := time.Now()
		if err := engine.DownloadAllData(context.Background(), printProgress); err != nil {
			if errors.Is(err, remote.ErrOffline) {
				fmt.Fprintf(os.Stderr, "\n%s Backend unreachable. Check connectivity and try again.\n", ui.RenderError("✗"))
			} else {
				fmt.Fprintf(os.Stderr, "\nError downloading: %v\n", err)
			}
			os.Exit(1)
		}
		elapsed := time.Since(start).Round(time.Millisecond)

		fmt.Printf("\n%s Download complete in %v\n", ui.RenderPass("✓"), elapsed)

		if stats, err := engine.Stats(context.Background()); err == nil {
			fmt.Printf("   Customers: %d\n", stats.Customers)
			fmt.Printf("   Doors: %d\n", stats.Doors)
			fmt.Printf("   Inspections: %d\n", stats.Inspections)
		}
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}
