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

var uploadCmd = &cobra.Command{
	Use:     "upload",
	GroupID: "sync",
	Short:   "Upload inspections and photos recorded offline",
	Long: `Upload every pending inspection and photo to the backend.

Each record is pushed individually. A record that fails stays pending
and is retried on the next upload, so a flaky connection never loses
work. Run this in the evening, or rely on 'doorsync daemon' to upload
automatically whenever connectivity returns.

Example usage:
  doorsync upload`,
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

		fmt.Printf("%s Uploading to %s...\n\n", ui.RenderAccent("⇡"), cfg.BaseURL)

		start := time.Now()
		result, err := engine.UploadPendingChanges(context.Background(), printProgress)
		if err != nil {
			if errors.Is(err, remote.ErrOffline) {
				fmt.Fprintf(os.Stderr, "\n%s Backend unreachable. Pending work is kept for the next attempt.\n", ui.RenderError("✗"))
			} else {
				fmt.Fprintf(os.Stderr, "\nError uploading: %v\n", err)
			}
			os.Exit(1)
		}
		elapsed := time.Since(start).Round(time.Millisecond)

		if result.Total == 0 {
			fmt.Printf("\n%s Nothing to upload\n", ui.RenderPass("✓"))
			return
		}

		uploaded := result.Inspections + result.Photos
		if result.Failed > 0 {
			fmt.Printf("\n%s Uploaded %d of %d changes in %v (%d failed, kept for retry)\n",
				ui.RenderWarn("⚠"), uploaded, result.Total, elapsed, result.Failed)
			return
		}

		fmt.Printf("\n%s Uploaded %d changes in %v\n", ui.RenderPass("✓"), uploaded, elapsed)
		fmt.Printf("   Inspections: %d\n", result.Inspections)
		fmt.Printf("   Photos: %d\n", result.Photos)
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
