package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldline/doorsync/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Run one opportunistic sync pass",
	Long: `Run a single automatic sync pass.

The pass only does work when the backend is reachable, no other sync is
running, and there are pending changes to upload. It is a no-op
otherwise, so it is safe to call from cron or a network-up hook.

Example usage:
  doorsync sync`,
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

		fmt.Printf("%s Checking for pending work...\n\n", ui.RenderAccent("🔄"))

		if engine.AutoSyncIfOnline(context.Background(), printProgress) {
			fmt.Printf("\n%s Sync pass completed\n", ui.RenderPass("✓"))
			return
		}

		fmt.Println("Nothing to sync (offline, busy, or no pending changes)")
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
