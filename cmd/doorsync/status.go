package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldline/doorsync/internal/sync"
	"github.com/fieldline/doorsync/internal/ui"
)

// statusView is the machine-format shape for 'doorsync status'.
// Timestamps are RFC 3339 strings, empty when the pass never ran.
type statusView struct {
	LastDownload   string `json:"last_download,omitempty" yaml:"last_download,omitempty" toml:"last_download"`
	LastUpload     string `json:"last_upload,omitempty" yaml:"last_upload,omitempty" toml:"last_upload"`
	PendingUploads int    `json:"pending_uploads" yaml:"pending_uploads" toml:"pending_uploads"`
	SyncInProgress bool   `json:"sync_in_progress" yaml:"sync_in_progress" toml:"sync_in_progress"`
}

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "sync",
	Short:   "Show sync status and pending work",
	Long: `Show when the device last downloaded and uploaded, and how much work
is still waiting for connectivity.

Example usage:
  doorsync status
  doorsync status --format json`,
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		st, err := openStore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		engine := sync.NewLocal(st, sync.Config{})
		ctx := context.Background()

		info, err := engine.LastSyncInfo(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading sync status: %v\n", err)
			os.Exit(1)
		}
		// The stored pending count is advisory; recount for display.
		pending, err := engine.PendingUploadCount(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error counting pending changes: %v\n", err)
			os.Exit(1)
		}

		if format != formatText {
			view := statusView{
				LastDownload:   rfc3339OrEmpty(info.LastDownload),
				LastUpload:     rfc3339OrEmpty(info.LastSync),
				PendingUploads: pending,
				SyncInProgress: info.SyncInProgress,
			}
			if err := renderOutput(view, format); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		fmt.Printf("\n%s Sync Status\n\n", ui.RenderAccent("📊"))
		fmt.Printf("  %s %s\n", ui.RenderMuted("Last download:"), formatSyncTime(info.LastDownload))
		fmt.Printf("  %s %s\n", ui.RenderMuted("Last upload:  "), formatSyncTime(info.LastSync))
		fmt.Printf("  %s %s\n", ui.RenderMuted("Pending:      "), renderPending(pending))
		if info.SyncInProgress {
			fmt.Printf("  %s %s\n", ui.RenderMuted("In progress:  "), ui.RenderAccent("yes"))
		}
		fmt.Println()

		switch {
		case pending > 0:
			fmt.Printf("%s Run 'doorsync upload' when back online\n", ui.RenderWarn("⚠"))
		case info.LastDownload == nil:
			fmt.Printf("%s Run 'doorsync download' to fetch the working set\n", ui.RenderWarn("⚠"))
		default:
			fmt.Printf("%s Everything is synced\n", ui.RenderPass("✓"))
		}
	},
}

func formatSyncTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	local := t.Local()
	return fmt.Sprintf("%s (%s ago)", local.Format("2006-01-02 15:04"), time.Since(local).Round(time.Minute))
}

func rfc3339OrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func renderPending(n int) string {
	if n == 0 {
		return "0 changes"
	}
	return ui.RenderWarn(fmt.Sprintf("%d changes", n))
}

func init() {
	statusCmd.Flags().StringP("format", "f", formatText, "Output format: text, json, yaml, or toml")

	rootCmd.AddCommand(statusCmd)
}
