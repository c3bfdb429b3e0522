package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fieldline/doorsync/internal/ui"
)

var clearCmd = &cobra.Command{
	Use:     "clear",
	GroupID: "data",
	Short:   "Delete all local data",
	Long: `Delete every locally stored customer, door, inspection, and photo,
plus the sync status record.

Unsynced work is lost permanently. The next download rebuilds the
working set from the backend.

Example usage:
  doorsync clear
  doorsync clear --yes    # skip the confirmation prompt`,
	Run: func(cmd *cobra.Command, args []string) {
		yes, _ := cmd.Flags().GetBool("yes")

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

		ctx := context.Background()

		if !yes {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				fmt.Fprintln(os.Stderr, "Error: refusing to clear without --yes in non-interactive mode")
				os.Exit(1)
			}

			pending, err := st.CountPending(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error counting pending changes: %v\n", err)
				os.Exit(1)
			}

			title := "Delete all local data?"
			if pending > 0 {
				title = fmt.Sprintf("Delete all local data? %d pending uploads will be lost", pending)
			}

			var confirmed bool
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title(title).
						Affirmative("Delete").
						Negative("Keep").
						Value(&confirmed),
				),
			)
			if err := form.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if !confirmed {
				fmt.Println("Aborted")
				return
			}
		}

		if err := st.ClearAll(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing store: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Local store cleared (%s)\n", ui.RenderPass("✓"), cfg.dbPath())
	},
}

func init() {
	clearCmd.Flags().Bool("yes", false, "Clear without asking for confirmation")

	rootCmd.AddCommand(clearCmd)
}
