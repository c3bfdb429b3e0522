package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fieldline/doorsync/internal/dashboard"
	"github.com/fieldline/doorsync/internal/sync"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	GroupID: "advanced",
	Short:   "Start the real-time WebSocket dashboard",
	Long: `Start a WebSocket server that broadcasts sync activity to connected
clients.

WebSocket messages include:
- sync_progress: stage and percentage of a running download or upload
- sync_complete: a sync pass finished
- photo_imported: an inbox photo landed in the local store
- pending: the pending-upload count changed
- stats: local collection counts

Live events come from a daemon, so normally the dashboard is embedded
there with 'doorsync daemon --dashboard-port 8080'. Run it standalone
to inspect the local store of a device: clients still get a stats
snapshot on connect.

Example usage:
  doorsync dashboard                 # Start on default port 8080
  doorsync dashboard --port 9000     # Start on custom port

Connect with a WebSocket client:
  ws://localhost:8080/ws`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		if port == 0 {
			port = cfg.DashboardPort
		}

		st, err := openStore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		server := dashboard.NewServer(&dashboard.Config{Port: port})

		if err := server.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to start dashboard: %v\n", err)
			os.Exit(1)
		}

		// Seed the stats snapshot replayed to connecting clients.
		engine := sync.NewLocal(st, sync.Config{})
		handler := dashboard.NewHandler(server, engine, nil)
		handler.RefreshStats()

		fmt.Printf("Dashboard server started on http://localhost:%d\n", port)
		fmt.Printf("WebSocket endpoint: ws://localhost:%d/ws\n", port)
		fmt.Printf("Health check: http://localhost:%d/health\n", port)
		fmt.Println("\nPress Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		<-ctx.Done()

		fmt.Println("\nShutting down dashboard server...")
		if err := server.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Dashboard server stopped")
	},
}

func init() {
	dashboardCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config, 8080)")

	rootCmd.AddCommand(dashboardCmd)
}
