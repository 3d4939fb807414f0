package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one full pull-then-push cycle now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !app.monitor.Online() {
			return fmt.Errorf("backend is not reachable")
		}
		if err := app.SyncAll(cmd.Context()); err != nil {
			return err
		}
		color.Green("Sync complete")
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stay running and sync whenever the backend becomes reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Fprintln(os.Stderr, "Watching for connectivity, Ctrl-C to stop")
		app.monitor.Run(ctx)
		return nil
	},
}
