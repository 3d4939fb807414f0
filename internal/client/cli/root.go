package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"rosterkeeper/internal/client/config"
	"rosterkeeper/internal/logging"
)

var (
	app     *App
	cfg     *config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rosterkeeper",
	Short: "Offline-first roster client",
	Long: `rosterkeeper manages groups and their users against a REST backend.

All changes are written to a local SQLite store first and synchronized
with the backend whenever it is reachable, so the client stays fully
usable offline.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: teardownApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to a JSON config file")
	rootCmd.PersistentFlags().StringP("server", "a", "", "base URL of the backend server")
	rootCmd.PersistentFlags().StringP("database", "d", "", "path of the local SQLite database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, groupCmd, userCmd,
		syncCmd, statusCmd, historyCmd, watchCmd)
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg = config.LoadConfig()
	if v, _ := cmd.Flags().GetString("server"); v != "" {
		cfg.ServerURL = v
	}
	if v, _ := cmd.Flags().GetString("database"); v != "" {
		cfg.DatabasePath = v
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewSlogLogger(slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var err error
	app, err = NewApp(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	// one probe up front so commands know whether the backend is in reach
	app.monitor.Check(cmd.Context())
	return nil
}

func teardownApp(*cobra.Command, []string) error {
	if app == nil {
		return nil
	}
	return app.Close()
}
