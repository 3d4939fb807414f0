package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rosterkeeper/internal/client/models"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connectivity and the sync queue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if app.monitor.Online() {
			color.Green("Backend: reachable (%s)", cfg.ServerURL)
		} else {
			color.Red("Backend: unreachable (%s)", cfg.ServerURL)
		}

		fmt.Println("\nGroups:")
		if err := printQueue(cmd.Context(), func(ctx context.Context, s models.SyncStatus) (int, error) {
			recs, err := app.groupRepo.GetByStatus(ctx, s)
			return len(recs), err
		}); err != nil {
			return err
		}

		fmt.Println("\nUsers:")
		return printQueue(cmd.Context(), func(ctx context.Context, s models.SyncStatus) (int, error) {
			recs, err := app.userRepo.GetByStatus(ctx, s)
			return len(recs), err
		})
	},
}

func printQueue(ctx context.Context, count func(context.Context, models.SyncStatus) (int, error)) error {
	statuses := []models.SyncStatus{
		models.StatusPending, models.StatusUpdated, models.StatusDeleted,
		models.StatusFailed, models.StatusInProgress,
		models.StatusSynced, models.StatusBackend,
	}
	for _, s := range statuses {
		n, err := count(ctx, s)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		fmt.Printf("  %-12s %d\n", colorStatus(s), n)
	}
	return nil
}
