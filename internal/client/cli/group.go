package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rosterkeeper/internal/client/models"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage roster groups",
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		list, err := app.groups.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No groups")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION\tSTATUS")
		for _, g := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.ID, g.Name, g.Description, colorStatus(g.SyncStatus))
		}
		return w.Flush()
	},
}

var groupDesc string

var groupAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := app.groups.Create(cmd.Context(), args[0], groupDesc)
		if err != nil {
			return err
		}
		fmt.Printf("Created group %s (%s)\n", g.Name, g.ID)
		return nil
	},
}

var groupRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.groups.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Group %s queued for deletion\n", args[0])
		return nil
	},
}

var groupRetryCmd = &cobra.Command{
	Use:   "retry <id>",
	Short: "Retry a failed group sync",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.groups.Retry(cmd.Context(), args[0])
	},
}

func init() {
	groupAddCmd.Flags().StringVar(&groupDesc, "desc", "", "group description")
	groupCmd.AddCommand(groupListCmd, groupAddCmd, groupRmCmd, groupRetryCmd)
}

func colorStatus(s models.SyncStatus) string {
	switch s {
	case models.StatusSynced, models.StatusBackend:
		return color.GreenString(string(s))
	case models.StatusPending, models.StatusUpdated, models.StatusDeleted:
		return color.YellowString(string(s))
	case models.StatusFailed:
		return color.RedString(string(s))
	case models.StatusInProgress:
		return color.CyanString(string(s))
	default:
		return string(s)
	}
}
